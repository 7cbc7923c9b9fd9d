package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"workspacemanager/internal/config"
	"workspacemanager/internal/repository/backend"
	"workspacemanager/internal/seed"

	"github.com/joho/godotenv"
)

// schemaManager is implemented by database-backed settings stores
type schemaManager interface {
	EnsureSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error
}

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop the settings table before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed settings")
	clearData := flag.Bool("clear-data", false, "Clear excludes and profiles (keep schema)")
	seedFile := flag.String("file", "", "YAML seed file (defaults to built-in sample profiles)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	switch {
	case *clearData:
		log.Printf("Clearing settings (backend: %s, prefix: %s)", cfg.SettingsBackend, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("Setting up schema only (backend: %s, prefix: %s)", cfg.SettingsBackend, cfg.TablePrefix)
	default:
		log.Printf("Seeding settings (backend: %s, prefix: %s)", cfg.SettingsBackend, cfg.TablePrefix)
	}

	// Opening the store ensures the schema exists
	ctx := context.Background()
	settings, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open settings store: %v", err)
	}
	defer settings.Close()

	schema, hasSchema := settings.Repo.(schemaManager)

	// Drop tables if requested
	if *dropTables {
		if !hasSchema {
			log.Fatalf("--drop-tables needs the %s backend", config.BackendPostgres)
		}
		log.Println("Dropping settings table...")
		if err := schema.DropSchema(ctx); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		if err := schema.EnsureSchema(ctx); err != nil {
			log.Fatalf("Failed to run schema: %v", err)
		}
		log.Println("Settings table recreated")
	}

	// Exit early if schema-only mode
	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	seeder := seed.NewSeeder(settings.Repo, settings.TxManager, logger)

	// Exit early if clear-data mode (just clear and exit)
	if *clearData {
		if err := seeder.Clear(ctx); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("Settings cleared")
		return
	}

	fixture := seed.DefaultFixture()
	if *seedFile != "" {
		fixture, err = seed.LoadFixture(*seedFile)
		if err != nil {
			log.Fatalf("Failed to load seed file: %v", err)
		}
	}

	if err := seeder.Seed(ctx, fixture); err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}

	log.Printf("Seeding complete: %d excludes, %d profiles", len(fixture.Excludes), len(fixture.Profiles))
}
