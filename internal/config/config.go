package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"workspacemanager/internal/domain/models"
)

// Settings backends
const (
	BackendYAML     = "yaml"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	Roots       []models.WorkspaceRoot
	WorkspaceID uuid.UUID
	// Settings store
	SettingsBackend  string
	SettingsFile     string
	UserSettingsFile string
	SettingsWatch    bool
	DatabaseURL      string
	TablePrefix      string
	// HTTP
	CORSOrigins string
	JWKSURL     string // Auth is enabled only when set
	// Logging
	LogDir      string
	LogMaxFiles int
	Debug       bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	roots := parseRoots(getEnv("WORKSPACE_ROOTS", currentDir()))

	defaultSettings := ""
	if len(roots) > 0 {
		defaultSettings = filepath.Join(roots[0].Dir, ".workspace", "settings.yaml")
	}

	return &Config{
		Port:             getEnv("PORT", "8080"),
		Environment:      env,
		Roots:            roots,
		WorkspaceID:      getWorkspaceID(roots),
		SettingsBackend:  getEnv("SETTINGS_BACKEND", BackendYAML),
		SettingsFile:     getEnv("SETTINGS_FILE", defaultSettings),
		UserSettingsFile: getEnv("USER_SETTINGS_FILE", ""),
		SettingsWatch:    getEnv("SETTINGS_WATCH", "true") == "true",
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		TablePrefix:      getTablePrefix(env),
		CORSOrigins:      getEnv("CORS_ORIGINS", "http://localhost:3000"),
		JWKSURL:          getEnv("JWKS_URL", ""),
		LogDir:           getEnv("LOG_DIR", ""),
		LogMaxFiles:      getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// Validate checks the combination of settings before anything is wired
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.Environment, validation.In("dev", "test", "prod")),
		validation.Field(&c.Roots, validation.Required, validation.By(uniqueRootNames)),
		validation.Field(&c.SettingsBackend,
			validation.Required,
			validation.In(BackendYAML, BackendPostgres, BackendMemory),
		),
		validation.Field(&c.SettingsFile,
			validation.When(c.SettingsBackend == BackendYAML, validation.Required),
		),
		validation.Field(&c.DatabaseURL,
			validation.When(c.SettingsBackend == BackendPostgres, validation.Required),
		),
		validation.Field(&c.LogMaxFiles, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func uniqueRootNames(value interface{}) error {
	roots, _ := value.([]models.WorkspaceRoot)
	seen := make(map[string]bool, len(roots))
	for _, r := range roots {
		if !filepath.IsAbs(r.Dir) {
			return fmt.Errorf("workspace root %q is not absolute", r.Dir)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate workspace root name %q", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

// parseRoots turns a comma-separated directory list into named roots
func parseRoots(raw string) []models.WorkspaceRoot {
	var roots []models.WorkspaceRoot
	for _, dir := range strings.Split(raw, ",") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		dir = filepath.Clean(dir)
		roots = append(roots, models.WorkspaceRoot{
			Name: filepath.Base(dir),
			Dir:  dir,
		})
	}
	return roots
}

// getWorkspaceID honours WORKSPACE_ID, otherwise derives a stable id from the roots
func getWorkspaceID(roots []models.WorkspaceRoot) uuid.UUID {
	if raw := os.Getenv("WORKSPACE_ID"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id
		}
	}
	dirs := make([]string, 0, len(roots))
	for _, r := range roots {
		dirs = append(dirs, r.Dir)
	}
	sort.Strings(dirs)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+strings.Join(dirs, ",")))
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func currentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return dir
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
