// Package yamlfile persists workspace settings in YAML files, one per scope,
// in the layout the host editor uses for its settings:
//
//	files:
//	  exclude:
//	    node_modules: true
//	workspace-manager:
//	  profiles: {...}
//	  selected-profile: default
package yamlfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/repositories"
	"workspacemanager/internal/repository/memory"
)

// Store is a ConfigurationRepository and TransactionManager backed by YAML files.
// Reads are served from memory; every commit rewrites the affected files
// atomically before it becomes visible.
type Store struct {
	*memory.Store
	paths  map[models.Scope]string
	logger *slog.Logger

	// guards the raw bytes last written so Watch can skip our own writes
	mu      sync.Mutex
	written map[string][]byte
}

// Open loads the settings files. A missing file is treated as empty and is
// created on the first write. Scopes without a path are read-only and empty.
func Open(paths map[models.Scope]string, logger *slog.Logger) (*Store, error) {
	s := &Store{
		paths:   make(map[models.Scope]string, len(paths)),
		logger:  logger,
		written: make(map[string][]byte),
	}

	initial := make(map[models.Scope]memory.Document, len(paths))
	for scope, path := range paths {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("resolve %s settings path: %w", scope, err)
		}
		s.paths[scope] = abs

		doc, err := readDocument(abs)
		if err != nil {
			return nil, err
		}
		initial[scope] = doc
		logger.Debug("settings file loaded", "scope", scope, "path", abs, "sections", len(doc))
	}

	s.Store = memory.NewPersistentStore(s, initial)
	return s, nil
}

// Update rejects writes to scopes without a backing file
func (s *Store) Update(ctx context.Context, section, key string, value interface{}, scope models.Scope) error {
	if _, ok := s.paths[scope]; !ok {
		return fmt.Errorf("no settings file configured for %s scope", scope)
	}
	return s.Store.Update(ctx, section, key, value, scope)
}

// Persist implements memory.Persister with write-to-temp and rename
func (s *Store) Persist(scope models.Scope, doc memory.Document) error {
	path, ok := s.paths[scope]
	if !ok {
		return fmt.Errorf("no settings file configured for %s scope", scope)
	}

	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings file: %w", err)
	}

	s.mu.Lock()
	s.written[path] = data
	s.mu.Unlock()
	return nil
}

// Reload re-reads one scope's file and publishes any differences to subscribers
func (s *Store) Reload(scope models.Scope) error {
	path, ok := s.paths[scope]
	if !ok {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read settings file: %w", err)
	}

	s.mu.Lock()
	own := string(s.written[path]) == string(data)
	s.mu.Unlock()
	if own {
		return nil
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	s.Store.Replace(scope, doc)
	s.logger.Info("settings file reloaded", "scope", scope, "path", path)
	return nil
}

var (
	_ repositories.ConfigurationRepository = (*Store)(nil)
	_ repositories.TransactionManager      = (*Store)(nil)
)

func readDocument(path string) (memory.Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return memory.Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}
	doc, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// decodeDocument converts YAML sections into JSON values.
// Hand-edited files may use unquoted keys such as 2024 or null; every
// mapping key is turned into its string form before JSON encoding.
func decodeDocument(data []byte) (memory.Document, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return memory.Document{}, nil
	}

	sections, ok := stringKeys(raw).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("settings file must be a mapping of sections")
	}

	doc := make(memory.Document, len(sections))
	for section, value := range sections {
		if value == nil {
			continue
		}
		keys, ok := value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("section %s must be a mapping", section)
		}
		converted := make(map[string]json.RawMessage, len(keys))
		for key, v := range keys {
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("section %s key %s: %w", section, key, err)
			}
			converted[key] = encoded
		}
		doc[section] = converted
	}
	return doc, nil
}

// stringKeys rewrites every mapping in v to use string keys
func stringKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[keyString(k)] = stringKeys(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}

func keyString(k interface{}) string {
	switch t := k.(type) {
	case nil:
		return "null"
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// encodeDocument converts JSON values back into a YAML document
func encodeDocument(doc memory.Document) ([]byte, error) {
	out := make(map[string]map[string]interface{}, len(doc))
	for section, keys := range doc {
		converted := make(map[string]interface{}, len(keys))
		for key, raw := range keys {
			var value interface{}
			if err := json.Unmarshal(raw, &value); err != nil {
				return nil, fmt.Errorf("section %s key %s: %w", section, key, err)
			}
			converted[key] = value
		}
		out[section] = converted
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}
