// Package memory provides the in-process settings store. It is used on its
// own for ephemeral workspaces and tests, and as the staging engine behind
// the YAML settings file.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"workspacemanager/internal/domain/models"
	"workspacemanager/internal/domain/repositories"
)

// Document is one settings layer: section -> key -> JSON value
type Document map[string]map[string]json.RawMessage

// Clone deep-copies the document
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for section, keys := range d {
		copied := make(map[string]json.RawMessage, len(keys))
		for k, v := range keys {
			copied[k] = append(json.RawMessage(nil), v...)
		}
		out[section] = copied
	}
	return out
}

// Persister writes a committed layer to durable storage
type Persister interface {
	Persist(scope models.Scope, doc Document) error
}

type settingKey struct {
	scope   models.Scope
	section string
	key     string
}

// staged holds the writes of one open transaction; nil value means delete
type staged struct {
	writes map[settingKey]json.RawMessage
	order  []settingKey
}

type txKey struct{}

// Store is a layered settings store with staged transactions
type Store struct {
	mu        sync.RWMutex
	txMu      sync.Mutex
	layers    map[models.Scope]Document
	persister Persister
	subsMu    sync.Mutex
	subs      map[int]repositories.ChangeFunc
	nextSub   int
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return NewPersistentStore(nil, nil)
}

// NewPersistentStore creates a store seeded with initial layers whose
// commits are handed to persister before they become visible.
func NewPersistentStore(persister Persister, initial map[models.Scope]Document) *Store {
	layers := make(map[models.Scope]Document, len(initial))
	for scope, doc := range initial {
		layers[scope] = doc.Clone()
	}
	return &Store{
		layers:    layers,
		persister: persister,
		subs:      make(map[int]repositories.ChangeFunc),
	}
}

// Get implements repositories.ConfigurationRepository.
// Workspace scope wins over user scope.
func (s *Store) Get(ctx context.Context, section, key string, dest interface{}) (bool, error) {
	for _, scope := range []models.Scope{models.ScopeWorkspace, models.ScopeUser} {
		raw, ok := s.lookup(ctx, settingKey{scope: scope, section: section, key: key})
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, dest); err != nil {
			return false, fmt.Errorf("decode %s.%s: %w", section, key, err)
		}
		return true, nil
	}
	return false, nil
}

// Update implements repositories.ConfigurationRepository.
// Inside ExecTx the write is staged until commit.
func (s *Store) Update(ctx context.Context, section, key string, value interface{}, scope models.Scope) error {
	var raw json.RawMessage
	if value != nil {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode %s.%s: %w", section, key, err)
		}
		raw = encoded
	}

	k := settingKey{scope: scope, section: section, key: key}
	if tx, ok := ctx.Value(txKey{}).(*staged); ok {
		if _, seen := tx.writes[k]; !seen {
			tx.order = append(tx.order, k)
		}
		tx.writes[k] = raw
		return nil
	}

	s.txMu.Lock()
	err := s.commit(&staged{
		writes: map[settingKey]json.RawMessage{k: raw},
		order:  []settingKey{k},
	})
	s.txMu.Unlock()
	return err
}

// Subscribe implements repositories.ConfigurationRepository
func (s *Store) Subscribe(fn repositories.ChangeFunc) func() {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	return func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

// ExecTx implements repositories.TransactionManager.
// Writes made through the transaction context are invisible to other
// callers until fn returns nil; nested calls join the outer transaction.
func (s *Store) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if _, ok := ctx.Value(txKey{}).(*staged); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &staged{writes: make(map[settingKey]json.RawMessage)}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	return s.commit(tx)
}

// Replace swaps a whole layer, e.g. after the backing file changed on disk,
// and notifies subscribers about every key that differs.
func (s *Store) Replace(scope models.Scope, doc Document) {
	s.mu.Lock()
	previous := s.layers[scope]
	s.layers[scope] = doc.Clone()
	s.mu.Unlock()

	s.notify(diff(previous, doc))
}

// Snapshot returns a copy of one layer
func (s *Store) Snapshot(scope models.Scope) Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layers[scope].Clone()
}

func (s *Store) lookup(ctx context.Context, k settingKey) (json.RawMessage, bool) {
	if tx, ok := ctx.Value(txKey{}).(*staged); ok {
		if raw, written := tx.writes[k]; written {
			return raw, raw != nil
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.layers[k.scope][k.section][k.key]
	return raw, ok
}

// commit applies staged writes; caller holds txMu
func (s *Store) commit(tx *staged) error {
	if len(tx.order) == 0 {
		return nil
	}

	s.mu.RLock()
	next := make(map[models.Scope]Document, len(s.layers))
	for scope, doc := range s.layers {
		next[scope] = doc
	}
	s.mu.RUnlock()

	touched := make(map[models.Scope]bool)
	for _, k := range tx.order {
		if !touched[k.scope] {
			next[k.scope] = next[k.scope].Clone()
			touched[k.scope] = true
		}
		doc := next[k.scope]
		raw := tx.writes[k]
		if raw == nil {
			delete(doc[k.section], k.key)
			if len(doc[k.section]) == 0 {
				delete(doc, k.section)
			}
			continue
		}
		if doc[k.section] == nil {
			doc[k.section] = make(map[string]json.RawMessage)
		}
		doc[k.section][k.key] = raw
	}

	if s.persister != nil {
		for scope := range touched {
			if err := s.persister.Persist(scope, next[scope]); err != nil {
				return fmt.Errorf("persist %s settings: %w", scope, err)
			}
		}
	}

	s.mu.Lock()
	for scope := range touched {
		s.layers[scope] = next[scope]
	}
	s.mu.Unlock()

	changed := make([][2]string, 0, len(tx.order))
	for _, k := range tx.order {
		changed = append(changed, [2]string{k.section, k.key})
	}
	s.notify(changed)
	return nil
}

func (s *Store) notify(changed [][2]string) {
	if len(changed) == 0 {
		return
	}
	s.subsMu.Lock()
	subs := make([]repositories.ChangeFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subsMu.Unlock()

	seen := make(map[[2]string]bool, len(changed))
	for _, c := range changed {
		if seen[c] {
			continue
		}
		seen[c] = true
		for _, fn := range subs {
			fn(c[0], c[1])
		}
	}
}

// diff lists the section/key pairs whose values differ between two layers
func diff(a, b Document) [][2]string {
	var changed [][2]string
	for section, keys := range a {
		for key, raw := range keys {
			if other, ok := b[section][key]; !ok || string(other) != string(raw) {
				changed = append(changed, [2]string{section, key})
			}
		}
	}
	for section, keys := range b {
		for key := range keys {
			if _, ok := a[section][key]; !ok {
				changed = append(changed, [2]string{section, key})
			}
		}
	}
	return changed
}
