package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workspacemanager/internal/domain/models"
)

func TestStore_GetUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var value string
	found, err := s.Get(ctx, "section", "key", &value)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Update(ctx, "section", "key", "user", models.ScopeUser))
	found, err = s.Get(ctx, "section", "key", &value)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "user", value)

	require.NoError(t, s.Update(ctx, "section", "key", "workspace", models.ScopeWorkspace))
	_, err = s.Get(ctx, "section", "key", &value)
	require.NoError(t, err)
	assert.Equal(t, "workspace", value)

	require.NoError(t, s.Update(ctx, "section", "key", nil, models.ScopeWorkspace))
	_, err = s.Get(ctx, "section", "key", &value)
	require.NoError(t, err)
	assert.Equal(t, "user", value)
}

func TestStore_ExecTxCommitsTogether(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	var notified []string
	s.Subscribe(func(section, key string) { notified = append(notified, section+"."+key) })

	err := s.ExecTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.Update(txCtx, "a", "one", 1, models.ScopeWorkspace))
		require.NoError(t, s.Update(txCtx, "b", "two", 2, models.ScopeWorkspace))

		var v int
		found, err := s.Get(txCtx, "a", "one", &v)
		require.NoError(t, err)
		assert.True(t, found, "staged writes are visible inside the transaction")

		found, err = s.Get(ctx, "a", "one", &v)
		require.NoError(t, err)
		assert.False(t, found, "staged writes are invisible outside the transaction")
		assert.Empty(t, notified)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.one", "b.two"}, notified)

	var v int
	found, err := s.Get(ctx, "b", "two", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 2, v)
}

func TestStore_ExecTxRollback(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.ExecTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.Update(txCtx, "a", "one", 1, models.ScopeWorkspace))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var v int
	found, err := s.Get(ctx, "a", "one", &v)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_NestedExecTxJoins(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.ExecTx(ctx, func(outer context.Context) error {
		return s.ExecTx(outer, func(inner context.Context) error {
			return s.Update(inner, "a", "one", 1, models.ScopeWorkspace)
		})
	})
	require.NoError(t, err)

	var v int
	found, err := s.Get(ctx, "a", "one", &v)
	require.NoError(t, err)
	assert.True(t, found)
}

type failingPersister struct{ calls int }

func (p *failingPersister) Persist(models.Scope, Document) error {
	p.calls++
	return errors.New("disk full")
}

func TestStore_PersistFailureKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	p := &failingPersister{}
	s := NewPersistentStore(p, map[models.Scope]Document{
		models.ScopeWorkspace: {"a": {"one": []byte(`1`)}},
	})

	err := s.Update(ctx, "a", "one", 2, models.ScopeWorkspace)
	require.Error(t, err)
	assert.Equal(t, 1, p.calls)

	var v int
	_, err = s.Get(ctx, "a", "one", &v)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestStore_ReplaceNotifiesDifferences(t *testing.T) {
	s := NewPersistentStore(nil, map[models.Scope]Document{
		models.ScopeWorkspace: {
			"files":  {"exclude": []byte(`{"a":true}`)},
			"editor": {"tabSize": []byte(`4`)},
		},
	})

	var notified []string
	cancel := s.Subscribe(func(section, key string) { notified = append(notified, section+"."+key) })
	defer cancel()

	s.Replace(models.ScopeWorkspace, Document{
		"files":  {"exclude": []byte(`{"b":true}`)},
		"editor": {"tabSize": []byte(`4`)},
	})
	assert.Equal(t, []string{"files.exclude"}, notified)

	snapshot := s.Snapshot(models.ScopeWorkspace)
	assert.JSONEq(t, `{"b":true}`, string(snapshot["files"]["exclude"]))
}
