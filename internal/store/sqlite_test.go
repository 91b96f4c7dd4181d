package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T, path string) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_GetAbsent(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "lists.db"))

	v, err := s.Get(context.Background(), "shopping-lists")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSQLiteStore_SetThenGet(t *testing.T) {
	s := openTestSQLite(t, filepath.Join(t.TempDir(), "lists.db"))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte(`[{"id":"a"}]`)))
	require.NoError(t, s.Set(ctx, "k", []byte(`[]`)))

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists.db")
	ctx := context.Background()

	first, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "shopping-lists", []byte(`[{"id":"a"}]`)))
	require.NoError(t, first.Close())

	second := openTestSQLite(t, path)
	v, err := second.Get(ctx, "shopping-lists")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(v))
}

func TestSQLiteStore_ClosedFails(t *testing.T) {
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "lists.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, s.Set(context.Background(), "k", []byte(`1`)))
}
