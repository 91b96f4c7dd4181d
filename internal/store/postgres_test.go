package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	value []byte
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

// fakeQuerier keeps kv_store rows in a map.
type fakeQuerier struct {
	rows    map[string][]byte
	execErr error
	lastSQL string
}

func (f *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	v, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{value: v}
}

func (f *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL = sql
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	f.rows[args[0].(string)] = []byte(args[1].(string))
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func TestPostgresStore_GetAbsent(t *testing.T) {
	s := NewPostgresStore(&fakeQuerier{rows: map[string][]byte{}}, nil)

	v, err := s.Get(context.Background(), "shopping-lists")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPostgresStore_SetThenGet(t *testing.T) {
	q := &fakeQuerier{rows: map[string][]byte{}}
	s := NewPostgresStore(q, nil)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "shopping-lists", []byte(`[]`)))
	assert.Contains(t, q.lastSQL, "ON CONFLICT (key) DO UPDATE")

	v, err := s.Get(ctx, "shopping-lists")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)
}

func TestPostgresStore_Errors(t *testing.T) {
	boom := errors.New("connection reset")
	q := &fakeQuerier{rows: map[string][]byte{}, execErr: boom}
	s := NewPostgresStore(q, nil)

	err := s.Set(context.Background(), "k", []byte(`1`))
	assert.ErrorIs(t, err, boom)

	s = NewPostgresStore(&errQuerier{err: boom}, nil)
	_, err = s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
}

func TestPostgresStore_CloseCallsCloser(t *testing.T) {
	closed := false
	s := NewPostgresStore(&fakeQuerier{}, func() { closed = true })

	require.NoError(t, s.Close())
	assert.True(t, closed)
}

type errQuerier struct{ err error }

func (e *errQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{err: e.err}
}

func (e *errQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, e.err
}
