package remote

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite3", filepath.Join(t.TempDir(), "remote.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "dsn")
	assert.ErrorContains(t, err, "unsupported")
}

func TestFetch_NotProvisioned(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Fetch(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrNotProvisioned)

	_, err = s.Upsert(context.Background(), Record{UserID: "user-1", Data: []byte("{}")})
	assert.ErrorIs(t, err, ErrNotProvisioned)
}

func TestUpsert_InsertThenUpdateKeepsRowID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Provision(ctx))
	require.NoError(t, s.Provision(ctx), "provision is idempotent")

	ids := 0
	s.newID = func() string { ids++; return fmt.Sprintf("row-%d", ids) }
	s.now = func() time.Time { return time.UnixMilli(42_000) }

	missing, err := s.Fetch(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first, err := s.Upsert(ctx, Record{UserID: "user-1", Data: []byte(`{"coins":1}`), LastSaved: 100})
	require.NoError(t, err)
	assert.Equal(t, "row-1", first.RowID)

	// A second write from a client that does not know the row id still
	// updates the existing row.
	second, err := s.Upsert(ctx, Record{UserID: "user-1", Data: []byte(`{"coins":2}`), LastSaved: 200})
	require.NoError(t, err)
	assert.Equal(t, "row-1", second.RowID)

	got, err := s.Fetch(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "row-1", got.RowID)
	assert.JSONEq(t, `{"coins":2}`, string(got.Data))
	assert.Equal(t, int64(200), got.LastSaved)
	assert.True(t, got.UpdatedAt.Equal(time.UnixMilli(42_000)))
}

func TestUpsert_EmptyUser(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Upsert(context.Background(), Record{})
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Provision(ctx))

	_, err := s.Upsert(ctx, Record{UserID: "user-1", Data: []byte(`{}`), LastSaved: 1})
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "user-1"))
	require.NoError(t, s.Delete(ctx, "user-1"))

	got, err := s.Fetch(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRebind(t *testing.T) {
	pg := &Store{postgres: true}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &Store{}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestClassify(t *testing.T) {
	undefined := &pq.Error{Code: "42P01", Message: `relation "game_saves" does not exist`}
	assert.ErrorIs(t, classify(undefined), ErrNotProvisioned)

	denied := &pq.Error{Code: "42501", Message: "permission denied"}
	err := classify(denied)
	assert.False(t, errors.Is(err, ErrNotProvisioned))
	assert.Same(t, denied, err)
}
