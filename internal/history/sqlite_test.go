package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(InMemory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_AppendAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()
	started := time.UnixMilli(1_700_000_000_000)

	first := Record{
		ID:        "inv-1",
		StartedAt: started,
		Builder:   "html",
		Source:    "/p/src",
		Output:    "/p/out",
		Args:      []string{"-v", "-b", "html", "-n", "/p/src", "/p/out/html"},
		State:     "succeeded",
		Duration:  1500 * time.Millisecond,
		Revision:  "abc123",
	}
	second := Record{
		ID:        "inv-2",
		StartedAt: started.Add(time.Minute),
		Builder:   "latex",
		Source:    "/p/src",
		Output:    "/p/out",
		Args:      []string{"-Q", "-b", "latex", "-n", "/p/src", "/p/out/latex"},
		State:     "failed",
		ExitCode:  2,
	}
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "inv-2", records[0].ID)
	assert.Equal(t, 2, records[0].ExitCode)
	assert.False(t, records[0].Succeeded())
	assert.Empty(t, records[0].Revision)

	got := records[1]
	assert.Equal(t, first.Args, got.Args)
	assert.Equal(t, first.Duration, got.Duration)
	assert.True(t, first.StartedAt.Equal(got.StartedAt))
	assert.Equal(t, "abc123", got.Revision)
	assert.True(t, got.Succeeded())
}

func TestSQLiteStore_RecentLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := t.Context()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, Record{ID: id, StartedAt: time.Now(), State: "succeeded"}))
	}

	records, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c", records[0].ID)
	assert.Equal(t, "b", records[1].ID)

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteStore_FileBacked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), Record{ID: "persisted", StartedAt: time.Now(), State: "succeeded"}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.Recent(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "persisted", records[0].ID)
}

func TestSQLiteStore_ClosedStoreIsHistoryError(t *testing.T) {
	store, err := NewSQLiteStore(InMemory)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Append(t.Context(), Record{ID: "late"})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryHistory))
}

func TestNoopStore(t *testing.T) {
	var s Store = NoopStore{}
	require.NoError(t, s.Append(t.Context(), Record{ID: "x"}))
	records, err := s.Recent(t.Context(), 5)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, s.Close())
}
