package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	_, err := os.Stat(dbPath)
	require.True(t, os.IsNotExist(err), "database file should not exist before creating store")

	s, err := New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
	assert.Equal(t, dbPath, s.Path())
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"bindings", "settings", "action_history"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q should exist after migrations", table)
	}

	var idx string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name=?",
		"idx_action_history_created_at",
	).Scan(&idx)
	assert.NoError(t, err)
}

func TestNewStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Bindings().Set("pointing", "q"))
	require.NoError(t, s.Close())

	s, err = New(dbPath)
	require.NoError(t, err)
	defer s.Close()

	b, err := s.Bindings().Get("pointing")
	require.NoError(t, err)
	assert.Equal(t, "q", b.Key)
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	require.NoError(t, s.Close())

	_, err = s.DB().Exec("SELECT 1")
	assert.Error(t, err, "DB operations should fail after close")
}

func TestBindingRepository(t *testing.T) {
	repo := newTestStore(t).Bindings()

	_, err := repo.Get("thumbs_up")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Set("thumbs_up", "enter"))
	require.NoError(t, repo.Set("pointing", "f"))
	require.NoError(t, repo.Set("thumbs_up", "space"))

	b, err := repo.Get("thumbs_up")
	require.NoError(t, err)
	assert.Equal(t, "space", b.Key)
	assert.False(t, b.UpdatedAt.IsZero())

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "pointing", list[0].Gesture)
	assert.Equal(t, "thumbs_up", list[1].Gesture)

	m, err := repo.Map()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"pointing": "f", "thumbs_up": "space"}, m)

	require.NoError(t, repo.Delete("pointing"))
	assert.ErrorIs(t, repo.Delete("pointing"), ErrNotFound)
}

func TestSettingRepository(t *testing.T) {
	repo := newTestStore(t).Settings()

	_, err := repo.Get(SettingEnabled)
	assert.ErrorIs(t, err, ErrNotFound)

	enabled, err := repo.GetBool(SettingEnabled, true)
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, repo.SetBool(SettingEnabled, false))
	enabled, err = repo.GetBool(SettingEnabled, true)
	require.NoError(t, err)
	assert.False(t, enabled)

	require.NoError(t, repo.Set(SettingEnabled, "maybe"))
	_, err = repo.GetBool(SettingEnabled, true)
	assert.Error(t, err)
}

func TestActionRepository(t *testing.T) {
	repo := newTestStore(t).Actions()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	first := &ActionRecord{Gesture: "fist", Kind: "mouse_down", CreatedAt: base}
	require.NoError(t, repo.Create(first))
	assert.NotEmpty(t, first.ID)

	require.NoError(t, repo.CreateBatch([]*ActionRecord{
		{Gesture: "open_hand", Kind: "mouse_up", CreatedAt: base.Add(time.Second)},
		{Gesture: "open_hand", Kind: "key_down", Key: "d", CreatedAt: base.Add(time.Second)},
		{Gesture: "thumbs_up", Kind: "key_tap", Key: "space", CreatedAt: base.Add(2 * time.Second)},
	}))

	n, err := repo.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	recent, err := repo.ListRecent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "key_tap", recent[0].Kind)
	assert.Equal(t, "space", recent[0].Key)
	assert.Equal(t, "key_down", recent[1].Kind)

	deleted, err := repo.Prune(1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	recent, err = repo.ListRecent(0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "thumbs_up", recent[0].Gesture)
}

func TestActionRepository_RejectsUnknownKind(t *testing.T) {
	repo := newTestStore(t).Actions()
	assert.Error(t, repo.Create(&ActionRecord{Gesture: "fist", Kind: "explode"}))
}
