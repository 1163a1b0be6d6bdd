package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mangapages/pkg/chapters"
	"mangapages/pkg/logger"
)

func sampleCounts() chapters.PageCounts {
	return chapters.PageCounts{
		{Number: chapters.MustNumber("2"), Pages: 19},
		{Number: chapters.MustNumber("1"), Pages: 20},
		{Number: chapters.MustNumber("1.5"), Pages: 12},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), logger.NewNopLogger())
	require.NoError(t, err)
	return store
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	store, err := NewStore(dir, logger.NewNopLogger())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, filepath.Join(dir, "607.json"), store.Path(607))
}

func TestLoadMissing(t *testing.T) {
	store := newTestStore(t)

	counts, ok, err := store.Load(1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, counts)
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(607, sampleCounts()))
	assert.FileExists(t, store.Path(607))

	data, err := os.ReadFile(store.Path(607))
	require.NoError(t, err)
	assert.Equal(t, `{"1":20,"1.5":12,"2":19}`, string(data))

	loaded, ok, err := store.Load(607)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, loaded, 3)

	for _, pc := range sampleCounts() {
		pages, found := loaded.Get(pc.Number)
		assert.True(t, found, "chapter %s", pc.Number)
		assert.Equal(t, pc.Pages, pages)
	}
}

func TestSaveIsWriteOnce(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(5, sampleCounts()))

	err := store.Save(5, chapters.PageCounts{{Number: chapters.MustNumber("1"), Pages: 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExists)

	loaded, _, err := store.Load(5)
	require.NoError(t, err)
	pages, _ := loaded.Get(chapters.MustNumber("1"))
	assert.Equal(t, 20, pages)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir, logger.NewNopLogger())
	require.NoError(t, err)

	require.NoError(t, store.Save(39, sampleCounts()))
	_ = store.Save(39, sampleCounts())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "39.json", entries[0].Name())
}

func TestLoadAcceptsFloatKeys(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(82), []byte(`{"1.0": 20, "2.0": 18, "2.5": 4}`), 0644))

	loaded, ok, err := store.Load(82)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []float64{1, 2}, chapters.Filter(loaded).XValues())
}

func TestLoadMalformed(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(3), []byte(`{"1": "many"}`), 0644))

	_, ok, err := store.Load(3)
	require.Error(t, err)
	assert.False(t, ok)
}

func TestSaveEmpty(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(9, chapters.PageCounts{}))

	loaded, ok, err := store.Load(9)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, loaded)
}
