package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func record(path string, size uint64) *FileRecord {
	return &FileRecord{
		Path:     path,
		Name:     filepath.Base(path),
		Folder:   filepath.Dir(path),
		Size:     size,
		Modified: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestStore_SaveAndGetRecord(t *testing.T) {
	store := setupTestStore(t)

	rec := record("/data/docs/report.txt", 2048)
	rec.Attributes = AttrReadOnly
	require.NoError(t, store.SaveRecords([]*FileRecord{rec}))

	got, err := store.GetRecord(rec.Path)
	require.NoError(t, err)
	assert.Equal(t, "report.txt", got.Name)
	assert.Equal(t, "/data/docs", got.Folder)
	assert.Equal(t, uint64(2048), got.Size)
	assert.True(t, got.Modified.Equal(rec.Modified))
	assert.True(t, got.Attributes.Has(AttrReadOnly))
}

func TestStore_GetRecord_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetRecord("/missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStore_GetRecordsKeepsOrder(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveRecords([]*FileRecord{
		record("/a/one", 1),
		record("/a/two", 2),
	}))

	got, err := store.GetRecords([]string{"/a/two", "/nope", "/a/one"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "two", got[0].Name)
	assert.Nil(t, got[1])
	assert.Equal(t, "one", got[2].Name)
}

func TestStore_DeleteRecords(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveRecords([]*FileRecord{record("/x/a", 1), record("/x/b", 1)}))

	require.NoError(t, store.DeleteRecords([]string{"/x/a", "/x/unknown"}))

	n, err := store.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_DeleteTree(t *testing.T) {
	store := setupTestStore(t)
	sep := string(os.PathSeparator)
	dir := sep + "root" + sep + "dir"
	require.NoError(t, store.SaveRecords([]*FileRecord{
		record(dir, 0),
		record(dir+sep+"a.txt", 1),
		record(dir+sep+"sub"+sep+"b.txt", 1),
		record(dir+"2"+sep+"keep.txt", 1),
	}))

	removed, err := store.DeleteTree(dir)
	require.NoError(t, err)
	assert.Len(t, removed, 3)

	n, err := store.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = store.GetRecord(dir + "2" + sep + "keep.txt")
	assert.NoError(t, err)
}

func TestStore_ForEachRecord(t *testing.T) {
	store := setupTestStore(t)
	var recs []*FileRecord
	for i := 0; i < 5; i++ {
		recs = append(recs, record(fmt.Sprintf("/f/%d", i), uint64(i)))
	}
	require.NoError(t, store.SaveRecords(recs))

	var seen []string
	require.NoError(t, store.ForEachRecord(func(r *FileRecord) error {
		seen = append(seen, r.Path)
		return nil
	}))
	assert.Equal(t, []string{"/f/0", "/f/1", "/f/2", "/f/3", "/f/4"}, seen)
}

func TestStore_Stats(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetStats()
	assert.True(t, errors.Is(err, ErrNotFound))

	stats := &IndexStats{Roots: []string{"/home"}, Files: 42, Duration: 3 * time.Second}
	require.NoError(t, store.SaveStats(stats))

	got, err := store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 42, got.Files)
	assert.Equal(t, []string{"/home"}, got.Roots)
	assert.Equal(t, 3*time.Second, got.Duration)
}

func TestStore_UIState(t *testing.T) {
	store := setupTestStore(t)

	state, err := store.GetUIState()
	require.NoError(t, err)
	assert.False(t, state.Regex)
	assert.False(t, state.Migemo)

	require.NoError(t, store.SaveUIState(&UIState{Migemo: true}))
	state, err = store.GetUIState()
	require.NoError(t, err)
	assert.True(t, state.Migemo)
}

func TestStore_AddRecentTerm(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.AddRecentTerm("foo"))
	require.NoError(t, store.AddRecentTerm("bar"))
	require.NoError(t, store.AddRecentTerm("foo"))
	require.NoError(t, store.AddRecentTerm(""))

	state, err := store.GetUIState()
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, state.RecentTerms)

	for i := 0; i < MaxRecentTerms+5; i++ {
		require.NoError(t, store.AddRecentTerm(fmt.Sprintf("t%d", i)))
	}
	state, err = store.GetUIState()
	require.NoError(t, err)
	assert.Len(t, state.RecentTerms, MaxRecentTerms)
	assert.Equal(t, fmt.Sprintf("t%d", MaxRecentTerms+4), state.RecentTerms[0])
}

func TestStore_UpdateUIStateConcurrent(t *testing.T) {
	store := setupTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		term := fmt.Sprintf("t%d", i)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.AddRecentTerm(term))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, store.UpdateUIState(func(ui *UIState) {
				ui.Regex = true
				ui.Migemo = true
			}))
		}()
	}
	wg.Wait()

	state, err := store.GetUIState()
	require.NoError(t, err)
	assert.True(t, state.Regex)
	assert.True(t, state.Migemo)
	assert.Len(t, state.RecentTerms, 20)
}

func TestAttrFromMode(t *testing.T) {
	assert.True(t, AttrFromMode("dir", os.ModeDir|0o755).Has(AttrDirectory))
	assert.True(t, AttrFromMode(".hidden", 0o644).Has(AttrHidden))
	assert.True(t, AttrFromMode("ro", 0o444).Has(AttrReadOnly))
	assert.True(t, AttrFromMode("run.sh", 0o755).Has(AttrExecutable))
	assert.False(t, AttrFromMode("dir", os.ModeDir|0o755).Has(AttrExecutable))
	assert.True(t, AttrFromMode("link", os.ModeSymlink|0o777).Has(AttrSymlink))
}
