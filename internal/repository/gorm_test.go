package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dvrflow/internal/model"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testKey() model.RecordingKey {
	return model.RecordingKey{
		ChanID:    1234,
		StartTime: time.Date(2024, 1, 31, 20, 30, 0, 0, time.UTC),
	}
}

func seedTestRecording(t *testing.T, store *GormStore) model.Recording {
	t.Helper()
	key := testKey()
	rec := model.Recording{
		ChanID:       key.ChanID,
		StartTime:    key.StartTime,
		Title:        "Nova",
		Subtitle:     "Secrets of the Sun",
		Basename:     "1234_20240131203000.ts",
		StorageGroup: "Default",
		RecGroup:     "Default",
		Cutlist:      true,
		FileSize:     1 << 30,
	}
	require.NoError(t, store.SeedRecording(context.Background(), &rec))
	return rec
}

func TestRecordingRoundTrip(t *testing.T) {
	store := newTestStore(t)
	want := seedTestRecording(t, store)

	got, err := store.Recording(context.Background(), testKey())
	require.NoError(t, err)
	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Basename, got.Basename)
	assert.True(t, got.Cutlist)
	assert.False(t, got.Transcoded)
}

func TestRecordingNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Recording(context.Background(), testKey())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRecording(t *testing.T) {
	store := newTestStore(t)
	rec := seedTestRecording(t, store)

	rec.Transcoded = true
	rec.Cutlist = false
	rec.FileSize = 42
	rec.Basename = "1234_20240131203000.mp4"
	require.NoError(t, store.UpdateRecording(context.Background(), &rec))

	got, err := store.Recording(context.Background(), testKey())
	require.NoError(t, err)
	assert.True(t, got.Transcoded)
	assert.False(t, got.Cutlist)
	assert.Equal(t, int64(42), got.FileSize)
	assert.Equal(t, "1234_20240131203000.mp4", got.Basename)
}

func TestUpdateRecordingMissingRow(t *testing.T) {
	store := newTestStore(t)
	rec := model.Recording{ChanID: 9, StartTime: time.Now().UTC()}
	assert.ErrorIs(t, store.UpdateRecording(context.Background(), &rec), ErrNotFound)
}

func TestRecordingPath(t *testing.T) {
	store := newTestStore(t)
	rec := seedTestRecording(t, store)
	ctx := context.Background()

	// two dirs in the group, file only in the second
	empty := t.TempDir()
	dir := t.TempDir()
	require.NoError(t, store.AddStorageDir(ctx, "Default", empty))
	require.NoError(t, store.AddStorageDir(ctx, "Default", dir))

	_, err := store.RecordingPath(ctx, &rec)
	assert.ErrorIs(t, err, ErrNotFound)

	path := filepath.Join(dir, rec.Basename)
	require.NoError(t, os.WriteFile(path, []byte("ts"), 0o644))

	got, err := store.RecordingPath(ctx, &rec)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestJobRoundTrip(t *testing.T) {
	store := newTestStore(t)
	key := testKey()
	job := model.Job{ID: 7, ChanID: key.ChanID, StartTime: key.StartTime, Status: model.StatusQueued}
	require.NoError(t, store.SeedJob(context.Background(), &job))

	got, err := store.Job(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, key, got.Key())
	assert.Equal(t, model.StatusQueued, got.Status)

	require.NoError(t, store.UpdateJob(context.Background(), 7, model.StatusRunning, "Transcoding."))
	got, err = store.Job(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRunning, got.Status)
	assert.Equal(t, "Transcoding.", got.Comment)

	_, err = store.Job(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkupReplace(t *testing.T) {
	store := newTestStore(t)
	key := testKey()
	ctx := context.Background()

	markers := []model.Marker{
		{Type: model.MarkCommStart, Frame: 100},
		{Type: model.MarkCommEnd, Frame: 2000},
		{Type: model.MarkBookmark, Frame: 500},
	}
	require.NoError(t, store.ReplaceMarkup(ctx, key, markers))

	got, err := store.Markup(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 3)
	// ordered by frame
	assert.Equal(t, int64(100), got[0].Frame)
	assert.Equal(t, int64(500), got[1].Frame)
	assert.Equal(t, int64(2000), got[2].Frame)

	require.NoError(t, store.ReplaceMarkup(ctx, key, model.WithoutCommercials(got)))
	got, err = store.Markup(ctx, key)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.MarkBookmark, got[0].Type)
}

func TestDeletedRecordings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	for i, group := range []string{"Deleted", "Default", "Deleted"} {
		rec := model.Recording{
			ChanID:    100 + i,
			StartTime: base.Add(time.Duration(i) * time.Hour),
			Title:     "Show",
			RecGroup:  group,
		}
		require.NoError(t, store.SeedRecording(ctx, &rec))
	}

	recs, err := store.DeletedRecordings(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 100, recs[0].ChanID)
	assert.Equal(t, 102, recs[1].ChanID)
}
