package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"SimpleTS", "show.ts", "show.mp4"},
		{"DottedTitle", "show.2023.ts", "show.2023.mp4"},
		{"MpegSource", "/var/lib/recordings/1234_20240131203000.mpg", "/var/lib/recordings/1234_20240131203000.mp4"},
		{"NoExtension", "show", "show.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputPath(tt.src))
		})
	}
}

func TestRecordingName(t *testing.T) {
	start := time.Date(2024, 1, 31, 20, 30, 0, 0, time.UTC)
	rec := Recording{
		ChanID:    1234,
		StartTime: start,
		Title:     "Nova",
		Basename:  "1234_20240131203000.ts",
	}
	assert.Equal(t, `"Nova" @ 20240131203000 (1234_20240131203000.ts)`, rec.Name())

	rec.Subtitle = "Secrets of the Sun"
	assert.Equal(t, `"Nova - Secrets of the Sun" @ 20240131203000 (1234_20240131203000.ts)`, rec.Name())
}

func TestBackendTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	key := RecordingKey{ChanID: 7, StartTime: time.Date(2024, 1, 31, 21, 30, 0, 0, loc)}
	// backend timestamps are always UTC
	assert.Equal(t, "20240131203000", key.BackendTime())
}

func TestIsDeleted(t *testing.T) {
	rec := Recording{RecGroup: "Default"}
	assert.False(t, rec.IsDeleted())
	rec.RecGroup = "Deleted"
	assert.True(t, rec.IsDeleted())
	rec.RecGroup = "deleted"
	assert.True(t, rec.IsDeleted())
}

func TestJobStatusIsError(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   bool
	}{
		{StatusQueued, false},
		{StatusRunning, false},
		{StatusFinished, false},
		{StatusAborted, false},
		{StatusErroring, true},
		{StatusAborting, true},
		{StatusErrored, true},
		{StatusCancelled, true},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsError())
		})
	}
}

func TestWithoutCommercials(t *testing.T) {
	markers := []Marker{
		{Type: MarkCommStart, Frame: 100},
		{Type: MarkBookmark, Frame: 150},
		{Type: MarkCommEnd, Frame: 200},
		{Type: MarkCommStart, Frame: 900},
		{Type: MarkCommEnd, Frame: 1100},
	}
	kept := WithoutCommercials(markers)
	assert.Equal(t, []Marker{{Type: MarkBookmark, Frame: 150}}, kept)
}
