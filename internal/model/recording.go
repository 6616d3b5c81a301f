package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// BackendTimeLayout is the compact timestamp encoding the backend tools expect
// on their --starttime flag (e.g. 20240131203000).
const BackendTimeLayout = "20060102150405"

// RecGroupDeleted marks a recording that was soft-deleted by the user. The
// backend keeps the file around until expiry so it can still be restored.
const RecGroupDeleted = "Deleted"

// RecordingKey is the composite key identifying a recording.
type RecordingKey struct {
	ChanID    int
	StartTime time.Time
}

func (k RecordingKey) String() string {
	return fmt.Sprintf("%d_%s", k.ChanID, k.StartTime.UTC().Format(BackendTimeLayout))
}

// BackendTime returns the key's start time in the encoding the external tools
// take on the command line.
func (k RecordingKey) BackendTime() string {
	return k.StartTime.UTC().Format(BackendTimeLayout)
}

// Recording is one recorded program as stored by the backend. The workflow
// reads a recording, mutates a few fields and writes it back; the backend owns
// the record's lifecycle.
type Recording struct {
	ChanID       int       `json:"chanid"`
	StartTime    time.Time `json:"starttime"`
	Title        string    `json:"title"`
	Subtitle     string    `json:"subtitle"`
	Basename     string    `json:"basename"`
	StorageGroup string    `json:"storagegroup"`
	RecGroup     string    `json:"recgroup"`
	Cutlist      bool      `json:"cutlist"`
	Transcoded   bool      `json:"transcoded"`
	FileSize     int64     `json:"filesize"`
	Bookmark     int64     `json:"bookmark"`
}

// Key returns the recording's composite key.
func (r *Recording) Key() RecordingKey {
	return RecordingKey{ChanID: r.ChanID, StartTime: r.StartTime}
}

// Name returns the display string used in status messages and logs, e.g.
// `"Nova - Secrets of the Sun" @ 20240131203000 (1234_20240131203000.ts)`.
func (r *Recording) Name() string {
	title := r.Title
	if r.Subtitle != "" {
		title = r.Title + " - " + r.Subtitle
	}
	return fmt.Sprintf("%q @ %s (%s)", title, r.Key().BackendTime(), r.Basename)
}

// IsDeleted reports whether the recording is in the soft-deleted group.
func (r *Recording) IsDeleted() bool {
	return strings.EqualFold(r.RecGroup, RecGroupDeleted)
}

// OutputPath derives the transcode destination from a source path by replacing
// only the final extension with .mp4: "show.2023.ts" becomes "show.2023.mp4".
func OutputPath(src string) string {
	ext := filepath.Ext(src)
	return strings.TrimSuffix(src, ext) + ".mp4"
}
