package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"

	"dvrflow/internal/model"
)

// ErrNotFound is returned when a recording, job or backing file does not
// exist.
var ErrNotFound = errors.New("not found")

// Store is the backend metadata the workflow reads and writes. The backend
// owns the schema; this interface covers only the fields the workflow touches.
type Store interface {
	// Recording looks up a recording by its composite key.
	Recording(ctx context.Context, key model.RecordingKey) (*model.Recording, error)

	// RecordingPath resolves the physical path of the recording's file by
	// probing the directories of its storage group. Returns ErrNotFound if
	// the file is not present in any configured directory.
	RecordingPath(ctx context.Context, rec *model.Recording) (string, error)

	// UpdateRecording persists the mutable recording fields (cutlist,
	// transcoded, filesize, basename, bookmark).
	UpdateRecording(ctx context.Context, rec *model.Recording) error

	// ClearSeek drops the recording's cached seek index.
	ClearSeek(ctx context.Context, key model.RecordingKey) error

	// Markup returns the recording's edit markers ordered by frame.
	Markup(ctx context.Context, key model.RecordingKey) ([]model.Marker, error)

	// ReplaceMarkup overwrites the recording's edit markers.
	ReplaceMarkup(ctx context.Context, key model.RecordingKey, markers []model.Marker) error

	// Job looks up a queued job by id.
	Job(ctx context.Context, id int) (*model.Job, error)

	// UpdateJob overwrites the job's status and comment.
	UpdateJob(ctx context.Context, id int, status model.JobStatus, comment string) error

	// DeletedRecordings lists recordings in the soft-deleted group.
	DeletedRecordings(ctx context.Context) ([]model.Recording, error)

	Close() error
}

// IsStaleConnection classifies errors that mean the server dropped an idle
// connection. Long encoder runs (8+ hours) routinely outlive the server-side
// connection timeout.
func IsStaleConnection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	msg := err.Error()
	for _, fragment := range []string{
		"server has gone away",
		"connection timed out",
		"connection reset by peer",
		"broken pipe",
		"bad connection",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
