package model

import "time"

// JobStatus is the backend job queue's status taxonomy. Values below 0x100 are
// transient, values with the 0x100 bit set are terminal.
type JobStatus int

const (
	StatusUnknown  JobStatus = 0x000
	StatusQueued   JobStatus = 0x001
	StatusPending  JobStatus = 0x002
	StatusStarting JobStatus = 0x003
	StatusRunning  JobStatus = 0x004
	StatusStopping JobStatus = 0x005
	StatusPaused   JobStatus = 0x006
	StatusRetry    JobStatus = 0x007
	StatusErroring JobStatus = 0x008
	StatusAborting JobStatus = 0x009

	StatusDone      JobStatus = 0x100
	StatusFinished  JobStatus = 0x110
	StatusAborted   JobStatus = 0x120
	StatusErrored   JobStatus = 0x130
	StatusCancelled JobStatus = 0x140
)

// IsError reports whether the status should be logged at error severity.
// Cancelled counts: a cancelled job shows up in the queue as a failure even
// though no external tool ever ran.
func (s JobStatus) IsError() bool {
	switch s {
	case StatusErroring, StatusAborting, StatusErrored, StatusCancelled:
		return true
	}
	return false
}

func (s JobStatus) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusPending:
		return "pending"
	case StatusStarting:
		return "starting"
	case StatusRunning:
		return "running"
	case StatusStopping:
		return "stopping"
	case StatusPaused:
		return "paused"
	case StatusRetry:
		return "retrying"
	case StatusErroring:
		return "erroring"
	case StatusAborting:
		return "aborting"
	case StatusDone:
		return "done"
	case StatusFinished:
		return "finished"
	case StatusAborted:
		return "aborted"
	case StatusErrored:
		return "errored"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Job is a persisted unit of work in the backend's job queue. The workflow
// only ever overwrites Status and Comment; everything else belongs to the
// scheduler that queued the job.
type Job struct {
	ID        int       `json:"id"`
	ChanID    int       `json:"chanid"`
	StartTime time.Time `json:"starttime"`
	Status    JobStatus `json:"status"`
	Comment   string    `json:"comment"`
}

// Key returns the composite key of the recording the job refers to.
func (j *Job) Key() RecordingKey {
	return RecordingKey{ChanID: j.ChanID, StartTime: j.StartTime}
}

// QueueJob is the payload pushed onto the redis work queue by the submit API
// and popped by the worker pool. Exactly one addressing mode must be set:
// either JobID, or the ChanID/StartTime pair.
type QueueJob struct {
	JobID     int    `json:"job_id,omitempty"`
	ChanID    int    `json:"chanid,omitempty"`
	StartTime string `json:"starttime,omitempty"`
}

// QueueJobResult reports one worker pass over a QueueJob.
type QueueJobResult struct {
	QueueJob `json:"job"`
	Outcome  string `json:"outcome"`
	Detail   string `json:"detail,omitempty"`
}
