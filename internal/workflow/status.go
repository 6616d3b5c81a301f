package workflow

import (
	"context"

	"dvrflow/internal/model"
	"dvrflow/internal/repository"
	"dvrflow/internal/telemetry"

	"go.uber.org/zap"
)

// Reporter emits workflow status. Every status line is logged, and when the
// workflow was started from a queued job the status and comment are mirrored
// into the job row so the queue shows progress without anyone tailing logs.
//
// Report never fails: running without a job is the normal manual mode, and a
// status update that cannot be persisted must not kill a transcode.
type Reporter struct {
	store repository.Store
	jobID int
}

// NewReporter returns a reporter bound to jobID. A jobID of zero means manual
// mode: log only, nothing persisted.
func NewReporter(store repository.Store, jobID int) *Reporter {
	return &Reporter{store: store, jobID: jobID}
}

// Report logs the status line and, in job mode, persists it.
func (r *Reporter) Report(ctx context.Context, status model.JobStatus, comment string) {
	if status.IsError() {
		telemetry.Logger.Error(comment, zap.Stringer("status", status))
	} else {
		telemetry.Logger.Info(comment, zap.Stringer("status", status))
	}
	if r.jobID == 0 {
		return
	}
	if err := r.store.UpdateJob(ctx, r.jobID, status, comment); err != nil {
		telemetry.Logger.Warn("Failed to persist job status",
			zap.Int("job_id", r.jobID), zap.Error(err))
	}
}
