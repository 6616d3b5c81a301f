// Package workflow sequences one recording through cut-list stripping,
// transcoding, metadata finalization and the optional post steps. Everything
// runs synchronously in a fixed order; each step either passes the recording
// on, aborts on a precondition, or fails the run on an external tool error.
package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"dvrflow/internal/model"
	"dvrflow/internal/repository"
	"dvrflow/internal/telemetry"
	"dvrflow/internal/tools"
)

// Outcome distinguishes an expected short-circuit from a real fault.
type Outcome int

const (
	// Succeeded means the recording was transcoded and finalized.
	Succeeded Outcome = iota
	// Aborted means a precondition stopped the run before any external tool
	// ran: the recording was already transcoded, or is marked deleted.
	Aborted
	// Failed means an external tool or the store returned an error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Aborted:
		return "aborted"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Ref addresses the recording to process: either a queued job id, or the
// recording's composite key for manual runs. Exactly one must be set.
type Ref struct {
	JobID int
	Key   *model.RecordingKey
}

// Options are the per-invocation knobs.
type Options struct {
	Profile tools.EncodeProfile
	// FlushCommSkip removes commercial skip markers and the bookmark after
	// the breaks were physically cut out of the stream.
	FlushCommSkip bool
	// BuildSeekTable regenerates the seek table for the new file.
	BuildSeekTable bool
}

// DefaultOptions mirrors the stock configuration.
func DefaultOptions() Options {
	return Options{Profile: tools.DefaultEncodeProfile()}
}

// Workflow is the per-invocation context: one store handle, one tool runner,
// one optional job. Construct with New, run once, discard.
type Workflow struct {
	store    repository.Store
	runner   tools.Runner
	metrics  telemetry.MetricsClient
	opts     Options
	reporter *Reporter

	// swapped out by tests to observe ordering
	removeFile func(string) error
	renameFile func(string, string) error
	now        func() time.Time
}

// New builds a workflow around the given collaborators.
func New(store repository.Store, runner tools.Runner, metrics telemetry.MetricsClient, opts Options) *Workflow {
	return &Workflow{
		store:   store,
		runner:  runner,
		metrics: metrics,
		opts:    opts,
		// log-only until locate binds a job
		reporter:   NewReporter(store, 0),
		removeFile: os.Remove,
		renameFile: os.Rename,
		now:        time.Now,
	}
}

// Run drives the whole pipeline for one recording and reports the outcome.
// The returned error is non-nil only when the outcome is Failed.
func (w *Workflow) Run(ctx context.Context, ref Ref) (Outcome, error) {
	outcome, err := w.run(ctx, ref)
	if w.metrics != nil {
		w.metrics.IncrementWorkflowCounter(outcome.String())
	}
	return outcome, err
}

func (w *Workflow) run(ctx context.Context, ref Ref) (Outcome, error) {
	started := w.now()

	rec, err := w.locate(ctx, ref)
	if err != nil {
		w.reporter.Report(ctx, model.StatusErrored, err.Error())
		return Failed, err
	}

	if rec.IsDeleted() {
		w.reporter.Report(ctx, model.StatusCancelled, "Ignoring recording marked for delete.")
		return Aborted, nil
	}
	if rec.Transcoded {
		w.reporter.Report(ctx, model.StatusCancelled, "Ignoring previously transcoded recording.")
		return Aborted, nil
	}

	src, err := w.store.RecordingPath(ctx, rec)
	if err != nil {
		w.reporter.Report(ctx, model.StatusErrored, "Local access to recording not found.")
		return Failed, err
	}
	dst := model.OutputPath(src)
	if src == dst {
		w.reporter.Report(ctx, model.StatusCancelled, "Ignoring recording already named as transcode output.")
		return Aborted, nil
	}

	if err := w.stripCutlist(ctx, rec, src); err != nil {
		return Failed, err
	}

	rec, err = w.transcode(ctx, rec, src, dst)
	if err != nil {
		return Failed, err
	}

	w.createThumbnails(ctx, dst)
	w.flushCommSkip(ctx, rec)
	w.rebuildSeekTable(ctx, rec)

	elapsed := w.now().Sub(started).Round(time.Second)
	w.reporter.Report(ctx, model.StatusFinished,
		fmt.Sprintf("Finished %s in %s (%s).", rec.Name(), elapsed, humanize.Bytes(uint64(rec.FileSize))))
	return Succeeded, nil
}

// locate resolves the recording from the job queue or the composite key and
// binds the status reporter to the job, if any.
func (w *Workflow) locate(ctx context.Context, ref Ref) (*model.Recording, error) {
	if ref.JobID != 0 && ref.Key != nil {
		return nil, fmt.Errorf("job id cannot be combined with a chanid/starttime pair")
	}

	key := ref.Key
	jobID := 0
	if ref.JobID != 0 {
		job, err := w.store.Job(ctx, ref.JobID)
		if err != nil {
			return nil, fmt.Errorf("resolve job: %w", err)
		}
		jobID = job.ID
		k := job.Key()
		key = &k
	}
	if key == nil {
		return nil, fmt.Errorf("no job id or chanid/starttime pair given")
	}
	w.reporter = NewReporter(w.store, jobID)

	rec, err := w.store.Recording(ctx, *key)
	if err != nil {
		return nil, fmt.Errorf("resolve recording: %w", err)
	}
	return rec, nil
}

// stripCutlist losslessly rewrites the working file with the commercial
// segments removed. A recording without a pending cut list passes through
// untouched. Tool failure is fatal to the whole run.
func (w *Workflow) stripCutlist(ctx context.Context, rec *model.Recording, src string) error {
	if !rec.Cutlist {
		return nil
	}
	w.reporter.Report(ctx, model.StatusRunning, "Removing cut list.")

	tmp, err := os.CreateTemp(filepath.Dir(src), ".cut-*")
	if err != nil {
		w.reporter.Report(ctx, model.StatusErrored, "Removing cut list failed.")
		return fmt.Errorf("create cut output: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if _, err := w.runTool(ctx, tools.CutCommand(rec.Key(), tmpPath)); err != nil {
		w.removeFile(tmpPath)
		w.reporter.Report(ctx, model.StatusErrored, "Removing cut list failed.")
		return fmt.Errorf("cut tool: %w", err)
	}

	rec.Cutlist = false
	if err := w.store.UpdateRecording(ctx, rec); err != nil {
		w.removeFile(tmpPath)
		w.reporter.Report(ctx, model.StatusErrored, "Clearing cut list flag failed.")
		return fmt.Errorf("clear cutlist flag: %w", err)
	}
	if err := w.renameFile(tmpPath, src); err != nil {
		w.reporter.Report(ctx, model.StatusErrored, "Removing cut list failed.")
		return fmt.Errorf("replace working file: %w", err)
	}
	return nil
}

// transcode runs the encoder and finalizes the recording's metadata. The
// updated fields are persisted before the original file is deleted, so a
// crash in between leaves the old file on disk rather than orphaning the new
// one.
func (w *Workflow) transcode(ctx context.Context, rec *model.Recording, src, dst string) (*model.Recording, error) {
	w.reporter.Report(ctx, model.StatusRunning, fmt.Sprintf("Transcoding %s.", rec.Name()))

	encodeStart := w.now()
	if _, err := w.runTool(ctx, tools.EncodeCommand(src, dst, w.opts.Profile)); err != nil {
		w.reporter.Report(ctx, model.StatusErrored, "Transcoding failed.")
		return nil, fmt.Errorf("encoder: %w", err)
	}
	if w.metrics != nil {
		w.metrics.ObserveTranscodeDuration(w.now().Sub(encodeStart).Seconds())
	}
	w.reporter.Report(ctx, model.StatusRunning, "Encoder finished.")

	// re-read the recording; the first handle may have gone stale during a
	// multi-hour encode
	rec, err := w.store.Recording(ctx, rec.Key())
	if err != nil {
		w.reporter.Report(ctx, model.StatusErrored, "Reloading recording failed.")
		return nil, fmt.Errorf("reload recording: %w", err)
	}

	info, err := os.Stat(dst)
	if err != nil {
		w.reporter.Report(ctx, model.StatusErrored, "Transcode output missing.")
		return nil, fmt.Errorf("stat output: %w", err)
	}
	rec.Transcoded = true
	rec.FileSize = info.Size()
	rec.Basename = filepath.Base(dst)

	w.reporter.Report(ctx, model.StatusRunning, "Removing seek points.")
	if err := w.store.ClearSeek(ctx, rec.Key()); err != nil {
		w.reporter.Report(ctx, model.StatusErrored, "Removing seek points failed.")
		return nil, fmt.Errorf("clear seek: %w", err)
	}

	w.reporter.Report(ctx, model.StatusRunning, "Saving change to DB.")
	if err := w.store.UpdateRecording(ctx, rec); err != nil {
		w.reporter.Report(ctx, model.StatusErrored, "Saving change to DB failed.")
		return nil, fmt.Errorf("persist recording: %w", err)
	}

	w.deleteOriginal(src)
	return rec, nil
}

// deleteOriginal removes the replaced source file and its stale thumbnails.
// The metadata was already persisted; a failure here only leaks disk space.
func (w *Workflow) deleteOriginal(src string) {
	stale, _ := filepath.Glob(src + "*.png")
	for _, path := range append(stale, src) {
		if err := w.removeFile(path); err != nil {
			telemetry.Logger.Warn("Failed to remove original file", zap.String("path", path), zap.Error(err))
		}
	}
}

// createThumbnails regenerates the preview images for the new file.
// Best-effort: the transcode already committed.
func (w *Workflow) createThumbnails(ctx context.Context, dst string) {
	w.reporter.Report(ctx, model.StatusRunning, "Generating recording thumbnails.")
	for _, cmd := range tools.ThumbnailCommands(dst) {
		if _, err := w.runTool(ctx, cmd); err != nil {
			telemetry.Logger.Warn("Thumbnail generation failed", zap.Error(err))
			return
		}
	}
}

// flushCommSkip drops the commercial skip markers and the bookmark once the
// breaks are physically gone from the stream. Best-effort and flag-gated.
func (w *Workflow) flushCommSkip(ctx context.Context, rec *model.Recording) {
	if !w.opts.FlushCommSkip {
		return
	}
	w.reporter.Report(ctx, model.StatusRunning, "Flushing commercial skip data.")
	markers, err := w.store.Markup(ctx, rec.Key())
	if err != nil {
		telemetry.Logger.Warn("Reading markup failed", zap.Error(err))
		return
	}
	if err := w.store.ReplaceMarkup(ctx, rec.Key(), model.WithoutCommercials(markers)); err != nil {
		telemetry.Logger.Warn("Flushing markup failed", zap.Error(err))
		return
	}
	rec.Bookmark = 0
	if err := w.store.UpdateRecording(ctx, rec); err != nil {
		telemetry.Logger.Warn("Clearing bookmark failed", zap.Error(err))
	}
}

// rebuildSeekTable regenerates seek points for the new file. Best-effort and
// flag-gated.
func (w *Workflow) rebuildSeekTable(ctx context.Context, rec *model.Recording) {
	if !w.opts.BuildSeekTable {
		return
	}
	w.reporter.Report(ctx, model.StatusRunning, "Rebuilding seektable.")
	if _, err := w.runTool(ctx, tools.SeekRebuildCommand(rec.Key())); err != nil {
		telemetry.Logger.Warn("Seek table rebuild failed", zap.Error(err))
	}
}

func (w *Workflow) runTool(ctx context.Context, cmd tools.Command) (string, error) {
	out, err := w.runner.Run(ctx, cmd)
	if w.metrics != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		w.metrics.IncrementToolRunCounter(cmd.Tool, status)
	}
	return out, err
}
