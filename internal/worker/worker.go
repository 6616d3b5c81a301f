package worker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"dvrflow/internal/model"
	"dvrflow/internal/service"
	"dvrflow/internal/telemetry"
	"dvrflow/internal/tools"
	"dvrflow/internal/workflow"

	"go.uber.org/zap"
)

// TaskFunc runs one dequeued workflow job.
type TaskFunc func(ctx context.Context, job model.QueueJob) model.QueueJobResult

// WorkerService drains the redis job queue with a fixed-size pool. Each
// worker runs one workflow at a time; the pool size bounds how many encoder
// processes run concurrently on the host.
type WorkerService struct {
	*service.Services
	workers int
	task    TaskFunc
	opts    workflow.Options
	wg      sync.WaitGroup
}

// NewWorkerService builds a pool of the given size. A nil task runs the real
// transcode workflow; tests inject their own.
func NewWorkerService(svc *service.Services, workers int, opts workflow.Options, task TaskFunc) *WorkerService {
	w := &WorkerService{Services: svc, workers: workers, task: task, opts: opts}
	if w.task == nil {
		w.task = w.runWorkflow
	}
	return w
}

// Start spawns the pool and blocks until the context is cancelled and all
// workers have drained.
func (w *WorkerService) Start(ctx context.Context) error {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.runLoop(ctx, i)
	}
	w.wg.Wait()
	return nil
}

// Wait blocks until all workers have exited.
func (w *WorkerService) Wait() {
	w.wg.Wait()
}

func (w *WorkerService) runLoop(ctx context.Context, id int) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		jobStr, err := w.Services.Queue.DequeueJob(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			telemetry.Logger.Error("Failed to dequeue job", zap.Int("worker_id", id), zap.Error(err))
			continue
		}
		if jobStr == "" {
			// poll timed out with nothing queued
			continue
		}
		telemetry.Logger.Info("Dequeued job", zap.Int("worker_id", id))

		var job model.QueueJob
		if err := json.Unmarshal([]byte(jobStr), &job); err != nil {
			telemetry.Logger.Error("Discarding malformed job",
				zap.Int("worker_id", id), zap.String("job", jobStr), zap.Error(err))
			continue
		}

		result := w.task(ctx, job)
		telemetry.Logger.Info("Finished job",
			zap.Int("worker_id", id), zap.String("outcome", result.Outcome))

		w.pushResult(ctx, result)
	}
}

func (w *WorkerService) pushResult(ctx context.Context, result model.QueueJobResult) {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		telemetry.Logger.Error("Failed to marshal job result", zap.Error(err))
		return
	}
	if err := w.Services.Queue.EnqueueJobResult(ctx, string(resultBytes)); err != nil {
		telemetry.Logger.Error("Failed to push job result", zap.Error(err))
	}
}

// runWorkflow is the production task: one full transcode workflow per job.
func (w *WorkerService) runWorkflow(ctx context.Context, job model.QueueJob) model.QueueJobResult {
	ref, err := refFromQueueJob(job)
	if err != nil {
		return model.QueueJobResult{QueueJob: job, Outcome: workflow.Failed.String(), Detail: err.Error()}
	}

	wf := workflow.New(w.Services.Store, tools.ExecRunner{}, w.Services.Metrics, w.opts)
	outcome, err := wf.Run(ctx, ref)
	result := model.QueueJobResult{QueueJob: job, Outcome: outcome.String()}
	if err != nil {
		result.Detail = err.Error()
	}
	return result
}

func refFromQueueJob(job model.QueueJob) (workflow.Ref, error) {
	if job.JobID != 0 {
		return workflow.Ref{JobID: job.JobID}, nil
	}
	start, err := time.ParseInLocation(model.BackendTimeLayout, job.StartTime, time.UTC)
	if err != nil {
		return workflow.Ref{}, err
	}
	key := model.RecordingKey{ChanID: job.ChanID, StartTime: start}
	return workflow.Ref{Key: &key}, nil
}
