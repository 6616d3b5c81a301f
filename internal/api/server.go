package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"dvrflow/internal/model"
	"dvrflow/internal/service"
	"dvrflow/internal/telemetry"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server accepts workflow job submissions and exposes metrics.
type Server struct {
	services *service.Services
	port     string
	server   *http.Server
}

// NewServer creates a new API server with the provided services
func NewServer(svc *service.Services) *Server {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &Server{
		services: svc,
		port:     port,
	}
}

// Start initializes routes and starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/submit", s.handleSubmitJob)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		telemetry.Logger.Info("Starting server", zap.String("port", s.port))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		telemetry.Logger.Info("Shutting down server gracefully")
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// handleSubmitJob enqueues one workflow job for the worker pool.
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	var job model.QueueJob

	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		telemetry.Logger.Error("User error: Failed to decode job from request", zap.Error(err))
		s.services.Metrics.IncrementServerRequestCounter("failed")
		http.Error(w, "Invalid job format", http.StatusBadRequest)
		return
	}

	// exactly one addressing mode: a queued job id, or a recording key
	byJob := job.JobID != 0
	byKey := job.ChanID != 0 && job.StartTime != ""
	if byJob == byKey {
		telemetry.Logger.Error("User error: Job must carry either a job id or a chanid/starttime pair")
		s.services.Metrics.IncrementServerRequestCounter("failed")
		http.Error(w, "Provide either job_id or chanid and starttime", http.StatusBadRequest)
		return
	}
	if byKey {
		if _, err := time.Parse(model.BackendTimeLayout, job.StartTime); err != nil {
			telemetry.Logger.Error("User error: Bad starttime encoding", zap.String("starttime", job.StartTime))
			s.services.Metrics.IncrementServerRequestCounter("failed")
			http.Error(w, "starttime must be encoded as "+model.BackendTimeLayout, http.StatusBadRequest)
			return
		}
	}

	jobBytes, err := json.Marshal(job)
	if err != nil {
		telemetry.Logger.Error("System error: Failed to marshal job into JSON string", zap.Error(err))
		s.services.Metrics.IncrementServerRequestCounter("failed")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.services.Queue.EnqueueJob(ctx, string(jobBytes)); err != nil {
		telemetry.Logger.Error("System error: Failed to enqueue job", zap.Error(err))
		s.services.Metrics.IncrementServerRequestCounter("failed")
		http.Error(w, "Failed to enqueue job", http.StatusInternalServerError)
		return
	}

	telemetry.Logger.Info("Job submitted successfully",
		zap.Int("job_id", job.JobID),
		zap.Int("chanid", job.ChanID),
		zap.String("starttime", job.StartTime),
	)

	s.services.Metrics.IncrementQueuePushCounter("job_pushed")
	s.services.Metrics.IncrementServerRequestCounter("success")
	w.WriteHeader(http.StatusAccepted)
}
