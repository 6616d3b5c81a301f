package service

import (
	"dvrflow/internal/repository"
	"dvrflow/internal/repository/redis"
	"dvrflow/internal/telemetry"
)

// Services holds all application dependencies
type Services struct {
	Metrics telemetry.MetricsClient
	Store   repository.Store
	Queue   redis.Queue
}

// NewServices creates a new Services instance
func NewServices(metrics telemetry.MetricsClient, store repository.Store, queue redis.Queue) *Services {
	return &Services{
		Metrics: metrics,
		Store:   store,
		Queue:   queue,
	}
}
