package repository

import (
	"dvrflow/internal/telemetry"

	"go.uber.org/zap"
)

// RetryOnce runs op and, when shouldRetry classifies its error as transient,
// runs reset and then op exactly once more. The second result is returned
// as-is: one reconnect, one retry, no loop.
func RetryOnce(op func() error, shouldRetry func(error) bool, reset func() error) error {
	err := op()
	if err == nil || !shouldRetry(err) {
		return err
	}
	telemetry.Logger.Warn("Transient store error, reconnecting once", zap.Error(err))
	if rerr := reset(); rerr != nil {
		telemetry.Logger.Error("Reconnect failed", zap.Error(rerr))
		return err
	}
	return op()
}
