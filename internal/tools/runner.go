package tools

import (
	"context"
	"os/exec"

	"dvrflow/internal/telemetry"

	"go.uber.org/zap"
)

// Runner executes one external tool and blocks until it exits. There is
// deliberately no timeout: encoder runs are open-ended and the job scheduler
// outside this process decides when to give up on a hung tool.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	telemetry.Logger.Debug("Running external tool",
		zap.String("path", cmd.Path),
		zap.Strings("args", cmd.Args))
	out, err := exec.CommandContext(ctx, cmd.Path, cmd.Args...).CombinedOutput()
	if err != nil {
		telemetry.Logger.Debug("External tool failed",
			zap.String("path", cmd.Path),
			zap.ByteString("output", out),
			zap.Error(err))
		return string(out), err
	}
	return string(out), nil
}
