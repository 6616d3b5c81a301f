package telemetry

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance
var Logger *zap.Logger

// level backs the --verbose/--debug flags; it can be raised after init.
var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func init() {
	config := zap.NewProductionConfig()
	config.Level = level
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	// DVRFLOW_LOG mirrors everything into a file, the way the encoder log
	// used to live under /var/log
	if path := os.Getenv("DVRFLOW_LOG"); path != "" {
		config.OutputPaths = append(config.OutputPaths, path)
	}

	var err error
	Logger, err = config.Build()
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
}

// SetLevel adjusts the global log level from a textual level name
// ("debug", "info", "warn", "error"). Unknown names are rejected.
func SetLevel(name string) error {
	parsed, err := zapcore.ParseLevel(name)
	if err != nil {
		return err
	}
	level.SetLevel(parsed)
	return nil
}

// EnableDebug drops the global level to debug output.
func EnableDebug() {
	level.SetLevel(zapcore.DebugLevel)
}
