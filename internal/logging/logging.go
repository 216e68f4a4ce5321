// Package logging wires the compiler's optional debug/info trace lines to
// zap, the structured logger used throughout the example corpus this
// compiler was grown from. Output is gated by the TOYC_DEBUG/TOYC_INFO
// environment variables per §6: a successful, non-verbose compile produces
// no stdout at all.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It is a no-op sink unless TOYC_DEBUG or
// TOYC_INFO is set in the environment, matching the CLI contract that a
// silent successful compile produces nothing on the standard stream.
var Logger *zap.SugaredLogger

func init() {
	Logger = New().Sugar()
}

// New builds a zap.Logger whose enabled level is derived from the
// TOYC_DEBUG/TOYC_INFO environment variables. Debug implies info.
func New() *zap.Logger {
	level := zapcore.Level(99) // disables all output by default
	switch {
	case os.Getenv("TOYC_DEBUG") != "":
		level = zapcore.DebugLevel
	case os.Getenv("TOYC_INFO") != "":
		level = zapcore.InfoLevel
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = ""
	cfg.CallerKey = ""
	cfg.LevelKey = "level"
	cfg.EncodeLevel = func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		switch l {
		case zapcore.DebugLevel:
			enc.AppendString("[DEBUG]")
		default:
			enc.AppendString("[INFO]")
		}
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.Lock(os.Stdout),
		level,
	)
	return zap.New(core)
}
