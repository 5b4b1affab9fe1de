// Package logger provides opinionated logging capabilities for chatgate
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the log line encoding.
type Format string

const (
	// FormatConsole is colored, human readable output for terminals.
	FormatConsole Format = "console"

	// FormatJSON is one JSON object per line, for serverless log collectors.
	FormatJSON Format = "json"
)

// New builds a logger writing to stdout in the given format.
func New(debug bool, format Format) *zap.Logger {
	return NewTo(zapcore.AddSync(os.Stdout), debug, format)
}

// NewTo builds a logger writing to out. Interactive front ends use it to keep
// log lines off the screen they draw on.
func NewTo(out zapcore.WriteSyncer, debug bool, format Format) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	var encoder zapcore.Encoder
	switch format {
	case FormatJSON:
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, out, level)

	return zap.New(core, zap.AddCaller())
}

// ParseFormat maps a flag or config value to a Format, defaulting to console.
func ParseFormat(s string) Format {
	if Format(s) == FormatJSON {
		return FormatJSON
	}
	return FormatConsole
}
