// Package logger builds the zap logger used across aesfile.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nPaBwaYT/aesfile/config"
)

// New creates a logger from validated settings. Output goes to stderr, or to
// a size-rotated file when FilePath is set.
func New(s *config.LoggerSettings) (*zap.Logger, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var sink zapcore.WriteSyncer
	if s.FilePath != "" {
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   s.FilePath,
			MaxSize:    s.MaxSize,
			MaxBackups: s.MaxBackups,
			MaxAge:     s.MaxAge,
			Compress:   true,
		})
	} else {
		sink = zapcore.Lock(os.Stderr)
	}

	return build(s, sink), nil
}

// NewWithWriter is New with an explicit destination. The file settings are ignored.
func NewWithWriter(s *config.LoggerSettings, w io.Writer) (*zap.Logger, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return build(s, zapcore.AddSync(w)), nil
}

func build(s *config.LoggerSettings, sink zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if s.LogFormat == config.LogFormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, sink, parseLevel(s.LogLevel))
	return zap.New(core)
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case config.LogLevelDebug:
		return zapcore.DebugLevel
	case config.LogLevelInfo:
		return zapcore.InfoLevel
	case config.LogLevelWarning:
		return zapcore.WarnLevel
	case config.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
