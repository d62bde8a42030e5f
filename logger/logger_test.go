package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nPaBwaYT/aesfile/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		settings *config.LoggerSettings
		wantErr  bool
	}{
		{
			name:     "console logger",
			settings: &config.LoggerSettings{LogLevel: config.LogLevelInfo, LogFormat: config.LogFormatConsole},
		},
		{
			name: "file logger with rotation",
			settings: &config.LoggerSettings{
				LogLevel:   config.LogLevelDebug,
				LogFormat:  config.LogFormatJSON,
				FilePath:   filepath.Join(t.TempDir(), "aesfile.log"),
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
			},
		},
		{
			name:     "invalid log level",
			settings: &config.LoggerSettings{LogLevel: "invalid", LogFormat: config.LogFormatConsole},
			wantErr:  true,
		},
		{
			name:     "file logger missing rotation settings",
			settings: &config.LoggerSettings{LogLevel: config.LogLevelInfo, LogFormat: config.LogFormatJSON, FilePath: "/tmp/aesfile.log"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, log)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, log)

			if tt.settings.FilePath != "" {
				log.Info("test message")
				require.NoError(t, log.Sync())
				_, err := os.Stat(tt.settings.FilePath)
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&config.LoggerSettings{LogLevel: config.LogLevelInfo, LogFormat: config.LogFormatJSON}, &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("file encrypted", zap.String("input", "a.txt"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "file encrypted", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "a.txt", entry["input"])
}

func TestNewWithWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&config.LoggerSettings{LogLevel: config.LogLevelWarning, LogFormat: config.LogFormatConsole}, &buf)
	require.NoError(t, err)

	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "info message")
	assert.Contains(t, output, "WARN")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{config.LogLevelDebug, zapcore.DebugLevel},
		{config.LogLevelInfo, zapcore.InfoLevel},
		{config.LogLevelWarning, zapcore.WarnLevel},
		{config.LogLevelError, zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}
