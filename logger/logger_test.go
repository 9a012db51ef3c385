package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomFormatter(t *testing.T) {
	formatter := &CustomFormatter{TimestampFormat: "15:04:05 MST 2006/01/02"}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "something looked off",
	}

	line, err := formatter.Format(entry)
	require.NoError(t, err)
	text := string(line)
	assert.True(t, strings.HasPrefix(text, "[10:30:00 UTC 2024/03/01] [WARN] ("))
	assert.True(t, strings.HasSuffix(text, ") something looked off\n"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, parseLogLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, parseLogLevel("WARN"))
	assert.Equal(t, logrus.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, logrus.ErrorLevel, parseLogLevel("error"))
	assert.Equal(t, logrus.InfoLevel, parseLogLevel("nonsense"))
}

func TestInitLoggerWritesFiles(t *testing.T) {
	dir := t.TempDir()
	infoPath := filepath.Join(dir, "logs", "info.log")
	errorPath := filepath.Join(dir, "logs", "error.log")

	require.NoError(t, InitLogger(LogConfig{
		InfoLogPath:  infoPath,
		ErrorLogPath: errorPath,
		LogLevel:     "debug",
	}))

	Infof("hello from %s", "test")
	Warnf("trouble %d", 42)

	info, err := os.ReadFile(infoPath)
	require.NoError(t, err)
	assert.Contains(t, string(info), "hello from test")
	assert.Contains(t, string(info), "trouble 42")

	// Warn entries are mirrored to the error log; info entries are not.
	errOut, err := os.ReadFile(errorPath)
	require.NoError(t, err)
	assert.Contains(t, string(errOut), "trouble 42")
	assert.NotContains(t, string(errOut), "hello from test")
}
