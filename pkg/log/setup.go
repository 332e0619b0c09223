package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/doc-harvester/pkg/utils"
)

// nopCloser is returned when no log file was opened
type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewLogger creates a text logger writing to out at the given level.
// An unknown level falls back to info with a warning.
func NewLogger(out io.Writer, levelStr string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", levelStr, err)
	} else {
		log.SetLevel(level)
	}
	return log
}

// Setup creates the process logger: stdout always, plus logFile when non-empty.
// The returned Closer releases the log file and must be closed on exit.
func Setup(levelStr, logFile string) (*logrus.Logger, io.Closer, error) {
	if logFile == "" {
		return NewLogger(os.Stdout, levelStr), nopCloser{}, nil
	}

	if dir := filepath.Dir(logFile); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("%w: creating log directory '%s': %w", utils.ErrFilesystem, dir, err)
		}
	}
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening log file '%s': %w", utils.ErrFilesystem, logFile, err)
	}

	log := NewLogger(io.MultiWriter(os.Stdout, file), levelStr)
	return log, file, nil
}
