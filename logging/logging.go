// Package logging builds the zerolog logger shared by every component
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// MaxLogSize triggers rotation of an existing log file on open
const MaxLogSize = 10 * 1024 * 1024

// Options selects level and outputs
type Options struct {
	Level string
	// File is appended to; empty disables file output
	File string
	// Console receives human formatted output; nil disables it
	Console io.Writer
	// JSON writes raw JSON lines to the file instead of console format
	JSON bool
}

// ParseLevel maps a level name to a zerolog level; empty means info
func ParseLevel(s string) (zerolog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return zerolog.TraceLevel, nil
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "", "INFO":
		return zerolog.InfoLevel, nil
	case "WARN", "WARNING":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	case "OFF", "DISABLED":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// New returns the logger and a closer for the log file
// With no outputs configured the logger discards everything
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.RFC3339,
		})
	}

	if opts.File != "" {
		f, err := openLogFile(opts.File)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		closer = f
		if opts.JSON {
			writers = append(writers, f)
		} else {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        f,
				TimeFormat: time.RFC3339,
				NoColor:    true,
			})
		}
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()
	return logger, closer, nil
}

// openLogFile creates the directory and rotates an oversized file before appending
func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	if info, err := os.Stat(path); err == nil && info.Size() > MaxLogSize {
		ext := filepath.Ext(path)
		rotated := strings.TrimSuffix(path, ext) + "_" + time.Now().Format("20060102_150405") + ext
		if err := os.Rename(path, rotated); err != nil {
			return nil, fmt.Errorf("rotate log file: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
