// Package logging builds the per-run logger: human-readable console
// output plus a debug-level JSON file under ~/.storepilot/logs/, named
// after the run id so a failed run can be inspected afterwards.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures a run logger.
type Options struct {
	// RunID names the log file and is attached to every entry.
	RunID string

	// Verbose lowers the console threshold to debug. The file always
	// receives debug.
	Verbose bool

	// Dir overrides the log directory. Empty means the default under
	// the user's home.
	Dir string

	// Console overrides the console destination. Empty means stderr.
	Console io.Writer
}

// RunLog is a logger plus the file backing it.
type RunLog struct {
	Logger zerolog.Logger

	// Path of the log file, empty when file logging fell back to
	// console only.
	Path string

	file      *os.File
	closeOnce sync.Once
}

// Dir returns the default log directory.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".storepilot", "logs"), nil
}

// New creates the run logger. When the log file cannot be created the
// returned logger still works on the console alone and the error
// reports why; callers may treat that as a warning.
func New(opts Options) (*RunLog, error) {
	if opts.Console == nil {
		opts.Console = os.Stderr
	}

	consoleLevel := zerolog.InfoLevel
	if opts.Verbose {
		consoleLevel = zerolog.DebugLevel
	}
	console := &levelWriter{
		w:   zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.TimeOnly},
		min: consoleLevel,
	}

	run := &RunLog{}
	writers := []io.Writer{console}

	file, path, err := openLogFile(opts)
	if err == nil {
		run.file = file
		run.Path = path
		writers = append(writers, file)
	}

	run.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Str("run", opts.RunID).
		Logger()
	return run, err
}

// Close flushes and closes the log file. Safe to call multiple times.
func (r *RunLog) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.file != nil {
			err = r.file.Close()
		}
	})
	return err
}

func openLogFile(opts Options) (*os.File, string, error) {
	dir := opts.Dir
	if dir == "" {
		var err error
		dir, err = Dir()
		if err != nil {
			return nil, "", err
		}
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s-storepilot.log", opts.RunID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}
	return file, path, nil
}

// levelWriter drops entries below min. It lets the console stay quiet
// while the file writer behind the same logger captures debug.
type levelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (lw *levelWriter) Write(p []byte) (int, error) {
	return lw.w.Write(p)
}

func (lw *levelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lw.min {
		return len(p), nil
	}
	return lw.w.Write(p)
}
