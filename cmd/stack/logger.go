package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	charmLog "github.com/charmbracelet/log"
	"github.com/evanschultz/stack/internal/config"
	"github.com/google/uuid"
)

// defaultDevLogDir is used when logging.dev_file.dir is blank.
const defaultDevLogDir = ".stack/log"

// logSink is one charm logger plus whether it writes to the terminal.
type logSink struct {
	logger  *charmLog.Logger
	console bool
}

// runtimeLogger writes every event to the stderr console and, in dev mode, a daily logfmt file.
type runtimeLogger struct {
	sinks   []logSink
	muted   atomic.Bool
	file    *os.File
	devPath string
	runID   string
}

// newRuntimeLogger builds the sinks for one process run.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level, err := charmLog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if now == nil {
		now = time.Now
	}

	l := &runtimeLogger{runID: uuid.NewString()}
	l.sinks = append(l.sinks, logSink{
		logger:  newCharmLogger(stderr, level, appName, charmLog.TextFormatter),
		console: true,
	})
	if !devMode || !cfg.DevFile.Enabled {
		return l, nil
	}

	path, err := devLogFilePath(cfg.DevFile.Dir, appName, now().UTC())
	if err != nil {
		return nil, fmt.Errorf("resolve dev log file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}
	l.file = f
	l.devPath = path
	// One daily file collects many runs, so its lines carry the run id.
	l.sinks = append(l.sinks, logSink{
		logger: newCharmLogger(f, level, appName, charmLog.LogfmtFormatter).With("run_id", l.runID),
	})
	return l, nil
}

func newCharmLogger(w io.Writer, level charmLog.Level, prefix string, formatter charmLog.Formatter) *charmLog.Logger {
	return charmLog.NewWithOptions(w, charmLog.Options{
		Level:           level,
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       formatter,
	})
}

// RunID returns the id attached to this process's file log lines.
func (l *runtimeLogger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// DevLogPath returns the dev log file, or "" when file logging is off.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devPath
}

// Close releases the dev log file. Calling it twice is harmless.
func (l *runtimeLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	return f.Close()
}

// SetConsoleEnabled mutes or unmutes the stderr sink; the TUI mutes it while it owns the screen.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.muted.Store(!enabled)
}

func (l *runtimeLogger) Debug(msg any, keyvals ...any) { l.log(charmLog.DebugLevel, msg, keyvals) }
func (l *runtimeLogger) Info(msg any, keyvals ...any)  { l.log(charmLog.InfoLevel, msg, keyvals) }
func (l *runtimeLogger) Warn(msg any, keyvals ...any)  { l.log(charmLog.WarnLevel, msg, keyvals) }
func (l *runtimeLogger) Error(msg any, keyvals ...any) { l.log(charmLog.ErrorLevel, msg, keyvals) }

func (l *runtimeLogger) log(level charmLog.Level, msg any, keyvals []any) {
	if l == nil {
		return
	}
	muted := l.muted.Load()
	for _, sink := range l.sinks {
		if sink.console && muted {
			continue
		}
		sink.logger.Log(level, msg, keyvals...)
	}
}

// devLogFilePath places <stem>-YYYYMMDD.log under dir; relative dirs hang off the workspace root.
func devLogFilePath(dir, appName string, day time.Time) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultDevLogDir
	}
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve working dir: %w", err)
		}
		dir = filepath.Join(workspaceRootFrom(cwd), dir)
	}
	name := sanitizeLogFileStem(appName) + "-" + day.Format("20060102") + ".log"
	return filepath.Join(filepath.Clean(dir), name), nil
}

// workspaceRootFrom walks up from start to the nearest dir holding go.mod or .git.
// Without one it returns start.
func workspaceRootFrom(start string) string {
	start = filepath.Clean(strings.TrimSpace(start))
	for dir := start; ; dir = filepath.Dir(dir) {
		for _, marker := range []string{"go.mod", ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		if filepath.Dir(dir) == dir {
			return start
		}
	}
}

// sanitizeLogFileStem turns an app name into a file name segment.
func sanitizeLogFileStem(appName string) string {
	stem := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ', '\t':
			return '-'
		}
		return r
	}, strings.TrimSpace(appName))
	stem = strings.Trim(stem, "-")
	if stem == "" {
		return "stack"
	}
	return stem
}
