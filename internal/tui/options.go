package tui

import (
	"strings"
	"time"

	"github.com/evanschultz/stack/internal/board"
)

// Option configures a Model.
type Option func(*Model)

// WithLogger routes dispatch and terminal-side diagnostics to logger.
func WithLogger(logger board.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithEditorCommand overrides $VISUAL/$EDITOR for external body editing.
func WithEditorCommand(command string) Option {
	return func(m *Model) {
		m.editorCommand = strings.TrimSpace(command)
	}
}

// WithTickInterval sets the redraw tick; zero or negative disables it.
func WithTickInterval(interval time.Duration) Option {
	return func(m *Model) {
		m.tickInterval = interval
	}
}

// WithMarkdownStyle selects the glamour standard style for story bodies.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		m.markdown = newMarkdownRenderer(style)
	}
}

// WithShowPreview toggles the description preview pane under the board.
func WithShowPreview(show bool) Option {
	return func(m *Model) {
		m.showPreview = show
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) {
		if write != nil {
			m.writeClipboard = write
		}
	}
}

// WithEnv replaces environment lookup used to resolve the editor.
func WithEnv(getenv func(string) string) Option {
	return func(m *Model) {
		if getenv != nil {
			m.getenv = getenv
		}
	}
}
