package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/stack/internal/domain"
)

// defaultEditor is used when neither config nor environment names one.
const defaultEditor = "vim"

// editorFinishedMsg carries the edited story body or the failure that ended the editor session.
type editorFinishedMsg struct {
	storyID int64
	body    string
	err     error
}

// clipboardMsg reports the outcome of copying a story.
type clipboardMsg struct {
	err error
}

// resolveEditor returns the editor argv: configured command, $VISUAL, $EDITOR, then vim.
func resolveEditor(configured string, getenv func(string) string) []string {
	candidates := []string{configured}
	if getenv != nil {
		candidates = append(candidates, getenv("VISUAL"), getenv("EDITOR"))
	}
	for _, candidate := range candidates {
		if fields := strings.Fields(candidate); len(fields) > 0 {
			return fields
		}
	}
	return []string{defaultEditor}
}

// openEditor suspends the program and edits the open story body in an external editor.
// The temp file is removed on every exit path.
func (m Model) openEditor() tea.Cmd {
	story := m.state.CurrentStory
	if story == nil {
		return nil
	}
	storyID := story.ID

	tmp, err := os.CreateTemp("", "stack-story-*.md")
	if err != nil {
		return editorFailed(storyID, fmt.Errorf("create temp file: %w", err))
	}
	path := tmp.Name()
	if _, err := tmp.WriteString(story.Description); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return editorFailed(storyID, fmt.Errorf("write temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return editorFailed(storyID, fmt.Errorf("close temp file: %w", err))
	}

	argv := resolveEditor(m.editorCommand, m.getenv)
	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	m.logger.Debug("opening external editor", "editor", argv[0], "story_id", storyID)
	return tea.ExecProcess(cmd, func(runErr error) tea.Msg {
		defer func() { _ = os.Remove(path) }()
		if runErr != nil {
			return editorFinishedMsg{storyID: storyID, err: runErr}
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return editorFinishedMsg{storyID: storyID, err: readErr}
		}
		return editorFinishedMsg{storyID: storyID, body: strings.TrimRight(string(data), "\n")}
	})
}

// editorFailed reports a failure that happened before the editor could start.
func editorFailed(storyID int64, err error) tea.Cmd {
	return func() tea.Msg {
		return editorFinishedMsg{storyID: storyID, err: err}
	}
}

// copyStory writes a markdown rendition of the open story to the clipboard.
func (m Model) copyStory() tea.Cmd {
	story := m.state.CurrentStory
	if story == nil {
		return nil
	}
	text := storyClipboardText(*story, m.state.Tasks)
	write := m.writeClipboard
	return func() tea.Msg {
		return clipboardMsg{err: write(text)}
	}
}

// storyClipboardText renders a story and its checklist as markdown.
func storyClipboardText(story domain.Story, tasks []domain.Task) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", story.Title)
	fmt.Fprintf(&b, "Status: %s\nPriority: %s\n", story.Status.Label(), story.Priority.Label())
	if body := strings.TrimSpace(story.Description); body != "" {
		b.WriteString("\n" + body + "\n")
	}
	if len(tasks) > 0 {
		b.WriteString("\n## Tasks\n\n")
		for _, task := range tasks {
			mark := " "
			if task.Done {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, task.Title)
		}
	}
	return b.String()
}
