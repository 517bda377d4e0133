package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/stack/internal/adapters/storage/sqlite"
	"github.com/evanschultz/stack/internal/app"
	"github.com/evanschultz/stack/internal/board"
	"github.com/evanschultz/stack/internal/domain"
)

func newTestService(t *testing.T) *app.Service {
	t.Helper()
	repo, err := sqlite.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return app.NewService(repo, func() time.Time { return now }, app.ServiceConfig{})
}

func seedStory(t *testing.T, svc *app.Service, title string, status domain.Status) domain.Story {
	t.Helper()
	story, err := svc.CreateStory(context.Background(), app.CreateStoryInput{Title: title, Status: status})
	if err != nil {
		t.Fatalf("CreateStory() error = %v", err)
	}
	return story
}

func TestModelLoadAndNavigation(t *testing.T) {
	svc := newTestService(t)
	seedStory(t, svc, "Ship", domain.StatusToDo)
	seedStory(t, svc, "Review", domain.StatusInReview)

	m := loadReadyModel(t, NewModel(svc, WithTickInterval(0)))
	if m.state.StoryCount() != 2 || len(m.state.Columns[0]) != 1 || len(m.state.Columns[2]) != 1 {
		t.Fatalf("unexpected loaded columns %#v", m.state.Columns)
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight})
	if m.state.SelectedColumn != 1 {
		t.Fatalf("expected selectedColumn=1, got %d", m.state.SelectedColumn)
	}
	m = applyMsg(t, m, keyRune('h'))
	if m.state.SelectedColumn != 0 {
		t.Fatalf("expected selectedColumn=0, got %d", m.state.SelectedColumn)
	}
	m = applyMsg(t, m, keyRune('L'))
	if m.state.SelectedColumn != 0 || len(m.state.Columns[1]) != 1 || m.state.Columns[1][0].Title != "Ship" {
		t.Fatalf("expected Ship moved to in progress with the cursor left on todo, got column %d %#v", m.state.SelectedColumn, m.state.Columns)
	}
}

func TestModelCreateStoryThroughKeys(t *testing.T) {
	svc := newTestService(t)
	m := loadReadyModel(t, NewModel(svc, WithTickInterval(0)))

	m = applyMsg(t, m, keyRune('n'))
	for _, r := range "Write docs" {
		m = applyMsg(t, m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	if m.state.InputBuffer != "Write docs" {
		t.Fatalf("unexpected input buffer %q", m.state.InputBuffer)
	}
	if !strings.Contains(m.render(), "Input (Enter to confirm, Esc to cancel)") {
		t.Fatal("expected input overlay in view")
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	stories, err := svc.ListStoriesByStatus(context.Background(), domain.StatusToDo, nil)
	if err != nil {
		t.Fatalf("ListStoriesByStatus() error = %v", err)
	}
	if len(stories) != 1 || stories[0].Title != "Write docs" || stories[0].Priority != domain.PriorityMedium {
		t.Fatalf("unexpected stored stories %#v", stories)
	}
	if !m.state.Mode.Is(board.ModeBoard) || len(m.state.Columns[0]) != 1 {
		t.Fatalf("expected board with new story, got %s", m.state.Mode)
	}
}

func TestModelDetailTasksAndHelp(t *testing.T) {
	svc := newTestService(t)
	story := seedStory(t, svc, "Story", domain.StatusToDo)
	m := loadReadyModel(t, NewModel(svc, WithTickInterval(0), WithMarkdownStyle("notty")))

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if !m.state.Mode.Is(board.ModeDetail) {
		t.Fatalf("expected detail mode, got %s", m.state.Mode)
	}
	m = applyMsg(t, m, keyRune('n'))
	for _, r := range "check" {
		m = applyMsg(t, m, keyRune(r))
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeySpace, Text: " "})

	tasks, err := svc.ListTasks(context.Background(), story.ID)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 || !tasks[0].Done {
		t.Fatalf("expected one done task, got %#v", tasks)
	}
	if view := m.render(); !strings.Contains(view, "Tasks (1/1)") || !strings.Contains(view, "[x] check") {
		t.Fatalf("expected task checklist in detail view, got %q", view)
	}

	m = applyMsg(t, m, keyRune('?'))
	if !m.help.ShowAll {
		t.Fatal("expected ? to expand help")
	}
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if !m.state.Mode.Is(board.ModeBoard) || m.state.CurrentStory != nil {
		t.Fatalf("expected board after esc, got %s", m.state.Mode)
	}
}

func TestModelQuitKey(t *testing.T) {
	m := NewModel(newTestService(t), WithTickInterval(0))
	updated, cmd := m.Update(keyRune('q'))
	if updated == nil {
		t.Fatal("expected model return value")
	}
	if cmd == nil {
		t.Fatal("expected quit cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
	if !updated.(Model).State().ShouldQuit {
		t.Fatal("expected quit flag in state")
	}
}

func TestModelViewStates(t *testing.T) {
	svc := newTestService(t)
	m := NewModel(svc, WithTickInterval(0))
	if v := m.View(); v.Content == nil || !v.AltScreen {
		t.Fatalf("expected loading alt-screen view, got %#v", v)
	}

	m = loadReadyModel(t, m)
	view := m.render()
	for _, want := range []string{"Stack", "All Epics", "To Do (0)", "In Progress (0)", "In Review (0)", "Done (0)", "No story selected"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in board view:\n%s", want, view)
		}
	}

	missing := int64(99)
	m.state.EpicFilter = &missing
	if !strings.Contains(m.render(), "Unknown") {
		t.Fatal("expected Unknown epic label for stale filter")
	}
}

func TestModelEpicListFilter(t *testing.T) {
	svc := newTestService(t)
	epic, err := svc.CreateEpic(context.Background(), app.CreateEpicInput{Title: "Launch", Color: "green"})
	if err != nil {
		t.Fatalf("CreateEpic() error = %v", err)
	}
	if _, err := svc.CreateStory(context.Background(), app.CreateStoryInput{Title: "in epic", EpicID: &epic.ID}); err != nil {
		t.Fatalf("CreateStory() error = %v", err)
	}
	seedStory(t, svc, "loose", domain.StatusToDo)

	m := loadReadyModel(t, NewModel(svc, WithTickInterval(0)))
	m = applyMsg(t, m, keyRune('e'))
	if !strings.Contains(m.render(), "Launch") {
		t.Fatal("expected epic row in epic list view")
	}
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.state.EpicFilter == nil || *m.state.EpicFilter != epic.ID || len(m.state.Columns[0]) != 1 {
		t.Fatalf("expected filtered board, got %v %#v", m.state.EpicFilter, m.state.Columns[0])
	}
	if !strings.Contains(m.render(), "Launch") {
		t.Fatal("expected epic title in header")
	}
}

func TestModelCopyStoryReportsOutcome(t *testing.T) {
	svc := newTestService(t)
	seedStory(t, svc, "Copy me", domain.StatusToDo)
	var copied string
	m := loadReadyModel(t, NewModel(svc, WithTickInterval(0), WithClipboard(func(text string) error {
		copied = text
		return nil
	})))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = applyMsg(t, m, keyRune('y'))
	if !strings.HasPrefix(copied, "# Copy me\n") {
		t.Fatalf("unexpected clipboard text %q", copied)
	}
	if m.state.StatusMessage != "Copied story to clipboard" {
		t.Fatalf("unexpected status %q", m.state.StatusMessage)
	}

	failing := loadReadyModel(t, NewModel(svc, WithTickInterval(0), WithClipboard(func(string) error {
		return errors.New("no display")
	})))
	failing = applyMsg(t, failing, tea.KeyPressMsg{Code: tea.KeyEnter})
	failing = applyMsg(t, failing, keyRune('y'))
	if failing.state.StatusMessage != "Copy failed: no display" {
		t.Fatalf("unexpected status %q", failing.state.StatusMessage)
	}
}

func TestModelEditorFinished(t *testing.T) {
	svc := newTestService(t)
	story := seedStory(t, svc, "Body", domain.StatusToDo)
	m := loadReadyModel(t, NewModel(svc, WithTickInterval(0)))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = applyMsg(t, m, editorFinishedMsg{storyID: story.ID, body: "## Notes\nupdated"})
	got, err := svc.GetStory(context.Background(), story.ID)
	if err != nil {
		t.Fatalf("GetStory() error = %v", err)
	}
	if got.Description != "## Notes\nupdated" || m.state.CurrentStory.Description != got.Description {
		t.Fatalf("expected body saved and snapshot refreshed, got %q", got.Description)
	}

	m = applyMsg(t, m, editorFinishedMsg{storyID: story.ID, body: "## Notes\nupdated"})
	if m.state.StatusMessage != "Description unchanged" {
		t.Fatalf("unexpected status %q", m.state.StatusMessage)
	}
	m = applyMsg(t, m, editorFinishedMsg{storyID: story.ID, err: errors.New("exit status 1")})
	if m.state.StatusMessage != "Editor error: exit status 1" {
		t.Fatalf("unexpected status %q", m.state.StatusMessage)
	}
	m = applyMsg(t, m, editorFinishedMsg{storyID: story.ID + 1, body: "other"})
	if !strings.Contains(m.state.StatusMessage, "closed") {
		t.Fatalf("expected stale editor result rejected, got %q", m.state.StatusMessage)
	}
}

func TestResolveEditor(t *testing.T) {
	env := map[string]string{"VISUAL": "", "EDITOR": "nano -w"}
	getenv := func(k string) string { return env[k] }

	if got := resolveEditor("code --wait", getenv); len(got) != 2 || got[0] != "code" || got[1] != "--wait" {
		t.Fatalf("expected configured editor first, got %#v", got)
	}
	if got := resolveEditor("", getenv); len(got) != 2 || got[0] != "nano" {
		t.Fatalf("expected $EDITOR fallback, got %#v", got)
	}
	env["VISUAL"] = "hx"
	if got := resolveEditor(" ", getenv); len(got) != 1 || got[0] != "hx" {
		t.Fatalf("expected $VISUAL before $EDITOR, got %#v", got)
	}
	if got := resolveEditor("", func(string) string { return "" }); len(got) != 1 || got[0] != "vim" {
		t.Fatalf("expected vim default, got %#v", got)
	}
}

func TestStoryClipboardText(t *testing.T) {
	story := domain.Story{Title: "T", Description: "body", Status: domain.StatusDone, Priority: domain.PriorityHigh}
	tasks := []domain.Task{{Title: "a", Done: true}, {Title: "b"}}
	got := storyClipboardText(story, tasks)
	want := "# T\n\nStatus: Done\nPriority: High\n\nbody\n\n## Tasks\n\n- [x] a\n- [ ] b\n"
	if got != want {
		t.Fatalf("storyClipboardText() = %q, want %q", got, want)
	}
}

func TestLayoutHelpers(t *testing.T) {
	if got := fitLines("a\nb\nc", 2); got != "a\n…" {
		t.Fatalf("fitLines() = %q", got)
	}
	if start, end := visibleWindow(10, 7, 3); start != 5 || end != 8 {
		t.Fatalf("visibleWindow() = %d,%d", start, end)
	}
	if start, end := visibleWindow(2, 1, 5); start != 0 || end != 2 {
		t.Fatalf("visibleWindow() short list = %d,%d", start, end)
	}
	r := newMarkdownRenderer("notty")
	if out := r.render("# Title\n\nhello", 10); !strings.Contains(out, "hello") || r.width != minMarkdownWrap {
		t.Fatalf("unexpected markdown render %q width %d", out, r.width)
	}
	if r.render("   ", 40) != "" {
		t.Fatal("expected blank markdown to render empty")
	}
}

func TestFooterFitsWideStatusMessage(t *testing.T) {
	m := loadReadyModel(t, NewModel(newTestService(t), WithTickInterval(0)))
	m = applyMsg(t, m, tea.WindowSizeMsg{Width: 20, Height: 40})
	m.state.StatusMessage = "Error: 保存できませんでした 🚫🚫🚫"

	status := strings.Split(m.renderFooter(), "\n")[0]
	if w := lipgloss.Width(status); w > 20 {
		t.Fatalf("expected status line within 20 cells, got %d: %q", w, status)
	}
	if !strings.Contains(status, "…") {
		t.Fatalf("expected truncated status line, got %q", status)
	}
}

func loadReadyModel(t *testing.T, m Model) Model {
	t.Helper()
	return applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 120, Height: 40})
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				if c != nil {
					out = applyCmd(t, out, c)
				}
			}
			return out
		}
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}
