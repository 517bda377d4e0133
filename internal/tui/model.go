package tui

import (
	"context"
	"os"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/evanschultz/stack/internal/board"
)

// defaultTickInterval drives periodic redraws between key presses.
const defaultTickInterval = time.Second

// nopLogger discards diagnostics when no logger is configured.
type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Error(any, ...any) {}

// Model is the bubbletea program around the board state machine. Every key
// press is mapped to an action and dispatched synchronously, so the store
// reads for one action finish before the next key is handled.
type Model struct {
	dispatcher *board.Dispatcher
	state      *board.State
	logger     board.Logger

	ready  bool
	width  int
	height int
	now    time.Time

	help help.Model
	keys keyMap

	markdown       *markdownRenderer
	showPreview    bool
	tickInterval   time.Duration
	editorCommand  string
	getenv         func(string) string
	writeClipboard func(string) error
}

// refreshMsg asks the loop to reload every cached list.
type refreshMsg struct{}

// tickMsg marks one redraw tick.
type tickMsg time.Time

// NewModel constructs a model driving store.
func NewModel(store board.Store, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		state:          board.NewState(),
		logger:         nopLogger{},
		help:           h,
		keys:           newKeyMap(),
		markdown:       newMarkdownRenderer("dark"),
		showPreview:    true,
		tickInterval:   defaultTickInterval,
		getenv:         os.Getenv,
		writeClipboard: clipboard.WriteAll,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	m.dispatcher = board.NewDispatcher(store, m.logger)
	return m
}

// State exposes the current state snapshot for callers that inspect the program after it exits.
func (m Model) State() board.State {
	return *m.state
}

// Init loads the board and starts the redraw tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(func() tea.Msg { return refreshMsg{} }, m.tick())
}

// tick schedules the next redraw tick.
func (m Model) tick() tea.Cmd {
	if m.tickInterval <= 0 {
		return nil
	}
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(max(0, msg.Width-2))
		return m, nil

	case refreshMsg:
		m.dispatcher.Refresh(context.Background(), m.state)
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, m.tick()

	case editorFinishedMsg:
		return m.handleEditorFinished(msg)

	case clipboardMsg:
		if msg.err != nil {
			m.logger.Error("clipboard copy failed", "err", msg.err)
			return m.dispatch(board.Notice("Copy failed: " + msg.err.Error()))
		}
		return m.dispatch(board.Notice("Copied story to clipboard"))

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	default:
		return m, nil
	}
}

// handleKey maps one key press through the keymap and dispatches the result.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if !m.state.Mode.Is(board.ModeInput) && key.Matches(msg, m.keys.toggleHelp) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	action, ok := m.keys.actionFor(m.state.Mode, msg)
	if !ok {
		return m, nil
	}
	switch action.Kind {
	case board.ActionOpenEditor:
		return m, m.openEditor()
	case board.ActionCopyStory:
		return m, m.copyStory()
	}
	return m.dispatch(action)
}

// dispatch applies one action and quits the program once the state asks for it.
func (m Model) dispatch(action board.Action) (tea.Model, tea.Cmd) {
	m.dispatcher.Dispatch(context.Background(), m.state, action)
	if m.state.ShouldQuit {
		return m, tea.Quit
	}
	return m, nil
}

// handleEditorFinished applies the edited body when the same story is still open.
func (m Model) handleEditorFinished(msg editorFinishedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("external editor failed", "story_id", msg.storyID, "err", msg.err)
		return m.dispatch(board.Notice("Editor error: " + msg.err.Error()))
	}
	current := m.state.CurrentStory
	if current == nil || current.ID != msg.storyID || !m.state.Mode.Is(board.ModeDetail) {
		return m.dispatch(board.Notice("Story closed before the editor finished"))
	}
	if current.Description == msg.body {
		return m.dispatch(board.Notice("Description unchanged"))
	}
	return m.dispatch(board.SetStoryBody(msg.body))
}
