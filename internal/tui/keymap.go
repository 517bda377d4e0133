package tui

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/evanschultz/stack/internal/board"
)

// keyMap holds every binding, grouped by the mode that reads it.
type keyMap struct {
	quit       key.Binding
	toggleHelp key.Binding

	moveLeft       key.Binding
	moveRight      key.Binding
	moveUp         key.Binding
	moveDown       key.Binding
	moveStoryLeft  key.Binding
	moveStoryRight key.Binding
	openDetail     key.Binding
	newStory       key.Binding
	deleteStory    key.Binding
	epicList       key.Binding

	closeView    key.Binding
	scrollUp     key.Binding
	scrollDown   key.Binding
	editTitle    key.Binding
	editBody     key.Binding
	externalEdit key.Binding
	prevTask     key.Binding
	nextTask     key.Binding
	toggleTask   key.Binding
	addTask      key.Binding
	deleteTask   key.Binding
	priority     key.Binding
	copyStory    key.Binding
	detailQuit   key.Binding

	applyFilter key.Binding
	newEpic     key.Binding
	deleteEpic  key.Binding

	inputConfirm   key.Binding
	inputCancel    key.Binding
	inputBackspace key.Binding

	confirmYes key.Binding
	confirmNo  key.Binding
}

// newKeyMap constructs the default bindings.
func newKeyMap() keyMap {
	return keyMap{
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		toggleHelp: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),

		moveLeft:       key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "column left")),
		moveRight:      key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "column right")),
		moveUp:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		moveStoryLeft:  key.NewBinding(key.WithKeys("H", "shift+h"), key.WithHelp("H", "move story left")),
		moveStoryRight: key.NewBinding(key.WithKeys("L", "shift+l"), key.WithHelp("L", "move story right")),
		openDetail:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open story")),
		newStory:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new story")),
		deleteStory:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete story")),
		epicList:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "epics")),

		closeView:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		scrollUp:     key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "scroll up")),
		scrollDown:   key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "scroll down")),
		editTitle:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit title")),
		editBody:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "edit body")),
		externalEdit: key.NewBinding(key.WithKeys("E", "shift+e"), key.WithHelp("E", "edit in $EDITOR")),
		prevTask:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev task")),
		nextTask:     key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next task")),
		toggleTask:   key.NewBinding(key.WithKeys("space", " "), key.WithHelp("space", "toggle task")),
		addTask:      key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new task")),
		deleteTask:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete task")),
		priority:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "cycle priority")),
		copyStory:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy story")),
		detailQuit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),

		applyFilter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply filter")),
		newEpic:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new epic")),
		deleteEpic:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete epic")),

		inputConfirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		inputCancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		inputBackspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "delete char")),

		confirmYes: key.NewBinding(key.WithKeys("y", "Y", "shift+y"), key.WithHelp("y", "yes")),
		confirmNo:  key.NewBinding(key.WithKeys("n", "N", "shift+n", "esc"), key.WithHelp("n/esc", "no")),
	}
}

type binding struct {
	key    key.Binding
	action board.ActionKind
}

// table returns the ordered bindings consulted in mode. Earlier rows win.
func (k keyMap) table(mode board.Mode) []binding {
	switch mode.Kind() {
	case board.ModeBoard:
		return []binding{
			{k.quit, board.ActionQuit},
			{k.moveStoryLeft, board.ActionMoveStoryLeft},
			{k.moveStoryRight, board.ActionMoveStoryRight},
			{k.moveLeft, board.ActionMoveLeft},
			{k.moveRight, board.ActionMoveRight},
			{k.moveUp, board.ActionMoveUp},
			{k.moveDown, board.ActionMoveDown},
			{k.openDetail, board.ActionOpenDetail},
			{k.newStory, board.ActionNewStory},
			{k.deleteStory, board.ActionDeleteStory},
			{k.epicList, board.ActionOpenEpicList},
		}
	case board.ModeDetail:
		return []binding{
			{k.detailQuit, board.ActionQuit},
			{k.closeView, board.ActionCloseView},
			{k.scrollUp, board.ActionMoveUp},
			{k.scrollDown, board.ActionMoveDown},
			{k.externalEdit, board.ActionOpenEditor},
			{k.editTitle, board.ActionEditStoryTitle},
			{k.editBody, board.ActionEditStoryBody},
			{k.prevTask, board.ActionSelectPrevTask},
			{k.nextTask, board.ActionSelectNextTask},
			{k.toggleTask, board.ActionToggleTask},
			{k.addTask, board.ActionNewTask},
			{k.deleteTask, board.ActionDeleteTask},
			{k.priority, board.ActionCyclePriority},
			{k.copyStory, board.ActionCopyStory},
		}
	case board.ModeEpicList:
		return []binding{
			{k.quit, board.ActionQuit},
			{k.moveUp, board.ActionMoveUp},
			{k.moveDown, board.ActionMoveDown},
			{k.applyFilter, board.ActionInputConfirm},
			{k.closeView, board.ActionCloseView},
			{k.newEpic, board.ActionNewEpic},
			{k.deleteEpic, board.ActionDeleteEpic},
		}
	case board.ModeInput:
		return []binding{
			{k.inputConfirm, board.ActionInputConfirm},
			{k.inputCancel, board.ActionInputCancel},
			{k.inputBackspace, board.ActionInputBackspace},
		}
	case board.ModeConfirm:
		return []binding{
			{k.confirmYes, board.ActionConfirmYes},
			{k.confirmNo, board.ActionConfirmNo},
		}
	default:
		return nil
	}
}

// actionFor maps one key press to an action for mode. It reads no state
// beyond its arguments; unmapped keys report false.
func (k keyMap) actionFor(mode board.Mode, msg tea.KeyPressMsg) (board.Action, bool) {
	for _, b := range k.table(mode) {
		if key.Matches(msg, b.key) {
			return board.Do(b.action), true
		}
	}
	if mode.Is(board.ModeInput) && msg.Text != "" && (msg.Mod&(tea.ModCtrl|tea.ModAlt)) == 0 {
		return board.InputChar(msg.Text), true
	}
	return board.Action{}, false
}

// modeHelp adapts the bindings of one mode to help.KeyMap.
type modeHelp struct {
	keys keyMap
	mode board.Mode
}

// ShortHelp returns the compact help row for the mode.
func (h modeHelp) ShortHelp() []key.Binding {
	k := h.keys
	switch h.mode.Kind() {
	case board.ModeDetail:
		return []key.Binding{k.closeView, k.editTitle, k.externalEdit, k.toggleTask, k.addTask, k.priority, k.toggleHelp}
	case board.ModeEpicList:
		return []key.Binding{k.applyFilter, k.closeView, k.newEpic, k.deleteEpic, k.quit}
	case board.ModeInput:
		return []key.Binding{k.inputConfirm, k.inputCancel}
	case board.ModeConfirm:
		return []key.Binding{k.confirmYes, k.confirmNo}
	default:
		return []key.Binding{k.openDetail, k.newStory, k.moveStoryRight, k.epicList, k.toggleHelp, k.quit}
	}
}

// FullHelp returns the expanded help columns for the mode.
func (h modeHelp) FullHelp() [][]key.Binding {
	k := h.keys
	switch h.mode.Kind() {
	case board.ModeDetail:
		return [][]key.Binding{
			{k.closeView, k.scrollUp, k.scrollDown, k.detailQuit},
			{k.editTitle, k.editBody, k.externalEdit, k.priority, k.copyStory},
			{k.prevTask, k.nextTask, k.toggleTask, k.addTask, k.deleteTask},
			{k.toggleHelp},
		}
	case board.ModeEpicList:
		return [][]key.Binding{
			{k.moveUp, k.moveDown, k.applyFilter, k.closeView},
			{k.newEpic, k.deleteEpic, k.toggleHelp, k.quit},
		}
	case board.ModeInput, board.ModeConfirm:
		return [][]key.Binding{h.ShortHelp()}
	default:
		return [][]key.Binding{
			{k.moveLeft, k.moveRight, k.moveUp, k.moveDown},
			{k.moveStoryLeft, k.moveStoryRight, k.openDetail},
			{k.newStory, k.deleteStory, k.epicList, k.toggleHelp, k.quit},
		}
	}
}
