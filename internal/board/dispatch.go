// Package board holds the interaction state machine: the mode/selection
// model, the action reducer, and the refresh step that keeps cached lists
// and selection consistent with the store.
package board

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/evanschultz/stack/internal/app"
	"github.com/evanschultz/stack/internal/domain"
)

// Store is the subset of the application service the state machine drives.
type Store interface {
	ListEpics(context.Context) ([]domain.Epic, error)
	CreateEpic(context.Context, app.CreateEpicInput) (domain.Epic, error)
	DeleteEpic(context.Context, int64) error

	CreateStory(context.Context, app.CreateStoryInput) (domain.Story, error)
	ListStoriesByStatus(context.Context, domain.Status, *int64) ([]domain.Story, error)
	GetStory(context.Context, int64) (domain.Story, error)
	UpdateStoryTitle(context.Context, int64, string) error
	UpdateStoryDescription(context.Context, int64, string) error
	UpdateStoryStatus(context.Context, int64, domain.Status) error
	UpdateStoryPriority(context.Context, int64, domain.Priority) error
	DeleteStory(context.Context, int64) error

	CreateTask(context.Context, int64, string) (domain.Task, error)
	ListTasks(context.Context, int64) ([]domain.Task, error)
	ToggleTask(context.Context, int64) (domain.Task, error)
	DeleteTask(context.Context, int64) error
}

// Logger receives dispatch diagnostics.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Error(any, ...any) {}

// Dispatcher applies actions to a State against a Store.
type Dispatcher struct {
	store  Store
	logger Logger
}

// NewDispatcher constructs a dispatcher; a nil logger discards diagnostics.
func NewDispatcher(store Store, logger Logger) *Dispatcher {
	if logger == nil {
		logger = nopLogger{}
	}
	return &Dispatcher{store: store, logger: logger}
}

// Dispatch applies one action. Store failures are folded into
// s.StatusMessage; nothing is returned to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, s *State, a Action) {
	before := s.Mode
	s.StatusMessage = ""

	switch a.Kind {
	case ActionQuit:
		s.ShouldQuit = true
	case ActionNotice:
		s.StatusMessage = a.Text
	case ActionOpenEditor, ActionCopyStory:
		// Carried out by the terminal loop.
	default:
		switch s.Mode.Kind() {
		case ModeBoard:
			d.dispatchBoard(ctx, s, a)
		case ModeDetail:
			d.dispatchDetail(ctx, s, a)
		case ModeEpicList:
			d.dispatchEpicList(ctx, s, a)
		case ModeInput:
			d.dispatchInput(ctx, s, a)
		case ModeConfirm:
			d.dispatchConfirm(ctx, s, a)
		}
	}

	d.logger.Debug("action dispatched", "action", a.Kind, "mode_before", before, "mode_after", s.Mode)
}

// dispatchBoard handles column navigation and board-level actions.
func (d *Dispatcher) dispatchBoard(ctx context.Context, s *State, a Action) {
	col := s.SelectedColumn
	switch a.Kind {
	case ActionMoveLeft:
		if s.SelectedColumn > 0 {
			s.SelectedColumn--
		}
	case ActionMoveRight:
		if s.SelectedColumn < ColumnCount-1 {
			s.SelectedColumn++
		}
	case ActionMoveUp:
		if s.SelectedCard[col] > 0 {
			s.SelectedCard[col]--
		}
	case ActionMoveDown:
		if n := len(s.Columns[col]); n > 0 && s.SelectedCard[col] < n-1 {
			s.SelectedCard[col]++
		}
	case ActionMoveStoryLeft:
		d.moveStory(ctx, s, domain.Status.Prev)
	case ActionMoveStoryRight:
		d.moveStory(ctx, s, domain.Status.Next)
	case ActionOpenDetail:
		d.openDetail(ctx, s)
	case ActionNewStory:
		s.InputBuffer = ""
		s.Mode = InputMode(InputNewStory)
	case ActionDeleteStory:
		if _, ok := s.SelectedStory(); ok {
			s.Mode = ConfirmMode(ConfirmDeleteStory)
		}
	case ActionOpenEpicList:
		d.openEpicList(ctx, s)
	}
}

// moveStory shifts the selected story one step along the status chain.
// Stepping past either end of the chain is a no-op.
func (d *Dispatcher) moveStory(ctx context.Context, s *State, step func(domain.Status) (domain.Status, bool)) {
	story, ok := s.SelectedStory()
	if !ok {
		return
	}
	target, ok := step(story.Status)
	if !ok {
		return
	}
	if err := d.store.UpdateStoryStatus(ctx, story.ID, target); err != nil {
		if !errors.Is(err, app.ErrNotFound) {
			d.fail(s, "move story", err)
		}
		d.Refresh(ctx, s)
		return
	}
	d.Refresh(ctx, s)
}

// openDetail snapshots the selected story and loads its tasks.
func (d *Dispatcher) openDetail(ctx context.Context, s *State) {
	story, ok := s.SelectedStory()
	if !ok {
		return
	}
	s.CurrentStory = &story
	s.ScrollOffset = 0
	s.SelectedTask = 0
	s.Tasks = nil
	s.Mode = DetailMode()
	d.loadTasks(ctx, s)
	s.clampSelections()
}

// openEpicList reloads epics and positions the cursor on the active filter.
func (d *Dispatcher) openEpicList(ctx context.Context, s *State) {
	d.loadEpics(ctx, s)
	s.ListSelection = 0
	if s.EpicFilter != nil {
		for i, e := range s.Epics {
			if e.ID == *s.EpicFilter {
				s.ListSelection = i + 1
				break
			}
		}
	}
	s.Mode = EpicListMode()
}

// dispatchDetail handles the single-story view.
func (d *Dispatcher) dispatchDetail(ctx context.Context, s *State, a Action) {
	switch a.Kind {
	case ActionMoveUp:
		if s.ScrollOffset > 0 {
			s.ScrollOffset--
		}
	case ActionMoveDown:
		s.ScrollOffset++
	case ActionCloseView:
		d.closeDetail(ctx, s)
	case ActionEditStoryTitle:
		if s.CurrentStory != nil {
			s.InputBuffer = s.CurrentStory.Title
			s.Mode = InputMode(InputEditStoryTitle)
		}
	case ActionEditStoryBody:
		if s.CurrentStory != nil {
			s.InputBuffer = s.CurrentStory.Description
			s.Mode = InputMode(InputEditStoryBody)
		}
	case ActionSelectPrevTask:
		if s.SelectedTask > 0 {
			s.SelectedTask--
		}
	case ActionSelectNextTask:
		if s.SelectedTask < len(s.Tasks)-1 {
			s.SelectedTask++
		}
	case ActionNewTask:
		if s.CurrentStory != nil {
			s.InputBuffer = ""
			s.Mode = InputMode(InputNewTask)
		}
	case ActionToggleTask:
		task, ok := s.SelectedTaskItem()
		if !ok {
			return
		}
		if _, err := d.store.ToggleTask(ctx, task.ID); err != nil && !errors.Is(err, app.ErrNotFound) {
			d.fail(s, "toggle task", err)
		}
		d.Refresh(ctx, s)
	case ActionDeleteTask:
		task, ok := s.SelectedTaskItem()
		if !ok {
			return
		}
		if err := d.store.DeleteTask(ctx, task.ID); err != nil && !errors.Is(err, app.ErrNotFound) {
			d.fail(s, "delete task", err)
		}
		d.Refresh(ctx, s)
	case ActionCyclePriority:
		if s.CurrentStory == nil {
			return
		}
		next := s.CurrentStory.Priority.Cycle()
		d.updateCurrent(ctx, s, "cycle priority", func(id int64) error {
			return d.store.UpdateStoryPriority(ctx, id, next)
		})
	case ActionSetStoryBody:
		if s.CurrentStory == nil {
			return
		}
		d.updateCurrent(ctx, s, "set story body", func(id int64) error {
			return d.store.UpdateStoryDescription(ctx, id, a.Text)
		})
	}
}

// updateCurrent applies one story update to the open story, then re-fetches
// it. A vanished story drops the view back to the board.
func (d *Dispatcher) updateCurrent(ctx context.Context, s *State, op string, update func(int64) error) {
	if err := update(s.CurrentStory.ID); err != nil {
		if errors.Is(err, app.ErrNotFound) {
			d.closeDetail(ctx, s)
			return
		}
		d.fail(s, op, err)
		return
	}
	if d.reloadCurrent(ctx, s) {
		d.Refresh(ctx, s)
	}
}

// reloadCurrent re-fetches the open story snapshot.
func (d *Dispatcher) reloadCurrent(ctx context.Context, s *State) bool {
	story, err := d.store.GetStory(ctx, s.CurrentStory.ID)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			d.closeDetail(ctx, s)
			return false
		}
		d.fail(s, "reload story", err)
		return true
	}
	s.CurrentStory = &story
	return true
}

// closeDetail returns to the board and drops the Detail-only caches.
func (d *Dispatcher) closeDetail(ctx context.Context, s *State) {
	s.Mode = BoardMode()
	s.CurrentStory = nil
	s.Tasks = nil
	s.SelectedTask = 0
	s.ScrollOffset = 0
	d.Refresh(ctx, s)
}

// dispatchEpicList handles the epic filter picker.
func (d *Dispatcher) dispatchEpicList(ctx context.Context, s *State, a Action) {
	switch a.Kind {
	case ActionMoveUp:
		if s.ListSelection > 0 {
			s.ListSelection--
		}
	case ActionMoveDown:
		if s.ListSelection < len(s.Epics) {
			s.ListSelection++
		}
	case ActionInputConfirm:
		s.EpicFilter = nil
		if epic, ok := s.SelectedEpic(); ok {
			id := epic.ID
			s.EpicFilter = &id
		}
		s.Mode = BoardMode()
		d.Refresh(ctx, s)
	case ActionCloseView:
		s.Mode = BoardMode()
		d.Refresh(ctx, s)
	case ActionNewEpic:
		s.InputBuffer = ""
		s.Mode = InputMode(InputNewEpic)
	case ActionDeleteEpic:
		if _, ok := s.SelectedEpic(); ok {
			s.Mode = ConfirmMode(ConfirmDeleteEpic)
		}
	}
}

// dispatchInput handles text entry.
func (d *Dispatcher) dispatchInput(ctx context.Context, s *State, a Action) {
	target, _ := s.Mode.InputTarget()
	switch a.Kind {
	case ActionInputChar:
		s.InputBuffer += a.Text
	case ActionInputBackspace:
		if s.InputBuffer != "" {
			_, size := utf8.DecodeLastRuneInString(s.InputBuffer)
			s.InputBuffer = s.InputBuffer[:len(s.InputBuffer)-size]
		}
	case ActionInputCancel:
		s.InputBuffer = ""
		s.Mode = target.origin()
	case ActionInputConfirm:
		d.confirmInput(ctx, s, target)
	}
}

// confirmInput writes the buffer to its target. An empty buffer returns to
// the origin view without a store call; a failed write keeps the Input mode
// and its buffer.
func (d *Dispatcher) confirmInput(ctx context.Context, s *State, target InputTarget) {
	text := s.InputBuffer
	if strings.TrimSpace(text) == "" {
		s.InputBuffer = ""
		s.Mode = target.origin()
		return
	}

	switch target {
	case InputNewStory:
		_, err := d.store.CreateStory(ctx, app.CreateStoryInput{
			Title:    text,
			Status:   s.SelectedStatus(),
			EpicID:   cloneID(s.EpicFilter),
			Priority: domain.PriorityMedium,
		})
		if err != nil {
			d.fail(s, "create story", err)
			return
		}
		s.InputBuffer = ""
		s.Mode = BoardMode()
		d.Refresh(ctx, s)

	case InputEditStoryTitle, InputEditStoryBody:
		if s.CurrentStory == nil {
			s.InputBuffer = ""
			s.Mode = BoardMode()
			return
		}
		update := d.store.UpdateStoryTitle
		if target == InputEditStoryBody {
			update = d.store.UpdateStoryDescription
		}
		if err := update(ctx, s.CurrentStory.ID, text); err != nil {
			if errors.Is(err, app.ErrNotFound) {
				s.InputBuffer = ""
				d.closeDetail(ctx, s)
				return
			}
			d.fail(s, "update story", err)
			return
		}
		s.InputBuffer = ""
		s.Mode = DetailMode()
		if d.reloadCurrent(ctx, s) {
			d.Refresh(ctx, s)
		}

	case InputNewTask:
		if s.CurrentStory == nil {
			s.InputBuffer = ""
			s.Mode = BoardMode()
			return
		}
		task, err := d.store.CreateTask(ctx, s.CurrentStory.ID, text)
		if err != nil {
			if errors.Is(err, app.ErrNotFound) {
				s.InputBuffer = ""
				d.closeDetail(ctx, s)
				return
			}
			d.fail(s, "create task", err)
			return
		}
		s.InputBuffer = ""
		s.Mode = DetailMode()
		d.Refresh(ctx, s)
		for i, t := range s.Tasks {
			if t.ID == task.ID {
				s.SelectedTask = i
			}
		}

	case InputNewEpic:
		epic, err := d.store.CreateEpic(ctx, app.CreateEpicInput{Title: text})
		if err != nil {
			d.fail(s, "create epic", err)
			return
		}
		s.InputBuffer = ""
		s.Mode = EpicListMode()
		d.Refresh(ctx, s)
		for i, e := range s.Epics {
			if e.ID == epic.ID {
				s.ListSelection = i + 1
			}
		}
	}
}

// dispatchConfirm handles yes/no prompts.
func (d *Dispatcher) dispatchConfirm(ctx context.Context, s *State, a Action) {
	action, _ := s.Mode.ConfirmAction()
	switch a.Kind {
	case ActionConfirmNo:
		s.Mode = action.origin()
	case ActionConfirmYes:
		switch action {
		case ConfirmDeleteStory:
			story, ok := s.SelectedStory()
			if ok {
				if err := d.store.DeleteStory(ctx, story.ID); err != nil && !errors.Is(err, app.ErrNotFound) {
					d.fail(s, "delete story", err)
					return
				}
			}
		case ConfirmDeleteEpic:
			epic, ok := s.SelectedEpic()
			if ok {
				if err := d.store.DeleteEpic(ctx, epic.ID); err != nil && !errors.Is(err, app.ErrNotFound) {
					d.fail(s, "delete epic", err)
					return
				}
			}
		}
		s.Mode = action.origin()
		d.Refresh(ctx, s)
	}
}

// fail records a store failure in the status line.
func (d *Dispatcher) fail(s *State, op string, err error) {
	s.StatusMessage = "Error: " + err.Error()
	d.logger.Error("store operation failed", "op", op, "err", err)
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
