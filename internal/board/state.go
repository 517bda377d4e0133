package board

import "github.com/evanschultz/stack/internal/domain"

// ColumnCount is the number of status columns on the board.
const ColumnCount = 4

// State is the authoritative in-memory snapshot owned by the terminal loop.
// Only the Dispatcher mutates it.
type State struct {
	Mode           Mode
	SelectedColumn int
	SelectedCard   [ColumnCount]int
	ListSelection  int
	ScrollOffset   int
	SelectedTask   int
	EpicFilter     *int64

	Columns      [ColumnCount][]domain.Story
	Epics        []domain.Epic
	Tasks        []domain.Task
	CurrentStory *domain.Story

	InputBuffer   string
	StatusMessage string
	ShouldQuit    bool
}

// NewState returns the startup state: empty caches in Board mode.
func NewState() *State {
	return &State{Mode: BoardMode()}
}

// SelectedStory returns the highlighted card of the selected column.
func (s *State) SelectedStory() (domain.Story, bool) {
	if s.SelectedColumn < 0 || s.SelectedColumn >= ColumnCount {
		return domain.Story{}, false
	}
	col := s.Columns[s.SelectedColumn]
	idx := s.SelectedCard[s.SelectedColumn]
	if idx < 0 || idx >= len(col) {
		return domain.Story{}, false
	}
	return col[idx], true
}

// SelectedTaskItem returns the task under the Detail cursor.
func (s *State) SelectedTaskItem() (domain.Task, bool) {
	if s.SelectedTask < 0 || s.SelectedTask >= len(s.Tasks) {
		return domain.Task{}, false
	}
	return s.Tasks[s.SelectedTask], true
}

// SelectedEpic returns the epic under the EpicList cursor; row 0 is "All Epics".
func (s *State) SelectedEpic() (domain.Epic, bool) {
	idx := s.ListSelection - 1
	if idx < 0 || idx >= len(s.Epics) {
		return domain.Epic{}, false
	}
	return s.Epics[idx], true
}

// EpicByID looks id up in the cached epic list.
func (s *State) EpicByID(id int64) (domain.Epic, bool) {
	for _, e := range s.Epics {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Epic{}, false
}

// SelectedStatus returns the status of the selected column.
func (s *State) SelectedStatus() domain.Status {
	status, ok := domain.StatusAt(s.SelectedColumn)
	if !ok {
		return domain.StatusToDo
	}
	return status
}

// StoryCount returns the number of cached stories across all columns.
func (s *State) StoryCount() int {
	n := 0
	for _, col := range s.Columns {
		n += len(col)
	}
	return n
}

// clampSelections restores every selection index to its valid range.
func (s *State) clampSelections() {
	s.SelectedColumn = clamp(s.SelectedColumn, 0, ColumnCount-1)
	for i := range s.Columns {
		s.SelectedCard[i] = clamp(s.SelectedCard[i], 0, len(s.Columns[i])-1)
	}
	s.ListSelection = clamp(s.ListSelection, 0, len(s.Epics))
	s.SelectedTask = clamp(s.SelectedTask, 0, len(s.Tasks)-1)
	if s.ScrollOffset < 0 {
		s.ScrollOffset = 0
	}
}

// clamp bounds v to [lo, hi]; an empty range (hi < lo) yields lo.
func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
