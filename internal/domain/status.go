package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Status is the board column a story lives in.
type Status string

// StatusToDo and related constants are the persisted status tokens, in chain order.
const (
	StatusToDo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusDone       Status = "done"
)

var orderedStatuses = []Status{StatusToDo, StatusInProgress, StatusInReview, StatusDone}

// Statuses returns every status in chain order.
func Statuses() []Status {
	return slices.Clone(orderedStatuses)
}

// StatusAt returns the status for one column index.
func StatusAt(index int) (Status, bool) {
	if index < 0 || index >= len(orderedStatuses) {
		return "", false
	}
	return orderedStatuses[index], true
}

// Index returns the position of s in the chain, or -1 when s is unknown.
func (s Status) Index() int {
	return slices.Index(orderedStatuses, s)
}

// Next returns the successor of s. Done has none.
func (s Status) Next() (Status, bool) {
	idx := s.Index()
	if idx < 0 {
		return "", false
	}
	return StatusAt(idx + 1)
}

// Prev returns the predecessor of s. ToDo has none.
func (s Status) Prev() (Status, bool) {
	idx := s.Index()
	if idx <= 0 {
		return "", false
	}
	return StatusAt(idx - 1)
}

// Label returns the human column title.
func (s Status) Label() string {
	switch s {
	case StatusToDo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusInReview:
		return "In Review"
	case StatusDone:
		return "Done"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the four chain values.
func (s Status) Valid() bool {
	return s.Index() >= 0
}

// ParseStatus parses user input strictly; labels and tokens are both accepted.
func ParseStatus(raw string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch norm {
	case "to_do":
		norm = string(StatusToDo)
	case "progress", "doing":
		norm = string(StatusInProgress)
	case "review":
		norm = string(StatusInReview)
	}
	s := Status(norm)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// DecodeStatus decodes a stored token, falling back to ToDo for unknown values.
func DecodeStatus(raw string) Status {
	s := Status(strings.TrimSpace(raw))
	if !s.Valid() {
		return StatusToDo
	}
	return s
}
