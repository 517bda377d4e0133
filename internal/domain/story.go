package domain

import (
	"strings"
	"time"
)

type Story struct {
	ID          int64
	EpicID      *int64
	Title       string
	Description string
	Status      Status
	Priority    Priority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type StoryInput struct {
	Title       string
	Description string
	EpicID      *int64
	Status      Status
	Priority    Priority
}

func NewStory(in StoryInput, now time.Time) (Story, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return Story{}, ErrInvalidTitle
	}
	if in.Status == "" {
		in.Status = StatusToDo
	}
	if !in.Status.Valid() {
		return Story{}, ErrInvalidStatus
	}
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if !in.Priority.Valid() {
		return Story{}, ErrInvalidPriority
	}
	if in.EpicID != nil && *in.EpicID <= 0 {
		return Story{}, ErrInvalidID
	}

	return Story{
		EpicID:      cloneID(in.EpicID),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}, nil
}

func (s *Story) Rename(title string, now time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidTitle
	}
	s.Title = title
	s.UpdatedAt = now.UTC()
	return nil
}

func (s *Story) SetDescription(description string, now time.Time) {
	s.Description = description
	s.UpdatedAt = now.UTC()
}

func (s *Story) SetStatus(status Status, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	s.Status = status
	s.UpdatedAt = now.UTC()
	return nil
}

func (s *Story) SetPriority(priority Priority, now time.Time) error {
	if !priority.Valid() {
		return ErrInvalidPriority
	}
	s.Priority = priority
	s.UpdatedAt = now.UTC()
	return nil
}

func (s *Story) AssignEpic(epicID *int64, now time.Time) error {
	if epicID != nil && *epicID <= 0 {
		return ErrInvalidID
	}
	s.EpicID = cloneID(epicID)
	s.UpdatedAt = now.UTC()
	return nil
}

// InEpic reports whether the story references epicID.
func (s Story) InEpic(epicID int64) bool {
	return s.EpicID != nil && *s.EpicID == epicID
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
