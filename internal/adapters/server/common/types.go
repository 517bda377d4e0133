package common

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound and related errors classify adapter failures for transports.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// EpicDTO is the wire shape of one epic.
type EpicDTO struct {
	ID          int64  `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Color       string `json:"color" yaml:"color"`
}

// StoryDTO is the wire shape of one story.
type StoryDTO struct {
	ID          int64     `json:"id" yaml:"id"`
	EpicID      *int64    `json:"epic_id,omitempty" yaml:"epic_id,omitempty"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Status      string    `json:"status" yaml:"status"`
	Priority    string    `json:"priority" yaml:"priority"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

// TaskDTO is the wire shape of one checklist item.
type TaskDTO struct {
	ID        int64  `json:"id" yaml:"id"`
	StoryID   int64  `json:"story_id" yaml:"story_id"`
	Title     string `json:"title" yaml:"title"`
	Done      bool   `json:"done" yaml:"done"`
	SortOrder int    `json:"sort_order" yaml:"sort_order"`
}

// StoryDetail bundles one story with its tasks.
type StoryDetail struct {
	Story     StoryDTO  `json:"story" yaml:"story"`
	Tasks     []TaskDTO `json:"tasks" yaml:"tasks"`
	TasksDone int       `json:"tasks_done" yaml:"tasks_done"`
}

// BoardColumnDTO holds the stories of one status column.
type BoardColumnDTO struct {
	Status  string     `json:"status" yaml:"status"`
	Label   string     `json:"label" yaml:"label"`
	Stories []StoryDTO `json:"stories" yaml:"stories"`
}

// BoardDTO is one full board read in column order.
type BoardDTO struct {
	EpicID  *int64           `json:"epic_id,omitempty" yaml:"epic_id,omitempty"`
	Columns []BoardColumnDTO `json:"columns" yaml:"columns"`
	Epics   []EpicDTO        `json:"epics" yaml:"epics"`
}

// CreateStoryRequest captures input for story creation from remote callers.
type CreateStoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	EpicID      *int64 `json:"epic_id,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// MoveStoryRequest captures a status change for one story.
type MoveStoryRequest struct {
	StoryID int64  `json:"story_id"`
	Status  string `json:"status"`
}

// CreateTaskRequest captures a new checklist item for one story.
type CreateTaskRequest struct {
	StoryID int64  `json:"story_id"`
	Title   string `json:"title"`
}

// BoardReader serves read-only board queries.
type BoardReader interface {
	Board(context.Context, *int64) (BoardDTO, error)
	ListEpics(context.Context) ([]EpicDTO, error)
	GetStory(context.Context, int64) (StoryDetail, error)
}

// BoardService extends BoardReader with the mutations exposed to agents.
type BoardService interface {
	BoardReader
	CreateStory(context.Context, CreateStoryRequest) (StoryDTO, error)
	MoveStory(context.Context, MoveStoryRequest) (StoryDTO, error)
	CreateTask(context.Context, CreateTaskRequest) (TaskDTO, error)
	ToggleTask(context.Context, int64) (TaskDTO, error)
}
