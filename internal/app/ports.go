package app

import (
	"context"

	"github.com/evanschultz/stack/internal/domain"
)

// StoryFilter narrows story listings. Zero values match everything.
type StoryFilter struct {
	Status domain.Status
	EpicID *int64
}

// Repository represents repository data used by this package.
type Repository interface {
	CreateEpic(context.Context, domain.Epic) (int64, error)
	GetEpic(context.Context, int64) (domain.Epic, error)
	ListEpics(context.Context) ([]domain.Epic, error)
	DeleteEpic(context.Context, int64) error

	CreateStory(context.Context, domain.Story) (int64, error)
	UpdateStory(context.Context, domain.Story) error
	GetStory(context.Context, int64) (domain.Story, error)
	ListStories(context.Context, StoryFilter) ([]domain.Story, error)
	DeleteStory(context.Context, int64) error

	CreateTask(context.Context, domain.Task) (domain.Task, error)
	UpdateTask(context.Context, domain.Task) error
	GetTask(context.Context, int64) (domain.Task, error)
	ListTasks(context.Context, int64) ([]domain.Task, error)
	DeleteTask(context.Context, int64) error
}
