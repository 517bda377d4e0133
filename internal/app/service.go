package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evanschultz/stack/internal/domain"
)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	DefaultEpicColor string
}

// Clock returns the current time.
type Clock func() time.Time

// Service represents service data used by this package.
type Service struct {
	repo             Repository
	clock            Clock
	defaultEpicColor string
}

// NewService constructs a new value for this package.
func NewService(repo Repository, clock Clock, cfg ServiceConfig) *Service {
	if clock == nil {
		clock = time.Now
	}
	color := strings.TrimSpace(cfg.DefaultEpicColor)
	if color == "" {
		color = domain.DefaultEpicColor
	}
	return &Service{
		repo:             repo,
		clock:            clock,
		defaultEpicColor: color,
	}
}

// CreateEpicInput holds input values for create epic operations.
type CreateEpicInput struct {
	Title       string
	Description string
	Color       string
}

// CreateEpic creates epic.
func (s *Service) CreateEpic(ctx context.Context, in CreateEpicInput) (domain.Epic, error) {
	color := in.Color
	if strings.TrimSpace(color) == "" {
		color = s.defaultEpicColor
	}
	epic, err := domain.NewEpic(in.Title, in.Description, color)
	if err != nil {
		return domain.Epic{}, err
	}
	id, err := s.repo.CreateEpic(ctx, epic)
	if err != nil {
		return domain.Epic{}, err
	}
	epic.ID = id
	return epic, nil
}

// GetEpic returns epic.
func (s *Service) GetEpic(ctx context.Context, id int64) (domain.Epic, error) {
	return s.repo.GetEpic(ctx, id)
}

// ListEpics lists epics ordered by id.
func (s *Service) ListEpics(ctx context.Context) ([]domain.Epic, error) {
	return s.repo.ListEpics(ctx)
}

// DeleteEpic deletes one epic; its stories keep existing without an epic.
func (s *Service) DeleteEpic(ctx context.Context, id int64) error {
	return s.repo.DeleteEpic(ctx, id)
}

// CreateStoryInput holds input values for create story operations.
type CreateStoryInput struct {
	Title       string
	Description string
	EpicID      *int64
	Status      domain.Status
	Priority    domain.Priority
}

// CreateStory creates story.
func (s *Service) CreateStory(ctx context.Context, in CreateStoryInput) (domain.Story, error) {
	story, err := domain.NewStory(domain.StoryInput{
		Title:       in.Title,
		Description: in.Description,
		EpicID:      in.EpicID,
		Status:      in.Status,
		Priority:    in.Priority,
	}, s.clock())
	if err != nil {
		return domain.Story{}, err
	}
	id, err := s.repo.CreateStory(ctx, story)
	if err != nil {
		return domain.Story{}, err
	}
	story.ID = id
	return story, nil
}

// GetStory returns story.
func (s *Service) GetStory(ctx context.Context, id int64) (domain.Story, error) {
	return s.repo.GetStory(ctx, id)
}

// ListStoriesByStatus lists one board column, optionally restricted to an epic.
func (s *Service) ListStoriesByStatus(ctx context.Context, status domain.Status, epicID *int64) ([]domain.Story, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("list stories: %w", domain.ErrInvalidStatus)
	}
	return s.repo.ListStories(ctx, StoryFilter{Status: status, EpicID: epicID})
}

// ListStories lists stories matching filter.
func (s *Service) ListStories(ctx context.Context, filter StoryFilter) ([]domain.Story, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("list stories: %w", ErrInvalidFilter)
	}
	return s.repo.ListStories(ctx, filter)
}

// UpdateStoryTitle renames one story.
func (s *Service) UpdateStoryTitle(ctx context.Context, id int64, title string) error {
	return s.mutateStory(ctx, id, func(story *domain.Story, now time.Time) error {
		return story.Rename(title, now)
	})
}

// UpdateStoryDescription replaces one story body.
func (s *Service) UpdateStoryDescription(ctx context.Context, id int64, description string) error {
	return s.mutateStory(ctx, id, func(story *domain.Story, now time.Time) error {
		story.SetDescription(description, now)
		return nil
	})
}

// UpdateStoryStatus moves one story to another column.
func (s *Service) UpdateStoryStatus(ctx context.Context, id int64, status domain.Status) error {
	return s.mutateStory(ctx, id, func(story *domain.Story, now time.Time) error {
		return story.SetStatus(status, now)
	})
}

// UpdateStoryPriority updates priority.
func (s *Service) UpdateStoryPriority(ctx context.Context, id int64, priority domain.Priority) error {
	return s.mutateStory(ctx, id, func(story *domain.Story, now time.Time) error {
		return story.SetPriority(priority, now)
	})
}

// UpdateStoryEpic assigns or clears the epic reference of one story.
func (s *Service) UpdateStoryEpic(ctx context.Context, id int64, epicID *int64) error {
	return s.mutateStory(ctx, id, func(story *domain.Story, now time.Time) error {
		return story.AssignEpic(epicID, now)
	})
}

// DeleteStory deletes one story and its tasks.
func (s *Service) DeleteStory(ctx context.Context, id int64) error {
	return s.repo.DeleteStory(ctx, id)
}

// mutateStory loads, mutates, and persists one story.
func (s *Service) mutateStory(ctx context.Context, id int64, apply func(*domain.Story, time.Time) error) error {
	story, err := s.repo.GetStory(ctx, id)
	if err != nil {
		return err
	}
	if err := apply(&story, s.clock()); err != nil {
		return err
	}
	return s.repo.UpdateStory(ctx, story)
}

// CreateTask appends one task to a story.
func (s *Service) CreateTask(ctx context.Context, storyID int64, title string) (domain.Task, error) {
	task, err := domain.NewTask(storyID, title)
	if err != nil {
		return domain.Task{}, err
	}
	return s.repo.CreateTask(ctx, task)
}

// GetTask returns task.
func (s *Service) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	return s.repo.GetTask(ctx, id)
}

// ListTasks lists tasks of one story in sort order.
func (s *Service) ListTasks(ctx context.Context, storyID int64) ([]domain.Task, error) {
	return s.repo.ListTasks(ctx, storyID)
}

// ToggleTask flips the done flag of one task and returns the stored result.
func (s *Service) ToggleTask(ctx context.Context, id int64) (domain.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	task.Toggle()
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes task.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	return s.repo.DeleteTask(ctx, id)
}

// BoardColumn holds the stories of one status.
type BoardColumn struct {
	Status  domain.Status
	Stories []domain.Story
}

// BoardSnapshot is a full board read in column order.
type BoardSnapshot struct {
	EpicID  *int64
	Columns []BoardColumn
	Epics   []domain.Epic
}

// Board loads all four columns and the epic list.
func (s *Service) Board(ctx context.Context, epicID *int64) (BoardSnapshot, error) {
	out := BoardSnapshot{EpicID: epicID}
	for _, status := range domain.Statuses() {
		stories, err := s.repo.ListStories(ctx, StoryFilter{Status: status, EpicID: epicID})
		if err != nil {
			return BoardSnapshot{}, fmt.Errorf("load %s column: %w", status, err)
		}
		out.Columns = append(out.Columns, BoardColumn{Status: status, Stories: stories})
	}
	epics, err := s.repo.ListEpics(ctx)
	if err != nil {
		return BoardSnapshot{}, fmt.Errorf("load epics: %w", err)
	}
	out.Epics = epics
	return out, nil
}
