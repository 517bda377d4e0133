package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evanschultz/stack/internal/app"
	"github.com/evanschultz/stack/internal/domain"
)

// AppServiceAdapter maps app service results into transport DTOs.
type AppServiceAdapter struct {
	service *app.Service
}

// NewAppServiceAdapter constructs the shared adapter used by HTTP, MCP and the CLI.
func NewAppServiceAdapter(service *app.Service) *AppServiceAdapter {
	return &AppServiceAdapter{service: service}
}

// Board reads all four columns, optionally restricted to one epic.
func (a *AppServiceAdapter) Board(ctx context.Context, epicID *int64) (BoardDTO, error) {
	if a == nil || a.service == nil {
		return BoardDTO{}, fmt.Errorf("board: service is not configured")
	}
	if epicID != nil && *epicID <= 0 {
		return BoardDTO{}, fmt.Errorf("board: %w", errors.Join(ErrInvalidRequest, domain.ErrInvalidID))
	}
	snap, err := a.service.Board(ctx, epicID)
	if err != nil {
		return BoardDTO{}, mapAppError("board", err)
	}
	return BoardFromSnapshot(snap), nil
}

// ListEpics lists every epic ordered by id.
func (a *AppServiceAdapter) ListEpics(ctx context.Context) ([]EpicDTO, error) {
	if a == nil || a.service == nil {
		return nil, fmt.Errorf("list epics: service is not configured")
	}
	epics, err := a.service.ListEpics(ctx)
	if err != nil {
		return nil, mapAppError("list epics", err)
	}
	return EpicsFromDomain(epics), nil
}

// GetStory returns one story with its tasks.
func (a *AppServiceAdapter) GetStory(ctx context.Context, id int64) (StoryDetail, error) {
	if a == nil || a.service == nil {
		return StoryDetail{}, fmt.Errorf("get story: service is not configured")
	}
	if id <= 0 {
		return StoryDetail{}, fmt.Errorf("get story: %w", errors.Join(ErrInvalidRequest, domain.ErrInvalidID))
	}
	story, err := a.service.GetStory(ctx, id)
	if err != nil {
		return StoryDetail{}, mapAppError("get story", err)
	}
	tasks, err := a.service.ListTasks(ctx, id)
	if err != nil {
		return StoryDetail{}, mapAppError("list tasks", err)
	}
	return StoryDetail{
		Story:     StoryFromDomain(story),
		Tasks:     TasksFromDomain(tasks),
		TasksDone: domain.CountDone(tasks),
	}, nil
}

// CreateStory validates status and priority strictly before creating a story.
func (a *AppServiceAdapter) CreateStory(ctx context.Context, req CreateStoryRequest) (StoryDTO, error) {
	if a == nil || a.service == nil {
		return StoryDTO{}, fmt.Errorf("create story: service is not configured")
	}
	in := app.CreateStoryInput{
		Title:       req.Title,
		Description: req.Description,
		EpicID:      req.EpicID,
	}
	if strings.TrimSpace(req.Status) != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return StoryDTO{}, mapAppError("create story", err)
		}
		in.Status = status
	}
	if strings.TrimSpace(req.Priority) != "" {
		priority, err := domain.ParsePriority(req.Priority)
		if err != nil {
			return StoryDTO{}, mapAppError("create story", err)
		}
		in.Priority = priority
	}
	if in.EpicID != nil {
		if _, err := a.service.GetEpic(ctx, *in.EpicID); err != nil {
			return StoryDTO{}, mapAppError("create story", err)
		}
	}
	story, err := a.service.CreateStory(ctx, in)
	if err != nil {
		return StoryDTO{}, mapAppError("create story", err)
	}
	return StoryFromDomain(story), nil
}

// MoveStory sets the status of one story and returns the updated record.
func (a *AppServiceAdapter) MoveStory(ctx context.Context, req MoveStoryRequest) (StoryDTO, error) {
	if a == nil || a.service == nil {
		return StoryDTO{}, fmt.Errorf("move story: service is not configured")
	}
	if req.StoryID <= 0 {
		return StoryDTO{}, fmt.Errorf("move story: %w", errors.Join(ErrInvalidRequest, domain.ErrInvalidID))
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return StoryDTO{}, mapAppError("move story", err)
	}
	if err := a.service.UpdateStoryStatus(ctx, req.StoryID, status); err != nil {
		return StoryDTO{}, mapAppError("move story", err)
	}
	story, err := a.service.GetStory(ctx, req.StoryID)
	if err != nil {
		return StoryDTO{}, mapAppError("move story", err)
	}
	return StoryFromDomain(story), nil
}

// CreateTask appends one checklist item to a story.
func (a *AppServiceAdapter) CreateTask(ctx context.Context, req CreateTaskRequest) (TaskDTO, error) {
	if a == nil || a.service == nil {
		return TaskDTO{}, fmt.Errorf("create task: service is not configured")
	}
	if req.StoryID <= 0 {
		return TaskDTO{}, fmt.Errorf("create task: %w", errors.Join(ErrInvalidRequest, domain.ErrInvalidID))
	}
	if _, err := a.service.GetStory(ctx, req.StoryID); err != nil {
		return TaskDTO{}, mapAppError("create task", err)
	}
	task, err := a.service.CreateTask(ctx, req.StoryID, req.Title)
	if err != nil {
		return TaskDTO{}, mapAppError("create task", err)
	}
	return TaskFromDomain(task), nil
}

// ToggleTask flips the done flag of one task.
func (a *AppServiceAdapter) ToggleTask(ctx context.Context, id int64) (TaskDTO, error) {
	if a == nil || a.service == nil {
		return TaskDTO{}, fmt.Errorf("toggle task: service is not configured")
	}
	if id <= 0 {
		return TaskDTO{}, fmt.Errorf("toggle task: %w", errors.Join(ErrInvalidRequest, domain.ErrInvalidID))
	}
	task, err := a.service.ToggleTask(ctx, id)
	if err != nil {
		return TaskDTO{}, mapAppError("toggle task", err)
	}
	return TaskFromDomain(task), nil
}

// BoardFromSnapshot converts one app board snapshot.
func BoardFromSnapshot(snap app.BoardSnapshot) BoardDTO {
	out := BoardDTO{
		EpicID:  snap.EpicID,
		Columns: make([]BoardColumnDTO, 0, len(snap.Columns)),
		Epics:   EpicsFromDomain(snap.Epics),
	}
	for _, col := range snap.Columns {
		out.Columns = append(out.Columns, BoardColumnDTO{
			Status:  string(col.Status),
			Label:   col.Status.Label(),
			Stories: StoriesFromDomain(col.Stories),
		})
	}
	return out
}

// EpicFromDomain converts one epic.
func EpicFromDomain(e domain.Epic) EpicDTO {
	return EpicDTO{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
}

// EpicsFromDomain converts a list of epics, never returning nil.
func EpicsFromDomain(in []domain.Epic) []EpicDTO {
	out := make([]EpicDTO, 0, len(in))
	for _, e := range in {
		out = append(out, EpicFromDomain(e))
	}
	return out
}

// StoryFromDomain converts one story.
func StoryFromDomain(s domain.Story) StoryDTO {
	return StoryDTO{
		ID:          s.ID,
		EpicID:      s.EpicID,
		Title:       s.Title,
		Description: s.Description,
		Status:      string(s.Status),
		Priority:    string(s.Priority),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// StoriesFromDomain converts a list of stories, never returning nil.
func StoriesFromDomain(in []domain.Story) []StoryDTO {
	out := make([]StoryDTO, 0, len(in))
	for _, s := range in {
		out = append(out, StoryFromDomain(s))
	}
	return out
}

// TaskFromDomain converts one task.
func TaskFromDomain(t domain.Task) TaskDTO {
	return TaskDTO{
		ID:        t.ID,
		StoryID:   t.StoryID,
		Title:     t.Title,
		Done:      t.Done,
		SortOrder: t.SortOrder,
	}
}

// TasksFromDomain converts a list of tasks, never returning nil.
func TasksFromDomain(in []domain.Task) []TaskDTO {
	out := make([]TaskDTO, 0, len(in))
	for _, t := range in {
		out = append(out, TaskFromDomain(t))
	}
	return out
}

// mapAppError maps app/domain errors into transport-layer error sentinels.
func mapAppError(operation string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, app.ErrNotFound):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrNotFound, err))
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidColor),
		errors.Is(err, app.ErrInvalidFilter):
		return fmt.Errorf("%s: %w", operation, errors.Join(ErrInvalidRequest, err))
	default:
		return fmt.Errorf("%s: %w", operation, err)
	}
}
