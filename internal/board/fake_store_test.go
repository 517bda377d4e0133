package board

import (
	"context"
	"slices"
	"time"

	"github.com/evanschultz/stack/internal/app"
	"github.com/evanschultz/stack/internal/domain"
)

// fakeStore is an in-memory Store that counts calls and can inject failures.
type fakeStore struct {
	nextID  int64
	epics   []domain.Epic
	stories []domain.Story
	tasks   []domain.Task
	calls   map[string]int
	fail    map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{calls: map[string]int{}, fail: map[string]error{}}
}

func (f *fakeStore) record(op string) error {
	f.calls[op]++
	return f.fail[op]
}

// mutations counts calls that change store contents.
func (f *fakeStore) mutations() int {
	n := 0
	for _, op := range []string{
		"CreateEpic", "DeleteEpic", "CreateStory", "UpdateStoryTitle", "UpdateStoryDescription",
		"UpdateStoryStatus", "UpdateStoryPriority", "DeleteStory", "CreateTask", "ToggleTask", "DeleteTask",
	} {
		n += f.calls[op]
	}
	return n
}

func (f *fakeStore) addEpic(title string) domain.Epic {
	f.nextID++
	e := domain.Epic{ID: f.nextID, Title: title, Color: domain.DefaultEpicColor}
	f.epics = append(f.epics, e)
	return e
}

func (f *fakeStore) addStory(title string, status domain.Status, epicID *int64) domain.Story {
	f.nextID++
	s := domain.Story{
		ID:        f.nextID,
		EpicID:    cloneID(epicID),
		Title:     title,
		Status:    status,
		Priority:  domain.PriorityMedium,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.stories = append(f.stories, s)
	return s
}

func (f *fakeStore) addTask(storyID int64, title string) domain.Task {
	f.nextID++
	order := 0
	for _, t := range f.tasks {
		if t.StoryID == storyID && t.SortOrder >= order {
			order = t.SortOrder + 1
		}
	}
	t := domain.Task{ID: f.nextID, StoryID: storyID, Title: title, SortOrder: order}
	f.tasks = append(f.tasks, t)
	return t
}

func (f *fakeStore) storyIndex(id int64) int {
	return slices.IndexFunc(f.stories, func(s domain.Story) bool { return s.ID == id })
}

func (f *fakeStore) taskIndex(id int64) int {
	return slices.IndexFunc(f.tasks, func(t domain.Task) bool { return t.ID == id })
}

func (f *fakeStore) ListEpics(context.Context) ([]domain.Epic, error) {
	if err := f.record("ListEpics"); err != nil {
		return nil, err
	}
	return slices.Clone(f.epics), nil
}

func (f *fakeStore) CreateEpic(_ context.Context, in app.CreateEpicInput) (domain.Epic, error) {
	if err := f.record("CreateEpic"); err != nil {
		return domain.Epic{}, err
	}
	return f.addEpic(in.Title), nil
}

func (f *fakeStore) DeleteEpic(_ context.Context, id int64) error {
	if err := f.record("DeleteEpic"); err != nil {
		return err
	}
	idx := slices.IndexFunc(f.epics, func(e domain.Epic) bool { return e.ID == id })
	if idx < 0 {
		return app.ErrNotFound
	}
	f.epics = slices.Delete(f.epics, idx, idx+1)
	for i := range f.stories {
		if f.stories[i].InEpic(id) {
			f.stories[i].EpicID = nil
		}
	}
	return nil
}

func (f *fakeStore) CreateStory(_ context.Context, in app.CreateStoryInput) (domain.Story, error) {
	if err := f.record("CreateStory"); err != nil {
		return domain.Story{}, err
	}
	s := f.addStory(in.Title, in.Status, in.EpicID)
	f.stories[len(f.stories)-1].Priority = in.Priority
	s.Priority = in.Priority
	return s, nil
}

func (f *fakeStore) ListStoriesByStatus(_ context.Context, status domain.Status, epicID *int64) ([]domain.Story, error) {
	if err := f.record("ListStoriesByStatus:" + string(status)); err != nil {
		return nil, err
	}
	f.calls["ListStoriesByStatus"]++
	out := []domain.Story{}
	for _, s := range f.stories {
		if s.Status != status {
			continue
		}
		if epicID != nil && !s.InEpic(*epicID) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) GetStory(_ context.Context, id int64) (domain.Story, error) {
	if err := f.record("GetStory"); err != nil {
		return domain.Story{}, err
	}
	idx := f.storyIndex(id)
	if idx < 0 {
		return domain.Story{}, app.ErrNotFound
	}
	return f.stories[idx], nil
}

func (f *fakeStore) update(op string, id int64, apply func(*domain.Story)) error {
	if err := f.record(op); err != nil {
		return err
	}
	idx := f.storyIndex(id)
	if idx < 0 {
		return app.ErrNotFound
	}
	apply(&f.stories[idx])
	return nil
}

func (f *fakeStore) UpdateStoryTitle(_ context.Context, id int64, title string) error {
	return f.update("UpdateStoryTitle", id, func(s *domain.Story) { s.Title = title })
}

func (f *fakeStore) UpdateStoryDescription(_ context.Context, id int64, body string) error {
	return f.update("UpdateStoryDescription", id, func(s *domain.Story) { s.Description = body })
}

func (f *fakeStore) UpdateStoryStatus(_ context.Context, id int64, status domain.Status) error {
	return f.update("UpdateStoryStatus", id, func(s *domain.Story) { s.Status = status })
}

func (f *fakeStore) UpdateStoryPriority(_ context.Context, id int64, p domain.Priority) error {
	return f.update("UpdateStoryPriority", id, func(s *domain.Story) { s.Priority = p })
}

func (f *fakeStore) DeleteStory(_ context.Context, id int64) error {
	if err := f.record("DeleteStory"); err != nil {
		return err
	}
	idx := f.storyIndex(id)
	if idx < 0 {
		return app.ErrNotFound
	}
	f.stories = slices.Delete(f.stories, idx, idx+1)
	f.tasks = slices.DeleteFunc(f.tasks, func(t domain.Task) bool { return t.StoryID == id })
	return nil
}

func (f *fakeStore) CreateTask(_ context.Context, storyID int64, title string) (domain.Task, error) {
	if err := f.record("CreateTask"); err != nil {
		return domain.Task{}, err
	}
	if f.storyIndex(storyID) < 0 {
		return domain.Task{}, app.ErrNotFound
	}
	return f.addTask(storyID, title), nil
}

func (f *fakeStore) ListTasks(_ context.Context, storyID int64) ([]domain.Task, error) {
	if err := f.record("ListTasks"); err != nil {
		return nil, err
	}
	out := []domain.Task{}
	for _, t := range f.tasks {
		if t.StoryID == storyID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Task) int { return a.SortOrder - b.SortOrder })
	return out, nil
}

func (f *fakeStore) ToggleTask(_ context.Context, id int64) (domain.Task, error) {
	if err := f.record("ToggleTask"); err != nil {
		return domain.Task{}, err
	}
	idx := f.taskIndex(id)
	if idx < 0 {
		return domain.Task{}, app.ErrNotFound
	}
	f.tasks[idx].Toggle()
	return f.tasks[idx], nil
}

func (f *fakeStore) DeleteTask(_ context.Context, id int64) error {
	if err := f.record("DeleteTask"); err != nil {
		return err
	}
	idx := f.taskIndex(id)
	if idx < 0 {
		return app.ErrNotFound
	}
	f.tasks = slices.Delete(f.tasks, idx, idx+1)
	return nil
}
