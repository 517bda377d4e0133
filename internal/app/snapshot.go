package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/evanschultz/stack/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "stack.snapshot.v1"

// Snapshot is a portable dump of every epic, story and task.
type Snapshot struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Epics      []SnapshotEpic  `json:"epics"`
	Stories    []SnapshotStory `json:"stories"`
	Tasks      []SnapshotTask  `json:"tasks"`
}

// SnapshotEpic represents snapshot epic data used by this package.
type SnapshotEpic struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// SnapshotStory represents snapshot story data used by this package.
type SnapshotStory struct {
	ID          int64           `json:"id"`
	EpicID      *int64          `json:"epic_id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      domain.Status   `json:"status"`
	Priority    domain.Priority `json:"priority"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SnapshotTask represents snapshot task data used by this package.
type SnapshotTask struct {
	ID        int64  `json:"id"`
	StoryID   int64  `json:"story_id"`
	Title     string `json:"title"`
	Done      bool   `json:"done"`
	SortOrder int    `json:"sort_order"`
}

// ImportResult counts the rows one import created.
type ImportResult struct {
	Epics   int `json:"epics"`
	Stories int `json:"stories"`
	Tasks   int `json:"tasks"`
}

// ExportSnapshot reads the whole database into a snapshot.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	epics, err := s.repo.ListEpics(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("export epics: %w", err)
	}
	stories, err := s.repo.ListStories(ctx, StoryFilter{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("export stories: %w", err)
	}

	snap := Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Epics:      make([]SnapshotEpic, 0, len(epics)),
		Stories:    make([]SnapshotStory, 0, len(stories)),
		Tasks:      make([]SnapshotTask, 0),
	}
	for _, epic := range epics {
		snap.Epics = append(snap.Epics, snapshotEpicFromDomain(epic))
	}
	for _, story := range stories {
		snap.Stories = append(snap.Stories, snapshotStoryFromDomain(story))
		tasks, listErr := s.repo.ListTasks(ctx, story.ID)
		if listErr != nil {
			return Snapshot{}, fmt.Errorf("export tasks of story %d: %w", story.ID, listErr)
		}
		for _, task := range tasks {
			snap.Tasks = append(snap.Tasks, snapshotTaskFromDomain(task))
		}
	}

	snap.sort()
	return snap, nil
}

// ImportSnapshot appends a snapshot to the database. Rows get fresh ids; epic
// and story references are remapped to them.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) (ImportResult, error) {
	if err := snap.Validate(); err != nil {
		return ImportResult{}, err
	}
	snap.sort()

	var out ImportResult
	epicIDs := make(map[int64]int64, len(snap.Epics))
	for _, e := range snap.Epics {
		epic, err := domain.NewEpic(e.Title, e.Description, e.Color)
		if err != nil {
			return out, fmt.Errorf("import epic %d: %w", e.ID, err)
		}
		id, err := s.repo.CreateEpic(ctx, epic)
		if err != nil {
			return out, fmt.Errorf("import epic %d: %w", e.ID, err)
		}
		epicIDs[e.ID] = id
		out.Epics++
	}

	storyIDs := make(map[int64]int64, len(snap.Stories))
	for _, st := range snap.Stories {
		story, err := st.toDomain(epicIDs, s.clock())
		if err != nil {
			return out, fmt.Errorf("import story %d: %w", st.ID, err)
		}
		id, err := s.repo.CreateStory(ctx, story)
		if err != nil {
			return out, fmt.Errorf("import story %d: %w", st.ID, err)
		}
		storyIDs[st.ID] = id
		out.Stories++
	}

	for _, t := range snap.Tasks {
		task, err := domain.NewTask(storyIDs[t.StoryID], t.Title)
		if err != nil {
			return out, fmt.Errorf("import task %d: %w", t.ID, err)
		}
		task.Done = t.Done
		if _, err := s.repo.CreateTask(ctx, task); err != nil {
			return out, fmt.Errorf("import task %d: %w", t.ID, err)
		}
		out.Tasks++
	}
	return out, nil
}

// Validate checks ids, references and enum values before anything is written.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}

	epicIDs := map[int64]struct{}{}
	for i, e := range s.Epics {
		if e.ID <= 0 {
			return fmt.Errorf("epics[%d].id must be positive", i)
		}
		if strings.TrimSpace(e.Title) == "" {
			return fmt.Errorf("epics[%d].title is required", i)
		}
		if _, err := domain.NewEpic(e.Title, e.Description, e.Color); err != nil {
			return fmt.Errorf("epics[%d]: %w", i, err)
		}
		if _, exists := epicIDs[e.ID]; exists {
			return fmt.Errorf("duplicate epic id: %d", e.ID)
		}
		epicIDs[e.ID] = struct{}{}
	}

	storyIDs := map[int64]struct{}{}
	for i, st := range s.Stories {
		if st.ID <= 0 {
			return fmt.Errorf("stories[%d].id must be positive", i)
		}
		if strings.TrimSpace(st.Title) == "" {
			return fmt.Errorf("stories[%d].title is required", i)
		}
		if !st.Status.Valid() {
			return fmt.Errorf("stories[%d] has invalid status %q", i, st.Status)
		}
		if !st.Priority.Valid() {
			return fmt.Errorf("stories[%d] has invalid priority %q", i, st.Priority)
		}
		if st.EpicID != nil {
			if _, ok := epicIDs[*st.EpicID]; !ok {
				return fmt.Errorf("stories[%d] references unknown epic_id %d", i, *st.EpicID)
			}
		}
		if _, exists := storyIDs[st.ID]; exists {
			return fmt.Errorf("duplicate story id: %d", st.ID)
		}
		storyIDs[st.ID] = struct{}{}
	}

	taskIDs := map[int64]struct{}{}
	for i, t := range s.Tasks {
		if t.ID <= 0 {
			return fmt.Errorf("tasks[%d].id must be positive", i)
		}
		if strings.TrimSpace(t.Title) == "" {
			return fmt.Errorf("tasks[%d].title is required", i)
		}
		if _, ok := storyIDs[t.StoryID]; !ok {
			return fmt.Errorf("tasks[%d] references unknown story_id %d", i, t.StoryID)
		}
		if _, exists := taskIDs[t.ID]; exists {
			return fmt.Errorf("duplicate task id: %d", t.ID)
		}
		taskIDs[t.ID] = struct{}{}
	}
	return nil
}

// sort orders rows so imports recreate ids and task order deterministically.
func (s *Snapshot) sort() {
	sort.Slice(s.Epics, func(i, j int) bool {
		return s.Epics[i].ID < s.Epics[j].ID
	})
	sort.Slice(s.Stories, func(i, j int) bool {
		return s.Stories[i].ID < s.Stories[j].ID
	})
	sort.Slice(s.Tasks, func(i, j int) bool {
		a := s.Tasks[i]
		b := s.Tasks[j]
		if a.StoryID == b.StoryID {
			if a.SortOrder == b.SortOrder {
				return a.ID < b.ID
			}
			return a.SortOrder < b.SortOrder
		}
		return a.StoryID < b.StoryID
	})
}

func snapshotEpicFromDomain(e domain.Epic) SnapshotEpic {
	return SnapshotEpic{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
}

func snapshotStoryFromDomain(s domain.Story) SnapshotStory {
	return SnapshotStory{
		ID:          s.ID,
		EpicID:      copyIDPtr(s.EpicID),
		Title:       s.Title,
		Description: s.Description,
		Status:      s.Status,
		Priority:    s.Priority,
		CreatedAt:   s.CreatedAt.UTC(),
		UpdatedAt:   s.UpdatedAt.UTC(),
	}
}

func snapshotTaskFromDomain(t domain.Task) SnapshotTask {
	return SnapshotTask{
		ID:        t.ID,
		StoryID:   t.StoryID,
		Title:     t.Title,
		Done:      t.Done,
		SortOrder: t.SortOrder,
	}
}

// toDomain rebuilds a story under remapped epic ids, keeping its timestamps.
func (s SnapshotStory) toDomain(epicIDs map[int64]int64, now time.Time) (domain.Story, error) {
	var epicID *int64
	if s.EpicID != nil {
		mapped := epicIDs[*s.EpicID]
		epicID = &mapped
	}
	created := s.CreatedAt
	if created.IsZero() {
		created = now.UTC()
	}
	story, err := domain.NewStory(domain.StoryInput{
		Title:       s.Title,
		Description: s.Description,
		EpicID:      epicID,
		Status:      s.Status,
		Priority:    s.Priority,
	}, created)
	if err != nil {
		return domain.Story{}, err
	}
	if !s.UpdatedAt.IsZero() {
		story.UpdatedAt = s.UpdatedAt
	}
	return story, nil
}

func copyIDPtr(in *int64) *int64 {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
