package board

import (
	"context"
	"fmt"

	"github.com/evanschultz/stack/internal/domain"
)

// Refresh reloads every status column, the epic list, and the open story's
// tasks, then re-clamps selection. A failed load keeps the previous cache
// for that list, records the failure in the status line, and does not stop
// the remaining loads.
func (d *Dispatcher) Refresh(ctx context.Context, s *State) {
	for i, status := range domain.Statuses() {
		stories, err := d.store.ListStoriesByStatus(ctx, status, s.EpicFilter)
		if err != nil {
			s.StatusMessage = fmt.Sprintf("Error loading %s: %v", status.Label(), err)
			d.logger.Error("refresh column failed", "status", status, "err", err)
			continue
		}
		s.Columns[i] = stories
	}
	d.loadEpics(ctx, s)
	if s.CurrentStory != nil {
		d.loadTasks(ctx, s)
	}
	s.clampSelections()
}

// loadEpics replaces the cached epic list.
func (d *Dispatcher) loadEpics(ctx context.Context, s *State) {
	epics, err := d.store.ListEpics(ctx)
	if err != nil {
		s.StatusMessage = fmt.Sprintf("Error loading epics: %v", err)
		d.logger.Error("refresh epics failed", "err", err)
		return
	}
	s.Epics = epics
}

// loadTasks replaces the cached tasks of the open story.
func (d *Dispatcher) loadTasks(ctx context.Context, s *State) {
	tasks, err := d.store.ListTasks(ctx, s.CurrentStory.ID)
	if err != nil {
		s.StatusMessage = fmt.Sprintf("Error loading tasks: %v", err)
		d.logger.Error("refresh tasks failed", "story_id", s.CurrentStory.ID, "err", err)
		return
	}
	s.Tasks = tasks
}
