package domain

import (
	"errors"
	"testing"
	"time"
)

func TestStatusChain(t *testing.T) {
	s := StatusToDo
	for i := 0; i < 3; i++ {
		next, ok := s.Next()
		if !ok {
			t.Fatalf("Next(%q) returned no successor at step %d", s, i)
		}
		s = next
	}
	if s != StatusDone {
		t.Fatalf("expected next^3(todo) = done, got %q", s)
	}
	if _, ok := StatusDone.Next(); ok {
		t.Fatal("expected done to have no successor")
	}
	if _, ok := StatusToDo.Prev(); ok {
		t.Fatal("expected todo to have no predecessor")
	}
	if prev, ok := StatusInReview.Prev(); !ok || prev != StatusInProgress {
		t.Fatalf("expected in_review prev in_progress, got %q %t", prev, ok)
	}
	if _, ok := Status("bogus").Next(); ok {
		t.Fatal("expected unknown status to have no successor")
	}
}

func TestStatusCodec(t *testing.T) {
	cases := []struct {
		raw  string
		want Status
	}{
		{raw: "todo", want: StatusToDo},
		{raw: "To Do", want: StatusToDo},
		{raw: "in-progress", want: StatusInProgress},
		{raw: "review", want: StatusInReview},
		{raw: " DONE ", want: StatusDone},
	}
	for _, tc := range cases {
		got, err := ParseStatus(tc.raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q) error = %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
	if _, err := ParseStatus("blocked"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if got := DecodeStatus("archived"); got != StatusToDo {
		t.Fatalf("expected unknown stored status to decode to todo, got %q", got)
	}
	if StatusInReview.Label() != "In Review" || StatusInReview.Index() != 2 {
		t.Fatalf("unexpected in_review label/index %q %d", StatusInReview.Label(), StatusInReview.Index())
	}
}

func TestPriorityCodec(t *testing.T) {
	if got := DecodePriority("urgent"); got != PriorityLow {
		t.Fatalf("expected unknown stored priority to decode to low, got %q", got)
	}
	if _, err := ParsePriority("urgent"); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
	if got, err := ParsePriority(" High "); err != nil || got != PriorityHigh {
		t.Fatalf("ParsePriority(High) = %q, %v", got, err)
	}
	if PriorityCritical.Cycle() != PriorityLow {
		t.Fatalf("expected critical to wrap to low, got %q", PriorityCritical.Cycle())
	}
	if PriorityMedium.Initial() != "M" {
		t.Fatalf("unexpected initial %q", PriorityMedium.Initial())
	}
	if !(PriorityLow.Index() < PriorityMedium.Index() && PriorityHigh.Index() < PriorityCritical.Index()) {
		t.Fatal("expected priorities ordered low < medium < high < critical")
	}
}

func TestNewStoryDefaultsAndValidation(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("x", 3600))
	epicID := int64(4)
	s, err := NewStory(StoryInput{Title: "  Write spec  ", EpicID: &epicID}, now)
	if err != nil {
		t.Fatalf("NewStory() error = %v", err)
	}
	if s.Title != "Write spec" || s.Status != StatusToDo || s.Priority != PriorityMedium {
		t.Fatalf("unexpected story defaults %#v", s)
	}
	if s.CreatedAt.Location() != time.UTC || !s.CreatedAt.Equal(now) {
		t.Fatalf("expected UTC created_at, got %v", s.CreatedAt)
	}
	epicID = 99
	if !s.InEpic(4) {
		t.Fatal("expected story epic id to be copied, not aliased")
	}

	if _, err := NewStory(StoryInput{Title: "  "}, now); err != ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}
	if _, err := NewStory(StoryInput{Title: "x", Status: "nope"}, now); err != ErrInvalidStatus {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	zero := int64(0)
	if _, err := NewStory(StoryInput{Title: "x", EpicID: &zero}, now); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestStoryMutators(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s, _ := NewStory(StoryInput{Title: "a"}, now)
	later := now.Add(time.Hour)
	if err := s.Rename("b", later); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}
	if err := s.SetStatus(StatusDone, later); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if err := s.SetPriority("nope", later); err != ErrInvalidPriority {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
	if err := s.AssignEpic(nil, later); err != nil {
		t.Fatalf("AssignEpic(nil) error = %v", err)
	}
	s.SetDescription("# body", later)
	if s.Title != "b" || s.Status != StatusDone || s.Description != "# body" || !s.UpdatedAt.Equal(later) {
		t.Fatalf("unexpected story after mutation %#v", s)
	}
}

func TestNewEpicAndTask(t *testing.T) {
	e, err := NewEpic(" Launch ", "", "")
	if err != nil {
		t.Fatalf("NewEpic() error = %v", err)
	}
	if e.Color != DefaultEpicColor || e.Title != "Launch" {
		t.Fatalf("unexpected epic %#v", e)
	}
	if _, err := NewEpic("x", "", "dark red"); err != ErrInvalidColor {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}

	task, err := NewTask(3, " ship it ")
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	task.Toggle()
	if !task.Done || task.Title != "ship it" {
		t.Fatalf("unexpected task %#v", task)
	}
	if _, err := NewTask(0, "x"); err != ErrInvalidID {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if CountDone([]Task{{Done: true}, {}, {Done: true}}) != 2 {
		t.Fatal("expected 2 done tasks")
	}
}
