package domain

import "strings"

// Task is one checklist item owned by a story.
type Task struct {
	ID        int64
	StoryID   int64
	Title     string
	Done      bool
	SortOrder int
}

// NewTask validates a new checklist item; the store assigns ID and SortOrder.
func NewTask(storyID int64, title string) (Task, error) {
	if storyID <= 0 {
		return Task{}, ErrInvalidID
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrInvalidTitle
	}
	return Task{StoryID: storyID, Title: title}, nil
}

// Toggle flips the done flag.
func (t *Task) Toggle() {
	t.Done = !t.Done
}

// CountDone returns how many tasks are done.
func CountDone(tasks []Task) int {
	done := 0
	for _, t := range tasks {
		if t.Done {
			done++
		}
	}
	return done
}
