package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/stack/internal/app"
	"github.com/evanschultz/stack/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// Repository represents repository data used by this package.
type Repository struct {
	db *sql.DB
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db, true)
}

// OpenInMemory opens a private in-memory database, mainly for tests.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db, false)
}

// newRepository pins one connection so pragmas and in-memory data stay on it.
func newRepository(db *sql.DB, wal bool) (*Repository, error) {
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background(), wal); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context, wal bool) error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS epics (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL DEFAULT 'white'
		);`,
		`CREATE TABLE IF NOT EXISTS stories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			epic_id INTEGER REFERENCES epics(id) ON DELETE SET NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'todo',
			priority TEXT NOT NULL DEFAULT 'medium',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			story_id INTEGER NOT NULL REFERENCES stories(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			done INTEGER NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS idx_stories_status_epic ON stories(status, epic_id, id);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_story_order ON tasks(story_id, sort_order);`,
	}
	if wal {
		stmts = append([]string{`PRAGMA journal_mode = WAL;`}, stmts...)
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateEpic creates epic.
func (r *Repository) CreateEpic(ctx context.Context, e domain.Epic) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO epics(title, description, color)
		VALUES (?, ?, ?)
	`, e.Title, e.Description, e.Color)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetEpic returns epic.
func (r *Repository) GetEpic(ctx context.Context, id int64) (domain.Epic, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, title, description, color FROM epics WHERE id = ?`, id)
	return scanEpic(row)
}

// ListEpics lists epics.
func (r *Repository) ListEpics(ctx context.Context) ([]domain.Epic, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, description, color FROM epics ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Epic, 0)
	for rows.Next() {
		e, err := scanEpic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteEpic deletes epic; the foreign key nulls stories.epic_id.
func (r *Repository) DeleteEpic(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM epics WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// CreateStory creates story.
func (r *Repository) CreateStory(ctx context.Context, s domain.Story) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO stories(epic_id, title, description, status, priority, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, nullableID(s.EpicID), s.Title, s.Description, string(s.Status), string(s.Priority), ts(s.CreatedAt), ts(s.UpdatedAt))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateStory updates state for the requested operation.
func (r *Repository) UpdateStory(ctx context.Context, s domain.Story) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stories
		SET epic_id = ?, title = ?, description = ?, status = ?, priority = ?, updated_at = ?
		WHERE id = ?
	`, nullableID(s.EpicID), s.Title, s.Description, string(s.Status), string(s.Priority), ts(s.UpdatedAt), s.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetStory returns story.
func (r *Repository) GetStory(ctx context.Context, id int64) (domain.Story, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, epic_id, title, description, status, priority, created_at, updated_at
		FROM stories
		WHERE id = ?
	`, id)
	return scanStory(row)
}

// ListStories lists stories.
func (r *Repository) ListStories(ctx context.Context, filter app.StoryFilter) ([]domain.Story, error) {
	query := `
		SELECT id, epic_id, title, description, status, priority, created_at, updated_at
		FROM stories
	`
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, `status = ?`)
		args = append(args, string(filter.Status))
	}
	if filter.EpicID != nil {
		where = append(where, `epic_id = ?`)
		args = append(args, *filter.EpicID)
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Story, 0)
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteStory deletes story; tasks cascade.
func (r *Repository) DeleteStory(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// CreateTask appends a task at the end of its story's order.
func (r *Repository) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM stories WHERE id = ?`, t.StoryID).Scan(&exists); err != nil {
		return domain.Task{}, err
	}
	if exists == 0 {
		err = app.ErrNotFound
		return domain.Task{}, err
	}

	if err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(sort_order) + 1, 0) FROM tasks WHERE story_id = ?
	`, t.StoryID).Scan(&t.SortOrder); err != nil {
		return domain.Task{}, err
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO tasks(story_id, title, done, sort_order)
		VALUES (?, ?, ?, ?)
	`, t.StoryID, t.Title, boolInt(t.Done), t.SortOrder)
	if err != nil {
		return domain.Task{}, err
	}
	if t.ID, err = res.LastInsertId(); err != nil {
		return domain.Task{}, err
	}
	err = tx.Commit()
	return t, err
}

// UpdateTask updates state for the requested operation.
func (r *Repository) UpdateTask(ctx context.Context, t domain.Task) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, done = ?, sort_order = ? WHERE id = ?
	`, t.Title, boolInt(t.Done), t.SortOrder, t.ID)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// GetTask returns task.
func (r *Repository) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, story_id, title, done, sort_order FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// ListTasks lists tasks.
func (r *Repository) ListTasks(ctx context.Context, storyID int64) ([]domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, story_id, title, done, sort_order
		FROM tasks
		WHERE story_id = ?
		ORDER BY sort_order, id
	`, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTask deletes task.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanEpic handles scan epic.
func scanEpic(s scanner) (domain.Epic, error) {
	var e domain.Epic
	if err := s.Scan(&e.ID, &e.Title, &e.Description, &e.Color); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Epic{}, app.ErrNotFound
		}
		return domain.Epic{}, err
	}
	if strings.TrimSpace(e.Color) == "" {
		e.Color = domain.DefaultEpicColor
	}
	return e, nil
}

// scanStory handles scan story.
func scanStory(s scanner) (domain.Story, error) {
	var (
		story       domain.Story
		epicID      sql.NullInt64
		statusRaw   string
		priorityRaw string
		createdRaw  string
		updatedRaw  string
	)
	if err := s.Scan(
		&story.ID,
		&epicID,
		&story.Title,
		&story.Description,
		&statusRaw,
		&priorityRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Story{}, app.ErrNotFound
		}
		return domain.Story{}, err
	}
	if epicID.Valid {
		id := epicID.Int64
		story.EpicID = &id
	}
	story.Status = domain.DecodeStatus(statusRaw)
	story.Priority = domain.DecodePriority(priorityRaw)
	story.CreatedAt = parseTS(createdRaw)
	story.UpdatedAt = parseTS(updatedRaw)
	return story, nil
}

// scanTask handles scan task.
func scanTask(s scanner) (domain.Task, error) {
	var (
		t    domain.Task
		done int
	)
	if err := s.Scan(&t.ID, &t.StoryID, &t.Title, &done, &t.SortOrder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, app.ErrNotFound
		}
		return domain.Task{}, err
	}
	t.Done = done != 0
	return t, nil
}

// translateNoRows handles translate no rows.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// nullableID maps an optional reference to a nullable column value.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// ts handles ts.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTS parses input into a normalized form.
func parseTS(v string) time.Time {
	ts, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}
