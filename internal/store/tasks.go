package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrEmptyText = errors.New("text must not be empty")

func (s *Store) CreateTask(text string, quadrant Quadrant) (*Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if quadrant == "" {
		quadrant = QuadrantSchedule
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO tasks (text, quadrant, created_at) VALUES (?, ?, ?)`,
		text, string(quadrant), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	t := &Task{}
	var completed int
	var quadrant, createdAt string
	var breakdown sql.NullString
	err := s.db.QueryRow(
		`SELECT id, text, completed, quadrant, ai_breakdown, created_at FROM tasks WHERE id = ?`, id,
	).Scan(&t.ID, &t.Text, &completed, &quadrant, &breakdown, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	t.Completed = completed == 1
	t.Quadrant = Quadrant(quadrant)
	if breakdown.Valid {
		json.Unmarshal([]byte(breakdown.String), &t.Breakdown)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return t, nil
}

func (s *Store) ListTasks() ([]Task, error) {
	rows, err := s.db.Query(
		`SELECT id, text, completed, quadrant, ai_breakdown, created_at FROM tasks ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		var completed int
		var quadrant, createdAt string
		var breakdown sql.NullString
		if err := rows.Scan(&t.ID, &t.Text, &completed, &quadrant, &breakdown, &createdAt); err != nil {
			return nil, err
		}
		t.Completed = completed == 1
		t.Quadrant = Quadrant(quadrant)
		if breakdown.Valid {
			json.Unmarshal([]byte(breakdown.String), &t.Breakdown)
		}
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ToggleTask flips the completed flag in place and returns the updated task.
func (s *Store) ToggleTask(id int64) (*Task, error) {
	_, err := s.db.Exec(`UPDATE tasks SET completed = 1 - completed WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("toggle task %d: %w", id, err)
	}
	return s.GetTask(id)
}

// SetTaskBreakdown stores the AI-generated steps for a task.
func (s *Store) SetTaskBreakdown(id int64, steps []string) error {
	data, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	_, err = s.db.Exec(`UPDATE tasks SET ai_breakdown = ? WHERE id = ?`, string(data), id)
	return err
}

func (s *Store) DeleteTask(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	return err
}
