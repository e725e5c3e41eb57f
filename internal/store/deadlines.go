package store

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const dueDateLayout = "2006-01-02"

func (s *Store) CreateDeadline(title string, due time.Time, priority Priority) (*Deadline, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyText
	}
	if priority == "" {
		priority = PriorityMedium
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO deadlines (title, due_date, priority, created_at) VALUES (?, ?, ?, ?)`,
		title, due.Format(dueDateLayout), string(priority), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert deadline: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetDeadline(id)
}

func (s *Store) GetDeadline(id int64) (*Deadline, error) {
	d := &Deadline{}
	var due, priority, createdAt string
	err := s.db.QueryRow(
		`SELECT id, title, due_date, priority, created_at FROM deadlines WHERE id = ?`, id,
	).Scan(&d.ID, &d.Title, &due, &priority, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get deadline %d: %w", id, err)
	}
	d.DueDate, _ = time.Parse(dueDateLayout, due)
	d.Priority = Priority(priority)
	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return d, nil
}

// ListDeadlines returns deadlines in insertion order.
func (s *Store) ListDeadlines() ([]Deadline, error) {
	rows, err := s.db.Query(
		`SELECT id, title, due_date, priority, created_at FROM deadlines ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list deadlines: %w", err)
	}
	defer rows.Close()

	var deadlines []Deadline
	for rows.Next() {
		var d Deadline
		var due, priority, createdAt string
		if err := rows.Scan(&d.ID, &d.Title, &due, &priority, &createdAt); err != nil {
			return nil, err
		}
		d.DueDate, _ = time.Parse(dueDateLayout, due)
		d.Priority = Priority(priority)
		d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		deadlines = append(deadlines, d)
	}
	return deadlines, rows.Err()
}

// CompleteDeadline removes the deadline and returns the removed record so the
// completion event can carry it.
func (s *Store) CompleteDeadline(id int64) (*Deadline, error) {
	d, err := s.GetDeadline(id)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Exec(`DELETE FROM deadlines WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete deadline %d: %w", id, err)
	}
	return d, nil
}

// DaysUntil reports the whole days remaining until due, rounding up. A
// deadline due later today is 0, tomorrow is 1, yesterday is -1.
func DaysUntil(due, now time.Time) int {
	diff := due.Sub(now)
	days := int(diff.Hours() / 24)
	if diff > 0 && diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// UrgencyFor classifies a days-until-due count into a band.
func UrgencyFor(days int) Urgency {
	switch {
	case days < 0:
		return UrgencyOverdue
	case days == 0:
		return UrgencyCritical
	case days == 1:
		return UrgencyUrgent
	case days <= 7:
		return UrgencySoon
	default:
		return UrgencyNormal
	}
}

// SortByUrgency orders deadlines ascending by days until due. The sort is
// stable: ties keep their insertion order.
func SortByUrgency(deadlines []Deadline, now time.Time) {
	sort.SliceStable(deadlines, func(i, j int) bool {
		return DaysUntil(deadlines[i].DueDate, now) < DaysUntil(deadlines[j].DueDate, now)
	})
}
