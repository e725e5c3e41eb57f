package store

import (
	"database/sql"
	"fmt"
	"time"
)

// CreateReflection inserts a journal entry. Productivity is clamped to 1-10
// and the session-count / total-minutes snapshots are taken at insert time;
// they never change afterwards.
func (s *Store) CreateReflection(mood Mood, productivity int, wins, challenges, notes string) (*Reflection, error) {
	if mood == "" {
		mood = MoodNeutral
	}
	if productivity < 1 {
		productivity = 1
	}
	if productivity > 10 {
		productivity = 10
	}

	var sessionsAt int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&sessionsAt); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	var minutesAt int
	if err := s.db.QueryRow(`SELECT total_minutes FROM stats WHERE id = 1`).Scan(&minutesAt); err != nil {
		return nil, fmt.Errorf("read total minutes: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO reflections (mood, productivity, wins, challenges, notes, sessions_at, minutes_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(mood), productivity, wins, challenges, notes, sessionsAt, minutesAt, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert reflection: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetReflection(id)
}

func (s *Store) GetReflection(id int64) (*Reflection, error) {
	r := &Reflection{}
	var mood, createdAt string
	var summary sql.NullString
	err := s.db.QueryRow(
		`SELECT id, mood, productivity, wins, challenges, notes, sessions_at, minutes_at, ai_summary, created_at
		 FROM reflections WHERE id = ?`, id,
	).Scan(&r.ID, &mood, &r.Productivity, &r.Wins, &r.Challenges, &r.Notes, &r.SessionsAt, &r.MinutesAt, &summary, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get reflection %d: %w", id, err)
	}
	r.Mood = Mood(mood)
	if summary.Valid {
		r.AISummary = summary.String
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return r, nil
}

// ListReflections returns reflections newest first.
func (s *Store) ListReflections() ([]Reflection, error) {
	rows, err := s.db.Query(
		`SELECT id, mood, productivity, wins, challenges, notes, sessions_at, minutes_at, ai_summary, created_at
		 FROM reflections ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list reflections: %w", err)
	}
	defer rows.Close()

	var reflections []Reflection
	for rows.Next() {
		var r Reflection
		var mood, createdAt string
		var summary sql.NullString
		if err := rows.Scan(&r.ID, &mood, &r.Productivity, &r.Wins, &r.Challenges, &r.Notes, &r.SessionsAt, &r.MinutesAt, &summary, &createdAt); err != nil {
			return nil, err
		}
		r.Mood = Mood(mood)
		if summary.Valid {
			r.AISummary = summary.String
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		reflections = append(reflections, r)
	}
	return reflections, rows.Err()
}

// SetReflectionSummary stores the AI summary generated for a reflection.
func (s *Store) SetReflectionSummary(id int64, summary string) error {
	_, err := s.db.Exec(`UPDATE reflections SET ai_summary = ? WHERE id = ?`, summary, id)
	return err
}

func (s *Store) DeleteReflection(id int64) error {
	_, err := s.db.Exec(`DELETE FROM reflections WHERE id = ?`, id)
	return err
}
