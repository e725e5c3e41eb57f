package store

import (
	"errors"
	"fmt"
	"time"
)

// maxSessionHistory caps the session list; older records are trimmed on append.
const maxSessionHistory = 20

var ErrBadDuration = errors.New("duration must be positive")

// RecordSession appends a completed session to the capped history and bumps
// the stats aggregate in the same call: counters go up, total minutes grows
// by the session's duration, nothing is ever recomputed from history.
func (s *Store) RecordSession(typ SessionType, minutes int) (*Session, *Stats, error) {
	if minutes <= 0 {
		return nil, nil, ErrBadDuration
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO sessions (type, duration, completed_at) VALUES (?, ?, ?)`,
		string(typ), minutes, now,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("insert session: %w", err)
	}
	id, _ := res.LastInsertId()

	// Trim history to the cap, oldest first.
	_, err = s.db.Exec(
		`DELETE FROM sessions WHERE id NOT IN (SELECT id FROM sessions ORDER BY id DESC LIMIT ?)`,
		maxSessionHistory,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("trim sessions: %w", err)
	}

	_, err = s.db.Exec(
		`UPDATE stats SET
			today_sessions = today_sessions + 1,
			week_sessions  = week_sessions + 1,
			total_minutes  = total_minutes + ?,
			current_streak = current_streak + 1
		 WHERE id = 1`,
		minutes,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("update stats: %w", err)
	}

	session := &Session{ID: id, Type: typ, Duration: minutes}
	session.CompletedAt, _ = time.Parse(time.RFC3339, now)
	stats, err := s.GetStats()
	if err != nil {
		return nil, nil, err
	}
	return session, stats, nil
}

// ListSessions returns the session history, newest first.
func (s *Store) ListSessions() ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT id, type, duration, completed_at FROM sessions ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var typ, completedAt string
		if err := rows.Scan(&sess.ID, &typ, &sess.Duration, &completedAt); err != nil {
			return nil, err
		}
		sess.Type = SessionType(typ)
		sess.CompletedAt, _ = time.Parse(time.RFC3339, completedAt)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *Store) GetStats() (*Stats, error) {
	st := &Stats{}
	err := s.db.QueryRow(
		`SELECT today_sessions, week_sessions, total_minutes, current_streak FROM stats WHERE id = 1`,
	).Scan(&st.TodaySessions, &st.WeekSessions, &st.TotalMinutes, &st.CurrentStreak)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return st, nil
}

// ResetStats zeroes the aggregate and clears the history. Explicit user
// action only; nothing else ever decrements the counters.
func (s *Store) ResetStats() error {
	if _, err := s.db.Exec(
		`UPDATE stats SET today_sessions = 0, week_sessions = 0, total_minutes = 0, current_streak = 0 WHERE id = 1`,
	); err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}
