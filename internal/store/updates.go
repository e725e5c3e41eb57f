package store

import (
	"fmt"
	"time"
)

// maxFeedUpdates caps the AI update feed; older entries are trimmed on append.
const maxFeedUpdates = 10

// AppendUpdate adds an entry to the AI update feed and trims it to the cap.
func (s *Store) AppendUpdate(content string, kind UpdateKind, urgency Urgency) (*Update, error) {
	if content == "" {
		return nil, ErrEmptyText
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO ai_updates (content, kind, urgency, created_at) VALUES (?, ?, ?, ?)`,
		content, string(kind), string(urgency), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert update: %w", err)
	}
	id, _ := res.LastInsertId()

	_, err = s.db.Exec(
		`DELETE FROM ai_updates WHERE id NOT IN (SELECT id FROM ai_updates ORDER BY id DESC LIMIT ?)`,
		maxFeedUpdates,
	)
	if err != nil {
		return nil, fmt.Errorf("trim updates: %w", err)
	}

	u := &Update{ID: id, Content: content, Kind: kind, Urgency: urgency}
	u.CreatedAt, _ = time.Parse(time.RFC3339, now)
	return u, nil
}

// ListUpdates returns the feed, newest first.
func (s *Store) ListUpdates() ([]Update, error) {
	rows, err := s.db.Query(
		`SELECT id, content, kind, urgency, created_at FROM ai_updates ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	defer rows.Close()

	var updates []Update
	for rows.Next() {
		var u Update
		var kind, urgency, createdAt string
		if err := rows.Scan(&u.ID, &u.Content, &kind, &urgency, &createdAt); err != nil {
			return nil, err
		}
		u.Kind = UpdateKind(kind)
		u.Urgency = Urgency(urgency)
		u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

func (s *Store) ClearUpdates() error {
	_, err := s.db.Exec(`DELETE FROM ai_updates`)
	return err
}
