package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/focusdeck/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Stats      jsonStats     `json:"stats"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonStats struct {
	TodaySessions int `json:"today_sessions"`
	WeekSessions  int `json:"week_sessions"`
	TotalMinutes  int `json:"total_minutes"`
	CurrentStreak int `json:"current_streak"`
}

type jsonSession struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Minutes     int    `json:"minutes"`
	CompletedAt string `json:"completed_at"`
}

func ToJSON(sessions []store.Session, stats *store.Stats, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}
	if stats != nil {
		export.Stats = jsonStats{
			TodaySessions: stats.TodaySessions,
			WeekSessions:  stats.WeekSessions,
			TotalMinutes:  stats.TotalMinutes,
			CurrentStreak: stats.CurrentStreak,
		}
	}

	for _, s := range sessions {
		export.Sessions = append(export.Sessions, jsonSession{
			ID:          s.ID,
			Type:        string(s.Type),
			Minutes:     s.Duration,
			CompletedAt: s.CompletedAt.Local().Format(time.RFC3339),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
