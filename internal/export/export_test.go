package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/focusdeck/internal/store"
)

func sampleData() ([]store.Session, *store.Stats) {
	now := time.Now().UTC()
	sessions := []store.Session{
		{ID: 3, Type: store.SessionFocus, Duration: 50, CompletedAt: now},
		{ID: 2, Type: store.SessionBreak, Duration: 5, CompletedAt: now.Add(-time.Hour)},
		{ID: 1, Type: store.SessionFocus, Duration: 25, CompletedAt: now.Add(-2 * time.Hour)},
	}
	stats := &store.Stats{TodaySessions: 3, WeekSessions: 3, TotalMinutes: 80, CurrentStreak: 3}
	return sessions, stats
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	sessions, _ := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sessions, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"ID", "Type", "Minutes", "Completed At"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := records[1]
	if row[0] != "3" {
		t.Fatalf("ID = %q, want 3", row[0])
	}
	if row[1] != "focus" {
		t.Fatalf("Type = %q, want focus", row[1])
	}
	if row[2] != "50" {
		t.Fatalf("Minutes = %q, want 50", row[2])
	}
	if _, err := time.Parse(time.RFC3339, row[3]); err != nil {
		t.Fatalf("Completed At not RFC3339: %q", row[3])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	sessions, stats := sampleData()
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sessions, stats, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 {
		t.Fatalf("count = %d, want 3", result.Count)
	}
	if len(result.Sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(result.Sessions))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}
	if result.Stats.TotalMinutes != 80 {
		t.Fatalf("total_minutes = %d, want 80", result.Stats.TotalMinutes)
	}
	if result.Stats.CurrentStreak != 3 {
		t.Fatalf("current_streak = %d, want 3", result.Stats.CurrentStreak)
	}

	s := result.Sessions[0]
	if s.ID != 3 || s.Type != "focus" || s.Minutes != 50 {
		t.Fatalf("first session = %+v", s)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Sessions != nil {
		t.Fatal("sessions should be nil/null for empty export")
	}
	if result.Stats.TotalMinutes != 0 {
		t.Fatal("nil stats should export zeroes")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, nil, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	sessions, stats := sampleData()
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(sessions, stats, path)

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	for _, s := range result.Sessions {
		if _, err := time.Parse(time.RFC3339, s.CompletedAt); err != nil {
			t.Fatalf("completed_at is not valid RFC3339: %q", s.CompletedAt)
		}
	}
}
