package provider

import (
	"context"
	"path/filepath"
	"testing"
)

func TestSQLiteFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.db")
	p, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer p.Close()

	stmts := []string{
		`CREATE TABLE schedule_days (id INTEGER PRIMARY KEY, date TEXT NOT NULL, start_time TEXT NOT NULL, end_time TEXT NOT NULL)`,
		`CREATE TABLE schedule_timeslots (id INTEGER PRIMARY KEY, day_id INTEGER NOT NULL, start_time TEXT NOT NULL, end_time TEXT NOT NULL)`,
		`INSERT INTO schedule_days VALUES (1, '2024-10-10', '09:00', '18:00'), (2, '2024-10-11', '08:00', '17:00')`,
		`INSERT INTO schedule_timeslots VALUES (1, 1, '11:00', '12:00'), (3, 2, '09:30', '16:00')`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(context.Background(), stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	payload, err := p.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(payload.Days) != 2 || len(payload.Timeslots) != 2 {
		t.Fatalf("unexpected payload sizes: %d days, %d timeslots", len(payload.Days), len(payload.Timeslots))
	}
	if payload.Days[1].Date != "2024-10-11" || payload.Days[1].End != "17:00" {
		t.Fatalf("unexpected second day: %+v", payload.Days[1])
	}
	if payload.Timeslots[0].DayID != 1 || payload.Timeslots[0].Start != "11:00" {
		t.Fatalf("unexpected first timeslot: %+v", payload.Timeslots[0])
	}
}
