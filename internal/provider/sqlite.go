package provider

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/calhq/freebusy/internal/schedule"
)

// SQLite reads the schedule from a local SQLite file, for development and
// offline use. The schema mirrors the Postgres provider's tables.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open schedule db: %w", err)
	}
	sqldb.SetMaxOpenConns(2)
	return &SQLite{db: sqldb}, nil
}

func (p *SQLite) Close() error {
	return p.db.Close()
}

func (p *SQLite) Fetch(ctx context.Context) (schedule.Payload, error) {
	var payload schedule.Payload

	rows, err := p.db.QueryContext(ctx, `
		SELECT id, date, start_time, end_time
		FROM schedule_days
		ORDER BY date
	`)
	if err != nil {
		return schedule.Payload{}, fmt.Errorf("query schedule days: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d schedule.Day
		if err := rows.Scan(&d.ID, &d.Date, &d.Start, &d.End); err != nil {
			return schedule.Payload{}, fmt.Errorf("scan schedule day: %w", err)
		}
		payload.Days = append(payload.Days, d)
	}
	if rows.Err() != nil {
		return schedule.Payload{}, fmt.Errorf("read schedule days: %w", rows.Err())
	}

	slotRows, err := p.db.QueryContext(ctx, `
		SELECT id, day_id, start_time, end_time
		FROM schedule_timeslots
		ORDER BY id
	`)
	if err != nil {
		return schedule.Payload{}, fmt.Errorf("query schedule timeslots: %w", err)
	}
	defer slotRows.Close()
	for slotRows.Next() {
		var ts schedule.Timeslot
		if err := slotRows.Scan(&ts.ID, &ts.DayID, &ts.Start, &ts.End); err != nil {
			return schedule.Payload{}, fmt.Errorf("scan schedule timeslot: %w", err)
		}
		payload.Timeslots = append(payload.Timeslots, ts)
	}
	if slotRows.Err() != nil {
		return schedule.Payload{}, fmt.Errorf("read schedule timeslots: %w", slotRows.Err())
	}

	return payload, nil
}
