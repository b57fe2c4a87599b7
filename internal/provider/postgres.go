package provider

import (
	"context"
	"fmt"

	"github.com/calhq/freebusy/internal/schedule"
	"github.com/calhq/freebusy/libs/db"
)

// Postgres reads the schedule from the schedule_days and schedule_timeslots
// tables. Dates are selected as text so the payload matches the wire schema
// exactly and goes through the same boundary validation as every other
// provider.
type Postgres struct {
	pool *db.Pool
}

func NewPostgres(pool *db.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) Fetch(ctx context.Context) (schedule.Payload, error) {
	var payload schedule.Payload

	rows, err := p.pool.Query(ctx, `
		SELECT id, date::text, start_time, end_time
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

	slotRows, err := p.pool.Query(ctx, `
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
