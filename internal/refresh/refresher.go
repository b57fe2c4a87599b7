// Package refresh owns the published engine snapshot. A rebuild fetches a
// fresh payload, builds a complete index, and swaps the engine pointer in
// one step; readers always observe a whole snapshot, never a partial one.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/calhq/freebusy/internal/provider"
	"github.com/calhq/freebusy/internal/schedule"
)

type Refresher struct {
	provider provider.Provider
	logger   *slog.Logger
	engine   atomic.Pointer[schedule.Engine]
}

func New(p provider.Provider, logger *slog.Logger) *Refresher {
	return &Refresher{provider: p, logger: logger}
}

// Engine returns the current snapshot, or nil before the first successful
// Rebuild.
func (r *Refresher) Engine() *schedule.Engine {
	return r.engine.Load()
}

// Rebuild fetches the schedule, builds a new engine, and publishes it
// atomically. On any failure the previous snapshot stays published and the
// error is returned to the caller; the provider is never retried here.
func (r *Refresher) Rebuild(ctx context.Context) error {
	payload, err := r.provider.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("schedule fetch: %w", err)
	}

	idx, err := schedule.BuildIndex(payload)
	if err != nil {
		return err
	}
	if dropped := idx.DroppedTimeslots(); dropped > 0 {
		r.logger.Debug("dropped timeslots with unknown day_id", "count", dropped)
	}

	r.engine.Store(schedule.NewEngine(idx))
	r.logger.Info("schedule snapshot published",
		"days", len(idx.Dates()),
		"dropped_timeslots", idx.DroppedTimeslots(),
	)
	return nil
}
