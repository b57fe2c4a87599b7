// Package provider supplies raw schedule payloads to the availability
// engine. A provider is consulted exactly once per engine build; transport
// failures surface as errors from Fetch and are never retried here.
package provider

import (
	"context"

	"github.com/calhq/freebusy/internal/schedule"
)

type Provider interface {
	Fetch(ctx context.Context) (schedule.Payload, error)
}

// Static serves a fixed in-memory payload. Used by tests and tools.
type Static struct {
	Payload schedule.Payload
}

func (s Static) Fetch(context.Context) (schedule.Payload, error) {
	return s.Payload, nil
}
