package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/calhq/freebusy/internal/schedule"
)

// HTTP fetches the schedule payload from a JSON endpoint with a single GET.
type HTTP struct {
	url    string
	client *http.Client
}

func NewHTTP(url string) *HTTP {
	return &HTTP{
		url: url,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (p *HTTP) Fetch(ctx context.Context) (schedule.Payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return schedule.Payload{}, fmt.Errorf("build schedule request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return schedule.Payload{}, fmt.Errorf("fetch schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return schedule.Payload{}, fmt.Errorf("fetch schedule: unexpected status %d from %s", resp.StatusCode, p.url)
	}

	var payload schedule.Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return schedule.Payload{}, fmt.Errorf("decode schedule payload: %w", err)
	}
	return payload, nil
}
