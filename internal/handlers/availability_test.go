package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calhq/freebusy/internal/provider"
	"github.com/calhq/freebusy/internal/refresh"
	"github.com/calhq/freebusy/internal/schedule"
)

func newTestHandler(t *testing.T) *AvailabilityHandler {
	t.Helper()
	r := refresh.New(provider.Static{Payload: schedule.Payload{
		Days: []schedule.Day{
			{ID: 1, Date: "2024-10-10", Start: "09:00", End: "18:00"},
			{ID: 2, Date: "2024-10-11", Start: "08:00", End: "17:00"},
		},
		Timeslots: []schedule.Timeslot{
			{ID: 1, DayID: 1, Start: "11:00", End: "12:00"},
			{ID: 3, DayID: 2, Start: "09:30", End: "16:00"},
		},
	}}, slog.Default())
	if err := r.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	return NewAvailabilityHandler(r, slog.Default())
}

func get(t *testing.T, h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	return rw
}

func TestBusyEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rw := get(t, h.Busy, "/api/v1/availability/busy?date=2024-10-10")
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rw.Code, rw.Body.String())
	}
	var slots []schedule.Slot
	if err := json.Unmarshal(rw.Body.Bytes(), &slots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(slots) != 1 || slots[0] != (schedule.Slot{Start: "11:00", End: "12:00"}) {
		t.Fatalf("unexpected slots: %v", slots)
	}
}

func TestBusyEndpoint_UnknownDateIsEmptyList(t *testing.T) {
	h := newTestHandler(t)

	rw := get(t, h.Busy, "/api/v1/availability/busy?date=2099-01-01")
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d", rw.Code)
	}
	if rw.Body.String() != "[]" {
		t.Fatalf("body = %q, want []", rw.Body.String())
	}
}

func TestBusyEndpoint_MissingDate(t *testing.T) {
	h := newTestHandler(t)
	if rw := get(t, h.Busy, "/api/v1/availability/busy"); rw.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rw.Code)
	}
}

func TestFreeEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rw := get(t, h.Free, "/api/v1/availability/free?date=2024-10-11")
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d", rw.Code)
	}
	var slots []schedule.Slot
	if err := json.Unmarshal(rw.Body.Bytes(), &slots); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []schedule.Slot{{Start: "08:00", End: "09:30"}, {Start: "16:00", End: "17:00"}}
	if len(slots) != 2 || slots[0] != want[0] || slots[1] != want[1] {
		t.Fatalf("slots = %v, want %v", slots, want)
	}
}

func TestCheckEndpoint(t *testing.T) {
	h := newTestHandler(t)

	cases := []struct {
		target string
		want   bool
	}{
		{"/api/v1/availability/check?date=2024-10-10&start=10:00&end=10:30", true},
		{"/api/v1/availability/check?date=2024-10-10&start=11:30&end=12:30", false},
		{"/api/v1/availability/check?date=2099-01-01&start=10:00&end=10:30", false},
	}
	for _, c := range cases {
		rw := get(t, h.Check, c.target)
		if rw.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", c.target, rw.Code)
		}
		var resp checkResponse
		if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", c.target, err)
		}
		if resp.Available != c.want {
			t.Fatalf("%s: available = %v, want %v", c.target, resp.Available, c.want)
		}
	}
}

func TestCheckEndpoint_MalformedTime(t *testing.T) {
	h := newTestHandler(t)
	rw := get(t, h.Check, "/api/v1/availability/check?date=2024-10-10&start=ten&end=10:30")
	if rw.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rw.Code)
	}
}

func TestFindEndpoint(t *testing.T) {
	h := newTestHandler(t)

	rw := get(t, h.Find, "/api/v1/availability/find?duration_minutes=90")
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d", rw.Code)
	}
	var resp findResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Found || resp.Date != "2024-10-11" || resp.Start != "08:00" || resp.End != "09:30" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestFindEndpoint_NoFit(t *testing.T) {
	h := newTestHandler(t)

	rw := get(t, h.Find, "/api/v1/availability/find?duration_minutes=1000")
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d", rw.Code)
	}
	var resp findResponse
	if err := json.Unmarshal(rw.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Found || resp.Date != "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestFindEndpoint_InvalidDuration(t *testing.T) {
	h := newTestHandler(t)
	for _, target := range []string{
		"/api/v1/availability/find",
		"/api/v1/availability/find?duration_minutes=0",
		"/api/v1/availability/find?duration_minutes=-5",
		"/api/v1/availability/find?duration_minutes=abc",
		"/api/v1/availability/find?duration_minutes=2000",
	} {
		if rw := get(t, h.Find, target); rw.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", target, rw.Code)
		}
	}
}

func TestRefreshEndpoint(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/availability/refresh", nil)
	rw := httptest.NewRecorder()
	h.Refresh(rw, req)
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rw.Code, rw.Body.String())
	}

	// GET is not a refresh.
	if rw := get(t, h.Refresh, "/api/v1/availability/refresh"); rw.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rw.Code)
	}
}

func TestEndpoints_NoSnapshotYet(t *testing.T) {
	r := refresh.New(provider.Static{}, slog.Default())
	h := NewAvailabilityHandler(r, slog.Default())

	if rw := get(t, h.Busy, "/api/v1/availability/busy?date=2024-10-10"); rw.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rw.Code)
	}
}
