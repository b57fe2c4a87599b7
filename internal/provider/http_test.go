package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const fixtureJSON = `{
	"days": [
		{"id": 1, "date": "2024-10-10", "start": "09:00", "end": "18:00"},
		{"id": 2, "date": "2024-10-11", "start": "08:00", "end": "17:00"}
	],
	"timeslots": [
		{"id": 1, "day_id": 1, "start": "11:00", "end": "12:00"},
		{"id": 3, "day_id": 2, "start": "09:30", "end": "16:00"}
	]
}`

func TestHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(fixtureJSON))
	}))
	defer srv.Close()

	payload, err := NewHTTP(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(payload.Days) != 2 || len(payload.Timeslots) != 2 {
		t.Fatalf("unexpected payload sizes: %d days, %d timeslots", len(payload.Days), len(payload.Timeslots))
	}
	if payload.Days[0].Date != "2024-10-10" || payload.Days[0].Start != "09:00" {
		t.Fatalf("unexpected first day: %+v", payload.Days[0])
	}
	if payload.Timeslots[1].DayID != 2 {
		t.Fatalf("unexpected second timeslot: %+v", payload.Timeslots[1])
	}
}

func TestHTTPFetch_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := NewHTTP(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestHTTPFetch_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	if _, err := NewHTTP(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatal("expected error on malformed body")
	}
}

func TestHTTPFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // fetch against a closed listener

	if _, err := NewHTTP(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatal("expected error on connection failure")
	}
}
