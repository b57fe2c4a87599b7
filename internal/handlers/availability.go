package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/calhq/freebusy/internal/refresh"
	"github.com/calhq/freebusy/internal/schedule"
)

type AvailabilityHandler struct {
	refresher *refresh.Refresher
	logger    *slog.Logger
}

func NewAvailabilityHandler(refresher *refresh.Refresher, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{refresher: refresher, logger: logger}
}

type checkResponse struct {
	Available bool `json:"available"`
}

type findResponse struct {
	Found bool   `json:"found"`
	Date  string `json:"date,omitempty"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func (h *AvailabilityHandler) Busy(w http.ResponseWriter, r *http.Request) {
	h.slots(w, r, func(e *schedule.Engine, date string) []schedule.Slot {
		return e.BusySlots(date)
	})
}

func (h *AvailabilityHandler) Free(w http.ResponseWriter, r *http.Request) {
	h.slots(w, r, func(e *schedule.Engine, date string) []schedule.Slot {
		return e.FreeSlots(date)
	})
}

func (h *AvailabilityHandler) slots(w http.ResponseWriter, r *http.Request, query func(*schedule.Engine, string) []schedule.Slot) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	engine, ok := h.engine(w)
	if !ok {
		return
	}

	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}

	slots := query(engine, date)
	if slots == nil {
		slots = []schedule.Slot{}
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	engine, ok := h.engine(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))
	start := strings.TrimSpace(q.Get("start"))
	end := strings.TrimSpace(q.Get("end"))
	if date == "" || start == "" || end == "" {
		http.Error(w, "date, start, and end are required", http.StatusBadRequest)
		return
	}

	available, err := engine.IsAvailable(date, start, end)
	if err != nil {
		// Only malformed clock strings surface here; unknown dates are a
		// plain negative result.
		http.Error(w, "start and end must be HH:MM times", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, checkResponse{Available: available})
}

func (h *AvailabilityHandler) Find(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	engine, ok := h.engine(w)
	if !ok {
		return
	}

	raw := strings.TrimSpace(r.URL.Query().Get("duration_minutes"))
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 || minutes > 1440 {
		http.Error(w, "duration_minutes must be between 1 and 1440", http.StatusBadRequest)
		return
	}

	slot, found := engine.FindSlotForDuration(minutes)
	resp := findResponse{Found: found}
	if found {
		resp.Date = slot.Date
		resp.Start = slot.Start
		resp.End = slot.End
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AvailabilityHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	if err := h.refresher.Rebuild(ctx); err != nil {
		h.logger.Error("manual schedule refresh failed", "err", err)
		http.Error(w, "schedule refresh failed", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func (h *AvailabilityHandler) engine(w http.ResponseWriter) (*schedule.Engine, bool) {
	engine := h.refresher.Engine()
	if engine == nil {
		http.Error(w, "schedule not loaded", http.StatusServiceUnavailable)
		return nil, false
	}
	return engine, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
