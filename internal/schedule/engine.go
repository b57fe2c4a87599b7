// Package schedule computes day-by-day availability from working-hour
// windows and busy timeslots: merged busy intervals, the free intervals
// that complement them, point availability checks, and first-fit search
// for a slot of a requested duration.
//
// All times are clock strings ("HH:MM") at the boundary and minutes since
// midnight internally. Engines are immutable after construction and safe
// for concurrent readers without locking.
package schedule

// Slot is a (start, end) clock-string pair within one day.
type Slot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DatedSlot is a slot pinned to a calendar date.
type DatedSlot struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Engine answers availability queries over a fixed calendar index.
type Engine struct {
	idx *Index
}

func NewEngine(idx *Index) *Engine {
	return &Engine{idx: idx}
}

// BusySlots returns the merged busy intervals for date in ascending order.
// An unknown date yields an empty result, not an error.
func (e *Engine) BusySlots(date string) []Slot {
	return toSlots(e.mergedBusy(date))
}

// FreeSlots returns the maximal intervals within date's work window not
// covered by any busy slot, in ascending order. An unknown date yields an
// empty result.
func (e *Engine) FreeSlots(date string) []Slot {
	return toSlots(e.freeIntervals(date))
}

// IsAvailable reports whether [start, end) lies fully inside date's work
// window and overlaps no busy interval. A request that only touches a busy
// boundary (end == busy start, or start == busy end) is available. An
// unknown date is not available. Malformed start or end returns ErrParse.
func (e *Engine) IsAvailable(date, start, end string) (bool, error) {
	window, ok := e.idx.windows[date]
	if !ok {
		return false, nil
	}

	startMin, err := ParseClock(start)
	if err != nil {
		return false, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return false, err
	}

	if startMin < window.Start || endMin > window.End {
		return false, nil
	}
	requested := Interval{Start: startMin, End: endMin}
	for _, busy := range e.mergedBusy(date) {
		if requested.Overlaps(busy) {
			return false, nil
		}
	}
	return true, nil
}

// FindSlotForDuration returns the earliest free slot able to hold
// durationMinutes, scanning dates in ascending ISO order and each date's
// free slots in ascending start order. The returned end is truncated to
// start + durationMinutes (first fit, not best fit). The second result is
// false when no known day has room.
func (e *Engine) FindSlotForDuration(durationMinutes int) (DatedSlot, bool) {
	for _, date := range e.idx.dates {
		for _, free := range e.freeIntervals(date) {
			if free.End-free.Start >= durationMinutes {
				return DatedSlot{
					Date:  date,
					Start: FormatClock(free.Start),
					End:   FormatClock(free.Start + durationMinutes),
				}, true
			}
		}
	}
	return DatedSlot{}, false
}

func (e *Engine) mergedBusy(date string) []Interval {
	return MergeOverlapping(e.idx.busy[date])
}

// freeIntervals walks the merged busy slots with a cursor that starts at
// the work window's start and only ever advances. A busy slot ending
// before the window start contributes no gap because the cursor never
// retreats.
func (e *Engine) freeIntervals(date string) []Interval {
	window, ok := e.idx.windows[date]
	if !ok {
		return nil
	}

	var free []Interval
	cursor := window.Start
	for _, busy := range e.mergedBusy(date) {
		if busy.Start > cursor {
			free = append(free, Interval{Start: cursor, End: busy.Start})
		}
		if busy.End > cursor {
			cursor = busy.End
		}
	}
	if cursor < window.End {
		free = append(free, Interval{Start: cursor, End: window.End})
	}
	return free
}

func toSlots(intervals []Interval) []Slot {
	slots := make([]Slot, 0, len(intervals))
	for _, iv := range intervals {
		slots = append(slots, Slot{Start: FormatClock(iv.Start), End: FormatClock(iv.End)})
	}
	return slots
}
