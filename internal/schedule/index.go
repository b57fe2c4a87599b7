package schedule

import (
	"errors"
	"fmt"
	"sort"
)

// ErrSchema marks a schedule payload that cannot be indexed: missing
// required fields, malformed clock times, or inverted ranges. No partial
// index is ever built from such a payload.
var ErrSchema = errors.New("invalid schedule payload")

// Day is one working day as delivered by a schedule provider.
type Day struct {
	ID    int    `json:"id"`
	Date  string `json:"date"` // YYYY-MM-DD
	Start string `json:"start"`
	End   string `json:"end"`
}

// Timeslot is one busy interval as delivered by a schedule provider,
// linked to its day by DayID.
type Timeslot struct {
	ID    int    `json:"id"`
	DayID int    `json:"day_id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// Payload is the raw schedule a provider returns in a single fetch.
type Payload struct {
	Days      []Day      `json:"days"`
	Timeslots []Timeslot `json:"timeslots"`
}

// Index holds the lookup structures the engine queries: the work window
// per date and the raw busy intervals per date, both keyed by ISO date.
// An Index is immutable once built; rebuilding means calling BuildIndex
// again and swapping the result in whole.
type Index struct {
	windows map[string]Interval
	busy    map[string][]Interval
	dates   []string // ascending
	dropped int
}

// BuildIndex converts a raw payload into typed lookup structures. Clock
// strings are parsed exactly once here; any malformed day or timeslot
// fails the whole build with ErrSchema. Timeslots whose day_id matches no
// day are dropped silently (lenient ingestion, see DroppedTimeslots).
func BuildIndex(p Payload) (*Index, error) {
	idx := &Index{
		windows: make(map[string]Interval, len(p.Days)),
		busy:    make(map[string][]Interval, len(p.Days)),
	}

	dateByID := make(map[int]string, len(p.Days))
	for _, d := range p.Days {
		if d.Date == "" {
			return nil, fmt.Errorf("%w: day %d has no date", ErrSchema, d.ID)
		}
		start, err := ParseClock(d.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: day %s start: %v", ErrSchema, d.Date, err)
		}
		end, err := ParseClock(d.End)
		if err != nil {
			return nil, fmt.Errorf("%w: day %s end: %v", ErrSchema, d.Date, err)
		}
		if start >= end {
			return nil, fmt.Errorf("%w: day %s window %s-%s is empty", ErrSchema, d.Date, d.Start, d.End)
		}
		if _, seen := idx.windows[d.Date]; !seen {
			idx.dates = append(idx.dates, d.Date)
		}
		idx.windows[d.Date] = Interval{Start: start, End: end}
		idx.busy[d.Date] = nil
		dateByID[d.ID] = d.Date
	}

	for _, ts := range p.Timeslots {
		date, ok := dateByID[ts.DayID]
		if !ok {
			idx.dropped++
			continue
		}
		start, err := ParseClock(ts.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: timeslot %d start: %v", ErrSchema, ts.ID, err)
		}
		end, err := ParseClock(ts.End)
		if err != nil {
			return nil, fmt.Errorf("%w: timeslot %d end: %v", ErrSchema, ts.ID, err)
		}
		if start >= end {
			return nil, fmt.Errorf("%w: timeslot %d range %s-%s is empty", ErrSchema, ts.ID, ts.Start, ts.End)
		}
		idx.busy[date] = append(idx.busy[date], Interval{Start: start, End: end})
	}

	sort.Strings(idx.dates)
	return idx, nil
}

// Dates returns the known dates in ascending ISO order.
func (idx *Index) Dates() []string {
	return idx.dates
}

// DroppedTimeslots reports how many timeslots referenced a day_id with no
// matching day and were discarded during the build.
func (idx *Index) DroppedTimeslots() int {
	return idx.dropped
}

// IsSchema reports whether err originated from payload validation.
func IsSchema(err error) bool {
	return errors.Is(err, ErrSchema)
}
