package models

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for occupancy dates.
const DateLayout = "2006-01-02"

// Interval is a half-open date range [Start, End). A guest checking out on
// a given date does not occupy that date, so intervals sharing a boundary
// (checkout = next check-in) do not overlap.
type Interval struct {
	Start time.Time `bson:"start" json:"start"`
	End   time.Time `bson:"end" json:"end"`
}

// NewInterval parses a pair of YYYY-MM-DD dates into an Interval.
func NewInterval(start, end string) (Interval, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Interval{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return Interval{Start: s, End: e}, nil
}

// Overlaps reports whether the two half-open intervals share any instant.
// [a1,a2) and [b1,b2) overlap iff a1 < b2 && b1 < a2.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Nights is the number of whole days covered by the interval.
func (iv Interval) Nights() int {
	return int(iv.End.Sub(iv.Start).Hours() / 24)
}

// IsValid reports whether Start strictly precedes End.
func (iv Interval) IsValid() bool {
	return iv.Start.Before(iv.End)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(DateLayout), iv.End.Format(DateLayout))
}
