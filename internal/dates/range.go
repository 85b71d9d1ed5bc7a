package dates

import (
	"errors"
	"fmt"
	"time"
)

var ErrEmptyRange = errors.New("check-out must be after check-in")

// Range is the half-open stay [Start, End): Start is the check-in day, End the
// check-out day. A stay ending on D and another starting on D do not share a night.
type Range struct {
	Start Date `json:"checkIn"`
	End   Date `json:"checkOut"`
}

func NewRange(start, end Date) (Range, error) {
	if !start.Before(end) {
		return Range{}, fmt.Errorf("%s..%s: %w", start, end, ErrEmptyRange)
	}
	return Range{Start: start, End: end}, nil
}

// Overlaps reports whether [aStart,aEnd) and [bStart,bEnd) share at least one day.
// Every conflict check in the service goes through here.
func Overlaps(aStart, aEnd, bStart, bEnd Date) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

func (r Range) Overlaps(o Range) bool { return Overlaps(r.Start, r.End, o.Start, o.End) }

// Contains reports Start <= d < End.
func (r Range) Contains(d Date) bool {
	return Overlaps(r.Start, r.End, d, d.AddDays(1))
}

func (r Range) Nights() int { return r.Start.DaysUntil(r.End) }

func (r Range) String() string { return r.Start.String() + ".." + r.End.String() }

// Month returns the half-open range covering every day of the given month.
func Month(year int, month time.Month) Range {
	first := New(year, month, 1)
	return Range{Start: first, End: New(year, month+1, 1)}
}

// Days lists every day in r in ascending order.
func (r Range) Days() []Date {
	n := r.Nights()
	if n <= 0 {
		return nil
	}
	out := make([]Date, 0, n)
	for d := r.Start; d.Before(r.End); d = d.AddDays(1) {
		out = append(out, d)
	}
	return out
}
