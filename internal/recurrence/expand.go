package recurrence

import (
	"fmt"
	"slices"
	"time"

	"github.com/agis/taskgen/internal/calendar"
)

// Window bounds generation. Both ends are inclusive.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidWindow)
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidWindow, w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	return nil
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// clock is the wall clock stamped on every generated date: the pattern's
// "at" time when present, otherwise the window start's.
func (w Window) clock(p Pattern) calendar.Clock {
	if p.TimeOfDay != nil {
		return p.TimeOfDay.clock()
	}
	return calendar.ClockOf(w.Start)
}

// firstDay is the window's first calendar day at the pattern clock.
func (w Window) firstDay(p Pattern) time.Time {
	y, m, d := w.Start.Date()
	return w.clock(p).On(y, m, d, w.Start.Location())
}

// Expand generates every occurrence of p inside w, sorted ascending. All
// results carry the location of w.Start.
func Expand(p Pattern, w Window) ([]time.Time, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	switch p.Frequency {
	case Daily:
		return daily(p, w), nil
	case Workday:
		return workdays(p, w), nil
	case Weekend:
		return weekends(p, w), nil
	case Weekly:
		return weekly(p, w), nil
	case Monthly:
		if len(p.MonthDays) > 0 {
			return monthlyByDay(p, w), nil
		}
		return monthlyByOrdinal(p, w)
	case Yearly:
		return yearly(p, w), nil
	}
	return nil, fmt.Errorf("%w: unknown frequency %q", ErrInvalidPattern, p.Frequency)
}

// ExpandString parses s and expands it over w.
func ExpandString(s string, w Window) ([]time.Time, error) {
	p, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return Expand(p, w)
}

const maxLookaheadYears = 64

// Next returns the first occurrence strictly after w.End, keeping the phase
// and clock that Expand uses for w.
func Next(p Pattern, w Window) (time.Time, error) {
	if err := w.Validate(); err != nil {
		return time.Time{}, err
	}
	for years := 1; years <= maxLookaheadYears; years *= 2 {
		ext := Window{Start: w.Start, End: w.End.AddDate(years, 0, 0)}
		seq, err := Expand(p, ext)
		if err != nil {
			return time.Time{}, err
		}
		i, _ := slices.BinarySearchFunc(seq, w.End, func(a, b time.Time) int {
			if a.After(b) {
				return 1
			}
			return -1
		})
		if i < len(seq) {
			return seq[i], nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s within %d years", ErrNoOccurrence, p, maxLookaheadYears)
}

// sortOccurrences orders ts and drops equal instants.
func sortOccurrences(ts []time.Time) []time.Time {
	slices.SortFunc(ts, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(ts, func(a, b time.Time) bool { return a.Equal(b) })
}
