package recurrence

import (
	"errors"
	"time"

	"github.com/agis/taskgen/internal/calendar"
)

// eachMonth calls fn for the first of every Interval-th month from the start
// month through the end month.
func eachMonth(p Pattern, w Window, fn func(year int, month time.Month)) {
	months := calendar.MonthsBetween(w.Start, w.End)
	first := time.Date(w.Start.Year(), w.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i <= months; i += p.interval() {
		m := first.AddDate(0, i, 0)
		fn(m.Year(), m.Month())
	}
}

func monthlyByDay(p Pattern, w Window) []time.Time {
	clock := w.clock(p)
	loc := w.Start.Location()
	var out []time.Time
	eachMonth(p, w, func(year int, month time.Month) {
		for _, d := range p.MonthDays {
			day := calendar.LastDayOfMonth(year, month)
			if d != LastDay {
				day = calendar.ClampDay(year, month, d)
			}
			if t := clock.On(year, month, day, loc); w.Contains(t) {
				out = append(out, t)
			}
		}
	})
	return sortOccurrences(out)
}

func monthlyByOrdinal(p Pattern, w Window) ([]time.Time, error) {
	clock := w.clock(p)
	loc := w.Start.Location()
	var (
		out []time.Time
		err error
	)
	eachMonth(p, w, func(year int, month time.Month) {
		if err != nil {
			return
		}
		for _, wd := range p.Weekdays {
			t, rerr := calendar.ResolveOrdinalWeekday(year, month, p.Ordinal, wd, clock, loc)
			if errors.Is(rerr, calendar.ErrOutOfRange) {
				continue
			}
			if rerr != nil {
				err = rerr
				return
			}
			if w.Contains(t) {
				out = append(out, t)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return sortOccurrences(out), nil
}
