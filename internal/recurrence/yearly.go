package recurrence

import (
	"time"

	"github.com/agis/taskgen/internal/calendar"
)

// leapReference is a leap year, so every (month, day) pair used as a yearly
// anchor exists there and AddYearsSkipInvalid decides validity per year.
const leapReference = 2000

func yearly(p Pattern, w Window) []time.Time {
	clock := w.clock(p)
	loc := w.Start.Location()
	days := p.MonthDays
	if len(days) == 0 {
		days = []int{w.Start.Day()}
	}

	var out []time.Time
	for year := w.Start.Year(); year <= w.End.Year(); year += p.interval() {
		for _, d := range days {
			if d == LastDay {
				d = calendar.LastDayOfMonth(year, p.Month)
			}
			ref, ok := calendar.DateIn(leapReference, p.Month, d, clock, loc)
			if !ok {
				continue
			}
			t, ok := calendar.AddYearsSkipInvalid(ref, year-leapReference)
			if ok && w.Contains(t) {
				out = append(out, t)
			}
		}
	}
	return sortOccurrences(out)
}
