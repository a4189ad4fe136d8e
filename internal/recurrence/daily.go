package recurrence

import (
	"time"

	"github.com/agis/taskgen/internal/calendar"
)

// daily steps by Interval days from the first day. When the pattern's clock
// falls before the window start on that day, the first step lands one
// interval later.
func daily(p Pattern, w Window) []time.Time {
	n := p.interval()
	cur := w.firstDay(p)
	if cur.Before(w.Start) {
		cur = cur.AddDate(0, 0, n)
	}
	var out []time.Time
	for ; !cur.After(w.End); cur = cur.AddDate(0, 0, n) {
		out = append(out, cur)
	}
	return out
}

func workdays(p Pattern, w Window) []time.Time {
	var out []time.Time
	cur := w.firstDay(p)
	for !cur.After(w.End) {
		wd := calendar.WeekdayOf(cur)
		if wd.IsWeekend() {
			// Saturday skips 2, Sunday skips 1.
			cur = cur.AddDate(0, 0, int(calendar.Sunday-wd)+1)
			continue
		}
		if !cur.Before(w.Start) {
			out = append(out, cur)
		}
		step := 1
		if wd == calendar.Friday {
			step = 3
		}
		cur = cur.AddDate(0, 0, step)
	}
	return out
}

func weekends(p Pattern, w Window) []time.Time {
	var out []time.Time
	cur := w.firstDay(p)
	for !cur.After(w.End) {
		wd := calendar.WeekdayOf(cur)
		if !wd.IsWeekend() {
			cur = cur.AddDate(0, 0, int(calendar.Saturday-wd))
			continue
		}
		if !cur.Before(w.Start) {
			out = append(out, cur)
		}
		step := 1
		if wd == calendar.Sunday {
			step = 6
		}
		cur = cur.AddDate(0, 0, step)
	}
	return out
}
