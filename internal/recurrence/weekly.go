package recurrence

import (
	"time"

	"github.com/agis/taskgen/internal/calendar"
)

// weekly anchors every target weekday on the Monday of the start week and
// walks forward in blocks of Interval weeks, so all weekdays share one phase.
// Several weekdays keep the pattern interval: "every other mon,fri" fires on
// both days of every second week.
func weekly(p Pattern, w Window) []time.Time {
	targets := p.Weekdays
	if len(targets) == 0 {
		targets = []calendar.Weekday{calendar.WeekdayOf(w.Start)}
	}
	monday := calendar.MondayOf(w.firstDay(p))
	step := 7 * p.interval()

	var out []time.Time
	for _, wd := range targets {
		cur := monday.AddDate(0, 0, int(wd))
		for cur.Before(w.Start) {
			cur = cur.AddDate(0, 0, step)
		}
		for ; !cur.After(w.End); cur = cur.AddDate(0, 0, step) {
			out = append(out, cur)
		}
	}
	if len(targets) == 1 {
		return out
	}
	return sortOccurrences(out)
}
