// Package recurrence turns recurrence expressions such as "every other friday
// at 5pm" or "every january 1st" into sorted occurrence timestamps inside a
// bounded window.
package recurrence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/agis/taskgen/internal/calendar"
)

var (
	ErrInvalidPattern = errors.New("invalid recurrence pattern")
	ErrInvalidWeekday = calendar.ErrInvalidWeekday
	ErrInvalidMonth   = calendar.ErrInvalidMonth
	ErrInvalidWindow  = errors.New("invalid window")
	ErrNoOccurrence   = errors.New("no upcoming occurrence")
)

type Frequency string

const (
	Daily   Frequency = "daily"
	Workday Frequency = "workday"
	Weekend Frequency = "weekend"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// LastDay in MonthDays stands for the final day of each month.
const LastDay = -1

type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) String() string {
	suffix := "am"
	h := t.Hour
	if h >= 12 {
		suffix = "pm"
	}
	h %= 12
	if h == 0 {
		h = 12
	}
	if t.Minute == 0 {
		return fmt.Sprintf("%d%s", h, suffix)
	}
	return fmt.Sprintf("%d:%02d%s", h, t.Minute, suffix)
}

func (t TimeOfDay) clock() calendar.Clock {
	return calendar.Clock{Hour: t.Hour, Minute: t.Minute}
}

// Pattern is a parsed recurrence. Treat it as read-only once built.
type Pattern struct {
	Frequency Frequency          `json:"frequency"`
	Interval  int                `json:"interval"`
	Weekdays  []calendar.Weekday `json:"weekdays,omitempty"`
	MonthDays []int              `json:"month_days,omitempty"`
	Ordinal   calendar.Ordinal   `json:"ordinal,omitempty"`
	Month     time.Month         `json:"month,omitempty"`
	TimeOfDay *TimeOfDay         `json:"time_of_day,omitempty"`
	// Strict mirrors the trailing "!" marker. Generation ignores it.
	Strict bool `json:"strict,omitempty"`
}

func (p Pattern) interval() int {
	if p.Interval < 1 {
		return 1
	}
	return p.Interval
}

// Validate checks that the fields required by the frequency are present.
func (p Pattern) Validate() error {
	if p.Interval < 0 {
		return fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidPattern, p.Interval)
	}
	for _, d := range p.MonthDays {
		if d != LastDay && (d < 1 || d > 31) {
			return fmt.Errorf("%w: day %d out of 1..31", ErrInvalidPattern, d)
		}
	}
	for _, wd := range p.Weekdays {
		if wd < calendar.Monday || wd > calendar.Sunday {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, int(wd))
		}
	}
	if p.TimeOfDay != nil {
		if p.TimeOfDay.Hour < 0 || p.TimeOfDay.Hour > 23 || p.TimeOfDay.Minute < 0 || p.TimeOfDay.Minute > 59 {
			return fmt.Errorf("%w: time %02d:%02d", ErrInvalidPattern, p.TimeOfDay.Hour, p.TimeOfDay.Minute)
		}
	}
	switch p.Frequency {
	case Daily, Workday, Weekend, Weekly:
		return nil
	case Monthly:
		byDay := len(p.MonthDays) > 0
		byOrdinal := p.Ordinal != 0 && len(p.Weekdays) > 0
		if byDay == byOrdinal {
			return fmt.Errorf("%w: monthly needs either days or an ordinal weekday", ErrInvalidPattern)
		}
		if byOrdinal && p.Ordinal != calendar.Last && (p.Ordinal < calendar.First || p.Ordinal > calendar.Fourth) {
			return fmt.Errorf("%w: ordinal %d not in 1st..4th or last", ErrInvalidPattern, int(p.Ordinal))
		}
		return nil
	case Yearly:
		if p.Month < time.January || p.Month > time.December {
			return fmt.Errorf("%w: yearly needs a month", ErrInvalidPattern)
		}
		return nil
	case "":
		return fmt.Errorf("%w: missing frequency", ErrInvalidPattern)
	default:
		return fmt.Errorf("%w: unknown frequency %q", ErrInvalidPattern, p.Frequency)
	}
}

// String renders the canonical recurrence text. Parse(p.String()) yields p.
func (p Pattern) String() string {
	var b strings.Builder
	n := p.interval()
	switch p.Frequency {
	case Daily:
		if n > 1 {
			fmt.Fprintf(&b, "every %d days", n)
		} else {
			b.WriteString("every day")
		}
	case Workday:
		b.WriteString("every workday")
	case Weekend:
		b.WriteString("every weekend")
	case Weekly:
		target := "week"
		if len(p.Weekdays) > 0 {
			target = joinWeekdays(p.Weekdays)
		}
		switch {
		case n == 2:
			b.WriteString("every other " + target)
		case n > 2 && len(p.Weekdays) == 0:
			fmt.Fprintf(&b, "every %d weeks", n)
		case n > 2:
			fmt.Fprintf(&b, "every %d weeks on %s", n, target)
		default:
			b.WriteString("every " + target)
		}
	case Monthly:
		b.WriteString("every")
		if n > 1 {
			fmt.Fprintf(&b, " %d months on the", n)
		}
		if len(p.MonthDays) > 0 {
			b.WriteString(" " + joinDays(p.MonthDays))
			if len(p.MonthDays) == 1 && p.MonthDays[0] == LastDay {
				b.WriteString(" day")
			}
		} else {
			b.WriteString(" " + p.Ordinal.String() + " " + joinWeekdays(p.Weekdays))
		}
	case Yearly:
		b.WriteString("every")
		if n > 1 {
			fmt.Fprintf(&b, " %d years on", n)
		}
		b.WriteString(" " + strings.ToLower(p.Month.String()))
		if len(p.MonthDays) > 0 {
			b.WriteString(" " + joinDays(p.MonthDays))
		}
	default:
		b.WriteString("every " + string(p.Frequency))
	}
	return b.String() + p.suffix()
}

func (p Pattern) suffix() string {
	s := ""
	if p.TimeOfDay != nil {
		s += " at " + p.TimeOfDay.String()
	}
	if p.Strict {
		s += "!"
	}
	return s
}

func joinWeekdays(wds []calendar.Weekday) string {
	parts := make([]string, 0, len(wds))
	for _, wd := range wds {
		parts = append(parts, wd.String())
	}
	return strings.Join(parts, ",")
}

func joinDays(days []int) string {
	parts := make([]string, 0, len(days))
	for _, d := range days {
		if d == LastDay {
			parts = append(parts, "last")
			continue
		}
		parts = append(parts, humanize.Ordinal(d))
	}
	return strings.Join(parts, ",")
}

// ParseTimeOfDay accepts "17:00", "17", "5pm", "5:30pm" and "5:30 pm".
func ParseTimeOfDay(v string) (TimeOfDay, error) {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(v), " ", ""))
	meridiem := ""
	if strings.HasSuffix(s, "am") || strings.HasSuffix(s, "pm") {
		meridiem = s[len(s)-2:]
		s = s[:len(s)-2]
	}
	hs, ms, hasMinute := strings.Cut(s, ":")
	h, err := strconv.Atoi(hs)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: invalid time %q", ErrInvalidPattern, v)
	}
	m := 0
	if hasMinute {
		if m, err = strconv.Atoi(ms); err != nil || len(ms) != 2 {
			return TimeOfDay{}, fmt.Errorf("%w: invalid time %q", ErrInvalidPattern, v)
		}
	}
	if m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: invalid minute in %q", ErrInvalidPattern, v)
	}
	switch meridiem {
	case "":
		if h < 0 || h > 23 {
			return TimeOfDay{}, fmt.Errorf("%w: invalid hour in %q", ErrInvalidPattern, v)
		}
	default:
		if h < 1 || h > 12 {
			return TimeOfDay{}, fmt.Errorf("%w: invalid hour in %q", ErrInvalidPattern, v)
		}
		h %= 12
		if meridiem == "pm" {
			h += 12
		}
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}
