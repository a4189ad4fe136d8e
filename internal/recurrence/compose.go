package recurrence

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agis/taskgen/internal/calendar"
)

// Spec is the structured form of a recurrence as supplied by command flags.
type Spec struct {
	Frequency  string   `yaml:"frequency" json:"frequency"`
	Interval   int      `yaml:"interval" json:"interval,omitempty"`
	Weekdays   []string `yaml:"weekdays" json:"weekdays,omitempty"`
	Days       []string `yaml:"days" json:"days,omitempty"`
	WeekNumber string   `yaml:"week_number" json:"week_number,omitempty"`
	Month      string   `yaml:"month" json:"month,omitempty"`
	Time       string   `yaml:"time" json:"time,omitempty"`
	Strict     bool     `yaml:"strict" json:"strict,omitempty"`
}

// FromSpec builds a validated Pattern. Unlike Parse it never ignores input:
// every weekday, month and day must be recognized.
func FromSpec(s Spec) (Pattern, error) {
	p := Pattern{
		Frequency: Frequency(strings.ToLower(strings.TrimSpace(s.Frequency))),
		Interval:  s.Interval,
		Strict:    s.Strict,
	}
	if p.Interval == 0 {
		p.Interval = 1
	}
	if p.Interval < 0 {
		return Pattern{}, fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidPattern, s.Interval)
	}
	for _, raw := range splitList(s.Weekdays) {
		wd, err := calendar.ParseWeekday(raw)
		if err != nil {
			return Pattern{}, err
		}
		p.Weekdays = appendWeekday(p.Weekdays, wd)
	}
	for _, raw := range splitList(s.Days) {
		d, err := parseDay(raw)
		if err != nil {
			return Pattern{}, err
		}
		p.MonthDays = appendDay(p.MonthDays, d)
	}
	if s.Time != "" {
		tod, err := ParseTimeOfDay(s.Time)
		if err != nil {
			return Pattern{}, err
		}
		p.TimeOfDay = &tod
	}

	switch p.Frequency {
	case Daily:
		p.Weekdays, p.MonthDays = nil, nil
	case Workday, Weekend:
		p.Interval, p.Weekdays, p.MonthDays = 1, nil, nil
	case Weekly:
		p.MonthDays = nil
		if p.Interval == 1 && isWeekendPair(p.Weekdays) {
			p.Frequency, p.Weekdays = Weekend, nil
		}
	case Monthly:
		if len(p.MonthDays) == 0 && s.WeekNumber != "" {
			ord, err := parseOrdinal(s.WeekNumber)
			if err != nil {
				return Pattern{}, err
			}
			p.Ordinal = ord
		}
		if len(p.MonthDays) > 0 {
			p.Weekdays = nil
		}
	case Yearly:
		if s.Month == "" {
			return Pattern{}, fmt.Errorf("%w: yearly needs a month", ErrInvalidPattern)
		}
		m, err := calendar.ParseMonth(s.Month)
		if err != nil {
			return Pattern{}, err
		}
		p.Month, p.Weekdays = m, nil
	}
	if err := p.Validate(); err != nil {
		return Pattern{}, err
	}
	return p, nil
}

// Compose renders the canonical recurrence string for s.
func Compose(s Spec) (string, error) {
	p, err := FromSpec(s)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseDay(raw string) (int, error) {
	s := strings.ToLower(raw)
	if s == "last" {
		return LastDay, nil
	}
	if n, ok := ordinalNumeral(s); ok {
		s = strconv.Itoa(n)
	}
	d, err := strconv.Atoi(s)
	if err != nil || d < 1 || d > 31 {
		return 0, fmt.Errorf("%w: day %q", ErrInvalidPattern, raw)
	}
	return d, nil
}

func parseOrdinal(raw string) (calendar.Ordinal, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "last" {
		return calendar.Last, nil
	}
	n, ok := ordinalWords[s]
	if !ok {
		if n, ok = ordinalNumeral(s); !ok {
			var err error
			if n, err = strconv.Atoi(s); err != nil {
				return 0, fmt.Errorf("%w: week number %q", ErrInvalidPattern, raw)
			}
		}
	}
	if n < int(calendar.First) || n > int(calendar.Fourth) {
		return 0, fmt.Errorf("%w: week number %q not in 1st..4th or last", ErrInvalidPattern, raw)
	}
	return calendar.Ordinal(n), nil
}

func isWeekendPair(wds []calendar.Weekday) bool {
	return len(wds) == 2 && slices.Contains(wds, calendar.Saturday) && slices.Contains(wds, calendar.Sunday)
}
