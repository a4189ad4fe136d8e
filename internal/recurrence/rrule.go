package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/agis/taskgen/internal/calendar"
)

var rruleWeekdays = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

var rruleFreq = map[Frequency]rrule.Frequency{
	Daily:   rrule.DAILY,
	Workday: rrule.DAILY,
	Weekend: rrule.DAILY,
	Weekly:  rrule.WEEKLY,
	Monthly: rrule.MONTHLY,
	Yearly:  rrule.YEARLY,
}

// ROption maps p onto an RFC 5545 rule starting at dtstart. Day-of-month
// clamping has no RRULE equivalent: a rule for the 31st skips short months
// where Expand fires on the last day.
func (p Pattern) ROption(dtstart time.Time) (rrule.ROption, error) {
	if err := p.Validate(); err != nil {
		return rrule.ROption{}, err
	}
	opt := rrule.ROption{
		Freq:     rruleFreq[p.Frequency],
		Dtstart:  dtstart,
		Interval: p.interval(),
		Wkst:     rrule.MO,
	}
	switch p.Frequency {
	case Workday:
		opt.Byweekday = rruleDays(calendar.Monday, calendar.Tuesday, calendar.Wednesday, calendar.Thursday, calendar.Friday)
	case Weekend:
		opt.Byweekday = rruleDays(calendar.Saturday, calendar.Sunday)
	case Weekly:
		opt.Byweekday = rruleDays(p.Weekdays...)
	case Monthly:
		if len(p.MonthDays) > 0 {
			opt.Bymonthday = append([]int(nil), p.MonthDays...)
			break
		}
		for _, wd := range p.Weekdays {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[wd].Nth(int(p.Ordinal)))
		}
	case Yearly:
		opt.Bymonth = []int{int(p.Month)}
		opt.Bymonthday = append([]int(nil), p.MonthDays...)
	}
	if p.TimeOfDay != nil {
		opt.Byhour = []int{p.TimeOfDay.Hour}
		opt.Byminute = []int{p.TimeOfDay.Minute}
		opt.Bysecond = []int{0}
	}
	return opt, nil
}

// RRule builds the rule for p starting at dtstart.
func (p Pattern) RRule(dtstart time.Time) (*rrule.RRule, error) {
	opt, err := p.ROption(dtstart)
	if err != nil {
		return nil, err
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return r, nil
}

func rruleDays(wds ...calendar.Weekday) []rrule.Weekday {
	out := make([]rrule.Weekday, 0, len(wds))
	for _, wd := range wds {
		out = append(out, rruleWeekdays[wd])
	}
	return out
}
