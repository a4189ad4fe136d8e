// Package calendar holds the date arithmetic shared by the recurrence
// generators. Weekdays are numbered Monday=0 through Sunday=6.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrOutOfRange     = errors.New("ordinal weekday out of range")
	ErrInvalidWeekday = errors.New("invalid weekday")
	ErrInvalidMonth   = errors.New("invalid month")
)

type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

func (d Weekday) Short() string {
	return d.String()[:3]
}

func (d Weekday) Time() time.Weekday {
	return time.Weekday((int(d) + 1) % 7)
}

func FromTime(wd time.Weekday) Weekday {
	return Weekday((int(wd) + 6) % 7)
}

func WeekdayOf(t time.Time) Weekday {
	return FromTime(t.Weekday())
}

func (d Weekday) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

func ParseWeekday(v string) (Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "mon", "monday":
		return Monday, nil
	case "tue", "tues", "tuesday":
		return Tuesday, nil
	case "wed", "wednesday":
		return Wednesday, nil
	case "thu", "thur", "thurs", "thursday":
		return Thursday, nil
	case "fri", "friday":
		return Friday, nil
	case "sat", "saturday":
		return Saturday, nil
	case "sun", "sunday":
		return Sunday, nil
	default:
		return Monday, fmt.Errorf("%w: %s", ErrInvalidWeekday, v)
	}
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

func ParseMonth(v string) (time.Month, error) {
	if m, ok := monthNames[strings.ToLower(strings.TrimSpace(v))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrInvalidMonth, v)
}

// IsLeapYear reports whether year is a leap year in the proleptic Gregorian calendar.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func LastDayOfMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// ClampDay returns day, or the month's last day when day is past it.
func ClampDay(year int, month time.Month, day int) int {
	if last := LastDayOfMonth(year, month); day > last {
		return last
	}
	return day
}

// Clock is a wall-clock time of day applied to generated dates.
type Clock struct {
	Hour, Minute, Second, Nanosecond int
}

func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond()}
}

func (c Clock) On(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, c.Hour, c.Minute, c.Second, c.Nanosecond, loc)
}

// DateIn builds the date only if (year, month, day) exists; time.Date would
// silently normalize Feb 29 into Mar 1.
func DateIn(year int, month time.Month, day int, clock Clock, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 || day > LastDayOfMonth(year, month) {
		return time.Time{}, false
	}
	return clock.On(year, month, day, loc), true
}

// AddYearsSkipInvalid moves t by years keeping month, day and wall clock.
// It reports false when the date does not exist in the target year.
func AddYearsSkipInvalid(t time.Time, years int) (time.Time, bool) {
	return DateIn(t.Year()+years, t.Month(), t.Day(), ClockOf(t), t.Location())
}

// Ordinal selects the nth weekday of a month. Last is the final one.
type Ordinal int

const (
	Last   Ordinal = -1
	First  Ordinal = 1
	Second Ordinal = 2
	Third  Ordinal = 3
	Fourth Ordinal = 4
)

func (o Ordinal) String() string {
	switch o {
	case Last:
		return "last"
	case First:
		return "1st"
	case Second:
		return "2nd"
	case Third:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", int(o))
	}
}

func ResolveOrdinalWeekday(year int, month time.Month, ord Ordinal, wd Weekday, clock Clock, loc *time.Location) (time.Time, error) {
	last := LastDayOfMonth(year, month)
	if ord == Last {
		lastWd := WeekdayOf(time.Date(year, month, last, 12, 0, 0, 0, time.UTC))
		back := (int(lastWd) - int(wd) + 7) % 7
		return clock.On(year, month, last-back, loc), nil
	}
	if ord < First {
		return time.Time{}, fmt.Errorf("%w: %d", ErrOutOfRange, int(ord))
	}
	firstWd := WeekdayOf(time.Date(year, month, 1, 12, 0, 0, 0, time.UTC))
	day := 1 + (int(wd)-int(firstWd)+7)%7 + 7*(int(ord)-1)
	if day > last {
		return time.Time{}, fmt.Errorf("%w: no %s %s in %s %d", ErrOutOfRange, ord, wd, month, year)
	}
	return clock.On(year, month, day, loc), nil
}

// MondayOf returns the Monday of t's week at t's wall clock.
func MondayOf(t time.Time) time.Time {
	return t.AddDate(0, 0, -int(WeekdayOf(t)))
}

// MonthsBetween counts whole calendar months from a's month to b's month.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
