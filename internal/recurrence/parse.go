package recurrence

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agis/taskgen/internal/calendar"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokEvery
	tokOther
	tokAt
	tokNumber
	tokOrdinalNum
	tokOrdinalWord
	tokLast
	tokWeekday
	tokMonth
	tokUnit
	tokTime
	tokMeridiem
)

type token struct {
	kind    tokenKind
	text    string
	n       int
	weekday calendar.Weekday
	month   time.Month
	unit    Frequency
}

var unitWords = map[string]Frequency{
	"day": Daily, "days": Daily, "daily": Daily,
	"workday": Workday, "workdays": Workday, "weekday": Workday, "weekdays": Workday,
	"weekend": Weekend, "weekends": Weekend,
	"week": Weekly, "weeks": Weekly, "weekly": Weekly,
	"month": Monthly, "months": Monthly, "monthly": Monthly,
	"year": Yearly, "years": Yearly, "yearly": Yearly,
}

var ordinalWords = map[string]int{"first": 1, "second": 2, "third": 3, "fourth": 4}

func lex(input string) ([]token, bool, error) {
	strict := false
	var out []token
	for _, field := range strings.Fields(strings.ToLower(input)) {
		if strings.HasSuffix(field, "!") {
			strict = true
			field = strings.TrimRight(field, "!")
		}
		parts := strings.FieldsFunc(field, func(r rune) bool { return r == ',' })
		group := make([]token, 0, len(parts))
		for _, part := range parts {
			group = append(group, classify(part))
		}
		if err := checkWeekdayList(group); err != nil {
			return nil, false, err
		}
		out = append(out, group...)
	}
	return out, strict, nil
}

func classify(w string) token {
	t := token{kind: tokWord, text: w}
	switch w {
	case "every":
		t.kind = tokEvery
		return t
	case "other":
		t.kind = tokOther
		return t
	case "at", "@":
		t.kind = tokAt
		return t
	case "am", "pm":
		t.kind = tokMeridiem
		return t
	case "last":
		t.kind = tokLast
		return t
	}
	if n, ok := ordinalWords[w]; ok {
		t.kind, t.n = tokOrdinalWord, n
		return t
	}
	if u, ok := unitWords[w]; ok {
		t.kind, t.unit = tokUnit, u
		return t
	}
	if wd, err := calendar.ParseWeekday(w); err == nil {
		t.kind, t.weekday = tokWeekday, wd
		return t
	}
	if m, err := calendar.ParseMonth(w); err == nil {
		t.kind, t.month = tokMonth, m
		return t
	}
	if n, err := strconv.Atoi(w); err == nil {
		t.kind, t.n = tokNumber, n
		return t
	}
	if n, ok := ordinalNumeral(w); ok {
		t.kind, t.n = tokOrdinalNum, n
		return t
	}
	if looksLikeTime(w) {
		t.kind = tokTime
	}
	return t
}

func ordinalNumeral(w string) (int, bool) {
	if len(w) < 3 {
		return 0, false
	}
	switch w[len(w)-2:] {
	case "st", "nd", "rd", "th":
	default:
		return 0, false
	}
	n, err := strconv.Atoi(w[:len(w)-2])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func looksLikeTime(w string) bool {
	if w == "" || w[0] < '0' || w[0] > '9' {
		return false
	}
	return strings.Contains(w, ":") || strings.HasSuffix(w, "am") || strings.HasSuffix(w, "pm")
}

// checkWeekdayList rejects comma lists such as "monday,funday": once a list
// names a weekday, every alphabetic member must be one.
func checkWeekdayList(group []token) error {
	if len(group) < 2 || !slices.ContainsFunc(group, func(t token) bool { return t.kind == tokWeekday }) {
		return nil
	}
	for _, t := range group {
		if t.kind == tokWord {
			return fmt.Errorf("%w: %s", ErrInvalidWeekday, t.text)
		}
	}
	return nil
}

// Parse reads a recurrence expression. Unknown words are skipped; a missing
// component required by the detected frequency is ErrInvalidPattern.
func Parse(input string) (Pattern, error) {
	toks, strict, err := lex(input)
	if err != nil {
		return Pattern{}, err
	}
	if len(toks) == 0 {
		return Pattern{}, fmt.Errorf("%w: empty", ErrInvalidPattern)
	}

	p := Pattern{Interval: 1, Strict: strict}
	i := 0
	if toks[i].kind == tokEvery {
		i++
	}
	if i < len(toks) {
		switch t := toks[i]; {
		case t.kind == tokOther:
			p.Interval = 2
			i++
		case t.kind == tokNumber:
			if t.n < 1 {
				return Pattern{}, fmt.Errorf("%w: interval must be positive", ErrInvalidPattern)
			}
			p.Interval = t.n
			i++
		case t.kind == tokOrdinalNum && i+1 < len(toks) && toks[i+1].kind == tokUnit && !dayOfMonth(toks[i+1:]):
			// "every 2nd week"
			p.Interval = t.n
			i++
		}
	}

	var (
		units   []Frequency
		numbers []int
	)
	for ; i < len(toks); i++ {
		t := toks[i]
		next := func() (token, bool) {
			if i+1 < len(toks) {
				return toks[i+1], true
			}
			return token{}, false
		}
		switch t.kind {
		case tokAt:
			tod, consumed, err := parseTimeTokens(toks[i+1:])
			if err != nil {
				return Pattern{}, err
			}
			p.TimeOfDay = &tod
			i += consumed
		case tokWeekday:
			p.Weekdays = appendWeekday(p.Weekdays, t.weekday)
		case tokMonth:
			if p.Month == 0 {
				p.Month = t.month
			}
		case tokUnit:
			units = append(units, t.unit)
		case tokLast:
			if nt, ok := next(); ok && nt.kind == tokWeekday {
				p.Ordinal = calendar.Last
				continue
			}
			p.MonthDays = appendDay(p.MonthDays, LastDay)
		case tokOrdinalWord, tokOrdinalNum:
			if nt, ok := next(); ok && nt.kind == tokWeekday {
				if t.n > int(calendar.Fourth) {
					return Pattern{}, fmt.Errorf("%w: ordinal weekday must be 1st..4th or last, got %q", ErrInvalidPattern, t.text)
				}
				p.Ordinal = calendar.Ordinal(t.n)
				continue
			}
			p.MonthDays = appendDay(p.MonthDays, t.n)
		case tokNumber:
			numbers = append(numbers, t.n)
		}
	}

	switch {
	case slices.Contains(units, Workday):
		p.Frequency = Workday
	case slices.Contains(units, Weekend) && len(p.Weekdays) == 0:
		p.Frequency = Weekend
	case p.Month != 0:
		p.Frequency = Yearly
		for _, n := range numbers {
			p.MonthDays = appendDay(p.MonthDays, n)
		}
	case p.Ordinal != 0 && len(p.Weekdays) > 0:
		p.Frequency = Monthly
		p.MonthDays = nil
	case len(p.MonthDays) > 0:
		p.Frequency = Monthly
	case len(p.Weekdays) > 0:
		p.Frequency = Weekly
	case slices.Contains(units, Daily):
		p.Frequency = Daily
	case slices.Contains(units, Weekly):
		p.Frequency = Weekly
	case slices.Contains(units, Monthly):
		return Pattern{}, fmt.Errorf("%w: %q needs a day of month or an ordinal weekday", ErrInvalidPattern, input)
	case slices.Contains(units, Yearly):
		return Pattern{}, fmt.Errorf("%w: %q needs a month", ErrInvalidPattern, input)
	default:
		return Pattern{}, fmt.Errorf("%w: unrecognized %q", ErrInvalidPattern, input)
	}
	switch p.Frequency {
	case Monthly:
		if len(p.MonthDays) > 0 {
			p.Weekdays, p.Ordinal = nil, 0
		}
	case Weekly:
		p.Ordinal = 0
	case Yearly:
		p.Weekdays, p.Ordinal = nil, 0
	default:
		p.Weekdays, p.Ordinal, p.MonthDays = nil, 0, nil
	}
	if p.Frequency == Workday || p.Frequency == Weekend {
		p.Interval = 1
	}
	if err := p.Validate(); err != nil {
		return Pattern{}, err
	}
	return p, nil
}

// dayOfMonth reports whether toks, starting at the unit after an ordinal,
// read as a day of the month: "day of the month" rather than "2nd week".
func dayOfMonth(toks []token) bool {
	if toks[0].unit == Monthly {
		return false
	}
	return slices.ContainsFunc(toks[1:], func(t token) bool { return t.kind == tokUnit && t.unit == Monthly })
}

func parseTimeTokens(toks []token) (TimeOfDay, int, error) {
	if len(toks) == 0 {
		return TimeOfDay{}, 0, fmt.Errorf("%w: missing time after \"at\"", ErrInvalidPattern)
	}
	if k := toks[0].kind; k != tokTime && k != tokNumber {
		return TimeOfDay{}, 0, fmt.Errorf("%w: invalid time %q", ErrInvalidPattern, toks[0].text)
	}
	raw, consumed := toks[0].text, 1
	if len(toks) > 1 && toks[1].kind == tokMeridiem {
		// "5 pm", "8:15 am"
		raw += toks[1].text
		consumed++
	}
	tod, err := ParseTimeOfDay(raw)
	return tod, consumed, err
}

func appendWeekday(wds []calendar.Weekday, wd calendar.Weekday) []calendar.Weekday {
	if slices.Contains(wds, wd) {
		return wds
	}
	return append(wds, wd)
}

func appendDay(days []int, d int) []int {
	if slices.Contains(days, d) {
		return days
	}
	return append(days, d)
}
