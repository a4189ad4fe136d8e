package recurrence

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agis/taskgen/internal/calendar"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dates(ts []time.Time) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Format("2006-01-02"))
	}
	return out
}

func mustExpand(t *testing.T, pattern string, w Window) []time.Time {
	t.Helper()
	got, err := ExpandString(pattern, w)
	require.NoError(t, err)
	return got
}

func TestExpandEveryMonday(t *testing.T) {
	got := mustExpand(t, "every monday", Window{Start: day(2024, 1, 1), End: day(2024, 1, 31)})
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"}, dates(got))
}

func TestExpandEveryOtherFriday(t *testing.T) {
	got := mustExpand(t, "every other friday", Window{Start: day(2024, 1, 1), End: day(2024, 3, 1)})
	assert.Equal(t, []string{"2024-01-05", "2024-01-19", "2024-02-02", "2024-02-16", "2024-03-01"}, dates(got))
	for i := 1; i < len(got); i++ {
		assert.Equal(t, 14*24*time.Hour, got[i].Sub(got[i-1]))
	}
}

func TestExpandMonthlyLastDay(t *testing.T) {
	got := mustExpand(t, "every last day", Window{Start: day(2024, 1, 1), End: day(2024, 4, 30)})
	assert.Equal(t, []string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"}, dates(got))
}

func TestExpandMonthlyClampsDay31(t *testing.T) {
	got := mustExpand(t, "every 31st", Window{Start: day(2024, 4, 1), End: day(2024, 4, 30)})
	assert.Equal(t, []string{"2024-04-30"}, dates(got))

	got = mustExpand(t, "every 30th,31st", Window{Start: day(2024, 4, 1), End: day(2024, 5, 31)})
	assert.Equal(t, []string{"2024-04-30", "2024-05-30", "2024-05-31"}, dates(got))
}

func TestExpandMonthlyInterval(t *testing.T) {
	got := mustExpand(t, "every 2 months on the 10th", Window{Start: day(2024, 1, 15), End: day(2024, 7, 31)})
	assert.Equal(t, []string{"2024-03-10", "2024-05-10", "2024-07-10"}, dates(got))
}

func TestExpandMonthlyOrdinal(t *testing.T) {
	got := mustExpand(t, "every 2nd tuesday", Window{Start: day(2024, 1, 1), End: day(2024, 3, 31)})
	assert.Equal(t, []string{"2024-01-09", "2024-02-13", "2024-03-12"}, dates(got))

	got = mustExpand(t, "every last friday", Window{Start: day(2024, 1, 1), End: day(2024, 3, 31)})
	assert.Equal(t, []string{"2024-01-26", "2024-02-23", "2024-03-29"}, dates(got))
}

func TestExpandOrdinalDayOfMonth(t *testing.T) {
	got := mustExpand(t, "every 2nd day of the month", Window{Start: day(2024, 1, 1), End: day(2024, 3, 1)})
	assert.Equal(t, []string{"2024-01-02", "2024-02-02"}, dates(got))
}

func TestExpandEveryOtherWeekSeveralWeekdays(t *testing.T) {
	// Both weekdays share the Monday anchor of the first week.
	got := mustExpand(t, "every other mon,fri", Window{Start: day(2024, 1, 1), End: day(2024, 1, 31)})
	assert.Equal(t, []string{"2024-01-01", "2024-01-05", "2024-01-15", "2024-01-19", "2024-01-29"}, dates(got))
}

func TestExpandYearlySkipsFeb29(t *testing.T) {
	got := mustExpand(t, "every february 29th", Window{Start: day(2023, 1, 1), End: day(2023, 12, 31)})
	assert.Empty(t, got)

	got = mustExpand(t, "every february 29th", Window{Start: day(2020, 1, 1), End: day(2028, 12, 31)})
	assert.Equal(t, []string{"2020-02-29", "2024-02-29", "2028-02-29"}, dates(got))
}

func TestExpandYearlyInterval(t *testing.T) {
	got := mustExpand(t, "every 2 years on january 1st", Window{Start: day(2023, 1, 1), End: day(2028, 12, 31)})
	assert.Equal(t, []string{"2023-01-01", "2025-01-01", "2027-01-01"}, dates(got))
}

func TestExpandYearlyLastDay(t *testing.T) {
	got := mustExpand(t, "every february last", Window{Start: day(2023, 1, 1), End: day(2024, 12, 31)})
	assert.Equal(t, []string{"2023-02-28", "2024-02-29"}, dates(got))
}

func TestExpandKeepsOffsetAndClock(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	w := Window{
		Start: time.Date(2024, 3, 1, 9, 0, 0, 0, est),
		End:   time.Date(2024, 3, 5, 23, 0, 0, 0, est),
	}
	got := mustExpand(t, "every day at 5pm", w)
	require.Len(t, got, 5)
	for _, ts := range got {
		_, offset := ts.Zone()
		assert.Equal(t, -5*3600, offset)
		assert.Equal(t, 17, ts.Hour())
		assert.Equal(t, 0, ts.Minute())
	}
}

func TestExpandDailyClockBeforeStart(t *testing.T) {
	w := Window{
		Start: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 3, 23, 0, 0, 0, time.UTC),
	}
	got := mustExpand(t, "every day at 9am", w)
	assert.Equal(t, []string{"2024-01-02", "2024-01-03"}, dates(got))
}

func TestExpandAcrossDSTKeepsWallClock(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	w := Window{
		Start: time.Date(2024, 3, 8, 9, 30, 0, 0, ny),
		End:   time.Date(2024, 3, 12, 9, 30, 0, 0, ny),
	}
	got := mustExpand(t, "every day", w)
	require.Len(t, got, 5)
	for _, ts := range got {
		assert.Equal(t, 9, ts.Hour())
		assert.Equal(t, 30, ts.Minute())
	}
	_, before := got[0].Zone()
	_, after := got[4].Zone()
	assert.Equal(t, -5*3600, before)
	assert.Equal(t, -4*3600, after)
}

func TestExpandWorkdayMatchesNaiveFilter(t *testing.T) {
	starts := []time.Time{
		time.Date(2024, 1, 6, 8, 0, 0, 0, time.UTC), // Saturday
		time.Date(2024, 1, 7, 8, 0, 0, 0, time.UTC), // Sunday
		time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC), // Friday
		time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC),
	}
	for _, start := range starts {
		w := Window{Start: start, End: start.AddDate(0, 2, 0)}
		got := mustExpand(t, "every workday", w)

		var want []time.Time
		for _, d := range mustExpand(t, "every day", w) {
			if !calendar.WeekdayOf(d).IsWeekend() {
				want = append(want, d)
			}
		}
		assert.Equal(t, want, got, "start %s", start.Weekday())
	}
}

func TestExpandWeekendIsSaturdayAndSunday(t *testing.T) {
	w := Window{Start: time.Date(2024, 1, 3, 7, 0, 0, 0, time.UTC), End: time.Date(2024, 4, 14, 7, 0, 0, 0, time.UTC)}
	got := mustExpand(t, "every weekend", w)

	sat := mustExpand(t, "every saturday", w)
	sun := mustExpand(t, "every sunday", w)
	assert.Equal(t, sortOccurrences(append(sat, sun...)), got)

	naive := mustExpand(t, "every sat,sun", w)
	assert.Equal(t, naive, got)
}

func TestExpandProperties(t *testing.T) {
	w := Window{
		Start: time.Date(2023, 11, 15, 10, 30, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 20, 8, 0, 0, 0, time.UTC),
	}
	patterns := []string{
		"every day", "every 5 days at 6am", "every workday", "every weekend",
		"every wednesday", "every other friday at 5pm", "every 3 weeks on mon,thu",
		"every 31st", "every 1st,15th,last", "every 3rd sunday", "every last monday",
		"every march 31st", "every feb 29", "every 2 years on december 15th",
	}
	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			got := mustExpand(t, pattern, w)
			require.NotEmpty(t, got)
			for i, ts := range got {
				assert.True(t, w.Contains(ts), "%s outside window", ts)
				if i > 0 {
					assert.True(t, ts.After(got[i-1]), "not strictly ascending at %d", i)
				}
			}
		})
	}
}

func TestExpandWeeklyLandsOnWeekday(t *testing.T) {
	w := Window{Start: day(2024, 2, 14), End: day(2024, 11, 2)}
	for wd := calendar.Monday; wd <= calendar.Sunday; wd++ {
		for _, n := range []int{1, 2, 3} {
			p := Pattern{Frequency: Weekly, Interval: n, Weekdays: []calendar.Weekday{wd}}
			got, err := Expand(p, w)
			require.NoError(t, err)
			require.NotEmpty(t, got)
			for _, ts := range got {
				assert.Equal(t, wd, calendar.WeekdayOf(ts))
			}
		}
	}
}

func TestExpandWeeklyDefaultsToStartWeekday(t *testing.T) {
	// 2024-01-03 is a Wednesday.
	got := mustExpand(t, "every week", Window{Start: day(2024, 1, 3), End: day(2024, 1, 31)})
	assert.Equal(t, []string{"2024-01-03", "2024-01-10", "2024-01-17", "2024-01-24", "2024-01-31"}, dates(got))
}

func TestExpandErrors(t *testing.T) {
	_, err := Expand(Pattern{Frequency: Yearly}, Window{Start: day(2024, 1, 1), End: day(2024, 2, 1)})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = Expand(Pattern{Frequency: Monthly}, Window{Start: day(2024, 1, 1), End: day(2024, 2, 1)})
	assert.ErrorIs(t, err, ErrInvalidPattern)

	_, err = ExpandString("every day", Window{Start: day(2024, 2, 1), End: day(2024, 1, 1)})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = ExpandString("every day", Window{End: day(2024, 1, 1)})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestExpandSingleInstantWindow(t *testing.T) {
	at := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	got := mustExpand(t, "every monday", Window{Start: at, End: at})
	assert.Equal(t, []time.Time{at}, got)
}

func TestNext(t *testing.T) {
	tests := []struct {
		pattern string
		w       Window
		want    string
	}{
		{"every monday", Window{Start: day(2024, 1, 1), End: day(2024, 1, 31)}, "2024-02-05"},
		{"every other friday", Window{Start: day(2024, 1, 1), End: day(2024, 3, 1)}, "2024-03-15"},
		{"every last day", Window{Start: day(2024, 1, 1), End: day(2024, 2, 10)}, "2024-02-29"},
		{"every feb 29", Window{Start: day(2024, 3, 1), End: day(2024, 12, 31)}, "2028-02-29"},
		{"every workday", Window{Start: day(2024, 1, 1), End: day(2024, 1, 5)}, "2024-01-08"},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			p, err := Parse(tt.pattern)
			require.NoError(t, err)
			got, err := Next(p, tt.w)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.True(t, got.After(tt.w.End))
		})
	}
}

func TestNextInvalidWindow(t *testing.T) {
	p, err := Parse("every day")
	require.NoError(t, err)
	_, err = Next(p, Window{Start: day(2024, 2, 1), End: day(2024, 1, 1)})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
