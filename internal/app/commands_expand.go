package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/agis/taskgen/internal/calendar"
	"github.com/agis/taskgen/internal/contract"
	"github.com/agis/taskgen/internal/output"
	"github.com/agis/taskgen/internal/recurrence"
	"github.com/agis/taskgen/internal/timeparse"
)

func newExpandCmd(opts *globalOptions) *cobra.Command {
	var fromS, toS string
	var rate float64
	var limit int
	cmd := &cobra.Command{
		Use:   "expand <pattern>",
		Short: "List the occurrences of a recurrence pattern inside a window",
		Example: `  taskgen expand "every other friday at 5pm" --from -90d
  taskgen expand every weekday --from 2024-01-01 --to 2024-01-31 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, log, ro, err := buildContext(cmd, opts, "expand")
			if err != nil {
				return err
			}
			pattern, err := recurrence.Parse(strings.Join(args, " "))
			if err != nil {
				return fail(p, err)
			}
			w, err := parseWindow(fromS, toS, ro.anchor)
			if err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use RFC3339, YYYY-MM-DD, today, now, or offsets like -30d", 2)
			}
			if err := validateRate(rate); err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use a value in [0, 1]", 2)
			}

			occ, err := recurrence.Expand(pattern, w)
			if err != nil {
				return fail(p, err)
			}
			total := len(occ)
			occ = recurrence.Thin(occ, rate, ro.builder().Rand())

			var warnings []string
			if limit > 0 && len(occ) > limit {
				warnings = append(warnings, fmt.Sprintf("showing %d of %s occurrences", limit, humanize.Comma(int64(len(occ)))))
				occ = occ[:limit]
			}
			log.Debug().Int("total", total).Int("kept", len(occ)).Stringer("pattern", pattern).Msg("expanded pattern")

			rows := make([]contract.Occurrence, 0, len(occ))
			for i, at := range occ {
				rows = append(rows, contract.Occurrence{
					Index:   i + 1,
					At:      timeparse.FormatTimestamp(at),
					Weekday: calendar.WeekdayOf(at).String(),
				})
			}
			meta := map[string]any{
				"count":   len(rows),
				"total":   total,
				"pattern": pattern.String(),
				"from":    timeparse.FormatTimestamp(w.Start),
				"to":      timeparse.FormatTimestamp(w.End),
			}
			if len(p.Fields) == 0 && (p.Mode == output.ModeAuto || p.Mode == output.ModePlain) {
				p.Fields = []string{"at", "weekday"}
			}
			return p.Success(rows, meta, warnings)
		},
	}
	cmd.Flags().StringVar(&fromS, "from", "-30d", "Window start")
	cmd.Flags().StringVar(&toS, "to", "now", "Window end (a bare date covers the whole day)")
	cmd.Flags().Float64Var(&rate, "completion-rate", 1, "Fraction of occurrences to keep, in [0, 1]")
	cmd.Flags().IntVar(&limit, "limit", 0, "Print at most this many occurrences (0 = all)")
	return cmd
}

func newExplainCmd(opts *globalOptions) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "explain <pattern>",
		Short: "Show how a recurrence pattern is understood",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, ro, err := buildContext(cmd, opts, "explain")
			if err != nil {
				return err
			}
			input := strings.Join(args, " ")
			pattern, err := recurrence.Parse(input)
			if err != nil {
				return fail(p, err)
			}
			ex, err := explain(input, pattern, ro.anchor, count)
			if err != nil {
				return fail(p, err)
			}
			return p.Summary(ex.Canonical, explanationRows(ex), ex, map[string]any{"now": timeparse.FormatTimestamp(ro.anchor)}, nil)
		},
	}
	cmd.Flags().IntVar(&count, "next", 3, "Number of upcoming occurrences to list")
	return cmd
}

// explain describes pattern and lists up to count occurrences after now.
func explain(input string, pattern recurrence.Pattern, now time.Time, count int) (contract.Explanation, error) {
	r, err := pattern.RRule(now)
	if err != nil {
		return contract.Explanation{}, err
	}
	ex := contract.Explanation{
		Input:     input,
		Canonical: pattern.String(),
		Frequency: string(pattern.Frequency),
		Interval:  max(pattern.Interval, 1),
		Strict:    pattern.Strict,
		RRule:     r.OrigOptions.RRuleString(),
	}
	for _, wd := range pattern.Weekdays {
		ex.Weekdays = append(ex.Weekdays, wd.String())
	}
	for _, d := range pattern.MonthDays {
		if d == recurrence.LastDay {
			ex.MonthDays = append(ex.MonthDays, "last")
			continue
		}
		ex.MonthDays = append(ex.MonthDays, strconv.Itoa(d))
	}
	if pattern.Ordinal != 0 {
		ex.Ordinal = pattern.Ordinal.String()
	}
	if pattern.Month != 0 {
		ex.Month = strings.ToLower(pattern.Month.String())
	}
	if pattern.TimeOfDay != nil {
		ex.Time = pattern.TimeOfDay.String()
	}

	w := recurrence.Window{Start: now, End: now}
	for range count {
		next, err := recurrence.Next(pattern, w)
		if err != nil {
			return ex, err
		}
		ex.Next = append(ex.Next, timeparse.FormatTimestamp(next))
		w.End = next
	}
	return ex, nil
}

func explanationRows(ex contract.Explanation) []output.Row {
	rows := []output.Row{
		{Label: "input", Value: ex.Input},
		{Label: "frequency", Value: ex.Frequency},
		{Label: "interval", Value: strconv.Itoa(ex.Interval)},
	}
	optional := []output.Row{
		{Label: "weekdays", Value: strings.Join(ex.Weekdays, ", ")},
		{Label: "days", Value: strings.Join(ex.MonthDays, ", ")},
		{Label: "ordinal", Value: ex.Ordinal},
		{Label: "month", Value: ex.Month},
		{Label: "time", Value: ex.Time},
	}
	for _, r := range optional {
		if r.Value != "" {
			rows = append(rows, r)
		}
	}
	if ex.Strict {
		rows = append(rows, output.Row{Label: "strict", Value: "yes"})
	}
	rows = append(rows, output.Row{Label: "rrule", Value: ex.RRule})
	for i, n := range ex.Next {
		label := ""
		if i == 0 {
			label = "next"
		}
		rows = append(rows, output.Row{Label: label, Value: n})
	}
	return rows
}

func parseWindow(fromS, toS string, anchor time.Time) (recurrence.Window, error) {
	from, err := parseBound(fromS, anchor, false)
	if err != nil {
		return recurrence.Window{}, fmt.Errorf("invalid --from: %w", err)
	}
	to, err := parseBound(toS, anchor, true)
	if err != nil {
		return recurrence.Window{}, fmt.Errorf("invalid --to: %w", err)
	}
	if to.Before(from) {
		return recurrence.Window{}, fmt.Errorf("--to must not be earlier than --from")
	}
	return recurrence.Window{Start: from, End: to}, nil
}

func validateRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return fmt.Errorf("--completion-rate must be in [0, 1], got %v", rate)
	}
	return nil
}
