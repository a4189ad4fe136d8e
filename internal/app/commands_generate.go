package app

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/agis/taskgen/internal/contract"
	"github.com/agis/taskgen/internal/fixture"
	"github.com/agis/taskgen/internal/output"
	"github.com/agis/taskgen/internal/recurrence"
	"github.com/agis/taskgen/internal/timeparse"
)

const sampleSize = 10

type recurringFlags struct {
	pattern     string
	spec        recurrence.Spec
	weekdays    string
	days        string
	content     string
	project     string
	rate        float64
	historyDays int
	outputDir   string
	dryRun      bool
}

func newRecurringCmd(opts *globalOptions) *cobra.Command {
	f := &recurringFlags{}
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Generate the recurring task fixture files",
		Long: `Build a recurrence from structured flags (or take --pattern as is), expand it
over the history window ending at --now and write the active task, completed task
and project files the dashboard tests load.`,
		Example: `  taskgen recurring --frequency weekly --weekdays mon,wed,fri --time 9am
  taskgen recurring --frequency monthly --week-number last --weekdays friday
  taskgen recurring --pattern "every other week" --completion-rate 0.8`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, log, ro, err := buildContext(cmd, opts, "recurring")
			if err != nil {
				return err
			}
			rec, err := f.recurrence()
			if err != nil {
				return fail(p, err)
			}
			if err := validateRate(f.rate); err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use a value in [0, 1]", 2)
			}
			if f.historyDays < 0 {
				return failWithHint(p, contract.ErrInvalidUsage, fmt.Errorf("--history-days must not be negative"), "", 2)
			}

			w := recurrence.Window{Start: ro.anchor.AddDate(0, 0, -f.historyDays), End: ro.anchor}
			res, err := ro.builder().Recurring(fixture.RecurringRequest{
				Content:        f.content,
				ProjectName:    f.project,
				Recurrence:     rec,
				Window:         w,
				CompletionRate: f.rate,
			})
			if err != nil {
				return fail(p, err)
			}

			dir := firstNonEmpty(f.outputDir, ro.OutputDir)
			var files []string
			if !f.dryRun {
				files, err = fixture.WriteRecurring(dir, res.Dataset)
				if err != nil {
					return fail(p, err)
				}
			}
			log.Info().
				Str("recurrence", rec).
				Int("completed", len(res.Occurrences)).
				Str("dir", dir).
				Bool("dry_run", f.dryRun).
				Msg("generated completions")

			summary := summarize(res.Dataset, files)
			summary.Recurrence = rec
			summary.NextDue = timeparse.FormatTimestamp(res.NextDue)

			rows := []output.Row{
				{Label: "recurrence", Value: rec},
				{Label: "completion rate", Value: strconv.FormatFloat(f.rate*100, 'f', -1, 64) + "%"},
				{Label: "completed", Value: humanize.Comma(int64(summary.Completed))},
				{Label: "next due", Value: summary.NextDue},
			}
			rows = append(rows, fileRows(files)...)
			for i, at := range res.Occurrences[:min(sampleSize, len(res.Occurrences))] {
				label := ""
				if i == 0 {
					label = "first dates"
				}
				rows = append(rows, output.Row{Label: label, Value: at.Format("2006-01-02 (Monday) 15:04")})
			}
			meta := map[string]any{
				"history_days":    f.historyDays,
				"completion_rate": f.rate,
				"dry_run":         f.dryRun,
			}
			return p.Summary("Generated recurring task fixtures", rows, summary, meta, nil)
		},
	}
	cmd.Flags().StringVar(&f.pattern, "pattern", "", "Recurrence string; overrides the structured flags")
	cmd.Flags().StringVar(&f.spec.Frequency, "frequency", "weekly", "daily|workday|weekend|weekly|monthly|yearly")
	cmd.Flags().StringVar(&f.spec.Time, "time", "", "Time of day (HH:MM or 9am)")
	cmd.Flags().StringVar(&f.days, "days", "", "Days of the month, e.g. 1,15 or last")
	cmd.Flags().StringVar(&f.weekdays, "weekdays", "monday", "Weekdays, e.g. mon,wed,fri")
	cmd.Flags().StringVar(&f.spec.WeekNumber, "week-number", "", "Week of the month for monthly patterns: 1st..4th or last")
	cmd.Flags().StringVar(&f.spec.Month, "month", "", "Month for yearly patterns")
	cmd.Flags().IntVar(&f.spec.Interval, "interval", 1, "Interval between occurrences (2 = every other)")
	cmd.Flags().BoolVar(&f.spec.Strict, "strict", false, "Mark the recurrence strict (every!)")
	cmd.Flags().StringVar(&f.content, "content", "", "Task content")
	cmd.Flags().StringVar(&f.project, "project", "", "Project name")
	cmd.Flags().Float64Var(&f.rate, "completion-rate", 1, "Fraction of occurrences completed, in [0, 1]")
	cmd.Flags().IntVar(&f.historyDays, "history-days", 180, "Days of history before --now")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "Directory for the fixture files (default from config, else .)")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false, "Generate without writing files")
	return cmd
}

// recurrence returns the recurrence string the flags describe. Weekdays only
// feed weekly patterns and monthly week-number patterns.
func (f *recurringFlags) recurrence() (string, error) {
	if strings.TrimSpace(f.pattern) != "" {
		p, err := recurrence.Parse(f.pattern)
		if err != nil {
			return "", err
		}
		return p.String(), nil
	}
	spec := f.spec
	spec.Days = splitCSV(f.days)
	switch strings.ToLower(strings.TrimSpace(spec.Frequency)) {
	case string(recurrence.Weekly):
		spec.Weekdays = splitCSV(f.weekdays)
	case string(recurrence.Monthly):
		if spec.WeekNumber != "" {
			spec.Weekdays = splitCSV(f.weekdays)
		}
	}
	return recurrence.Compose(spec)
}

func newDateFilterCmd(opts *globalOptions) *cobra.Command {
	var outPath string
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "datefilter",
		Short: "Generate the date-range filter dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, log, ro, err := buildContext(cmd, opts, "datefilter")
			if err != nil {
				return err
			}
			path := firstNonEmpty(outPath, filepath.Join(ro.OutputDir, "date-filter-test.json"))
			ds := ro.builder().DateFilter(fixture.DefaultPeriods)

			var files []string
			if !dryRun {
				if err := fixture.WriteDataset(path, ds); err != nil {
					return fail(p, err)
				}
				files = []string{path}
			}
			log.Info().Int("completed", len(ds.AllCompletedTasks)).Str("path", path).Bool("dry_run", dryRun).Msg("generated date filter dataset")

			rows := make([]output.Row, 0, len(fixture.DefaultPeriods)+4)
			for _, period := range fixture.DefaultPeriods {
				rows = append(rows, output.Row{Label: period.Name, Value: humanize.Comma(int64(period.Count))})
			}
			summary := summarize(ds, files)
			rows = append(rows,
				output.Row{Label: "projects", Value: strconv.Itoa(summary.Projects)},
				output.Row{Label: "completed", Value: humanize.Comma(int64(summary.Completed))},
			)
			rows = append(rows, fileRows(files)...)
			return p.Summary("Generated date filter dataset", rows, summary, map[string]any{"periods": len(fixture.DefaultPeriods), "dry_run": dryRun}, nil)
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file (default <output_dir>/date-filter-test.json)")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Generate without writing files")
	return cmd
}

func summarize(ds fixture.Dataset, files []string) contract.GenerationSummary {
	if files == nil {
		files = []string{}
	}
	return contract.GenerationSummary{
		GenerationID: ds.GenerationID,
		Completed:    len(ds.AllCompletedTasks),
		Active:       len(ds.ActiveTasks),
		Projects:     len(ds.ProjectData),
		Files:        files,
	}
}

func fileRows(files []string) []output.Row {
	rows := make([]output.Row, 0, len(files))
	for i, f := range files {
		label := ""
		if i == 0 {
			label = "wrote"
		}
		rows = append(rows, output.Row{Label: label, Value: f})
	}
	return rows
}
