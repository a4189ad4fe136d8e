package app

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agis/taskgen/internal/contract"
	"github.com/agis/taskgen/internal/fixture"
	"github.com/agis/taskgen/internal/output"
	"github.com/agis/taskgen/internal/recurrence"
)

func newBatchCmd(opts *globalOptions) *cobra.Command {
	var filePath string
	var outPath string
	var rate float64
	var historyDays int
	var dryRun bool
	var continueOnError bool
	var strict bool
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Expand many recurring task templates into one dataset",
		Long: `Read recurring task templates from a YAML file (or use the built-in set),
expand each over the history window and write one dataset. Templates that fail
to parse or expand are reported per row and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			p, log, ro, err := buildContext(c, opts, "batch")
			if err != nil {
				return err
			}
			if strict {
				continueOnError = false
			}
			if err := validateRate(rate); err != nil {
				return failWithHint(p, contract.ErrInvalidUsage, err, "Use a value in [0, 1]", 2)
			}
			if historyDays < 0 {
				return failWithHint(p, contract.ErrInvalidUsage, fmt.Errorf("--history-days must not be negative"), "", 2)
			}

			tpls := fixture.DefaultTemplates()
			source := "built-in"
			if strings.TrimSpace(filePath) != "" {
				raw, err := readTextInput(filePath)
				if err != nil {
					return failWithHint(p, contract.ErrInvalidUsage, err, "Check file path or stdin", 2)
				}
				tpls, err = fixture.LoadTemplates(bytes.NewReader(raw))
				if err != nil {
					return failWithHint(p, contract.ErrInvalidUsage, err, "Templates are a YAML list under a top-level templates key", 2)
				}
				source = filePath
			}

			w := recurrence.Window{Start: ro.anchor.AddDate(0, 0, -historyDays), End: ro.anchor}
			ds, built := ro.builder().Templates(tpls, w, rate, !continueOnError)

			results := make([]contract.BatchResult, 0, len(built))
			errorsCount := 0
			for _, r := range built {
				row := contract.BatchResult{
					Line:       r.Template.Line,
					Name:       r.Template.Content,
					Recurrence: r.Recurrence,
					Completed:  r.Completed,
					OK:         r.Err == nil,
				}
				if r.Err != nil {
					errorsCount++
					row.Error = r.Err.Error()
					log.Warn().Err(r.Err).Int("line", r.Template.Line).Msg("skipped template")
				}
				results = append(results, row)
			}

			path := firstNonEmpty(outPath, filepath.Join(ro.OutputDir, "recurring-dataset.json"))
			written := ""
			if !dryRun && (errorsCount == 0 || continueOnError) {
				if err := fixture.WriteDataset(path, ds); err != nil {
					return fail(p, err)
				}
				written = path
			}
			log.Info().
				Str("source", source).
				Int("templates", len(tpls)).
				Int("errors", errorsCount).
				Int("completed", len(ds.AllCompletedTasks)).
				Msg("expanded templates")

			meta := map[string]any{
				"count":         len(results),
				"errors":        errorsCount,
				"dry_run":       dryRun,
				"source":        source,
				"generation_id": ds.GenerationID,
				"completed":     len(ds.AllCompletedTasks),
				"file":          written,
			}
			if len(p.Fields) == 0 && p.Mode != output.ModeJSON && p.Mode != output.ModeJSONL {
				p.Fields = []string{"line", "ok", "completed", "recurrence", "error"}
			}
			if errorsCount > 0 {
				_ = p.Success(results, meta, nil)
				return WrapPrinted(1, fmt.Errorf("batch completed with %d error(s)", errorsCount))
			}
			return p.Success(results, meta, nil)
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "YAML template file or - for stdin (default: built-in templates)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Output file (default <output_dir>/recurring-dataset.json)")
	cmd.Flags().Float64Var(&rate, "completion-rate", 1, "Fraction of occurrences completed, in [0, 1]")
	cmd.Flags().IntVar(&historyDays, "history-days", 180, "Days of history before --now")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Expand without writing the dataset")
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", true, "Continue processing after row errors")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail fast on first row error")
	return cmd
}
