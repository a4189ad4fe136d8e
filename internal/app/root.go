package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agis/taskgen/internal/contract"
	"github.com/agis/taskgen/internal/fixture"
	"github.com/agis/taskgen/internal/logger"
	"github.com/agis/taskgen/internal/output"
	"github.com/agis/taskgen/internal/timeparse"
)

// defaultNow is the anchor the dashboard fixtures were first generated
// against. Pass --now now to anchor on the wall clock instead.
const defaultNow = "2024-12-15T09:28:13-05:00"

type globalOptions struct {
	JSON          bool
	JSONL         bool
	Plain         bool
	Fields        string
	Quiet         bool
	Verbose       bool
	NoColor       bool
	Profile       string
	Config        string
	TZ            string
	Now           string
	Seed          uint64
	LogLevel      string
	OutputDir     string
	UserID        string
	SchemaVersion string

	anchor time.Time
}

func Execute() int {
	cmd := NewRootCommand()
	err := cmd.Execute()
	if err != nil {
		renderTopLevelError(cmd, err)
	}
	return ExitCode(err)
}

func NewRootCommand() *cobra.Command {
	opts := &globalOptions{
		Profile:       "default",
		Now:           defaultNow,
		LogLevel:      "info",
		OutputDir:     ".",
		UserID:        fixture.DefaultUserID,
		SchemaVersion: contract.SchemaVersion,
	}

	root := &cobra.Command{
		Use:           "taskgen",
		Short:         "Expand recurrence patterns and generate task completion fixtures",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       BuildVersionString(),
	}
	root.SetVersionTemplate("taskgen {{.Version}}\n")

	root.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output structured JSON")
	root.PersistentFlags().BoolVar(&opts.JSONL, "jsonl", false, "Output newline-delimited JSON")
	root.PersistentFlags().BoolVar(&opts.Plain, "plain", false, "Output stable plain text")
	root.PersistentFlags().StringVar(&opts.Fields, "fields", "", "Projected fields, comma-separated")
	root.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Reduce success output")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Verbose diagnostics")
	root.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "Disable color output")
	root.PersistentFlags().StringVar(&opts.Profile, "profile", "default", "Config profile")
	root.PersistentFlags().StringVar(&opts.Config, "config", "", "Config file path")
	root.PersistentFlags().StringVar(&opts.TZ, "tz", "", "IANA timezone for generated timestamps")
	root.PersistentFlags().StringVar(&opts.Now, "now", defaultNow, "Anchor instant (RFC3339, YYYY-MM-DD, or now)")
	root.PersistentFlags().Uint64Var(&opts.Seed, "seed", 0, "Seed for thinning and generated ids")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug|info|warn|error|disabled")
	root.PersistentFlags().StringVar(&opts.SchemaVersion, "schema-version", contract.SchemaVersion, "Output schema version")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newExpandCmd(opts))
	root.AddCommand(newExplainCmd(opts))
	root.AddCommand(newRecurringCmd(opts))
	root.AddCommand(newBatchCmd(opts))
	root.AddCommand(newDateFilterCmd(opts))
	root.AddCommand(newCompletionCmd(root))

	return root
}

func buildContext(cmd *cobra.Command, opts *globalOptions, command string) (output.Printer, zerolog.Logger, *globalOptions, error) {
	resolved, err := resolveGlobalOptions(cmd, opts)
	if err != nil {
		return output.Printer{}, logger.Nop(), nil, Wrap(2, err)
	}
	if conflictCount(resolved.JSON, resolved.JSONL, resolved.Plain) > 1 {
		return output.Printer{}, logger.Nop(), nil, Wrap(2, errors.New("--json, --jsonl, and --plain are mutually exclusive"))
	}
	mode := output.ModeAuto
	if resolved.JSON {
		mode = output.ModeJSON
	} else if resolved.JSONL {
		mode = output.ModeJSONL
	} else if resolved.Plain {
		mode = output.ModePlain
	}

	printer := output.Printer{
		Mode:          mode,
		Command:       command,
		Fields:        splitCSV(resolved.Fields),
		Quiet:         resolved.Quiet,
		NoColor:       resolved.NoColor,
		SchemaVersion: resolved.SchemaVersion,
		Out:           cmd.OutOrStdout(),
		Err:           cmd.ErrOrStderr(),
	}

	level := resolved.LogLevel
	if resolved.Verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{
		Level:   level,
		Pretty:  mode == output.ModeAuto,
		NoColor: resolved.NoColor,
		Out:     cmd.ErrOrStderr(),
	}).With().Str("command", command).Logger()

	loc, err := resolveLocation(resolved.TZ)
	if err != nil {
		return printer, log, nil, failWithHint(printer, contract.ErrInvalidUsage, err, "Use an IANA name such as America/New_York", 2)
	}
	anchor, err := resolveAnchor(resolved.Now, loc, resolved.TZ != "")
	if err != nil {
		return printer, log, nil, failWithHint(printer, contract.ErrInvalidUsage, fmt.Errorf("invalid --now: %w", err), "Use RFC3339, YYYY-MM-DD, or now", 2)
	}
	resolved.anchor = anchor

	log.Debug().
		Str("mode", string(mode)).
		Str("profile", resolved.Profile).
		Str("config", resolved.Config).
		Time("now", anchor).
		Uint64("seed", resolved.Seed).
		Msg("resolved options")
	return printer, log, resolved, nil
}

// resolveAnchor parses the --now value. An explicit offset in the value is
// kept unless a timezone was requested, in which case the instant is moved
// into it.
func resolveAnchor(v string, loc *time.Location, convert bool) (time.Time, error) {
	anchor, err := timeparse.ParseDateTime(firstNonEmpty(v, defaultNow), time.Now(), loc)
	if err != nil {
		return time.Time{}, err
	}
	if convert {
		anchor = anchor.In(loc)
	}
	return anchor.Truncate(time.Second), nil
}

func (o *globalOptions) builder() *fixture.Builder {
	b := fixture.NewBuilder(o.Seed, o.anchor)
	if o.UserID != "" {
		b.UserID = o.UserID
	}
	return b
}

func renderTopLevelError(cmd *cobra.Command, err error) {
	var appErr AppError
	if errors.As(err, &appErr) && appErr.Printed {
		return
	}
	if wantsStructuredErrorOutput(os.Args[1:]) {
		printer := output.Printer{
			Mode:          output.ModeJSON,
			SchemaVersion: contract.SchemaVersion,
			Err:           cmd.ErrOrStderr(),
		}
		_ = printer.Error(errorCodeForExit(ExitCode(err)), err.Error(), "")
		return
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", err.Error())
}

func wantsStructuredErrorOutput(args []string) bool {
	for _, arg := range args {
		switch {
		case arg == "--":
			return false
		case arg == "--json", arg == "--jsonl":
			return true
		case strings.HasPrefix(arg, "--json="), strings.HasPrefix(arg, "--jsonl="):
			return true
		}
	}
	return false
}

func errorCodeForExit(code int) contract.ErrorCode {
	switch code {
	case 2:
		return contract.ErrInvalidUsage
	case 5:
		return contract.ErrIO
	default:
		return contract.ErrGeneric
	}
}

func resolveLocation(tz string) (*time.Location, error) {
	if strings.TrimSpace(tz) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(strings.TrimSpace(tz))
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q", tz)
	}
	return loc, nil
}

// parseBound resolves a --from/--to value against the anchor. A bare date
// used as an upper bound covers the whole day; explicit times are kept.
func parseBound(v string, anchor time.Time, upper bool) (time.Time, error) {
	ts, err := timeparse.ParseDateTime(v, anchor, anchor.Location())
	if err != nil {
		return time.Time{}, err
	}
	if upper && namesDay(v) {
		ts = timeparse.EndOfDay(ts)
	}
	return ts, nil
}

func namesDay(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "today", "tomorrow", "yesterday":
		return true
	}
	_, err := time.Parse("2006-01-02", v)
	return err == nil
}

func readTextInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func conflictCount(vals ...bool) int {
	total := 0
	for _, v := range vals {
		if v {
			total++
		}
	}
	return total
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		v := strings.TrimSpace(p)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
