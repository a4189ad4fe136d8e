package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/agis/taskgen/internal/contract"
)

type Mode string

const (
	ModeAuto  Mode = "auto"
	ModeJSON  Mode = "json"
	ModeJSONL Mode = "jsonl"
	ModePlain Mode = "plain"
)

type Printer struct {
	Mode          Mode
	Command       string
	Fields        []string
	Quiet         bool
	NoColor       bool
	SchemaVersion string
	Out           io.Writer
	Err           io.Writer
	// Now stamps success envelopes. Defaults to time.Now.
	Now func() time.Time
}

// Row is one labeled line of a human summary.
type Row struct {
	Label string
	Value string
}

func (p Printer) Success(data any, meta map[string]any, warnings []string) error {
	switch p.Mode {
	case ModeJSON:
		env := contract.SuccessEnvelope{
			SchemaVersion: p.schemaVersion(),
			Command:       p.Command,
			GeneratedAt:   p.now().UTC(),
			Data:          data,
			Meta:          meta,
			Warnings:      warnings,
		}
		if env.Warnings == nil {
			env.Warnings = []string{}
		}
		enc := json.NewEncoder(p.out())
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	case ModeJSONL:
		v := reflect.ValueOf(data)
		if v.IsValid() && v.Kind() == reflect.Slice {
			enc := json.NewEncoder(p.out())
			for i := 0; i < v.Len(); i++ {
				if err := enc.Encode(v.Index(i).Interface()); err != nil {
					return err
				}
			}
			return nil
		}
		return json.NewEncoder(p.out()).Encode(data)
	default:
		return p.printPlain(data)
	}
}

// Summary prints a titled block of rows in auto mode and falls back to
// Success for every other mode.
func (p Printer) Summary(title string, rows []Row, data any, meta map[string]any, warnings []string) error {
	if p.Mode != ModeAuto && p.Mode != "" {
		return p.Success(data, meta, warnings)
	}
	if p.Quiet {
		return nil
	}
	bold := p.style(color.Bold)
	faint := p.style(color.Faint)
	yellow := p.style(color.FgYellow)

	w := p.out()
	if _, err := fmt.Fprintln(w, bold(title)); err != nil {
		return err
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r.Label))
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "  %s  %s\n", faint(fmt.Sprintf("%-*s", width, r.Label)), r.Value); err != nil {
			return err
		}
	}
	for _, warn := range warnings {
		if _, err := fmt.Fprintf(w, "%s %s\n", yellow("warning:"), warn); err != nil {
			return err
		}
	}
	return nil
}

func (p Printer) Error(code contract.ErrorCode, message, hint string) error {
	if p.Mode == ModeJSON || p.Mode == ModeJSONL {
		env := contract.ErrorEnvelope{
			SchemaVersion: p.schemaVersion(),
			Error:         contract.ErrorBody{Code: code, Message: message, Hint: hint},
		}
		enc := json.NewEncoder(p.errOut())
		enc.SetIndent("", "  ")
		return enc.Encode(env)
	}
	red := p.style(color.FgRed)
	if hint != "" {
		_, _ = fmt.Fprintf(p.errOut(), "%s %s\nhint: %s\n", red("error:"), message, hint)
		return nil
	}
	_, _ = fmt.Fprintf(p.errOut(), "%s %s\n", red("error:"), message)
	return nil
}

func (p Printer) style(attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if p.NoColor {
		c.DisableColor()
	}
	return c.SprintFunc()
}

func (p Printer) schemaVersion() string {
	if p.SchemaVersion == "" {
		return contract.SchemaVersion
	}
	return p.SchemaVersion
}

func (p Printer) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p Printer) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stdout
}

func (p Printer) errOut() io.Writer {
	if p.Err != nil {
		return p.Err
	}
	return os.Stderr
}

func (p Printer) printPlain(data any) error {
	v := reflect.ValueOf(data)
	if !v.IsValid() || (v.Kind() == reflect.Slice && v.Len() == 0) {
		if !p.Quiet {
			_, _ = fmt.Fprintln(p.out(), "no results")
		}
		return nil
	}
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			if _, err := fmt.Fprintln(p.out(), flatten(v.Index(i).Interface(), p.Fields)); err != nil {
				return err
			}
		}
		return nil
	}
	_, err := fmt.Fprintln(p.out(), flatten(data, p.Fields))
	return err
}

func flatten(v any, fields []string) string {
	if s, ok := v.(string); ok && len(fields) == 0 {
		return s
	}
	if len(fields) == 0 {
		b, _ := json.Marshal(v)
		return string(b)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		b, _ := json.Marshal(v)
		return string(b)
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		fv := rv.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, strings.ReplaceAll(f, "_", "")) || strings.EqualFold(name, f)
		})
		if !fv.IsValid() {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, fmt.Sprint(fv.Interface()))
	}
	return strings.Join(parts, "\t")
}
