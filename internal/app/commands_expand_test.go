package app

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/agis/taskgen/internal/contract"
)

func TestExpandJSON(t *testing.T) {
	stdout, _, err := run(t, "expand", "every monday at 9am", "--from", "2024-01-01", "--to", "2024-01-31", "--json")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	var rows []contract.Occurrence
	env := decodeEnvelope(t, stdout, &rows)
	if env.Command != "expand" {
		t.Fatalf("unexpected command %q", env.Command)
	}
	want := []string{
		"2024-01-01T09:00:00-05:00",
		"2024-01-08T09:00:00-05:00",
		"2024-01-15T09:00:00-05:00",
		"2024-01-22T09:00:00-05:00",
		"2024-01-29T09:00:00-05:00",
	}
	if len(rows) != len(want) {
		t.Fatalf("expected %d rows, got %d", len(want), len(rows))
	}
	for i, r := range rows {
		if r.At != want[i] || r.Weekday != "monday" || r.Index != i+1 {
			t.Fatalf("row %d = %+v, want at=%s", i, r, want[i])
		}
	}
	if env.Meta["pattern"] != "every monday at 9am" {
		t.Fatalf("unexpected pattern meta %v", env.Meta["pattern"])
	}
}

func TestExpandPlainDefaultsToTimestampAndWeekday(t *testing.T) {
	stdout, _, err := run(t, "expand", "every", "15th", "--from", "2024-01-01", "--to", "2024-03-31", "--plain")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	want := "2024-01-15T00:00:00-05:00\tmonday\n" +
		"2024-02-15T00:00:00-05:00\tthursday\n" +
		"2024-03-15T00:00:00-05:00\tfriday\n"
	if stdout != want {
		t.Fatalf("unexpected plain output:\n%q\nwant\n%q", stdout, want)
	}
}

func TestExpandCompletionRate(t *testing.T) {
	stdout, _, err := run(t, "expand", "every day", "--from", "2024-01-01", "--to", "2024-01-10", "--completion-rate", "0.5", "--json")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	var rows []contract.Occurrence
	env := decodeEnvelope(t, stdout, &rows)
	if len(rows) != 5 {
		t.Fatalf("expected 5 kept occurrences, got %d", len(rows))
	}
	if total, _ := env.Meta["total"].(float64); total != 10 {
		t.Fatalf("expected total 10, got %v", env.Meta["total"])
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].At <= rows[i-1].At {
			t.Fatalf("rows not ascending: %s then %s", rows[i-1].At, rows[i].At)
		}
	}
}

func TestExpandZeroRateKeepsOne(t *testing.T) {
	stdout, _, err := run(t, "expand", "every day", "--from", "2024-01-01", "--to", "2024-01-10", "--completion-rate", "0", "--json")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	var rows []contract.Occurrence
	decodeEnvelope(t, stdout, &rows)
	if len(rows) != 1 {
		t.Fatalf("expected 1 kept occurrence, got %d", len(rows))
	}
}

func TestExpandKeepsExplicitMidnightUpperBound(t *testing.T) {
	stdout, _, err := run(t, "expand", "every day at 9am", "--from", "2024-01-01", "--to", "2024-01-03T00:00:00-05:00", "--json")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	var rows []contract.Occurrence
	decodeEnvelope(t, stdout, &rows)
	if len(rows) != 2 {
		t.Fatalf("expected 2 occurrences before the explicit midnight bound, got %d", len(rows))
	}
}

func TestExpandSameSeedSameSelection(t *testing.T) {
	args := []string{"expand", "every day", "--from", "2024-01-01", "--to", "2024-03-01", "--completion-rate", "0.3", "--seed", "17", "--plain"}
	a, _, err := run(t, args...)
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	b, _, err := run(t, args...)
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	if a != b {
		t.Fatal("expected identical output for identical seeds")
	}
}

func TestExpandLimitWarns(t *testing.T) {
	stdout, _, err := run(t, "expand", "every day", "--from", "2024-01-01", "--to", "2024-01-31", "--limit", "3", "--json")
	if err != nil {
		t.Fatalf("expand failed: %v", err)
	}
	var rows []contract.Occurrence
	env := decodeEnvelope(t, stdout, &rows)
	if len(rows) != 3 || len(env.Warnings) != 1 {
		t.Fatalf("expected 3 rows and a warning, got %d rows %v", len(rows), env.Warnings)
	}
}

func TestExpandInvalidPattern(t *testing.T) {
	_, stderr, err := run(t, "expand", "every year", "--json")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit code 2, got %d err=%v", code, err)
	}
	var env contract.ErrorEnvelope
	if err := json.Unmarshal([]byte(stderr), &env); err != nil {
		t.Fatalf("expected json error: %v\n%s", err, stderr)
	}
	if env.Error.Code != contract.ErrInvalidPattern || env.Error.Hint == "" {
		t.Fatalf("unexpected error body %+v", env.Error)
	}
}

func TestExpandRejectsReversedWindow(t *testing.T) {
	_, _, err := run(t, "expand", "every day", "--from", "2024-02-01", "--to", "2024-01-01")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestExpandRejectsBadRate(t *testing.T) {
	for _, rate := range []string{"1.5", "-0.2", "NaN"} {
		_, _, err := run(t, "expand", "every day", "--completion-rate", rate)
		if code := ExitCode(err); code != 2 {
			t.Fatalf("rate %s: expected exit code 2, got %d", rate, code)
		}
	}
}

func TestExplainJSON(t *testing.T) {
	stdout, _, err := run(t, "explain", "every 2nd tuesday at 10:30am", "--json")
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	var ex contract.Explanation
	decodeEnvelope(t, stdout, &ex)
	if ex.Frequency != "monthly" || ex.Ordinal != "2nd" || ex.Time != "10:30am" {
		t.Fatalf("unexpected explanation %+v", ex)
	}
	if len(ex.Weekdays) != 1 || ex.Weekdays[0] != "tuesday" {
		t.Fatalf("unexpected weekdays %v", ex.Weekdays)
	}
	if !strings.Contains(ex.RRule, "FREQ=MONTHLY") || !strings.Contains(ex.RRule, "BYDAY=+2TU") {
		t.Fatalf("unexpected rrule %q", ex.RRule)
	}
	want := []string{"2025-01-14T10:30:00-05:00", "2025-02-11T10:30:00-05:00", "2025-03-11T10:30:00-05:00"}
	if strings.Join(ex.Next, ",") != strings.Join(want, ",") {
		t.Fatalf("next=%v want %v", ex.Next, want)
	}
}

func TestExplainSummary(t *testing.T) {
	stdout, _, err := run(t, "explain", "every last day!", "--no-color", "--next", "1")
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	for _, want := range []string{"every last day!", "days", "last", "strict", "rrule", "next", "2024-12-31T"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("summary missing %q:\n%s", want, stdout)
		}
	}
}
