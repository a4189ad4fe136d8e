package app

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/agis/taskgen/internal/contract"
)

// run executes the root command with a fresh config environment and returns
// stdout, stderr and the error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	isolateConfig(t)
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level", "disabled"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func decodeEnvelope(t *testing.T, raw string, data any) contract.SuccessEnvelope {
	t.Helper()
	var env struct {
		contract.SuccessEnvelope
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("invalid json envelope: %v\n%s", err, raw)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("invalid data: %v\n%s", err, env.Data)
		}
	}
	return env.SuccessEnvelope
}

func TestResolveAnchorKeepsOffset(t *testing.T) {
	got, err := resolveAnchor(defaultNow, time.UTC, false)
	if err != nil {
		t.Fatalf("resolveAnchor error: %v", err)
	}
	if got.Format(time.RFC3339) != defaultNow {
		t.Fatalf("anchor=%s want %s", got.Format(time.RFC3339), defaultNow)
	}
}

func TestResolveAnchorConvertsToTZ(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	got, err := resolveAnchor(defaultNow, loc, true)
	if err != nil {
		t.Fatalf("resolveAnchor error: %v", err)
	}
	if got.Format(time.RFC3339) != "2024-12-15T16:28:13+02:00" {
		t.Fatalf("unexpected anchor %s", got.Format(time.RFC3339))
	}
}

func TestResolveAnchorInvalid(t *testing.T) {
	if _, err := resolveAnchor("someday", time.UTC, false); err == nil {
		t.Fatal("expected error for unsupported anchor")
	}
}

func TestResolveLocation(t *testing.T) {
	if loc, err := resolveLocation(""); err != nil || loc != time.Local {
		t.Fatalf("expected local zone, got %v %v", loc, err)
	}
	if _, err := resolveLocation("Mars/Olympus"); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}

func TestParseBoundEndOfDay(t *testing.T) {
	anchor := time.Date(2024, 12, 15, 9, 28, 13, 0, time.UTC)
	to, err := parseBound("2024-01-31", anchor, true)
	if err != nil {
		t.Fatalf("parseBound error: %v", err)
	}
	if got := to.Format(time.RFC3339); got != "2024-01-31T23:59:59Z" {
		t.Fatalf("to=%s", got)
	}
	from, err := parseBound("-7d", anchor, false)
	if err != nil {
		t.Fatalf("parseBound error: %v", err)
	}
	if got := from.Format(time.RFC3339); got != "2024-12-08T09:28:13Z" {
		t.Fatalf("from=%s", got)
	}
}

func TestParseBoundKeepsExplicitMidnight(t *testing.T) {
	anchor := time.Date(2024, 12, 15, 9, 28, 13, 0, time.UTC)
	to, err := parseBound("2024-01-31T00:00:00-05:00", anchor, true)
	if err != nil {
		t.Fatalf("parseBound error: %v", err)
	}
	if got := to.Format(time.RFC3339); got != "2024-01-31T00:00:00-05:00" {
		t.Fatalf("to=%s", got)
	}
	to, err = parseBound("2024-01-31 00:00", anchor, true)
	if err != nil {
		t.Fatalf("parseBound error: %v", err)
	}
	if got := to.Format(time.RFC3339); got != "2024-01-31T00:00:00Z" {
		t.Fatalf("to=%s", got)
	}
	to, err = parseBound("today", anchor, true)
	if err != nil {
		t.Fatalf("parseBound error: %v", err)
	}
	if got := to.Format(time.RFC3339); got != "2024-12-15T23:59:59Z" {
		t.Fatalf("to=%s", got)
	}
}

func TestOutputModesAreExclusive(t *testing.T) {
	_, _, err := run(t, "expand", "every day", "--json", "--plain")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit code 2, got %d err=%v", code, err)
	}
}

func TestInvalidTimezoneIsUsageError(t *testing.T) {
	_, stderr, err := run(t, "expand", "every day", "--tz", "Nowhere/Special", "--json")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	var env contract.ErrorEnvelope
	if err := json.Unmarshal([]byte(stderr), &env); err != nil {
		t.Fatalf("expected json error envelope: %v\n%s", err, stderr)
	}
	if env.Error.Code != contract.ErrInvalidUsage {
		t.Fatalf("unexpected code %s", env.Error.Code)
	}
}

func TestWantsStructuredErrorOutput(t *testing.T) {
	cases := []struct {
		args []string
		want bool
	}{
		{[]string{"expand", "--json"}, true},
		{[]string{"--jsonl=true", "batch"}, true},
		{[]string{"expand", "--", "--json"}, false},
		{[]string{"expand"}, false},
	}
	for _, tc := range cases {
		if got := wantsStructuredErrorOutput(tc.args); got != tc.want {
			t.Fatalf("wantsStructuredErrorOutput(%v)=%v want %v", tc.args, got, tc.want)
		}
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" mon, ,wed,fri ")
	if len(got) != 3 || got[0] != "mon" || got[2] != "fri" {
		t.Fatalf("unexpected split %q", got)
	}
	if splitCSV("  ") != nil {
		t.Fatal("expected nil for blank input")
	}
}
