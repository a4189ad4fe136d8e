package contract

import "time"

const SchemaVersion = "v1"

type ErrorCode string

const (
	ErrGeneric        ErrorCode = "GENERIC_FAILURE"
	ErrInvalidUsage   ErrorCode = "INVALID_USAGE"
	ErrInvalidPattern ErrorCode = "INVALID_PATTERN"
	ErrInvalidWeekday ErrorCode = "INVALID_WEEKDAY"
	ErrInvalidMonth   ErrorCode = "INVALID_MONTH"
	ErrIO             ErrorCode = "IO_FAILURE"
)

type ErrorEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Error         ErrorBody      `json:"error"`
	Meta          map[string]any `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Hint    string    `json:"hint,omitempty"`
}

type SuccessEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Command       string         `json:"command"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Data          any            `json:"data"`
	Meta          map[string]any `json:"meta"`
	Warnings      []string       `json:"warnings"`
}

// Occurrence is one expanded timestamp as printed by expand.
type Occurrence struct {
	Index   int    `json:"index"`
	At      string `json:"at"`
	Weekday string `json:"weekday"`
}

// Explanation describes a parsed recurrence.
type Explanation struct {
	Input     string   `json:"input"`
	Canonical string   `json:"canonical"`
	Frequency string   `json:"frequency"`
	Interval  int      `json:"interval"`
	Weekdays  []string `json:"weekdays,omitempty"`
	MonthDays []string `json:"month_days,omitempty"`
	Ordinal   string   `json:"ordinal,omitempty"`
	Month     string   `json:"month,omitempty"`
	Time      string   `json:"time,omitempty"`
	Strict    bool     `json:"strict"`
	RRule     string   `json:"rrule"`
	Next      []string `json:"next,omitempty"`
}

// GenerationSummary reports what a fixture command wrote.
type GenerationSummary struct {
	GenerationID string   `json:"generation_id"`
	Recurrence   string   `json:"recurrence,omitempty"`
	Completed    int      `json:"completed"`
	Active       int      `json:"active"`
	Projects     int      `json:"projects"`
	NextDue      string   `json:"next_due,omitempty"`
	Files        []string `json:"files"`
}

// BatchResult is one template row of a batch run.
type BatchResult struct {
	Line       int    `json:"line"`
	Name       string `json:"name"`
	Recurrence string `json:"recurrence,omitempty"`
	Completed  int    `json:"completed"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}
