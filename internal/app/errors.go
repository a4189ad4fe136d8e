package app

import (
	"errors"
	"fmt"

	"github.com/agis/taskgen/internal/contract"
	"github.com/agis/taskgen/internal/fixture"
	"github.com/agis/taskgen/internal/output"
	"github.com/agis/taskgen/internal/recurrence"
)

type AppError struct {
	Code    int
	Err     error
	Printed bool
}

func (e AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e AppError) Unwrap() error { return e.Err }

func Wrap(code int, err error) error {
	if err == nil {
		return nil
	}
	return AppError{Code: code, Err: err}
}

func WrapPrinted(code int, err error) error {
	if err == nil {
		return nil
	}
	return AppError{Code: code, Err: err, Printed: true}
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e AppError
	if errors.As(err, &e) {
		return e.Code
	}
	return 1
}

// classify maps a domain error to its exit code, contract code and hint.
func classify(err error) (int, contract.ErrorCode, string) {
	switch {
	case errors.Is(err, recurrence.ErrInvalidWeekday):
		return 2, contract.ErrInvalidWeekday, "Weekdays are monday through sunday or mon through sun"
	case errors.Is(err, recurrence.ErrInvalidMonth):
		return 2, contract.ErrInvalidMonth, "Months are january through december or jan through dec"
	case errors.Is(err, recurrence.ErrInvalidPattern):
		return 2, contract.ErrInvalidPattern, `Try a pattern like "every monday at 9am" or "every 15th"`
	case errors.Is(err, recurrence.ErrInvalidWindow):
		return 2, contract.ErrInvalidUsage, "--from must not be later than --to"
	case errors.Is(err, fixture.ErrIO):
		return 5, contract.ErrIO, "Check that the output directory is writable"
	default:
		return 1, contract.ErrGeneric, ""
	}
}

// fail prints err with the code and hint classify picks for it.
func fail(printer output.Printer, err error) error {
	exit, code, hint := classify(err)
	return failWithHint(printer, code, err, hint, exit)
}

func failWithHint(printer output.Printer, code contract.ErrorCode, err error, hint string, exitCode int) error {
	if err == nil {
		err = errors.New("unknown error")
	}
	_ = printer.Error(code, err.Error(), hint)
	return WrapPrinted(exitCode, err)
}
