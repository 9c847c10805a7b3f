package erp

import "context"

// ErrorReporter receives classified errors raised inside an operation's
// boundary. Its contract is log/report and never re-raise: after Report
// returns, the operation substitutes an empty result and continues.
type ErrorReporter interface {
	Report(ctx context.Context, backend string, err *Error)
}

// NopReporter discards every report. Useful in tests.
type NopReporter struct{}

// Report implements ErrorReporter
func (NopReporter) Report(context.Context, string, *Error) {}

var _ ErrorReporter = NopReporter{}
