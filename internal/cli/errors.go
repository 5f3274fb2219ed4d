package cli

import "errors"

// ErrUsage matches every error caused by bad input rather than a failure of
// wadling itself. main exits with status 2 for these.
var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg   string
	cause error
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

// wrapUsageError keeps err reachable through errors.As while printing msg.
func wrapUsageError(err error, msg string) error {
	return usageError{msg: msg, cause: err}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Unwrap() error {
	return e.cause
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}
