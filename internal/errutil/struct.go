package errutil

import "errors"

// InternalError is the sentinel kind the rest of the codebase wraps
// with github.com/pkg/errors to attach context.
type InternalError struct {
	err error
}

func NewInternalError(msg string) InternalError {
	return InternalError{err: errors.New(msg)}
}

func (e InternalError) Error() string {
	return e.err.Error()
}

func (e InternalError) Unwrap() error {
	return e.err
}
