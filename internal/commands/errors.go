package commands

import (
	"errors"
	"fmt"
)

// Validation errors
var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidLink     = fmt.Errorf("%w: link does not point to an .rss feed", ErrValidation)
	ErrDuplicate       = fmt.Errorf("%w: feed is already tracked", ErrValidation)
	ErrIndexOutOfRange = fmt.Errorf("%w: index out of range", ErrValidation)
)

// ErrHistoryDisabled is returned by History when no journal is configured
var ErrHistoryDisabled = errors.New("history journal is disabled")

// noticeError carries the message shown to the user while still matching its
// underlying kind with errors.Is.
type noticeError struct {
	msg string
	err error
}

func (e *noticeError) Error() string { return e.msg }
func (e *noticeError) Unwrap() error { return e.err }

func notice(err error, format string, args ...any) error {
	return &noticeError{msg: fmt.Sprintf(format, args...), err: err}
}

// IsNotice reports whether err is an expected outcome shown to the user, such
// as an empty list or a rejected link, rather than a failure.
func IsNotice(err error) bool {
	var n *noticeError
	return errors.As(err, &n)
}
