package model

import "errors"

// ErrIncompleteRecord marks a record that lacks a date the formula needs.
var ErrIncompleteRecord = errors.New("incomplete employee record")

// InputFormatError means the upload itself is unusable: unreadable bytes,
// a missing sheet or missing columns.
type InputFormatError struct {
	msg string
}

func (e *InputFormatError) Error() string { return e.msg }

func NewInputFormat(msg string) error { return &InputFormatError{msg: msg} }

func IsInputFormat(err error) bool {
	var target *InputFormatError
	return errors.As(err, &target)
}

// ValidationError rejects a single request: unknown employee, unusable
// dates for that employee, or out-of-range scenario inputs.
type ValidationError struct {
	msg string
	err error
}

func (e *ValidationError) Error() string { return e.msg }

func (e *ValidationError) Unwrap() error { return e.err }

func NewValidation(msg string) error { return &ValidationError{msg: msg} }

// WrapValidation keeps cause reachable through errors.Is.
func WrapValidation(msg string, cause error) error {
	return &ValidationError{msg: msg, err: cause}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
