package errors

import (
	"fmt"
)

// Error carries an HTTP status code and an optional cause alongside the
// message. The web layer maps Code to the transport status exactly once,
// at the boundary.
type Error interface {
	error

	Code() int
	Message() string
	Cause() error
}

// DefaultCode is used when no enricher sets one. It maps to 500,
// Internal Server Error.
var DefaultCode = 500

type appError struct {
	code  int
	msg   string
	cause *appError
}

func (err *appError) Error() string {
	if err.cause == nil {
		return err.msg
	}

	return fmt.Sprintf("%s: %v", err.msg, err.cause)
}

func (err *appError) Code() int {
	return err.code
}

func (err *appError) Message() string {
	return err.msg
}

func (err *appError) Cause() error {
	if err.cause == nil {
		return nil
	}
	return err.cause
}

func (err *appError) Unwrap() error {
	return err.Cause()
}

type ErrorEnricher func(error) error

func WithCode(code int) ErrorEnricher {
	return func(err error) error {
		if err, ok := err.(*appError); ok {
			err.code = code
			return err
		}

		return &appError{
			msg:  err.Error(),
			code: code,
		}
	}
}

func WithCause(cause error) ErrorEnricher {
	var appCause *appError
	switch cause := cause.(type) {
	case *appError:
		appCause = cause
	default:
		appCause = &appError{msg: cause.Error(), code: DefaultCode}
	}

	return func(err error) error {
		if appErr, ok := err.(*appError); ok {
			appErr.cause = appCause
			return appErr
		}

		return &appError{
			msg:   err.Error(),
			code:  appCause.code,
			cause: appCause,
		}
	}
}

func New(msg string, fs ...ErrorEnricher) error {
	var err error
	err = &appError{
		msg:  msg,
		code: DefaultCode,
	}

	for _, f := range fs {
		err = f(err)
	}

	return err
}

// CodeOf extracts the status code carried by err, falling back to
// DefaultCode for plain errors.
func CodeOf(err error) int {
	if appErr, ok := err.(Error); ok {
		return appErr.Code()
	}
	return DefaultCode
}
