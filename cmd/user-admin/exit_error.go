package main

import "fmt"

const (
	exitCodeFailure        = 1
	exitCodeInvalidInput   = 2
	exitCodeDeleteRejected = 3
	exitCodeUnauthorized   = 4
	exitCodeCanceled       = 130
)

// exitError carries the process exit code for a failed command. A silent error has
// already been reported by the command.
type exitError struct {
	code   int
	err    error
	silent bool
}

func exitWith(code int, err error) *exitError {
	return &exitError{code: code, err: err}
}

func (e *exitError) Error() string {
	if e == nil {
		return ""
	}
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit %d", e.code)
}

func (e *exitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}
