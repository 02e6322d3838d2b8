package parser

import "fmt"

// ValidationError marks user-input problems (bad nodes, non-numeric required
// fields, malformed tables). Its message is meant to be surfaced to the end
// user verbatim; the pipeline stops at the stage that produced it.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError with a formatted message.
func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
