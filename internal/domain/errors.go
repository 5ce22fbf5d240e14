package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidOperatorInput is returned by an OperatorPrompter when the
// operator's response is not a number. The resolver asks again.
var ErrInvalidOperatorInput = errors.New("invalid operator input")

// ParseError reports a METAR that carries no recognizable wind group.
type ParseError struct {
	Report string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse metar %q: %s", e.Report, e.Reason)
}

// ConfigurationError reports an airport missing from the runway geometry table.
type ConfigurationError struct {
	ICAO string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("airport %s: no runway geometry configured", e.ICAO)
}

// OperatorError reports that asking the operator failed, e.g. because the
// input stream was closed.
type OperatorError struct {
	ICAO string
	Err  error
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("operator prompt for %s: %v", e.ICAO, e.Err)
}

func (e *OperatorError) Unwrap() error { return e.Err }
