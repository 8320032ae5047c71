package config

import (
	"errors"
	"fmt"
)

// SetupHint is appended to startup errors that the setup wizard can fix.
const SetupHint = "run arkterm --setup"

var (
	// ErrConfigMissing is returned when the config file does not exist.
	ErrConfigMissing = errors.New("config file not found; " + SetupHint)
	// ErrConfigInvalid matches every *InvalidError.
	ErrConfigInvalid = errors.New("invalid config")
)

// InvalidError describes why a config file was rejected.
type InvalidError struct {
	Path   string // File path, when known.
	Field  string // Offending field, empty for structural problems.
	Reason string
	Err    error // Underlying parse error, if any.
}

func (e *InvalidError) Error() string {
	msg := e.Reason
	if e.Field != "" {
		msg = e.Field + " " + e.Reason
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("config: %s: %s", e.Path, msg)
	}
	return "config: " + msg
}

func (e *InvalidError) Unwrap() error { return e.Err }

func (e *InvalidError) Is(target error) bool { return target == ErrConfigInvalid }

func invalid(field, reason string) error {
	return &InvalidError{Field: field, Reason: reason}
}
