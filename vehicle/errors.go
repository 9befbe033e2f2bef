package vehicle

import (
	"errors"
	"fmt"
)

var (
	ErrNoWaypoints         = errors.New("waypoint list is empty")
	ErrMissingCollaborator = errors.New("required collaborator missing")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// ConfigError is reported once at construction; it halts motion, not the process
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("vehicle config: %v", e.Err)
	}
	return fmt.Sprintf("vehicle config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Err: err}
}

func invalid(field, format string, args ...any) *ConfigError {
	return configErr(field, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
}
