package bratu

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams indicates a parameter set rejected before any matrix is built.
	ErrInvalidParams = errors.New("bratu: invalid parameters")

	// ErrPredict indicates mismatched inputs to Predict.
	ErrPredict = errors.New("bratu: invalid prediction input")
)

// ConfigError reports which parameter failed validation.
type ConfigError struct {
	Field   string
	Value   float64
	Wrapped error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s=%g: %v", e.Field, e.Value, e.Wrapped)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}

func invalid(field string, value float64, format string, args ...any) error {
	return &ConfigError{
		Field:   field,
		Value:   value,
		Wrapped: fmt.Errorf("%w: "+format, append([]any{ErrInvalidParams}, args...)...),
	}
}
