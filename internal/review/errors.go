package review

import (
	"errors"
	"fmt"
)

// ConfigError reports a rule or rule pack that cannot be constructed.
// It is raised at registration time and prevents scanning.
type ConfigError struct {
	RuleID string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("rule configuration: %v", e.Err)
	}
	return fmt.Sprintf("rule %q: %v", e.RuleID, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// InputError reports content that is not scannable text.
type InputError struct {
	File   string
	Reason string
}

func (e *InputError) Error() string {
	if e.File == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid input %s: %s", e.File, e.Reason)
}

// IsConfigError checks if err wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsInputError checks if err wraps an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
