package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers for the pipeline failure categories. Stage code wraps
// every returned error with exactly one of these so callers can decide with
// errors.Is whether a failure is retryable, a setup problem, or missing input.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTransient     = errors.New("transient failure")
)

// Wrap tags err with the given marker and prefixes it with stage context.
// A nil marker falls back to ErrTransient so classification never sees an
// untagged error.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrTransient
	}
	detail := joinNonEmpty(stage, operation, message)
	if detail == "" {
		detail = "service failure"
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, ": ")
}
