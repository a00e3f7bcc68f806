package core

import (
	"errors"
	"fmt"
)

// ErrDigestExists is returned when a digest for the same field and week is
// already stored and the run was not forced.
var ErrDigestExists = errors.New("digest already exists for this field and week")

// SourceError reports an adapter that could not produce articles.
type SourceError struct {
	Source string
	Field  FieldID
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s (field %s): %v", e.Source, e.Field, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// SummarizationError reports a per-article summarization failure.
type SummarizationError struct {
	ArticleID string
	Err       error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarize article %s: %v", e.ArticleID, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// CompositionError is terminal: no meaningful digest could be produced.
type CompositionError struct {
	Field  FieldID
	Reason string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("compose digest for %s: %s", e.Field, e.Reason)
}

// ConfigurationError rejects invalid fields or malformed options before any
// pipeline stage runs.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for '%s': %s", e.Field, e.Message)
}

// IsSourceError checks if an error is a SourceError
func IsSourceError(err error) bool {
	var target *SourceError
	return errors.As(err, &target)
}

// IsSummarizationError checks if an error is a SummarizationError
func IsSummarizationError(err error) bool {
	var target *SummarizationError
	return errors.As(err, &target)
}

// IsCompositionError checks if an error is a CompositionError
func IsCompositionError(err error) bool {
	var target *CompositionError
	return errors.As(err, &target)
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}
