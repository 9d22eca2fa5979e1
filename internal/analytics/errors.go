package analytics

import (
	"fmt"
	"time"
)

// MalformedRecordError reports a raw record that cannot be placed on the hour grid.
// The record is skipped; the rest of the batch is unaffected.
type MalformedRecordError struct {
	Field string
	Value any
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed record: field %s has unusable value %v", e.Field, e.Value)
}

// InvalidRangeError fails a whole request.
type InvalidRangeError struct {
	Start  time.Time
	End    time.Time
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range %s..%s: %s", e.Start.Format(DateLayout), e.End.Format(DateLayout), e.Reason)
}

// UpstreamUnavailableError wraps a collaborator failure (vendor API or day store).
type UpstreamUnavailableError struct {
	Source string
	Err    error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Source, e.Err)
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Err }
