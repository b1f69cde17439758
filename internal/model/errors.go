package model

import (
	"errors"
	"fmt"
)

// Error taxonomy. None of these is fatal to the process; callers match with errors.Is.
var (
	// ErrInvalidDataShape marks a malformed entity from a data source
	ErrInvalidDataShape = errors.New("invalid data shape")

	// ErrUnreachableService marks an unavailable API or broadcast studio
	ErrUnreachableService = errors.New("service unreachable")

	// ErrUnknownEnumValue marks an unexpected status or type literal
	ErrUnknownEnumValue = errors.New("unknown enum value")
)

// DataError describes a record rejected at the data-source boundary
type DataError struct {
	Entity string // "source", "claim", "topic", ...
	ID     string // Record ID, if any
	Field  string // Offending field
	Reason string
}

func (e *DataError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %q: %s %s", e.Entity, e.ID, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s %s", e.Entity, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidDataShape
func (e *DataError) Unwrap() error {
	return ErrInvalidDataShape
}

// ServiceError describes a failed call to an external service
type ServiceError struct {
	Service    string // "api", "broadcast", "llm"
	Endpoint   string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Service, e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Endpoint, e.Err)
}

// Unwrap exposes both the taxonomy sentinel and the cause
func (e *ServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnreachableService}
	}
	return []error{ErrUnreachableService, e.Err}
}
