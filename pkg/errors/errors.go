// Package errors provides custom error types for the stash reconciliation engine.
// The types follow the refresh error taxonomy: missing definitions and resolver
// failures are recovered locally, upstream failures abort a refresh, and
// invariant violations drop the offending item.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the stash system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingDefinition indicates a bucket or item hash has no definition
	ErrMissingDefinition = errors.New("missing definition")

	// ErrResolution indicates the item resolver could not build an item
	ErrResolution = errors.New("item resolution failed")

	// ErrUpstream indicates the profile source or definition catalog failed
	ErrUpstream = errors.New("upstream failure")

	// ErrInvariant indicates reconciled state would violate a registry invariant
	ErrInvariant = errors.New("invariant violation")

	// ErrClosed indicates an operation on a closed client or scheduler
	ErrClosed = errors.New("closed")
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// MissingDefinitionError is returned when a static definition cannot be found.
// Kind is "bucket", "item" or "moment".
type MissingDefinitionError struct {
	Kind string
	Hash uint32
}

// Error implements the error interface
func (e *MissingDefinitionError) Error() string {
	return fmt.Sprintf("no %s definition for hash %d", e.Kind, e.Hash)
}

// Is implements errors.Is support
func (e *MissingDefinitionError) Is(target error) bool {
	return target == ErrMissingDefinition || target == ErrNotFound
}

// NewMissingDefinitionError creates a new MissingDefinitionError
func NewMissingDefinitionError(kind string, hash uint32) *MissingDefinitionError {
	return &MissingDefinitionError{Kind: kind, Hash: hash}
}

// ResolutionError represents a failure of the item resolver for one reference
type ResolutionError struct {
	ItemHash   uint32
	InstanceID string
	Err        error
}

// Error implements the error interface
func (e *ResolutionError) Error() string {
	ref := fmt.Sprintf("hash %d", e.ItemHash)
	if e.InstanceID != "" {
		ref = fmt.Sprintf("instance %s (hash %d)", e.InstanceID, e.ItemHash)
	}
	if e.Err != nil {
		return fmt.Sprintf("could not resolve item %s: %v", ref, e.Err)
	}
	return fmt.Sprintf("could not resolve item %s", ref)
}

// Unwrap implements errors.Unwrap
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// UpstreamError represents a failure of the profile source or definition catalog
type UpstreamError struct {
	Source string // "profile" or "definitions"
	Err    error
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Source, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// InvariantError is reported when an item cannot be placed consistently
type InvariantError struct {
	ItemID  string
	Message string
}

// Error implements the error interface
func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated for item %s: %s", e.ItemID, e.Message)
}

// Is implements errors.Is support
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "yaml", "id"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "watch"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// ResourceError represents an error during resource operations
type ResourceError struct {
	Operation string // "create", "load", "start"
	Resource  string // "client", "scheduler", "config"
	ID        string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ResourceError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("failed to %s %s %s: %s", e.Operation, e.Resource, e.ID, e.Message)
	}
	return fmt.Sprintf("failed to %s %s: %s", e.Operation, e.Resource, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ResourceError) Unwrap() error {
	return e.Err
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsMissingDefinition checks if an error is a missing definition error
func IsMissingDefinition(err error) bool {
	return errors.Is(err, ErrMissingDefinition)
}

// IsResolution checks if an error is an item resolution failure
func IsResolution(err error) bool {
	return errors.Is(err, ErrResolution)
}

// IsUpstream checks if an error came from the profile source or definition catalog
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

// IsInvariant checks if an error is an invariant violation
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// Helper wrapping functions for common patterns

// WrapUpstream wraps an error as an UpstreamError. Errors that already are
// upstream errors are returned unchanged.
func WrapUpstream(source string, err error) error {
	if err == nil {
		return nil
	}
	if IsUpstream(err) {
		return err
	}
	return &UpstreamError{Source: source, Err: err}
}

// WrapResolution wraps an error as a ResolutionError
func WrapResolution(itemHash uint32, instanceID string, err error) error {
	return &ResolutionError{ItemHash: itemHash, InstanceID: instanceID, Err: err}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Message: err.Error(), Err: err}
}

// WrapResource wraps an error as a ResourceError
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Message: err.Error(), Err: err}
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}
