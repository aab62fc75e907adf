package provider

import (
	"fmt"
)

// Resources classifies the cleanup obligation a failed provisioning call
// leaves behind.
type Resources string

const (
	// ResourcesClear means no external resource was created and no cleanup
	// is owed.
	ResourcesClear Resources = "clear"
	// ResourcesRemaining means the resource exists and a destroy pass will
	// find and remove it.
	ResourcesRemaining Resources = "remaining"
	// ResourcesOrphaned means a destroy attempt itself failed; the resource
	// may exist and automatic cleanup cannot be assumed.
	ResourcesOrphaned Resources = "orphaned"
	// ResourcesUnknown means there is not enough information to classify.
	// Consumers must treat it as orphaned.
	ResourcesUnknown Resources = "unknown"
)

// Error is the typed failure every provisioning path returns. The
// classification is attached where the failure is first observed, never
// derived after the fact.
type Error struct {
	Resources Resources
	message   string
	cause     error
}

var _ error = (*Error)(nil)

// NewError returns a classified error with no underlying cause.
func NewError(resources Resources, message string) *Error {
	return &Error{Resources: resources, message: message}
}

// WrapError attaches a classification and context to err. A nil err returns
// nil.
func WrapError(err error, resources Resources, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Resources: resources, message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s [resources: %s]", e.message, e.Resources)
	}
	return fmt.Sprintf("%s: %s [resources: %s]", e.message, e.cause, e.Resources)
}

// Cause exposes the underlying error for cause chain walks.
func (e *Error) Cause() error {
	return e.cause
}

// Unwrap exposes the underlying error for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// AsError returns the first classified error in err's cause chain. An err
// with no classification anywhere in its chain is wrapped as unknown.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	for e := err; e != nil; {
		if perr, ok := e.(*Error); ok {
			return perr
		}
		cause, ok := e.(interface{ Cause() error })
		if !ok {
			break
		}
		e = cause.Cause()
	}
	return &Error{Resources: ResourcesUnknown, message: "unclassified failure", cause: err}
}
