package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions shared by the store adapters
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrInitiativeNotFound = fmt.Errorf("%w: initiative", ErrNotFound)
	ErrMemberNotFound     = fmt.Errorf("%w: member", ErrNotFound)

	// Constraint errors raised by stores
	ErrDuplicateChild = errors.New("delivery child already exists for parent")
)

// NewNotFoundError builds a not-found error for a resource id
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

// NewDuplicateChildError reports a violated (parent_id, phase=delivery) uniqueness constraint
func NewDuplicateChildError(parentID string) error {
	return fmt.Errorf("%w: parent %s", ErrDuplicateChild, parentID)
}

// NewDeliveryConflictError reports that moving initiative id into delivery would
// give its parent a second delivery child. The parent is not known at this point.
func NewDeliveryConflictError(id string) error {
	return fmt.Errorf("%w: initiative %s conflicts with an existing delivery child of its parent", ErrDuplicateChild, id)
}

// IsNotFoundError reports whether err signals a missing resource
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateChildError reports whether err signals a uniqueness violation on parent_id
func IsDuplicateChildError(err error) bool {
	return errors.Is(err, ErrDuplicateChild)
}
