// Package repository defines the storage contracts used by the service
// layer and the errors every backend translates its driver failures into.
// ErrNotFound replaces driver specific "no rows" values so services never
// import a driver; DuplicateError names the unique field that was hit so
// it can be reported as a conflict on that field.
package repository

import (
    "errors"
    "fmt"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("not found")

// DuplicateError is returned when a write violates a unique constraint.
// Field uses the public field name (username, email, phone_number,
// contact_number).
type DuplicateError struct {
    Field string
}

func (e *DuplicateError) Error() string {
    return fmt.Sprintf("duplicate value for %s", e.Field)
}

// IsDuplicate extracts the DuplicateError from err.
func IsDuplicate(err error) (*DuplicateError, bool) {
    var de *DuplicateError
    if errors.As(err, &de) {
        return de, true
    }
    return nil, false
}
