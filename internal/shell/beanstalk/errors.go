package beanstalk

import "fmt"

// PlatformError wraps a failed platform call with the entity it concerned.
type PlatformError struct {
	Op     string // API operation (e.g., "CreateApplicationVersion")
	Entity string // application, environment or version name
	Err    error
}

func (e *PlatformError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewPlatformError creates a new PlatformError.
func NewPlatformError(op, entity string, err error) *PlatformError {
	return &PlatformError{
		Op:     op,
		Entity: entity,
		Err:    err,
	}
}
