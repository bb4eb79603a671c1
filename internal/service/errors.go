package service

import "fmt"

// ValidationError reports a request the service refuses to process.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PersistenceError wraps a failed best-effort write. It is logged, never
// returned to callers.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UnknownDiseaseError is returned when the catalog has no entry for a name.
type UnknownDiseaseError struct {
	Name string
}

func (e *UnknownDiseaseError) Error() string {
	return fmt.Sprintf("disease not found: %s", e.Name)
}
