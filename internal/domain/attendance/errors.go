// internal/domain/attendance/errors.go
package attendance

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation           = errors.New("attendance record validation failed")
	ErrPersistence          = errors.New("attendance records could not be persisted")
	ErrConfirmationRequired = errors.New("destructive operation requires explicit confirmation")
)

// FieldProblem names one rejected field and the rule it broke ("required" or "attendance_type").
type FieldProblem struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// ValidationError is returned by RecordStore.Add when a candidate is not admissible.
type ValidationError struct {
	Fields []FieldProblem
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.FieldNames(), ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// FieldNames lists the rejected field names in struct order.
func (e *ValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

// PersistenceError wraps a backend write or read failure.
type PersistenceError struct {
	Op  string // "load" or "save"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
