// Package migrerr defines the migration core's error taxonomy. The
// differ never raises; the pre-processor and SQL generator raise
// fatally the moment an unsupported construct or an invariant violation
// is encountered. Errors are surfaced, never swallowed.
package migrerr

import "fmt"

// OperationNotSupportedError reports that a dialect cannot express a
// given operation kind. The message names both the dialect and the
// operation kind.
type OperationNotSupportedError struct {
	Dialect   string
	Operation string
}

func (e *OperationNotSupportedError) Error() string {
	return fmt.Sprintf("%s: operation %s is not supported", e.Dialect, e.Operation)
}

// NewOperationNotSupported builds an OperationNotSupportedError.
func NewOperationNotSupported(dialect, operation string) error {
	return &OperationNotSupportedError{Dialect: dialect, Operation: operation}
}

// InvalidOperationSequenceError reports a pre-processor invariant
// violation, e.g. an AddForeignKey operation arriving at a
// CreateTableHandler whose FK is not among the created table's declared
// foreign keys. Fatal; the caller must abort applying the migration.
type InvalidOperationSequenceError struct {
	Reason string
}

func (e *InvalidOperationSequenceError) Error() string {
	return fmt.Sprintf("invalid operation sequence: %s", e.Reason)
}

// NewInvalidOperationSequence builds an InvalidOperationSequenceError.
func NewInvalidOperationSequence(reason string) error {
	return &InvalidOperationSequenceError{Reason: reason}
}

// AmbiguousPrincipalError surfaces from the change-tracker collaborator
// when an identity-map lookup finds multiple matching principals for a
// foreign-key relation. Part of the shared interface, outside the core.
type AmbiguousPrincipalError struct {
	Relation string
}

func (e *AmbiguousPrincipalError) Error() string {
	return fmt.Sprintf("ambiguous principal for relation %s", e.Relation)
}

// NullPrimaryKeyError surfaces from the change-tracker collaborator when
// an entity with a null primary-key value is tracked as Unchanged/Modified.
type NullPrimaryKeyError struct {
	Entity string
}

func (e *NullPrimaryKeyError) Error() string {
	return fmt.Sprintf("entity %s has a null primary key", e.Entity)
}

// IdentityConflictError surfaces from the change-tracker collaborator
// when two tracked entities are assigned the same identity-map key.
type IdentityConflictError struct {
	Entity string
	Key    string
}

func (e *IdentityConflictError) Error() string {
	return fmt.Sprintf("identity conflict for entity %s key %s", e.Entity, e.Key)
}

// MultipleStateEntriesError surfaces from the change-tracker collaborator
// when an object is attached to more than one state entry.
type MultipleStateEntriesError struct {
	Entity string
}

func (e *MultipleStateEntriesError) Error() string {
	return fmt.Sprintf("entity %s has multiple state entries", e.Entity)
}
