package socialgraph

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("socialgraph: entity not found")

	// ErrNotSingular is returned when a query that expects exactly one result
	// returns zero or multiple results.
	ErrNotSingular = errors.New("socialgraph: entity not singular")

	// ErrTxStarted is returned when attempting to start a new transaction
	// within an existing transaction.
	ErrTxStarted = errors.New("socialgraph: cannot start a transaction within a transaction")
)

// NotFoundError represents an error when an entity is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("socialgraph: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("socialgraph: %s not found", e.label)
}

// Is reports whether the target error matches NotFoundError.
// This allows errors.Is(notFoundErr, ErrNotFound) to return true.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the entity label.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given entity type.
func NewNotFoundError(label string) *NotFoundError {
	return &NotFoundError{label: label}
}

// NewNotFoundErrorWithID returns a new NotFoundError with the ID that was searched for.
func NewNotFoundErrorWithID(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}

// NotSingularError represents an error when a query expects a singular result
// but receives zero or multiple results.
type NotSingularError struct {
	label string
	count int // Number of results returned (-1 if unknown)
}

// Error returns the error string.
func (e *NotSingularError) Error() string {
	if e.count >= 0 {
		return fmt.Sprintf("socialgraph: %s not singular (got %d results, expected 1)", e.label, e.count)
	}
	return fmt.Sprintf("socialgraph: %s not singular", e.label)
}

// Is reports whether the target error matches NotSingularError.
// This allows errors.Is(notSingularErr, ErrNotSingular) to return true.
func (e *NotSingularError) Is(err error) bool {
	return err == ErrNotSingular
}

// Label returns the entity label.
func (e *NotSingularError) Label() string {
	return e.label
}

// Count returns the number of results, or -1 if unknown.
func (e *NotSingularError) Count() int {
	return e.count
}

// NewNotSingularError returns a new NotSingularError for the given entity type.
func NewNotSingularError(label string) *NotSingularError {
	return &NotSingularError{label: label, count: -1}
}

// NewNotSingularErrorWithCount returns a new NotSingularError with the result count.
func NewNotSingularErrorWithCount(label string, count int) *NotSingularError {
	return &NotSingularError{label: label, count: count}
}

// IsNotSingular returns true if the error is a NotSingularError.
func IsNotSingular(err error) bool {
	if err == nil {
		return false
	}
	var e *NotSingularError
	return errors.As(err, &e) || errors.Is(err, ErrNotSingular)
}

// NotLoadedError represents an error when attempting to access an edge
// that was not loaded (eager-loaded).
type NotLoadedError struct {
	edge string
}

// Error returns the error string.
func (e *NotLoadedError) Error() string {
	return fmt.Sprintf("socialgraph: edge %q was not loaded", e.edge)
}

// NewNotLoadedError returns a new NotLoadedError for the given edge name.
func NewNotLoadedError(edge string) *NotLoadedError {
	return &NotLoadedError{edge: edge}
}

// IsNotLoaded returns true if the error is a NotLoadedError.
func IsNotLoaded(err error) bool {
	if err == nil {
		return false
	}
	var e *NotLoadedError
	return errors.As(err, &e)
}

// ConstraintKind classifies a constraint violation.
type ConstraintKind string

// Constraint kinds reported by the storage engine.
const (
	UniqueConstraint     ConstraintKind = "unique"
	ForeignKeyConstraint ConstraintKind = "foreign_key"
	CheckConstraint      ConstraintKind = "check"
)

// ConstraintError represents a database constraint violation error.
//
// Kind, Constraint and Fields are filled when the storage error could be
// matched against the registry; msg always carries the original message.
type ConstraintError struct {
	msg  string
	wrap error

	Kind       ConstraintKind
	Model      string   // model owning the constraint, e.g. "Follow"
	Constraint string   // storage name, e.g. "follows_follower_profile_id_following_profile_id_key"
	Fields     []string // model fields covered by the constraint
}

// Error returns the error string.
func (e ConstraintError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("socialgraph: %s constraint failed on %s (%s): %s", e.Kind, e.Model, strings.Join(e.Fields, ", "), e.msg)
	}
	return fmt.Sprintf("socialgraph: constraint failed: %s", e.msg)
}

// Unwrap returns the underlying error.
func (e ConstraintError) Unwrap() error {
	return e.wrap
}

// NewConstraintError returns a new ConstraintError with the given message.
func NewConstraintError(msg string, wrap error) error {
	return ConstraintError{msg: msg, wrap: wrap}
}

// NewUniqueConstraintError returns a ConstraintError for a violated unique key.
func NewUniqueConstraintError(model, constraint string, fields []string, wrap error) error {
	return NewConstraintErrorFor(UniqueConstraint, model, constraint, fields, wrap)
}

// NewConstraintErrorFor returns a ConstraintError of the given kind.
func NewConstraintErrorFor(kind ConstraintKind, model, constraint string, fields []string, wrap error) error {
	msg := constraint
	if wrap != nil {
		msg = wrap.Error()
	}
	return ConstraintError{
		msg:        msg,
		wrap:       wrap,
		Kind:       kind,
		Model:      model,
		Constraint: constraint,
		Fields:     fields,
	}
}

// IsConstraintError returns true if the error is a ConstraintError.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var e ConstraintError
	return errors.As(err, &e)
}

// IsUniqueConstraintError returns true if the error is a unique ConstraintError.
func IsUniqueConstraintError(err error) bool {
	var e ConstraintError
	return errors.As(err, &e) && e.Kind == UniqueConstraint
}

// AsConstraintError returns the ConstraintError in err's chain, if any.
func AsConstraintError(err error) (ConstraintError, bool) {
	var e ConstraintError
	ok := errors.As(err, &e)
	return e, ok
}

// ValidationError represents a validation error for field values.
type ValidationError struct {
	Name string // Field or entity name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("socialgraph: invalid %s: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError returns a new ValidationError for the given field.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// IsValidationError returns true if the error is a ValidationError.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e)
}

// RollbackError wraps an error that occurred during a transaction rollback.
type RollbackError struct {
	Err error // Original error that triggered rollback
}

// Error returns the error string.
func (e *RollbackError) Error() string {
	return fmt.Sprintf("socialgraph: rollback failed: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *RollbackError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "socialgraph: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("socialgraph: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}

// QueryError wraps a query error with additional context.
type QueryError struct {
	Entity string // Entity type being queried
	Op     string // Operation (e.g., "select", "count", "exist")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *QueryError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("socialgraph: querying %s (%s): %v", e.Entity, e.Op, e.Err)
	}
	return fmt.Sprintf("socialgraph: querying %s: %v", e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError returns a new QueryError.
func NewQueryError(entity, op string, err error) *QueryError {
	return &QueryError{Entity: entity, Op: op, Err: err}
}

// IsQueryError returns true if the error is a QueryError.
func IsQueryError(err error) bool {
	if err == nil {
		return false
	}
	var e *QueryError
	return errors.As(err, &e)
}

// MutationError wraps a mutation error with additional context.
type MutationError struct {
	Entity string // Entity type being mutated
	Op     string // Operation (e.g., "create", "update", "delete")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *MutationError) Error() string {
	return fmt.Sprintf("socialgraph: %s %s: %v", e.Op, e.Entity, e.Err)
}

// Unwrap returns the underlying error.
func (e *MutationError) Unwrap() error {
	return e.Err
}

// NewMutationError returns a new MutationError.
func NewMutationError(entity, op string, err error) *MutationError {
	return &MutationError{Entity: entity, Op: op, Err: err}
}

// IsMutationError returns true if the error is a MutationError.
func IsMutationError(err error) bool {
	if err == nil {
		return false
	}
	var e *MutationError
	return errors.As(err, &e)
}

// InfraKind classifies an infrastructure failure.
type InfraKind string

// Infrastructure failure kinds.
const (
	InfraConnection InfraKind = "connection" // storage unreachable or connection lost
	InfraTimeout    InfraKind = "timeout"    // statement canceled by deadline
	InfraTxAcquire  InfraKind = "tx_acquire" // transaction not started within maxWait
	InfraTxTimeout  InfraKind = "tx_timeout" // transaction body exceeded its timeout
	InfraConflict   InfraKind = "conflict"   // deadlock or serialization failure
)

// InfraError reports a storage or transaction failure that is not caused by
// the caller's input. Callers decide whether to retry; the access layer never
// retries on its own.
type InfraError struct {
	Kind InfraKind
	Err  error
}

// Error returns the error string.
func (e *InfraError) Error() string {
	return fmt.Sprintf("socialgraph: %s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *InfraError) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying the whole operation may succeed.
func (e *InfraError) Retryable() bool {
	switch e.Kind {
	case InfraConnection, InfraConflict, InfraTxAcquire, InfraTimeout:
		return true
	}
	return false
}

// NewInfraError returns a new InfraError.
func NewInfraError(kind InfraKind, err error) *InfraError {
	return &InfraError{Kind: kind, Err: err}
}

// IsInfraError returns true if the error is an InfraError.
func IsInfraError(err error) bool {
	if err == nil {
		return false
	}
	var e *InfraError
	return errors.As(err, &e)
}

// IsRetryable returns true if err is an InfraError that may succeed on retry.
func IsRetryable(err error) bool {
	var e *InfraError
	return errors.As(err, &e) && e.Retryable()
}
