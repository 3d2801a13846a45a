package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error in this package unwraps to exactly one of them,
// so callers classify failures with errors.Is.
var (
	ErrObjectNotFound        = errors.New("object not found")
	ErrValueIsInvalid        = errors.New("value is invalid")
	ErrValueIsOutOfRange     = errors.New("value is out of range")
	ErrValueIsRequired       = errors.New("value is required")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrStockConflict         = errors.New("stock conflict")
	ErrStateConflict         = errors.New("state conflict")
	ErrNoValidatorAvailable  = errors.New("no validator available")
	ErrNoDriverAvailable     = errors.New("no driver available")
	ErrExternalServiceFailed = errors.New("external service failed")
)

func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %v)", msg, cause)
}

// ObjectNotFoundError is returned when a referenced entity does not exist.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports malformed input.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside of [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string, value, minValue, maxValue any, cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	return withCause(msg, e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing required value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// NotAuthorizedError is returned when the caller lacks the role or ownership for an action.
type NotAuthorizedError struct {
	Action string
	Reason string
}

func NewNotAuthorizedError(action, reason string) *NotAuthorizedError {
	return &NotAuthorizedError{Action: action, Reason: reason}
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrNotAuthorized, e.Action, e.Reason)
}

func (e *NotAuthorizedError) Unwrap() error {
	return ErrNotAuthorized
}

// StockConflictError is returned when stock is insufficient at transition time.
// Resolution-time shortages are reported as stock issues, not as this error.
type StockConflictError struct {
	ProductID  string
	LocationID string
	Requested  int
	Available  int
}

func NewStockConflictError(productID, locationID string, requested, available int) *StockConflictError {
	return &StockConflictError{ProductID: productID, LocationID: locationID, Requested: requested, Available: available}
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("%s: product %s at location %s: requested %d, available %d",
		ErrStockConflict, e.ProductID, e.LocationID, e.Requested, e.Available)
}

func (e *StockConflictError) Unwrap() error {
	return ErrStockConflict
}

// StateConflictError is returned when an aggregate is not in a state that allows the operation,
// including optimistic concurrency failures.
type StateConflictError struct {
	Entity string
	Reason string
}

func NewStateConflictError(entity, reason string) *StateConflictError {
	return &StateConflictError{Entity: entity, Reason: reason}
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrStateConflict, e.Entity, e.Reason)
}

func (e *StateConflictError) Unwrap() error {
	return ErrStateConflict
}

// ExternalServiceError wraps failures of payment, loyalty, storage or notification collaborators.
type ExternalServiceError struct {
	Service string
	Cause   error
}

func NewExternalServiceError(service string, cause error) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Cause: cause}
}

func (e *ExternalServiceError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrExternalServiceFailed, e.Service), e.Cause)
}

func (e *ExternalServiceError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrExternalServiceFailed}
	}
	return []error{ErrExternalServiceFailed, e.Cause}
}
