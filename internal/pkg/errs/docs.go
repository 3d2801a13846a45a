// Package errs provides standardized error types for the market delivery application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: malformed input
//   - ObjectNotFoundError: a referenced entity is absent
//   - NotAuthorizedError: the caller lacks a capability or ownership
//   - StockConflictError: stock became insufficient between resolution and validation
//   - StateConflictError: a transition is invalid from the current status
//   - ExternalServiceError: a payment, loyalty or storage collaborator failed
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions
//   - Error() method for formatting the error message
//   - Unwrap() method for error wrapping/unwrapping support
//
// KindOf maps any error onto a stable Kind string that the HTTP adapter exposes to callers.
package errs
