package errs

import "errors"

// Kind is a stable machine-readable error classification surfaced to API callers.
type Kind string

const (
	KindValidation           Kind = "validation_error"
	KindNotFound             Kind = "not_found"
	KindAuthorization        Kind = "authorization_error"
	KindStockConflict        Kind = "stock_conflict"
	KindNoValidatorAvailable Kind = "no_validator_available"
	KindNoDriverAvailable    Kind = "no_driver_available"
	KindStateConflict        Kind = "state_conflict"
	KindExternalService      Kind = "external_service_error"
	KindInternal             Kind = "internal_error"
)

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrExternalServiceFailed):
		return KindExternalService
	case errors.Is(err, ErrValueIsInvalid),
		errors.Is(err, ErrValueIsOutOfRange),
		errors.Is(err, ErrValueIsRequired):
		return KindValidation
	case errors.Is(err, ErrObjectNotFound):
		return KindNotFound
	case errors.Is(err, ErrNotAuthorized):
		return KindAuthorization
	case errors.Is(err, ErrStockConflict):
		return KindStockConflict
	case errors.Is(err, ErrNoValidatorAvailable):
		return KindNoValidatorAvailable
	case errors.Is(err, ErrNoDriverAvailable):
		return KindNoDriverAvailable
	case errors.Is(err, ErrStateConflict):
		return KindStateConflict
	default:
		return KindInternal
	}
}
