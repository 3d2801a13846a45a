package kernel

import (
	"fmt"

	"marketdelivery/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed indicates that a UUID was not properly initialized through one of the constructor functions.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError(
	"UUID must be created via NewUUID, UUIDFromString, or UUIDFromBytes")

// UUID is the identifier value object for every aggregate (orders, products, supermarkets,
// locations, drivers, managers, zones). It wraps github.com/google/uuid; the zero value is invalid.
//
// Example usage:
//
//	orderID := kernel.NewUUID()
//	zoneID, err := kernel.UUIDFromString(raw)
//	if err != nil {
//	    return fmt.Errorf("invalid zone ID: %w", err)
//	}
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a new random UUID (version 4).
func NewUUID() UUID {
	return UUID{
		id: uuid.New(),
	}
}

// UUIDFromString parses a UUID from its string representation.
// Braced and urn-prefixed forms are accepted.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, errs.NewValueIsInvalidErrorWithCause("uuid", fmt.Errorf("invalid UUID format: %w", err))
	}
	return UUID{id: id}, nil
}

// UUIDFromBytes creates a UUID from a 16 byte slice, typically read back from storage.
// The nil UUID is rejected.
func UUIDFromBytes(b []byte) (UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	newID := UUID{id: id}
	if err = newID.Validate(); err != nil {
		return UUID{}, err
	}

	return newID, nil
}

// String returns the canonical "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" form.
func (u UUID) String() string {
	return u.id.String()
}

// Bytes returns the underlying uuid.UUID, used by persistence adapters.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

// IsEqual reports whether both UUIDs hold the same value.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Validate returns ErrUUIDIsNotConstructed for the nil UUID.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}

// OptionalUUIDEqual compares two optional identifiers; two nils are equal.
func OptionalUUIDEqual(a, b *UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqual(*b)
}
