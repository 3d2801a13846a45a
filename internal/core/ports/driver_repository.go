package ports

import (
	"context"

	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
)

// DriverRepository defines the persistence contract for driver aggregates.
type DriverRepository interface {
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Update persists the driver, checking its version.
	Update(ctx context.Context, aggregate *driver.Driver) error

	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// ListAssignable returns available, discoverable drivers with a known position.
	ListAssignable(ctx context.Context) ([]*driver.Driver, error)
}
