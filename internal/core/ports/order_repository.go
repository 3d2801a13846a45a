// Package ports defines the contracts between the fulfillment core and its
// infrastructure: repositories, the unit of work and external collaborators.
package ports

import (
	"context"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// Writes use optimistic concurrency: Update fails with a state conflict when the
// stored version differs from the aggregate's version.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order, checking its version.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// ListQueued returns the orders of a pickup location that are pending validation or
	// awaiting a validator, oldest submission first.
	ListQueued(ctx context.Context, supermarketID, locationID kernel.UUID) ([]*order.Order, error)

	// CountQueuedByValidator returns, per validator, how many queued orders of the pickup
	// location are assigned to them.
	CountQueuedByValidator(ctx context.Context, supermarketID, locationID kernel.UUID) (map[kernel.UUID]int, error)

	// ListByStatusAt returns orders of a pickup location in the given status, oldest first.
	ListByStatusAt(ctx context.Context, supermarketID, locationID kernel.UUID, status order.Status) ([]*order.Order, error)

	// CountByDriver counts the orders of a driver in the given status.
	CountByDriver(ctx context.Context, driverID kernel.UUID, status order.Status) (int, error)

	// ListByDriver returns the orders of a driver in the given status, oldest first.
	ListByDriver(ctx context.Context, driverID kernel.UUID, status order.Status) ([]*order.Order, error)

	// CountInZone counts the orders of a zone in the given status.
	CountInZone(ctx context.Context, zoneID kernel.UUID, status order.Status) (int, error)

	// ListAwaitingDriver returns validated standard orders that no driver holds,
	// highest priority first, then oldest first. An order offered to a driver who can
	// no longer hold assignments counts as awaiting a driver.
	ListAwaitingDriver(ctx context.Context, limit int) ([]*order.Order, error)
}
