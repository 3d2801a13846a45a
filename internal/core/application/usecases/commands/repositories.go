// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// Every handler runs one unit of work: re-read, mutate through the aggregates, write
// with an optimistic version check and commit.
package commands

import (
	"context"

	"marketdelivery/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	ProductRepoFactory interface {
		ProductRepository() ports.ProductRepository
	}

	SupermarketRepoFactory interface {
		SupermarketRepository() ports.SupermarketRepository
	}

	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	// UoW spans every aggregate a fulfillment command touches.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   orderRepo := uow.OrderRepository()
	//   driverRepo := uow.DriverRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		ProductRepoFactory
		SupermarketRepoFactory
		DriverRepoFactory
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}
)
