// Package postgres provides the GORM-based implementation of the Unit of Work pattern.
// A unit of work maintains the list of aggregates affected by a business transaction
// and coordinates writing out their changes.
//
// Key Features:
//   - Transaction management across the order, product, supermarket and driver repositories
//   - Aggregate tracking so versions advance only once the transaction commits
//   - Optimistic concurrency: versioned repositories update with a version guard
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer uow.Rollback(ctx)
//
//	if err := uow.OrderRepository().Update(ctx, o); err != nil {
//	    return err
//	}
//	if err := uow.DriverRepository().Update(ctx, d); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides an isolated transaction
//   - Multiple goroutines should use separate UnitOfWork instances
//   - Concurrent writers of the same aggregate lose with a state conflict, never silently
package postgres

import (
	"context"

	"marketdelivery/internal/adapters/out/postgres/driverrepo"
	"marketdelivery/internal/adapters/out/postgres/orderrepo"
	"marketdelivery/internal/adapters/out/postgres/productrepo"
	"marketdelivery/internal/adapters/out/postgres/supermarketrepo"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/ports"

	"gorm.io/gorm"
)

// versioned is implemented by aggregates persisted with an optimistic version.
type versioned interface {
	AdvanceVersion()
}

// trackedAggregate represents an aggregate modified during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// Each business operation gets a fresh unit of work isolated from concurrent operations.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    return err
//	}
//	factory := NewGormUnitOfWorkFactory(db)
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a new UnitOfWork with its own transaction state and aggregate tracking.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates a database transaction and tracks the aggregates written
// through its repositories.
//
// Repositories persist Version()+1 for versioned aggregates. The in-memory aggregates are
// advanced only after a successful commit, so a rolled back unit of work leaves them
// matching the stored rows and a retry can reload or reuse them safely.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin initiates a new database transaction for the unit of work.
// Multiple calls to Begin on the same instance are safe and do not create nested transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit finalizes all changes made within the current transaction and advances the
// version of every tracked aggregate.
//
// Returns gorm.ErrInvalidTransaction if no transaction is active.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	if err != nil {
		uow.trackedAggregates = uow.trackedAggregates[:0]
		return err
	}

	for _, tracked := range uow.trackedAggregates {
		if v, ok := tracked.Aggregate.(versioned); ok {
			v.AdvanceVersion()
		}
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Rollback discards all changes made within the current transaction.
// Calling it after Commit is a no-op, so handlers can always defer it.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	uow.trackedAggregates = uow.trackedAggregates[:0]
	if uow.tx == nil {
		return nil
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// OrderRepository provides access to order persistence within the unit of work.
// Operations run inside the current transaction if one is active.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

// ProductRepository provides access to product persistence within the unit of work.
func (uow *GormUnitOfWork) ProductRepository() ports.ProductRepository {
	return productrepo.NewGormProductRepository(uow.conn())
}

// SupermarketRepository provides access to supermarket persistence within the unit of work.
func (uow *GormUnitOfWork) SupermarketRepository() ports.SupermarketRepository {
	return supermarketrepo.NewGormSupermarketRepository(uow.conn())
}

// DriverRepository provides access to driver persistence within the unit of work.
func (uow *GormUnitOfWork) DriverRepository() ports.DriverRepository {
	return driverrepo.NewGormDriverRepository(uow.conn(), uow)
}

// TrackAggregate registers a domain aggregate as written within this unit of work.
// Repository implementations call it after a successful Add or Update.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
