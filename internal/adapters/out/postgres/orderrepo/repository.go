package orderrepo

import (
	"context"
	"errors"

	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// queuedStatuses are the statuses that occupy a validation queue slot.
var queuedStatuses = []string{order.PendingValidation.String(), order.AwaitingValidator.String()}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewStateConflictError("order", "already exists")
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order, guarded by the version the aggregate was loaded with.
// A concurrent writer that committed first makes this fail with a state conflict.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("*").
		Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, dto.ID, aggregate.ID())
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

func (r *GormOrderRepository) missOrConflict(ctx context.Context, raw uuid.UUID, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", raw).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("order", id.String())
	}
	return errs.NewStateConflictError("order", "modified concurrently")
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListQueued retrieves the queued orders of a pickup location in queue order.
func (r *GormOrderRepository) ListQueued(ctx context.Context, supermarketID, locationID kernel.UUID) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Where("supermarket_id = ? AND location_id = ? AND status IN ?",
			supermarketID.Bytes(), locationID.Bytes(), queuedStatuses).
		Order("submitted_at, created_at, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// CountQueuedByValidator counts queued orders per assigned validator at a pickup location.
func (r *GormOrderRepository) CountQueuedByValidator(
	ctx context.Context,
	supermarketID, locationID kernel.UUID,
) (map[kernel.UUID]int, error) {
	var rows []struct {
		ValidatorID uuid.UUID
		Total       int
	}
	if err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Select("validator_id, COUNT(*) AS total").
		Where("supermarket_id = ? AND location_id = ? AND status IN ? AND validator_id IS NOT NULL",
			supermarketID.Bytes(), locationID.Bytes(), queuedStatuses).
		Group("validator_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[kernel.UUID]int, len(rows))
	for _, row := range rows {
		id, err := kernel.UUIDFromBytes(row.ValidatorID[:])
		if err != nil {
			return nil, err
		}
		counts[id] = row.Total
	}
	return counts, nil
}

// ListByStatusAt retrieves the orders of a pickup location in one status, oldest first.
func (r *GormOrderRepository) ListByStatusAt(
	ctx context.Context,
	supermarketID, locationID kernel.UUID,
	status order.Status,
) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Where("supermarket_id = ? AND location_id = ? AND status = ?",
			supermarketID.Bytes(), locationID.Bytes(), status.String()).
		Order("created_at, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// CountByDriver counts the orders of a driver in one status.
func (r *GormOrderRepository) CountByDriver(ctx context.Context, driverID kernel.UUID, status order.Status) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("driver_id = ? AND status = ?", driverID.Bytes(), status.String()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// ListByDriver retrieves the orders of a driver in one status, oldest first.
func (r *GormOrderRepository) ListByDriver(
	ctx context.Context,
	driverID kernel.UUID,
	status order.Status,
) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Where("driver_id = ? AND status = ?", driverID.Bytes(), status.String()).
		Order("created_at, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// CountInZone counts the orders of a zone in one status.
func (r *GormOrderRepository) CountInZone(ctx context.Context, zoneID kernel.UUID, status order.Status) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("zone_id = ? AND status = ?", zoneID.Bytes(), status.String()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// ListAwaitingDriver retrieves validated standard orders that no driver holds,
// highest priority first, then oldest first. The holding check mirrors
// driver.CanHoldAssignment.
func (r *GormOrderRepository) ListAwaitingDriver(ctx context.Context, limit int) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Where("orders.status = ? AND orders.delivery_type = ?",
			order.Validated.String(), string(order.Standard)).
		Where("NOT EXISTS (?)", r.holdingDriver()).
		Order("priority DESC, created_at, id").
		Limit(limit).
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// holdingDriver selects the driver of the outer order row when that driver still holds
// its assignments: waiting at a pickup, or available, discoverable and located.
func (r *GormOrderRepository) holdingDriver() *gorm.DB {
	return r.db.Table("drivers").
		Select("1").
		Where("drivers.id = orders.driver_id").
		Where(r.db.Where("drivers.status = ?", driver.PendingPickup.String()).
			Or("drivers.status = ? AND drivers.discoverable AND drivers.lat IS NOT NULL AND drivers.lng IS NOT NULL",
				driver.Available.String()))
}

func toDomainList(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
