package driverrepo

import (
	"context"
	"errors"

	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormDriverRepository implements DriverRepository using GORM.
type GormDriverRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormDriverRepository creates a new GORM driver repository.
func NewGormDriverRepository(db *gorm.DB, tracker aggregateTracker) *GormDriverRepository {
	return &GormDriverRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new driver to the database.
func (r *GormDriverRepository) Add(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewStateConflictError("driver", "already exists")
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing driver, guarded by the version the aggregate was loaded with.
func (r *GormDriverRepository) Update(ctx context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)
	result := db.Model(&DriverDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Select("name", "lat", "lng", "status", "discoverable", "earnings", "version").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&DriverDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errs.NewObjectNotFoundError("driver", aggregate.ID().String())
		}
		return errs.NewStateConflictError("driver", "modified concurrently")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a driver by ID.
func (r *GormDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto DriverDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("driver", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// ListAssignable retrieves available, discoverable drivers that reported a position.
func (r *GormDriverRepository) ListAssignable(ctx context.Context) ([]*driver.Driver, error) {
	var dtos []DriverDTO
	if err := r.db.WithContext(ctx).
		Where("status = ? AND discoverable AND lat IS NOT NULL AND lng IS NOT NULL", driver.Available.String()).
		Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	drivers := make([]*driver.Driver, 0, len(dtos))
	for _, dto := range dtos {
		d, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}

	return drivers, nil
}
