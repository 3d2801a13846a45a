package supermarketrepo

import (
	"context"
	"errors"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/supermarket"
	"marketdelivery/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormSupermarketRepository implements SupermarketRepository using GORM.
type GormSupermarketRepository struct {
	db *gorm.DB
}

// NewGormSupermarketRepository creates a new GORM supermarket repository.
func NewGormSupermarketRepository(db *gorm.DB) *GormSupermarketRepository {
	return &GormSupermarketRepository{db: db}
}

// Add saves a new supermarket with its locations and manager assignments.
func (r *GormSupermarketRepository) Add(ctx context.Context, aggregate *supermarket.Supermarket) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Get retrieves a supermarket by ID.
func (r *GormSupermarketRepository) Get(ctx context.Context, id kernel.UUID) (*supermarket.Supermarket, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	byPosition := func(db *gorm.DB) *gorm.DB { return db.Order("position") }

	var dto SupermarketDTO
	if err := r.db.WithContext(ctx).
		Preload("Locations", byPosition).
		Preload("Assignments", byPosition).
		First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("supermarket", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}
