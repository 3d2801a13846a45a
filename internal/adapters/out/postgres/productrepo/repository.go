package productrepo

import (
	"context"
	"errors"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/product"
	"marketdelivery/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GORM product repository.
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// Add saves a new product together with its stock entries.
func (r *GormProductRepository) Add(ctx context.Context, aggregate *product.Product) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update saves the product row and upserts every stock entry.
func (r *GormProductRepository) Update(ctx context.Context, aggregate *product.Product) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	db := r.db.WithContext(ctx)

	result := db.Model(&ProductDTO{}).
		Where("id = ?", dto.ID).
		Select("name", "category", "price", "weight", "promotion_id", "promotion_price").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("product", aggregate.ID().String())
	}

	if len(dto.Stock) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
	}).Create(&dto.Stock).Error
}

// Get retrieves a product by ID with its stock.
func (r *GormProductRepository) Get(ctx context.Context, id kernel.UUID) (*product.Product, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ProductDTO
	if err := r.db.WithContext(ctx).Preload("Stock").First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("product", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByIDs retrieves the products found among ids. Unknown ids are left out of the map.
func (r *GormProductRepository) GetByIDs(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]*product.Product, error) {
	found := make(map[kernel.UUID]*product.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	var dtos []ProductDTO
	if err := r.db.WithContext(ctx).Preload("Stock").Where("id IN ?", raw).Find(&dtos).Error; err != nil {
		return nil, err
	}

	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		found[p.ID()] = p
	}
	return found, nil
}

// ListByCategories retrieves the products of a supermarket in any of the categories, by name.
func (r *GormProductRepository) ListByCategories(
	ctx context.Context,
	supermarketID kernel.UUID,
	categories []string,
) ([]*product.Product, error) {
	if len(categories) == 0 {
		return nil, nil
	}

	var dtos []ProductDTO
	if err := r.db.WithContext(ctx).
		Preload("Stock").
		Where("supermarket_id = ? AND category IN ?", supermarketID.Bytes(), categories).
		Order("name, id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	products := make([]*product.Product, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// DecrementStock removes quantity from one stock entry in a single guarded statement.
// Two validations racing for the last units cannot both succeed: the loser matches no
// row and gets a stock conflict carrying the quantity still available.
func (r *GormProductRepository) DecrementStock(ctx context.Context, productID, locationID kernel.UUID, quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "stock")
	}

	db := r.db.WithContext(ctx)
	result := db.Model(&StockDTO{}).
		Where("product_id = ? AND location_id = ? AND quantity >= ?", productID.Bytes(), locationID.Bytes(), quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var available int
	if err := db.Model(&StockDTO{}).
		Select("COALESCE(MAX(quantity), 0)").
		Where("product_id = ? AND location_id = ?", productID.Bytes(), locationID.Bytes()).
		Scan(&available).Error; err != nil {
		return err
	}
	return errs.NewStockConflictError(productID.String(), locationID.String(), quantity, available)
}
