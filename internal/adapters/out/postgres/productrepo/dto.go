// Package productrepo persists catalog products and their per-location stock.
package productrepo

import (
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO represents the database structure for persisting product aggregates.
type ProductDTO struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	SupermarketID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_products_supermarket_category,priority:1"`
	Name           string           `gorm:"type:varchar(255);not null"`
	Category       string           `gorm:"type:varchar(255);not null;index:idx_products_supermarket_category,priority:2"`
	Price          decimal.Decimal  `gorm:"type:numeric(12,2);not null"`
	Weight         decimal.Decimal  `gorm:"type:numeric(12,3);not null"`
	PromotionID    *uuid.UUID       `gorm:"type:uuid"`
	PromotionPrice *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Stock          []StockDTO       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for product entities.
func (ProductDTO) TableName() string {
	return "products"
}

// StockDTO is the quantity of one product at one pickup location.
type StockDTO struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	LocationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity   int       `gorm:"not null;check:quantity >= 0"`
}

// TableName specifies the database table name for stock entries.
func (StockDTO) TableName() string {
	return "product_stock"
}

func fromDomain(p *product.Product) ProductDTO {
	productID := p.ID().Bytes()

	stock := make([]StockDTO, 0, len(p.Stock()))
	for locationID, quantity := range p.Stock() {
		stock = append(stock, StockDTO{
			ProductID:  productID,
			LocationID: locationID.Bytes(),
			Quantity:   quantity,
		})
	}

	dto := ProductDTO{
		ID:            productID,
		SupermarketID: p.SupermarketID().Bytes(),
		Name:          p.Name(),
		Category:      p.Category(),
		Price:         p.Price(),
		Weight:        p.Weight(),
		Stock:         stock,
	}
	if promo := p.Promotion(); promo != nil {
		promoID := promo.ID.Bytes()
		promoPrice := promo.Price
		dto.PromotionID = &promoID
		dto.PromotionPrice = &promoPrice
	}
	return dto
}

func toDomain(dto ProductDTO) (*product.Product, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	supermarketID, err := kernel.UUIDFromBytes(dto.SupermarketID[:])
	if err != nil {
		return nil, err
	}

	var promotion *product.Promotion
	if dto.PromotionID != nil && dto.PromotionPrice != nil {
		promoID, promoErr := kernel.UUIDFromBytes(dto.PromotionID[:])
		if promoErr != nil {
			return nil, promoErr
		}
		promotion = &product.Promotion{ID: promoID, Price: *dto.PromotionPrice}
	}

	stock := make(map[kernel.UUID]int, len(dto.Stock))
	for _, s := range dto.Stock {
		locationID, stockErr := kernel.UUIDFromBytes(s.LocationID[:])
		if stockErr != nil {
			return nil, stockErr
		}
		stock[locationID] = s.Quantity
	}

	return product.RestoreProduct(id, supermarketID, dto.Name, dto.Category, dto.Price, dto.Weight, promotion, stock)
}
