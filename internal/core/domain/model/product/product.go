// Package product provides the Product aggregate: catalog entry of a supermarket with
// price, optional promotion, unit weight and per-location stock.
package product

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrProductIsNotConstructed = errors.New("Product must be created via NewProduct constructor")
	ErrNameIsRequired          = errs.NewValueIsRequiredError("name")
	ErrCategoryIsRequired      = errs.NewValueIsRequiredError("category")
)

// DefaultUnitWeight is used when a product has no weight set.
var DefaultUnitWeight = decimal.NewFromInt(1)

// Promotion is a promotional price for a product.
type Promotion struct {
	ID    kernel.UUID
	Price decimal.Decimal
}

type Product struct {
	id            kernel.UUID
	supermarketID kernel.UUID
	name          string
	category      string
	price         decimal.Decimal
	promotion     *Promotion
	weight        decimal.Decimal
	stock         map[kernel.UUID]int
	guard         guard.ConstructorGuard
}

// NewProduct creates a product without stock. A zero weight falls back to DefaultUnitWeight.
func NewProduct(
	id, supermarketID kernel.UUID,
	name, category string,
	price, weight decimal.Decimal,
) (*Product, error) {
	p := &Product{
		stock: make(map[kernel.UUID]int),
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setIDs(id, supermarketID),
		p.setName(name),
		p.setCategory(category),
		p.setPrice(price),
		p.setWeight(weight),
	); err != nil {
		return nil, err
	}

	return p, nil
}

// RestoreProduct rebuilds a product from persistence.
func RestoreProduct(
	id, supermarketID kernel.UUID,
	name, category string,
	price, weight decimal.Decimal,
	promotion *Promotion,
	stock map[kernel.UUID]int,
) (*Product, error) {
	p, err := NewProduct(id, supermarketID, name, category, price, weight)
	if err != nil {
		return nil, err
	}
	for locationID, quantity := range stock {
		if err := p.Restock(locationID, quantity); err != nil {
			return nil, err
		}
	}
	p.promotion = promotion
	return p, nil
}

func (p *Product) Validate() error {
	if p == nil {
		return ErrProductIsNotConstructed
	}
	return p.guard.Validate(ErrProductIsNotConstructed)
}

func (p *Product) ID() kernel.UUID {
	return p.id
}

func (p *Product) SupermarketID() kernel.UUID {
	return p.supermarketID
}

func (p *Product) Name() string {
	return p.name
}

func (p *Product) Category() string {
	return p.category
}

func (p *Product) Price() decimal.Decimal {
	return p.price
}

func (p *Product) Weight() decimal.Decimal {
	return p.weight
}

func (p *Product) Promotion() *Promotion {
	return p.promotion
}

// Stock returns a copy of the per-location quantities.
func (p *Product) Stock() map[kernel.UUID]int {
	return maps.Clone(p.stock)
}

func (p *Product) StockAt(locationID kernel.UUID) int {
	return p.stock[locationID]
}

func (p *Product) HasStock(locationID kernel.UUID, quantity int) bool {
	return p.stock[locationID] >= quantity
}

// BelongsTo reports whether the product is sold by the supermarket.
func (p *Product) BelongsTo(supermarketID kernel.UUID) bool {
	return p.supermarketID.IsEqual(supermarketID)
}

// ActivePromotion returns the promotion only when 0 < promo price < price.
func (p *Product) ActivePromotion() *Promotion {
	if p.promotion == nil {
		return nil
	}
	if !p.promotion.Price.IsPositive() || !p.promotion.Price.LessThan(p.price) {
		return nil
	}
	return p.promotion
}

// EffectivePrice is the promotional price when a promotion is active, else the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if promo := p.ActivePromotion(); promo != nil {
		return promo.Price
	}
	return p.price
}

func (p *Product) SetPromotion(promotion *Promotion) error {
	if promotion != nil {
		if err := promotion.ID.Validate(); err != nil {
			return err
		}
	}
	p.promotion = promotion
	return nil
}

// Restock adds quantity at a location.
func (p *Product) Restock(locationID kernel.UUID, quantity int) error {
	if err := locationID.Validate(); err != nil {
		return err
	}
	if quantity < 0 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 0, "unbounded")
	}
	p.stock[locationID] += quantity
	return nil
}

// DecrementStock removes quantity at a location or fails with a stock conflict
// leaving the stock untouched.
func (p *Product) DecrementStock(locationID kernel.UUID, quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, "stock")
	}
	available := p.stock[locationID]
	if available < quantity {
		return errs.NewStockConflictError(p.id.String(), locationID.String(), quantity, available)
	}
	p.stock[locationID] = available - quantity
	return nil
}

func (p *Product) setIDs(id, supermarketID kernel.UUID) error {
	if err := errors.Join(id.Validate(), supermarketID.Validate()); err != nil {
		return err
	}
	p.id = id
	p.supermarketID = supermarketID
	return nil
}

func (p *Product) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameIsRequired
	}
	p.name = name
	return nil
}

func (p *Product) setCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return ErrCategoryIsRequired
	}
	p.category = category
	return nil
}

func (p *Product) setPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("price", fmt.Errorf("%s is negative", price))
	}
	p.price = price
	return nil
}

func (p *Product) setWeight(weight decimal.Decimal) error {
	if weight.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%s is negative", weight))
	}
	if weight.IsZero() {
		weight = DefaultUnitWeight
	}
	p.weight = weight
	return nil
}
