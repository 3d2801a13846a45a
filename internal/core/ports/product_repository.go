package ports

import (
	"context"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/product"
)

type ProductRepository interface {
	Add(ctx context.Context, aggregate *product.Product) error
	Update(ctx context.Context, aggregate *product.Product) error
	Get(ctx context.Context, id kernel.UUID) (*product.Product, error)

	// GetByIDs returns the products found among ids; missing ids are simply absent.
	GetByIDs(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]*product.Product, error)

	// ListByCategories returns products of a supermarket in any of the categories, by name.
	ListByCategories(ctx context.Context, supermarketID kernel.UUID, categories []string) ([]*product.Product, error)

	// DecrementStock removes quantity from one stock entry with a guarded update and
	// fails with a stock conflict if the entry holds less than quantity.
	DecrementStock(ctx context.Context, productID, locationID kernel.UUID, quantity int) error
}
