package ports

import (
	"context"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/supermarket"
)

type SupermarketRepository interface {
	Add(ctx context.Context, aggregate *supermarket.Supermarket) error
	Get(ctx context.Context, id kernel.UUID) (*supermarket.Supermarket, error)
}
