package commands

import (
	"errors"
	"slices"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/pkg/guard"
)

var ErrUpdateOrderProductsCommandIsNotConstructed = errors.New(
	"UpdateOrderProductsCommand must be created via NewUpdateOrderProductsCommand constructor",
)

// UpdateOrderProductsCommand replaces the lines of an order the client may still modify.
type UpdateOrderProductsCommand struct { //nolint:recvcheck //using for validation
	orderTarget
	items []services.ItemRequest

	guard guard.ConstructorGuard
}

func NewUpdateOrderProductsCommand(
	actor authz.Actor,
	orderID kernel.UUID,
	items []services.ItemRequest,
) (UpdateOrderProductsCommand, error) {
	target, err := newOrderTarget(actor, orderID)
	if err = errors.Join(err, requireItems(items)); err != nil {
		return UpdateOrderProductsCommand{}, err
	}

	return UpdateOrderProductsCommand{
		orderTarget: target,
		items:       slices.Clone(items),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateOrderProductsCommand) Validate() error {
	return c.guard.Validate(ErrUpdateOrderProductsCommandIsNotConstructed)
}

func (c UpdateOrderProductsCommand) Items() []services.ItemRequest {
	return slices.Clone(c.items)
}
