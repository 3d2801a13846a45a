package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand cancels an order before it leaves the store.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderTarget

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(actor authz.Actor, orderID kernel.UUID) (CancelOrderCommand, error) {
	target, err := newOrderTarget(actor, orderID)
	if err != nil {
		return CancelOrderCommand{}, err
	}

	return CancelOrderCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}
