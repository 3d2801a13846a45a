package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/guard"
)

var ErrValidateOrderCommandIsNotConstructed = errors.New(
	"ValidateOrderCommand must be created via NewValidateOrderCommand constructor",
)

// ValidateOrderCommand is a validator approving a queued order for fulfillment.
type ValidateOrderCommand struct { //nolint:recvcheck //using for validation
	orderTarget

	guard guard.ConstructorGuard
}

func NewValidateOrderCommand(actor authz.Actor, orderID kernel.UUID) (ValidateOrderCommand, error) {
	target, err := newOrderTarget(actor, orderID)
	if err != nil {
		return ValidateOrderCommand{}, err
	}

	return ValidateOrderCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ValidateOrderCommand) Validate() error {
	return c.guard.Validate(ErrValidateOrderCommandIsNotConstructed)
}
