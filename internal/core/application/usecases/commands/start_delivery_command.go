package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/guard"
)

var ErrStartDeliveryCommandIsNotConstructed = errors.New(
	"StartDeliveryCommand must be created via NewStartDeliveryCommand constructor",
)

// StartDeliveryCommand records that the assigned driver picked the order up.
type StartDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderTarget

	guard guard.ConstructorGuard
}

func NewStartDeliveryCommand(actor authz.Actor, orderID kernel.UUID) (StartDeliveryCommand, error) {
	target, err := newOrderTarget(actor, orderID)
	if err != nil {
		return StartDeliveryCommand{}, err
	}

	return StartDeliveryCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c StartDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrStartDeliveryCommandIsNotConstructed)
}
