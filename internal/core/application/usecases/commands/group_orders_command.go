package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/guard"
)

var ErrGroupOrdersCommandIsNotConstructed = errors.New(
	"GroupOrdersCommand must be created via NewGroupOrdersCommand constructor",
)

// GroupOrdersCommand is a driver accepting an order. Nearby validated orders of the same
// pickup location join the run.
type GroupOrdersCommand struct { //nolint:recvcheck //using for validation
	orderTarget

	guard guard.ConstructorGuard
}

func NewGroupOrdersCommand(actor authz.Actor, orderID kernel.UUID) (GroupOrdersCommand, error) {
	target, err := newOrderTarget(actor, orderID)
	if err != nil {
		return GroupOrdersCommand{}, err
	}

	return GroupOrdersCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c GroupOrdersCommand) Validate() error {
	return c.guard.Validate(ErrGroupOrdersCommandIsNotConstructed)
}
