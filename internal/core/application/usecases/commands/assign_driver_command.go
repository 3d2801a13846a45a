package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/guard"
)

var ErrAssignDriverCommandIsNotConstructed = errors.New(
	"AssignDriverCommand must be created via NewAssignDriverCommand constructor",
)

// AssignDriverCommand requests a driver for a validated order. It is issued by validators,
// dispatchers and the assignment sweep, which acts as authz.System().
type AssignDriverCommand struct { //nolint:recvcheck //using for validation
	orderTarget

	guard guard.ConstructorGuard
}

func NewAssignDriverCommand(actor authz.Actor, orderID kernel.UUID) (AssignDriverCommand, error) {
	target, err := newSystemOrderTarget(actor, orderID)
	if err != nil {
		return AssignDriverCommand{}, err
	}

	return AssignDriverCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c AssignDriverCommand) Validate() error {
	return c.guard.Validate(ErrAssignDriverCommandIsNotConstructed)
}
