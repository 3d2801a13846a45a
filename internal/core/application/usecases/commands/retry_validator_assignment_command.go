package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/guard"
)

var ErrRetryValidatorAssignmentCommandIsNotConstructed = errors.New(
	"RetryValidatorAssignmentCommand must be created via NewRetryValidatorAssignmentCommand constructor",
)

// RetryValidatorAssignmentCommand asks for a validator for an order left in awaiting_validator.
type RetryValidatorAssignmentCommand struct { //nolint:recvcheck //using for validation
	orderTarget

	guard guard.ConstructorGuard
}

func NewRetryValidatorAssignmentCommand(actor authz.Actor, orderID kernel.UUID) (RetryValidatorAssignmentCommand, error) {
	target, err := newOrderTarget(actor, orderID)
	if err != nil {
		return RetryValidatorAssignmentCommand{}, err
	}

	return RetryValidatorAssignmentCommand{
		orderTarget: target,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c RetryValidatorAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrRetryValidatorAssignmentCommandIsNotConstructed)
}
