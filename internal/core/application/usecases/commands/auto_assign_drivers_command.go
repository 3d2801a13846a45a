package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"
)

// DefaultSweepBatchSize bounds how many orders one sweep run looks at.
const DefaultSweepBatchSize = 100

var ErrAutoAssignDriversCommandIsNotConstructed = errors.New(
	"AutoAssignDriversCommand must be created via NewAutoAssignDriversCommand constructor",
)

// AutoAssignDriversCommand runs one pass of the driver assignment sweep.
type AutoAssignDriversCommand struct { //nolint:recvcheck //using for validation
	actor authz.Actor
	limit int

	guard guard.ConstructorGuard
}

// NewAutoAssignDriversCommand builds a sweep command; a zero limit means DefaultSweepBatchSize.
func NewAutoAssignDriversCommand(actor authz.Actor, limit int) (AutoAssignDriversCommand, error) {
	if limit < 0 {
		return AutoAssignDriversCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 0, "unbounded")
	}
	if limit == 0 {
		limit = DefaultSweepBatchSize
	}

	return AutoAssignDriversCommand{
		actor: actor,
		limit: limit,
		guard: guard.NewConstructorGuard(),
	}, nil
}

func (c AutoAssignDriversCommand) Validate() error {
	return c.guard.Validate(ErrAutoAssignDriversCommandIsNotConstructed)
}

func (c AutoAssignDriversCommand) Actor() authz.Actor {
	return c.actor
}

func (c AutoAssignDriversCommand) Limit() int {
	return c.limit
}
