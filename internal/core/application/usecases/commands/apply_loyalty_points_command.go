package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"
)

var ErrApplyLoyaltyPointsCommandIsNotConstructed = errors.New(
	"ApplyLoyaltyPointsCommand must be created via NewApplyLoyaltyPointsCommand constructor",
)

// ApplyLoyaltyPointsCommand redeems client points against an order's total.
type ApplyLoyaltyPointsCommand struct { //nolint:recvcheck //using for validation
	orderTarget
	points int

	guard guard.ConstructorGuard
}

func NewApplyLoyaltyPointsCommand(actor authz.Actor, orderID kernel.UUID, points int) (ApplyLoyaltyPointsCommand, error) {
	target, err := newOrderTarget(actor, orderID)
	if points < 1 {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("points", points, 1, "balance"))
	}
	if err != nil {
		return ApplyLoyaltyPointsCommand{}, err
	}

	return ApplyLoyaltyPointsCommand{
		orderTarget: target,
		points:      points,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ApplyLoyaltyPointsCommand) Validate() error {
	return c.guard.Validate(ErrApplyLoyaltyPointsCommandIsNotConstructed)
}

func (c ApplyLoyaltyPointsCommand) Points() int {
	return c.points
}
