package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/guard"
)

var ErrSubmitOrderCommandIsNotConstructed = errors.New(
	"SubmitOrderCommand must be created via NewSubmitOrderCommand constructor",
)

// SubmitOrderCommand moves a priced cart into the validation queue. An empty payment
// method keeps the one already recorded on the order.
type SubmitOrderCommand struct { //nolint:recvcheck //using for validation
	orderTarget
	paymentMethod string

	guard guard.ConstructorGuard
}

func NewSubmitOrderCommand(actor authz.Actor, orderID kernel.UUID, paymentMethod string) (SubmitOrderCommand, error) {
	target, err := newOrderTarget(actor, orderID)
	if err != nil {
		return SubmitOrderCommand{}, err
	}

	return SubmitOrderCommand{
		orderTarget:   target,
		paymentMethod: paymentMethod,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c SubmitOrderCommand) Validate() error {
	return c.guard.Validate(ErrSubmitOrderCommandIsNotConstructed)
}

func (c SubmitOrderCommand) PaymentMethod() string {
	return c.paymentMethod
}
