package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
)

// orderTarget is the actor and order every per-order command carries.
type orderTarget struct {
	actor   authz.Actor
	orderID kernel.UUID
}

func newOrderTarget(actor authz.Actor, orderID kernel.UUID) (orderTarget, error) {
	if err := errors.Join(requireUser(actor), requireID("order id", orderID)); err != nil {
		return orderTarget{}, err
	}
	return orderTarget{actor: actor, orderID: orderID}, nil
}

// newSystemOrderTarget accepts actors without a user id, such as authz.System().
func newSystemOrderTarget(actor authz.Actor, orderID kernel.UUID) (orderTarget, error) {
	if err := requireID("order id", orderID); err != nil {
		return orderTarget{}, err
	}
	return orderTarget{actor: actor, orderID: orderID}, nil
}

func (t orderTarget) Actor() authz.Actor {
	return t.actor
}

func (t orderTarget) OrderID() kernel.UUID {
	return t.orderID
}
