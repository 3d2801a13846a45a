package commands

import (
	"context"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/ports"
)

// UpdateDriverPresenceCommandHandler applies a driver's own location and availability changes.
// A driver who goes offline or hides loses the orders offered to them in the same unit
// of work.
type UpdateDriverPresenceCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
}

func NewUpdateDriverPresenceCommandHandler(uowFactory UoWFactory, policy authz.Policy) UpdateDriverPresenceCommandHandler {
	return UpdateDriverPresenceCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
	}
}

func (h *UpdateDriverPresenceCommandHandler) Handle(ctx context.Context, cmd UpdateDriverPresenceCommand) (driver.Status, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}
	self := cmd.Actor().UserID
	if _, err := h.policy.Authorize(cmd.Actor(), authz.Drivers, authz.UpdatePresence,
		authz.Subject{DriverID: &self}); err != nil {
		return "", err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return "", err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	drivers := uow.DriverRepository()
	current, err := drivers.Get(ctx, self)
	if err != nil {
		return "", err
	}

	if loc := cmd.Location(); loc != nil {
		if err = current.UpdateLocation(*loc); err != nil {
			return "", err
		}
	}
	if d := cmd.Discoverable(); d != nil {
		current.SetDiscoverable(*d)
	}
	if online := cmd.Online(); online != nil {
		if *online {
			err = current.GoOnline()
		} else {
			err = current.GoOffline()
		}
		if err != nil {
			return "", err
		}
	}

	if !current.CanHoldAssignment() {
		if err = releaseOffers(ctx, uow.OrderRepository(), current.ID()); err != nil {
			return "", err
		}
	}

	if err = drivers.Update(ctx, current); err != nil {
		return "", err
	}
	if err = uow.Commit(ctx); err != nil {
		return "", err
	}
	return current.Status(), nil
}

// releaseOffers withdraws the orders offered to a driver who can no longer accept them.
// The orders stay validated and the sweep dispatches them again.
func releaseOffers(ctx context.Context, orders ports.OrderRepository, driverID kernel.UUID) error {
	offered, err := orders.ListByDriver(ctx, driverID, order.Validated)
	if err != nil {
		return err
	}
	for _, o := range offered {
		if _, err = o.ReleaseDriver(now()); err != nil {
			return err
		}
		if err = orders.Update(ctx, o); err != nil {
			return err
		}
	}
	return nil
}
