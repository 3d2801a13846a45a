package commands

import (
	"context"
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/pkg/errs"
)

// AssignDriverResult names the chosen driver; ZoneID is set when an existing zone was reused.
type AssignDriverResult struct {
	DriverID kernel.UUID
	ZoneID   *kernel.UUID
}

// AssignDriverCommandHandler loads the dispatch state of a pickup location and records the
// driver chosen by services.DriverDispatcher on the order. The order status is unchanged;
// the driver moves the order forward by accepting it. An earlier offer whose driver went
// offline, hid or left on another run is released and the order is dispatched again.
type AssignDriverCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
	dispatcher services.DriverDispatcher
}

func NewAssignDriverCommandHandler(uowFactory UoWFactory, policy authz.Policy) AssignDriverCommandHandler {
	return AssignDriverCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		dispatcher: services.NewDriverDispatcher(),
	}
}

func (h *AssignDriverCommandHandler) Handle(ctx context.Context, cmd AssignDriverCommand) (AssignDriverResult, error) {
	if err := cmd.Validate(); err != nil {
		return AssignDriverResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return AssignDriverResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	current, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return AssignDriverResult{}, err
	}
	if _, err = h.policy.Authorize(cmd.Actor(), authz.Orders, authz.AssignDriver, orderSubject(current)); err != nil {
		return AssignDriverResult{}, err
	}
	if err = h.releaseStaleOffer(ctx, uow, current); err != nil {
		return AssignDriverResult{}, err
	}

	req, err := h.loadDispatchState(ctx, uow, current)
	if err != nil {
		return AssignDriverResult{}, err
	}

	assignment, err := h.dispatcher.Dispatch(req, now())
	if err != nil {
		return AssignDriverResult{}, err
	}
	if err = orders.Update(ctx, current); err != nil {
		return AssignDriverResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return AssignDriverResult{}, err
	}

	return AssignDriverResult{DriverID: assignment.Driver.ID(), ZoneID: assignment.ZoneID}, nil
}

// releaseStaleOffer clears the offer of a driver who can no longer accept it, so the order
// is dispatched again. An offer the driver still holds is a conflict.
func (h *AssignDriverCommandHandler) releaseStaleOffer(ctx context.Context, uow UoW, o *order.Order) error {
	holderID := o.DriverID()
	if holderID == nil {
		return nil
	}

	holder, err := uow.DriverRepository().Get(ctx, *holderID)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
	case err != nil:
		return err
	case holder.CanHoldAssignment():
		return errs.NewStateConflictError("order", "a driver is already assigned")
	}

	_, err = o.ReleaseDriver(now())
	return err
}

func (h *AssignDriverCommandHandler) loadDispatchState(
	ctx context.Context,
	uow UoW,
	o *order.Order,
) (services.DispatchRequest, error) {
	market, err := uow.SupermarketRepository().Get(ctx, o.SupermarketID())
	if err != nil {
		return services.DispatchRequest{}, err
	}
	pickup, err := market.Location(o.LocationID())
	if err != nil {
		return services.DispatchRequest{}, err
	}

	req := services.DispatchRequest{
		Order:              o,
		Pickup:             pickup.Point,
		ZoneDrivers:        make(map[kernel.UUID]*driver.Driver),
		ReadyCountByDriver: make(map[kernel.UUID]int),
	}
	if validatorID := o.ValidatorID(); validatorID != nil {
		if loc, ok := market.ValidatorLocation(*validatorID); ok {
			point := loc.Point
			req.ValidatorPoint = &point
		}
	}

	orders := uow.OrderRepository()
	drivers := uow.DriverRepository()

	req.ReadyOrders, err = orders.ListByStatusAt(ctx, o.SupermarketID(), o.LocationID(), order.ReadyForPickup)
	if err != nil {
		return services.DispatchRequest{}, err
	}
	for _, ready := range req.ReadyOrders {
		driverID := ready.DriverID()
		if driverID == nil {
			continue
		}
		if _, loaded := req.ZoneDrivers[*driverID]; loaded {
			continue
		}

		zoneDriver, err := drivers.Get(ctx, *driverID)
		if err != nil {
			return services.DispatchRequest{}, err
		}
		count, err := orders.CountByDriver(ctx, *driverID, order.ReadyForPickup)
		if err != nil {
			return services.DispatchRequest{}, err
		}
		req.ZoneDrivers[*driverID] = zoneDriver
		req.ReadyCountByDriver[*driverID] = count
	}

	req.Candidates, err = drivers.ListAssignable(ctx)
	if err != nil {
		return services.DispatchRequest{}, err
	}
	req.OpenOffers = make(map[kernel.UUID]int, len(req.Candidates))
	for _, c := range req.Candidates {
		offers, err := orders.CountByDriver(ctx, c.ID(), order.Validated)
		if err != nil {
			return services.DispatchRequest{}, err
		}
		req.OpenOffers[c.ID()] = offers
	}
	return req, nil
}
