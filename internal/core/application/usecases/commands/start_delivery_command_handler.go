package commands

import (
	"context"
	"fmt"
	"log/slog"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/ports"
)

// StartDeliveryCommandHandler moves a ready order to in_delivery and the driver to busy.
type StartDeliveryCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewStartDeliveryCommandHandler(
	uowFactory UoWFactory,
	policy authz.Policy,
	notifier ports.Notifier,
	logger *slog.Logger,
) StartDeliveryCommandHandler {
	return StartDeliveryCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		notifier:   notifier,
		logger:     logger.With("component", "StartDeliveryCommandHandler"),
	}
}

func (h *StartDeliveryCommandHandler) Handle(ctx context.Context, cmd StartDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	drivers := uow.DriverRepository()

	current, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if _, err = h.policy.Authorize(cmd.Actor(), authz.Orders, authz.StartDelivery, orderSubject(current)); err != nil {
		return err
	}
	assigned, err := drivers.Get(ctx, cmd.Actor().UserID)
	if err != nil {
		return err
	}

	if err = current.StartDelivery(assigned.ID(), now()); err != nil {
		return err
	}
	if err = assigned.StartDelivery(); err != nil {
		return err
	}

	if err = orders.Update(ctx, current); err != nil {
		return err
	}
	if err = drivers.Update(ctx, assigned); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	notify(ctx, h.logger, h.notifier, current.ClientID(), fmt.Sprintf("Order %s is on its way.", current.ID()))
	return nil
}
