package commands

import (
	"context"
	"fmt"
	"log/slog"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/ports"
)

// ReportDeliveryIssueCommandHandler moves an in-flight order to delivery_issue and
// releases the driver when nothing else remains in the run. No fee is credited.
type ReportDeliveryIssueCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewReportDeliveryIssueCommandHandler(
	uowFactory UoWFactory,
	policy authz.Policy,
	notifier ports.Notifier,
	logger *slog.Logger,
) ReportDeliveryIssueCommandHandler {
	return ReportDeliveryIssueCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		notifier:   notifier,
		logger:     logger.With("component", "ReportDeliveryIssueCommandHandler"),
	}
}

func (h *ReportDeliveryIssueCommandHandler) Handle(ctx context.Context, cmd ReportDeliveryIssueCommand) error {
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
	if _, err = h.policy.Authorize(cmd.Actor(), authz.Orders, authz.ReportIssue, orderSubject(current)); err != nil {
		return err
	}
	assigned, err := drivers.Get(ctx, cmd.Actor().UserID)
	if err != nil {
		return err
	}

	if err = current.ReportIssue(assigned.ID(), cmd.Note(), now()); err != nil {
		return err
	}
	remaining, err := remainingInRun(ctx, orders, assigned.ID())
	if err != nil {
		return err
	}
	if err = assigned.ReleaseDelivery(remaining); err != nil {
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

	notify(ctx, h.logger, h.notifier, current.ClientID(),
		fmt.Sprintf("There is a problem delivering order %s: %s", current.ID(), cmd.Note()))
	return nil
}
