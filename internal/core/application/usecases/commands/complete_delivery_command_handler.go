package commands

import (
	"context"
	"fmt"
	"log/slog"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/ports"
)

// CompleteDeliveryResult reports what the hand-over produced.
type CompleteDeliveryResult struct {
	PointsEarned int
}

// CompleteDeliveryCommandHandler delivers an order, credits the delivery fee to the driver
// and, after commit, earns loyalty points for the client. A failed earn is logged; the
// delivery stays completed.
type CompleteDeliveryCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
	ledger     ports.LoyaltyLedger
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewCompleteDeliveryCommandHandler(
	uowFactory UoWFactory,
	policy authz.Policy,
	ledger ports.LoyaltyLedger,
	notifier ports.Notifier,
	logger *slog.Logger,
) CompleteDeliveryCommandHandler {
	return CompleteDeliveryCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		ledger:     ledger,
		notifier:   notifier,
		logger:     logger.With("component", "CompleteDeliveryCommandHandler"),
	}
}

func (h *CompleteDeliveryCommandHandler) Handle(
	ctx context.Context,
	cmd CompleteDeliveryCommand,
) (CompleteDeliveryResult, error) {
	if err := cmd.Validate(); err != nil {
		return CompleteDeliveryResult{}, err
	}

	delivered, err := h.deliver(ctx, cmd)
	if err != nil {
		return CompleteDeliveryResult{}, err
	}

	points := delivered.LoyaltyPointsEarned()
	if points > 0 {
		reason := fmt.Sprintf("order %s delivered", delivered.ID())
		if err = h.ledger.Earn(ctx, delivered.ClientID(), points, reason); err != nil {
			h.logger.ErrorContext(ctx, "failed to earn loyalty points",
				"order_id", delivered.ID().String(), "points", points, "error", err)
			points = 0
		}
	}

	notify(ctx, h.logger, h.notifier, delivered.ClientID(), fmt.Sprintf("Order %s was delivered.", delivered.ID()))
	return CompleteDeliveryResult{PointsEarned: points}, nil
}

func (h *CompleteDeliveryCommandHandler) deliver(ctx context.Context, cmd CompleteDeliveryCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	drivers := uow.DriverRepository()

	current, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if _, err = h.policy.Authorize(cmd.Actor(), authz.Orders, authz.CompleteDelivery, orderSubject(current)); err != nil {
		return nil, err
	}
	assigned, err := drivers.Get(ctx, cmd.Actor().UserID)
	if err != nil {
		return nil, err
	}

	if err = current.Deliver(assigned.ID(), cmd.ValidationCode(), cmd.ProofPhotoRef(), now()); err != nil {
		return nil, err
	}
	remaining, err := remainingInRun(ctx, orders, assigned.ID())
	if err != nil {
		return nil, err
	}
	if err = assigned.CompleteDelivery(current.Breakdown().DeliveryFee, remaining); err != nil {
		return nil, err
	}

	if err = orders.Update(ctx, current); err != nil {
		return nil, err
	}
	if err = drivers.Update(ctx, assigned); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return current, nil
}

// remainingInRun counts the driver's other unfinished orders, assuming one in_delivery
// order is being closed and not yet written.
func remainingInRun(ctx context.Context, orders ports.OrderRepository, driverID kernel.UUID) (int, error) {
	inDelivery, err := orders.CountByDriver(ctx, driverID, order.InDelivery)
	if err != nil {
		return 0, err
	}
	ready, err := orders.CountByDriver(ctx, driverID, order.ReadyForPickup)
	if err != nil {
		return 0, err
	}
	return max(0, inDelivery-1) + ready, nil
}
