package commands

import (
	"context"
	"fmt"
	"log/slog"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/ports"
	"marketdelivery/internal/pkg/errs"
)

// ApplyLoyaltyPointsCommandHandler redeems points through the ledger and records the
// reduction on the order. The ledger call happens inside the unit of work; if the order
// write does not commit the redemption is refunded.
type ApplyLoyaltyPointsCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
	ledger     ports.LoyaltyLedger
	logger     *slog.Logger
}

func NewApplyLoyaltyPointsCommandHandler(
	uowFactory UoWFactory,
	policy authz.Policy,
	ledger ports.LoyaltyLedger,
	logger *slog.Logger,
) ApplyLoyaltyPointsCommandHandler {
	return ApplyLoyaltyPointsCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		ledger:     ledger,
		logger:     logger.With("component", "ApplyLoyaltyPointsCommandHandler"),
	}
}

func (h *ApplyLoyaltyPointsCommandHandler) Handle(ctx context.Context, cmd ApplyLoyaltyPointsCommand) (order.Breakdown, error) {
	if err := cmd.Validate(); err != nil {
		return order.Breakdown{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return order.Breakdown{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	current, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return order.Breakdown{}, err
	}
	if _, err = h.policy.Authorize(cmd.Actor(), authz.Orders, authz.ApplyLoyalty, orderSubject(current)); err != nil {
		return order.Breakdown{}, err
	}
	if err = current.CanApplyLoyalty(cmd.Points()); err != nil {
		return order.Breakdown{}, err
	}

	reduction, err := h.ledger.Redeem(ctx, current.ClientID(), cmd.Points(), current.ID())
	if err != nil {
		return order.Breakdown{}, ledgerError(err)
	}

	committed := false
	defer func() {
		if !committed {
			h.refund(ctx, current)
		}
	}()

	if expected := order.LoyaltyReductionFor(cmd.Points()); !reduction.Equal(expected) {
		return order.Breakdown{}, errs.NewExternalServiceError("loyalty ledger",
			fmt.Errorf("redeemed %s, expected %s", reduction, expected))
	}

	if err = current.ApplyLoyalty(cmd.Points(), now()); err != nil {
		return order.Breakdown{}, err
	}
	if err = orders.Update(ctx, current); err != nil {
		return order.Breakdown{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return order.Breakdown{}, err
	}
	committed = true

	return current.Breakdown(), nil
}

func (h *ApplyLoyaltyPointsCommandHandler) refund(ctx context.Context, o *order.Order) {
	if _, err := h.ledger.Refund(ctx, o.ClientID(), o.ID()); err != nil {
		h.logger.ErrorContext(ctx, "failed to refund loyalty points after aborted redemption",
			"order_id", o.ID().String(), "error", err)
	}
}

// ledgerError keeps domain errors from the ledger as they are and marks the rest as
// an external failure.
func ledgerError(err error) error {
	if errs.KindOf(err) != errs.KindInternal {
		return err
	}
	return errs.NewExternalServiceError("loyalty ledger", err)
}
