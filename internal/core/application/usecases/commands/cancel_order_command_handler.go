package commands

import (
	"context"
	"fmt"
	"log/slog"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/ports"
	"marketdelivery/internal/pkg/errs"
)

type CancelOrderResult struct {
	RefundedPoints int
}

// CancelOrderCommandHandler cancels an order. Clients may cancel while the order is
// self-modifiable; validators only while it is queued. Redeemed points are refunded
// before the cancellation is written. The ledger refund is idempotent, so a failed
// commit can simply be retried.
type CancelOrderCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
	ledger     ports.LoyaltyLedger
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewCancelOrderCommandHandler(
	uowFactory UoWFactory,
	policy authz.Policy,
	ledger ports.LoyaltyLedger,
	notifier ports.Notifier,
	logger *slog.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		ledger:     ledger,
		notifier:   notifier,
		logger:     logger.With("component", "CancelOrderCommandHandler"),
	}
}

func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (CancelOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CancelOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CancelOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	current, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return CancelOrderResult{}, err
	}
	grant, err := h.policy.Authorize(cmd.Actor(), authz.Orders, authz.Cancel, orderSubject(current))
	if err != nil {
		return CancelOrderResult{}, err
	}
	if grant.Capability == authz.OrderValidator && !current.IsQueued() {
		return CancelOrderResult{}, errs.NewStateConflictError("order",
			fmt.Sprintf("validators cancel queued orders only, order is %s", current.Status()))
	}
	if _, err = current.Status().Cancel(); err != nil {
		return CancelOrderResult{}, err
	}

	var result CancelOrderResult
	if current.LoyaltyPointsUsed() > 0 {
		if result.RefundedPoints, err = h.ledger.Refund(ctx, current.ClientID(), current.ID()); err != nil {
			return CancelOrderResult{}, ledgerError(err)
		}
	}

	at := now()
	current.ClearLoyalty(at)
	if err = current.Cancel(at); err != nil {
		return CancelOrderResult{}, err
	}
	if err = reindexQueue(ctx, orders, current); err != nil {
		return CancelOrderResult{}, err
	}
	if err = orders.Update(ctx, current); err != nil {
		return CancelOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CancelOrderResult{}, err
	}

	notify(ctx, h.logger, h.notifier, current.ClientID(), fmt.Sprintf("Order %s was cancelled.", current.ID()))
	return result, nil
}
