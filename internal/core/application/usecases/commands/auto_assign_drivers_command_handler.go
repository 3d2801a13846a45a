package commands

import (
	"context"
	"log/slog"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
)

// AutoAssignDriversResult summarizes one sweep run.
type AutoAssignDriversResult struct {
	Scanned  int
	Assigned int
	Failed   int
}

// AutoAssignDriversCommandHandler offers every validated, driver-less standard order to a
// driver, highest priority first. Each order is assigned in its own unit of work so one
// failure never stops the sweep.
type AutoAssignDriversCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
	assigner   *AssignDriverCommandHandler
	logger     *slog.Logger
}

func NewAutoAssignDriversCommandHandler(
	uowFactory UoWFactory,
	policy authz.Policy,
	assigner *AssignDriverCommandHandler,
	logger *slog.Logger,
) AutoAssignDriversCommandHandler {
	return AutoAssignDriversCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		assigner:   assigner,
		logger:     logger.With("component", "AutoAssignDriversCommandHandler"),
	}
}

func (h *AutoAssignDriversCommandHandler) Handle(
	ctx context.Context,
	cmd AutoAssignDriversCommand,
) (AutoAssignDriversResult, error) {
	if err := cmd.Validate(); err != nil {
		return AutoAssignDriversResult{}, err
	}
	if _, err := h.policy.Authorize(cmd.Actor(), authz.Dispatch, authz.Sweep, authz.Subject{}); err != nil {
		return AutoAssignDriversResult{}, err
	}

	pending, err := h.listPending(ctx, cmd.Limit())
	if err != nil {
		return AutoAssignDriversResult{}, err
	}

	result := AutoAssignDriversResult{Scanned: len(pending)}
	for _, orderID := range pending {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		assignCmd, err := NewAssignDriverCommand(cmd.Actor(), orderID)
		if err == nil {
			_, err = h.assigner.Handle(ctx, assignCmd)
		}
		if err != nil {
			result.Failed++
			h.logger.WarnContext(ctx, "order left without driver",
				"order_id", orderID.String(), "kind", errs.KindOf(err), "error", err)
			continue
		}
		result.Assigned++
	}

	return result, nil
}

func (h *AutoAssignDriversCommandHandler) listPending(ctx context.Context, limit int) ([]kernel.UUID, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders, err := uow.OrderRepository().ListAwaitingDriver(ctx, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}
	return ids, nil
}
