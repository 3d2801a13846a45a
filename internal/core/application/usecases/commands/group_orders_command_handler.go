package commands

import (
	"context"
	"fmt"
	"log/slog"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/core/ports"
	"marketdelivery/internal/pkg/errs"
)

// GroupOrdersResult lists the orders now ready for pickup by the driver, initiator first.
type GroupOrdersResult struct {
	ZoneID   kernel.UUID
	OrderIDs []kernel.UUID
}

// GroupOrdersCommandHandler attaches the accepted order and up to three nearby validated
// orders to the driver's zone and moves the driver to pending_pickup.
type GroupOrdersCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
	grouper    services.ZoneGrouper
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewGroupOrdersCommandHandler(
	uowFactory UoWFactory,
	policy authz.Policy,
	notifier ports.Notifier,
	logger *slog.Logger,
) GroupOrdersCommandHandler {
	return GroupOrdersCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		grouper:    services.NewZoneGrouper(),
		notifier:   notifier,
		logger:     logger.With("component", "GroupOrdersCommandHandler"),
	}
}

func (h *GroupOrdersCommandHandler) Handle(ctx context.Context, cmd GroupOrdersCommand) (GroupOrdersResult, error) {
	if err := cmd.Validate(); err != nil {
		return GroupOrdersResult{}, err
	}

	batch, err := h.group(ctx, cmd)
	if err != nil {
		return GroupOrdersResult{}, err
	}

	result := GroupOrdersResult{ZoneID: batch.ZoneID}
	for _, o := range batch.Orders {
		result.OrderIDs = append(result.OrderIDs, o.ID())
		notify(ctx, h.logger, h.notifier, o.ClientID(),
			fmt.Sprintf("A driver accepted order %s and is heading to the store.", o.ID()))
	}
	return result, nil
}

func (h *GroupOrdersCommandHandler) group(ctx context.Context, cmd GroupOrdersCommand) (services.Batch, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.Batch{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	drivers := uow.DriverRepository()

	initiator, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return services.Batch{}, err
	}
	if _, err = h.policy.Authorize(cmd.Actor(), authz.Orders, authz.Accept, orderSubject(initiator)); err != nil {
		return services.Batch{}, err
	}

	accepting, err := drivers.Get(ctx, cmd.Actor().UserID)
	if err != nil {
		return services.Batch{}, err
	}
	if !initiator.CanJoinBatchOf(accepting.ID()) {
		return services.Batch{}, errs.NewStateConflictError("order",
			fmt.Sprintf("order in status %s cannot be accepted by this driver", initiator.Status()))
	}

	occupancy, err := h.occupancy(ctx, orders, initiator, accepting.ID())
	if err != nil {
		return services.Batch{}, err
	}
	candidates, err := orders.ListByStatusAt(ctx, initiator.SupermarketID(), initiator.LocationID(), order.Validated)
	if err != nil {
		return services.Batch{}, err
	}

	batch, err := h.grouper.Group(services.GroupRequest{
		Initiator:  initiator,
		DriverID:   accepting.ID(),
		Candidates: candidates,
		Occupancy:  occupancy,
		Now:        now(),
	})
	if err != nil {
		return services.Batch{}, err
	}
	if err = accepting.AcceptBatch(); err != nil {
		return services.Batch{}, err
	}

	for _, o := range batch.Orders {
		if err = orders.Update(ctx, o); err != nil {
			return services.Batch{}, err
		}
	}
	if err = drivers.Update(ctx, accepting); err != nil {
		return services.Batch{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return services.Batch{}, err
	}
	return batch, nil
}

// occupancy is the number of ready orders already riding with the driver or in the
// initiator's zone, whichever is larger.
func (h *GroupOrdersCommandHandler) occupancy(
	ctx context.Context,
	orders ports.OrderRepository,
	initiator *order.Order,
	driverID kernel.UUID,
) (int, error) {
	byDriver, err := orders.CountByDriver(ctx, driverID, order.ReadyForPickup)
	if err != nil {
		return 0, err
	}
	zoneID := initiator.ZoneID()
	if zoneID == nil {
		return byDriver, nil
	}

	inZone, err := orders.CountInZone(ctx, *zoneID, order.ReadyForPickup)
	if err != nil {
		return 0, err
	}
	return max(byDriver, inZone), nil
}
