package commands

import (
	"context"
	"fmt"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/pkg/errs"
)

// UpdateOrderProductsResult holds the resolution; the order changed only when it has no issues.
type UpdateOrderProductsResult struct {
	Resolution services.Resolution
	Status     order.Status
}

// UpdateOrderProductsCommandHandler re-resolves an order's lines. While the order waits for
// a validator the assignment is retried once as part of the same write.
type UpdateOrderProductsCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
}

func NewUpdateOrderProductsCommandHandler(uowFactory UoWFactory, policy authz.Policy) UpdateOrderProductsCommandHandler {
	return UpdateOrderProductsCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
	}
}

func (h *UpdateOrderProductsCommandHandler) Handle(
	ctx context.Context,
	cmd UpdateOrderProductsCommand,
) (UpdateOrderProductsResult, error) {
	if err := cmd.Validate(); err != nil {
		return UpdateOrderProductsResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return UpdateOrderProductsResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	current, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return UpdateOrderProductsResult{}, err
	}
	if _, err = h.policy.Authorize(cmd.Actor(), authz.Orders, authz.UpdateProducts, orderSubject(current)); err != nil {
		return UpdateOrderProductsResult{}, err
	}
	if !current.IsSelfModifiable() {
		return UpdateOrderProductsResult{}, errs.NewStateConflictError(
			"order", fmt.Sprintf("products cannot change in status %s", current.Status()))
	}

	market, err := uow.SupermarketRepository().Get(ctx, current.SupermarketID())
	if err != nil {
		return UpdateOrderProductsResult{}, err
	}

	resolution, err := resolveItems(ctx, uow.ProductRepository(), ItemsPlacement{
		Supermarket:   market,
		LocationID:    current.LocationID(),
		DeliveryType:  current.DeliveryType(),
		DeliveryPoint: current.Address().Point,
	}, cmd.Items())
	if err != nil {
		return UpdateOrderProductsResult{}, err
	}
	if resolution.HasIssues() {
		return UpdateOrderProductsResult{Resolution: resolution, Status: current.Status()}, nil
	}

	at := now()
	if err = current.SetProducts(resolution.AcceptedItems, resolution.Pricing, resolution.Promotions, at); err != nil {
		return UpdateOrderProductsResult{}, err
	}

	if current.Status() == order.AwaitingValidator {
		validatorID, err := selectValidator(ctx, orders, market, current)
		if err != nil {
			return UpdateOrderProductsResult{}, err
		}
		if validatorID != nil {
			if err = current.AssignValidator(*validatorID, at); err != nil {
				return UpdateOrderProductsResult{}, err
			}
		}
	}

	if err = reindexQueue(ctx, orders, current); err != nil {
		return UpdateOrderProductsResult{}, err
	}
	if err = orders.Update(ctx, current); err != nil {
		return UpdateOrderProductsResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return UpdateOrderProductsResult{}, err
	}

	return UpdateOrderProductsResult{Resolution: resolution, Status: current.Status()}, nil
}
