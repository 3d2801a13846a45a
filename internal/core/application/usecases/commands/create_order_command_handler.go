package commands

import (
	"context"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/services"
)

// CreateOrderResult carries the new order id, or the stock issues that prevented creation.
type CreateOrderResult struct {
	OrderID    *kernel.UUID
	Resolution services.Resolution
}

// CreateOrderCommandHandler resolves stock and fees for a new order and persists it in
// cart_in_progress. Nothing is persisted when the resolver reports stock issues.
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
}

func NewCreateOrderCommandHandler(uowFactory UoWFactory, policy authz.Policy) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
	}
}

func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (CreateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}
	if _, err := h.policy.Authorize(cmd.Actor(), authz.Orders, authz.Create, authz.Subject{}); err != nil {
		return CreateOrderResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	market, err := uow.SupermarketRepository().Get(ctx, cmd.SupermarketID())
	if err != nil {
		return CreateOrderResult{}, err
	}

	resolution, err := resolveItems(ctx, uow.ProductRepository(), ItemsPlacement{
		Supermarket:   market,
		LocationID:    cmd.LocationID(),
		DeliveryType:  cmd.DeliveryType(),
		DeliveryPoint: cmd.Address().Point,
	}, cmd.Items())
	if err != nil {
		return CreateOrderResult{}, err
	}
	if resolution.HasIssues() {
		return CreateOrderResult{Resolution: resolution}, nil
	}

	at := now()
	created, err := order.NewOrder(
		kernel.NewUUID(), cmd.Actor().UserID, cmd.SupermarketID(), cmd.LocationID(),
		cmd.Address(), cmd.DeliveryType(), at,
	)
	if err != nil {
		return CreateOrderResult{}, err
	}
	if err = created.SetProducts(resolution.AcceptedItems, resolution.Pricing, resolution.Promotions, at); err != nil {
		return CreateOrderResult{}, err
	}
	created.SetPaymentMethod(cmd.PaymentMethod())
	created.SetPriority(cmd.Priority())

	if err = uow.OrderRepository().Add(ctx, created); err != nil {
		return CreateOrderResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CreateOrderResult{}, err
	}

	id := created.ID()
	return CreateOrderResult{OrderID: &id, Resolution: resolution}, nil
}
