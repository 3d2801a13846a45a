package commands

import (
	"context"
	"strings"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
)

// QueueResult is the queue state of an order after a command touched it.
type QueueResult struct {
	Status        order.Status
	QueuePosition int
	ValidatorID   *kernel.UUID
}

func queueResultOf(o *order.Order) QueueResult {
	return QueueResult{
		Status:        o.Status(),
		QueuePosition: o.QueuePosition(),
		ValidatorID:   o.ValidatorID(),
	}
}

// SubmitOrderCommandHandler submits a cart. The least loaded validator of the pickup
// location is assigned; without one the order waits in awaiting_validator.
type SubmitOrderCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
}

func NewSubmitOrderCommandHandler(uowFactory UoWFactory, policy authz.Policy) SubmitOrderCommandHandler {
	return SubmitOrderCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
	}
}

func (h *SubmitOrderCommandHandler) Handle(ctx context.Context, cmd SubmitOrderCommand) (QueueResult, error) {
	if err := cmd.Validate(); err != nil {
		return QueueResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return QueueResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	current, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return QueueResult{}, err
	}
	if _, err = h.policy.Authorize(cmd.Actor(), authz.Orders, authz.Submit, orderSubject(current)); err != nil {
		return QueueResult{}, err
	}
	if strings.TrimSpace(cmd.PaymentMethod()) != "" {
		current.SetPaymentMethod(cmd.PaymentMethod())
	}

	market, err := uow.SupermarketRepository().Get(ctx, current.SupermarketID())
	if err != nil {
		return QueueResult{}, err
	}
	validatorID, err := selectValidator(ctx, orders, market, current)
	if err != nil {
		return QueueResult{}, err
	}

	if err = current.Submit(validatorID, now()); err != nil {
		return QueueResult{}, err
	}
	if err = reindexQueue(ctx, orders, current); err != nil {
		return QueueResult{}, err
	}
	if err = orders.Update(ctx, current); err != nil {
		return QueueResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return QueueResult{}, err
	}

	return queueResultOf(current), nil
}
