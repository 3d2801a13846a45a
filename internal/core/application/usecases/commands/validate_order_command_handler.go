package commands

import (
	"context"
	"fmt"
	"log/slog"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/ports"
	"marketdelivery/internal/pkg/errs"
)

// ValidateOrderResult reports the validation code and, when the follow-up dispatch
// succeeded, the driver the order was offered to.
type ValidateOrderResult struct {
	ValidationCode string
	DriverID       *kernel.UUID
}

// ValidateOrderCommandHandler checks payment, decrements stock for every line and marks the
// order validated in one unit of work. Driver assignment is then attempted in its own unit
// of work; its failure does not undo the validation and is left to the sweep.
type ValidateOrderCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
	payments   ports.PaymentGateway
	notifier   ports.Notifier
	dispatcher *AssignDriverCommandHandler
	logger     *slog.Logger
}

func NewValidateOrderCommandHandler(
	uowFactory UoWFactory,
	policy authz.Policy,
	payments ports.PaymentGateway,
	notifier ports.Notifier,
	dispatcher *AssignDriverCommandHandler,
	logger *slog.Logger,
) ValidateOrderCommandHandler {
	return ValidateOrderCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
		payments:   payments,
		notifier:   notifier,
		dispatcher: dispatcher,
		logger:     logger.With("component", "ValidateOrderCommandHandler"),
	}
}

func (h *ValidateOrderCommandHandler) Handle(ctx context.Context, cmd ValidateOrderCommand) (ValidateOrderResult, error) {
	if err := cmd.Validate(); err != nil {
		return ValidateOrderResult{}, err
	}

	validated, err := h.validate(ctx, cmd)
	if err != nil {
		return ValidateOrderResult{}, err
	}

	result := ValidateOrderResult{ValidationCode: validated.ValidationCode()}
	notify(ctx, h.logger, h.notifier, validated.ClientID(),
		fmt.Sprintf("Order %s is validated. Your delivery code is %s.", validated.ID(), validated.ValidationCode()))

	if validated.DeliveryType().IsDispatchable() && h.dispatcher != nil {
		result.DriverID = h.assignDriver(ctx, cmd.Actor(), validated.ID())
	}
	return result, nil
}

func (h *ValidateOrderCommandHandler) validate(ctx context.Context, cmd ValidateOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orders := uow.OrderRepository()
	current, err := orders.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}
	if _, err = h.policy.Authorize(cmd.Actor(), authz.Orders, authz.Validate, orderSubject(current)); err != nil {
		return nil, err
	}
	if _, err = current.Status().MarkValidated(); err != nil {
		return nil, err
	}

	status, err := h.payments.GetPaymentStatus(ctx, current.ID())
	if err != nil {
		return nil, errs.NewExternalServiceError("payment gateway", err)
	}
	if status != ports.PaymentCompleted {
		return nil, errs.NewStateConflictError("order", fmt.Sprintf("payment is %s, not %s", status, ports.PaymentCompleted))
	}

	if err = decrementStock(ctx, uow.ProductRepository(), current); err != nil {
		return nil, err
	}

	code, err := order.NewValidationCode()
	if err != nil {
		return nil, err
	}
	if err = current.MarkValidated(cmd.Actor().UserID, code, now()); err != nil {
		return nil, err
	}
	if err = reindexQueue(ctx, orders, current); err != nil {
		return nil, err
	}
	if err = orders.Update(ctx, current); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return current, nil
}

func (h *ValidateOrderCommandHandler) assignDriver(ctx context.Context, actor authz.Actor, orderID kernel.UUID) *kernel.UUID {
	assignCmd, err := NewAssignDriverCommand(actor, orderID)
	if err == nil {
		var assigned AssignDriverResult
		assigned, err = h.dispatcher.Handle(ctx, assignCmd)
		if err == nil {
			return &assigned.DriverID
		}
	}

	h.logger.WarnContext(ctx, "driver assignment after validation failed, left to the sweep",
		"order_id", orderID.String(), "kind", errs.KindOf(err), "error", err)
	return nil
}

type stockKey struct {
	productID  kernel.UUID
	locationID kernel.UUID
}

// decrementStock takes every line's quantity from its stock location. The first shortage
// aborts with a stock conflict and the caller's rollback restores all entries.
func decrementStock(ctx context.Context, repo ports.ProductRepository, o *order.Order) error {
	var (
		keys   []stockKey
		demand = make(map[stockKey]int)
	)
	for _, item := range o.Items() {
		key := stockKey{productID: item.ProductID, locationID: item.StockLocation(o.LocationID())}
		if _, seen := demand[key]; !seen {
			keys = append(keys, key)
		}
		demand[key] += item.Quantity
	}

	for _, key := range keys {
		if err := repo.DecrementStock(ctx, key.productID, key.locationID, demand[key]); err != nil {
			return err
		}
	}
	return nil
}

// notify sends a best-effort message; failures are logged and swallowed.
func notify(ctx context.Context, logger *slog.Logger, notifier ports.Notifier, userID kernel.UUID, message string) {
	if notifier == nil {
		return
	}
	if err := notifier.Notify(ctx, userID, message); err != nil {
		logger.WarnContext(ctx, "failed to notify user", "user_id", userID.String(), "error", err)
	}
}
