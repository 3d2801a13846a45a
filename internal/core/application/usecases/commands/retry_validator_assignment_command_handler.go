package commands

import (
	"context"
	"fmt"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/pkg/errs"
)

// RetryValidatorAssignmentCommandHandler runs validator selection again for one order.
// It fails with errs.ErrNoValidatorAvailable when the location still has no validator.
type RetryValidatorAssignmentCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
}

func NewRetryValidatorAssignmentCommandHandler(
	uowFactory UoWFactory,
	policy authz.Policy,
) RetryValidatorAssignmentCommandHandler {
	return RetryValidatorAssignmentCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
	}
}

func (h *RetryValidatorAssignmentCommandHandler) Handle(
	ctx context.Context,
	cmd RetryValidatorAssignmentCommand,
) (QueueResult, error) {
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
	if _, err = h.policy.Authorize(cmd.Actor(), authz.Orders, authz.RetryValidator, orderSubject(current)); err != nil {
		return QueueResult{}, err
	}
	if current.Status() != order.AwaitingValidator {
		return QueueResult{}, errs.NewStateConflictError(
			"order", fmt.Sprintf("validator retry requires %s status, got %s", order.AwaitingValidator, current.Status()))
	}

	market, err := uow.SupermarketRepository().Get(ctx, current.SupermarketID())
	if err != nil {
		return QueueResult{}, err
	}
	validatorID, err := selectValidator(ctx, orders, market, current)
	if err != nil {
		return QueueResult{}, err
	}
	if validatorID == nil {
		return queueResultOf(current), fmt.Errorf("%w: location %s", errs.ErrNoValidatorAvailable, current.LocationID())
	}

	if err = current.AssignValidator(*validatorID, now()); err != nil {
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
