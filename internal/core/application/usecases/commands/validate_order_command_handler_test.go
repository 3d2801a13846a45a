package commands_test

import (
	"errors"
	"regexp"
	"testing"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/application/usecases/commands"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/model/product"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/core/ports"
	"marketdelivery/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(t *testing.T, f *fixture, actor authz.Actor, id kernel.UUID, dispatch bool) (commands.ValidateOrderResult, error) {
	t.Helper()
	cmd, err := commands.NewValidateOrderCommand(actor, id)
	require.NoError(t, err)
	h := f.validateHandler(dispatch)
	return h.Handle(t.Context(), cmd)
}

func TestValidateOrderCommandHandler_Handle_DecrementsStockAndLeavesQueue(t *testing.T) {
	f := newFixture(t)
	client := f.newClient()
	id := f.createOrder(t, client, 1,
		services.ItemRequest{ProductID: f.apples.ID(), Quantity: 2},
		services.ItemRequest{ProductID: f.apples.ID(), Quantity: 1, AlternateLocationID: &f.secondary.ID},
		services.ItemRequest{ProductID: f.milk.ID(), Quantity: 3},
	)
	f.submit(t, client, id)
	_, next := f.queuedOrder(t, 1)
	require.Equal(t, 2, f.store.order(next).QueuePosition())
	f.payments[id] = ports.PaymentCompleted

	result, err := validate(t, f, f.validator, id, false)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), result.ValidationCode)
	assert.Nil(t, result.DriverID)

	stored := f.store.order(id)
	assert.Equal(t, order.Validated, stored.Status())
	assert.Equal(t, result.ValidationCode, stored.ValidationCode())
	assert.Equal(t, 0, stored.QueuePosition())
	assert.NotNil(t, stored.ValidatedAt())
	assert.Equal(t, 1, f.store.order(next).QueuePosition())

	apples := f.store.product(f.apples.ID())
	assert.Equal(t, 8, apples.StockAt(f.primary.ID), "the queued order holds no stock")
	assert.Equal(t, 4, apples.StockAt(f.secondary.ID))
	assert.Equal(t, 17, f.store.product(f.milk.ID()).StockAt(f.primary.ID))
	assert.Equal(t, 1, f.notifier.count(client.UserID))
}

func TestValidateOrderCommandHandler_Handle_StockConflictIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	client := f.newClient()
	id := f.createOrder(t, client, 1,
		services.ItemRequest{ProductID: f.milk.ID(), Quantity: 2},
		services.ItemRequest{ProductID: f.pears.ID(), Quantity: 3},
	)
	f.submit(t, client, id)
	f.payments[id] = ports.PaymentCompleted

	// Pears sold out in store after the order was priced.
	soldOut, err := product.RestoreProduct(f.pears.ID(), f.market.ID(), "Pears", "fruit",
		decimal.NewFromInt(80), decimal.NewFromInt(1), nil, map[kernel.UUID]int{f.primary.ID: 1})
	require.NoError(t, err)
	f.store.seed(soldOut)

	_, err = validate(t, f, f.validator, id, false)
	require.ErrorIs(t, err, errs.ErrStockConflict)

	var conflict *errs.StockConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 3, conflict.Requested)
	assert.Equal(t, 1, conflict.Available)

	assert.Equal(t, order.PendingValidation, f.store.order(id).Status())
	assert.Equal(t, 20, f.store.product(f.milk.ID()).StockAt(f.primary.ID))
	assert.Equal(t, 1, f.store.product(f.pears.ID()).StockAt(f.primary.ID))
}

func TestValidateOrderCommandHandler_Handle_RequiresCompletedPayment(t *testing.T) {
	f := newFixture(t)
	_, id := f.queuedOrder(t, 1)

	for _, status := range []ports.PaymentStatus{ports.PaymentPending, ports.PaymentFailed} {
		f.payments[id] = status
		_, err := validate(t, f, f.validator, id, false)
		require.ErrorIs(t, err, errs.ErrStateConflict, status)
	}
	assert.Equal(t, 10, f.store.product(f.apples.ID()).StockAt(f.primary.ID))
}

func TestValidateOrderCommandHandler_Handle_Authorization(t *testing.T) {
	f := newFixture(t)
	client, id := f.queuedOrder(t, 1)
	f.payments[id] = ports.PaymentCompleted

	otherMarket := kernel.NewUUID()
	foreign := authz.Actor{
		UserID:        kernel.NewUUID(),
		Capabilities:  []authz.Capability{authz.OrderValidator},
		SupermarketID: &otherMarket,
	}

	for _, actor := range []authz.Actor{client, foreign} {
		_, err := validate(t, f, actor, id, false)
		assert.ErrorIs(t, err, errs.ErrNotAuthorized)
	}
}

func TestValidateOrderCommandHandler_Handle_AssignsDriverWhenAvailable(t *testing.T) {
	f := newFixture(t)
	driverActor := f.onlineDriver(t, 1, 0)
	_, id := f.queuedOrder(t, 2)
	f.payments[id] = ports.PaymentCompleted

	result, err := validate(t, f, f.validator, id, true)
	require.NoError(t, err)
	require.NotNil(t, result.DriverID)
	assert.Equal(t, driverActor.UserID, *result.DriverID)

	stored := f.store.order(id)
	assert.Equal(t, order.Validated, stored.Status(), "assignment never moves the order")
	require.NotNil(t, stored.DriverID())
	assert.Equal(t, driverActor.UserID, *stored.DriverID())
}

func TestValidateOrderCommandHandler_Handle_DispatchFailureKeepsValidation(t *testing.T) {
	f := newFixture(t)
	_, id := f.queuedOrder(t, 2)
	f.payments[id] = ports.PaymentCompleted

	result, err := validate(t, f, f.validator, id, true)
	require.NoError(t, err)
	assert.Nil(t, result.DriverID)

	stored := f.store.order(id)
	assert.Equal(t, order.Validated, stored.Status())
	assert.Nil(t, stored.DriverID())
}

func TestValidateOrderCommandHandler_Handle_NotificationFailureIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("push service down")
	_, id := f.queuedOrder(t, 1)
	f.payments[id] = ports.PaymentCompleted

	_, err := validate(t, f, f.validator, id, false)
	require.NoError(t, err)
	assert.Equal(t, order.Validated, f.store.order(id).Status())
}

func TestValidateOrderCommandHandler_Handle_StorePickupIsNotDispatched(t *testing.T) {
	f := newFixture(t)
	f.onlineDriver(t, 1, 0)

	cmd, err := commands.NewCreateOrderCommand(f.client, f.market.ID(), f.primary.ID, f.address(1), order.StorePickup,
		[]services.ItemRequest{{ProductID: f.apples.ID(), Quantity: 1}})
	require.NoError(t, err)
	created := commands.NewCreateOrderCommandHandler(f.store, f.policy)
	res, err := created.Handle(t.Context(), cmd.WithPaymentMethod("card"))
	require.NoError(t, err)
	id := *res.OrderID
	f.submit(t, f.client, id)
	f.payments[id] = ports.PaymentCompleted

	result, err := validate(t, f, f.validator, id, true)
	require.NoError(t, err)
	assert.Nil(t, result.DriverID)
	assert.Nil(t, f.store.order(id).DriverID())
}
