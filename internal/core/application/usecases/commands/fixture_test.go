package commands_test

import (
	"log/slog"
	"testing"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/application/usecases/commands"
	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/model/product"
	"marketdelivery/internal/core/domain/model/supermarket"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// kmNorth returns a point on the prime meridian roughly km kilometers north of the equator.
func kmNorth(km float64) kernel.GeoPoint {
	return kernel.MustGeoPoint(km/(kernel.EarthRadiusKm*3.141592653589793/180), 0)
}

// fixture is one supermarket with two locations, a validator at the primary location and
// a small fruit and dairy catalog.
type fixture struct {
	store    *memoryStore
	ledger   *memoryLedger
	notifier *recordingNotifier
	payments stubPayments
	policy   authz.Policy
	logger   *slog.Logger

	market    *supermarket.Supermarket
	primary   supermarket.Location
	secondary supermarket.Location

	client    authz.Actor
	validator authz.Actor

	apples *product.Product
	pears  *product.Product
	milk   *product.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:    newMemoryStore(),
		ledger:   newMemoryLedger(),
		notifier: newRecordingNotifier(),
		payments: stubPayments{},
		policy:   authz.DefaultPolicy(),
		logger:   slog.New(slog.DiscardHandler),
		primary:  supermarket.Location{ID: kernel.NewUUID(), Name: "Central", Point: kmNorth(0)},
		secondary: supermarket.Location{
			ID: kernel.NewUUID(), Name: "North", Point: kmNorth(3),
		},
	}

	validatorID := kernel.NewUUID()
	market, err := supermarket.NewSupermarket(kernel.NewUUID(), "Fresh Market",
		[]supermarket.Location{f.primary, f.secondary},
		[]supermarket.ManagerAssignment{{
			ManagerID:  validatorID,
			LocationID: f.primary.ID,
			Roles:      []supermarket.Role{supermarket.RoleOrderValidator},
		}})
	require.NoError(t, err)
	f.market = market

	marketID := market.ID()
	f.client = authz.Actor{UserID: kernel.NewUUID(), Capabilities: []authz.Capability{authz.Client}}
	f.validator = authz.Actor{
		UserID:        validatorID,
		Capabilities:  []authz.Capability{authz.OrderValidator},
		SupermarketID: &marketID,
		LocationID:    &f.primary.ID,
	}

	f.apples = f.newProduct(t, "Apples", "fruit", 100, map[kernel.UUID]int{f.primary.ID: 10, f.secondary.ID: 5})
	f.pears = f.newProduct(t, "Pears", "fruit", 80, map[kernel.UUID]int{f.primary.ID: 3})
	f.milk = f.newProduct(t, "Milk", "dairy", 50, map[kernel.UUID]int{f.primary.ID: 20})

	f.store.seed(market, f.apples, f.pears, f.milk)
	return f
}

func (f *fixture) newProduct(t *testing.T, name, category string, price int64, stock map[kernel.UUID]int) *product.Product {
	t.Helper()
	p, err := product.RestoreProduct(kernel.NewUUID(), f.market.ID(), name, category,
		decimal.NewFromInt(price), decimal.NewFromInt(1), nil, stock)
	require.NoError(t, err)
	return p
}

func (f *fixture) newClient() authz.Actor {
	return authz.Actor{UserID: kernel.NewUUID(), Capabilities: []authz.Capability{authz.Client}}
}

func (f *fixture) address(km float64) order.Address {
	return order.Address{Text: "1 Delivery road", Point: kmNorth(km)}
}

// createOrder creates a standard order for client delivered km kilometers from the store.
func (f *fixture) createOrder(t *testing.T, client authz.Actor, km float64, items ...services.ItemRequest) kernel.UUID {
	t.Helper()
	cmd, err := commands.NewCreateOrderCommand(client, f.market.ID(), f.primary.ID, f.address(km), order.Standard, items)
	require.NoError(t, err)
	cmd = cmd.WithPaymentMethod("card")

	h := commands.NewCreateOrderCommandHandler(f.store, f.policy)
	result, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	require.False(t, result.Resolution.HasIssues())
	require.NotNil(t, result.OrderID)
	return *result.OrderID
}

func (f *fixture) submit(t *testing.T, client authz.Actor, orderID kernel.UUID) commands.QueueResult {
	t.Helper()
	cmd, err := commands.NewSubmitOrderCommand(client, orderID, "")
	require.NoError(t, err)

	h := commands.NewSubmitOrderCommandHandler(f.store, f.policy)
	result, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return result
}

// queuedOrder creates and submits an order of one apple for a fresh client.
func (f *fixture) queuedOrder(t *testing.T, km float64) (authz.Actor, kernel.UUID) {
	t.Helper()
	client := f.newClient()
	id := f.createOrder(t, client, km, services.ItemRequest{ProductID: f.apples.ID(), Quantity: 1})
	f.submit(t, client, id)
	return client, id
}

func (f *fixture) assignHandler() *commands.AssignDriverCommandHandler {
	h := commands.NewAssignDriverCommandHandler(f.store, f.policy)
	return &h
}

func (f *fixture) validateHandler(dispatch bool) commands.ValidateOrderCommandHandler {
	var assigner *commands.AssignDriverCommandHandler
	if dispatch {
		assigner = f.assignHandler()
	}
	return commands.NewValidateOrderCommandHandler(f.store, f.policy, f.payments, f.notifier, assigner, f.logger)
}

// validatedOrder returns a paid, validated order that has not been offered to a driver.
func (f *fixture) validatedOrder(t *testing.T, km float64) (authz.Actor, kernel.UUID) {
	t.Helper()
	client, id := f.queuedOrder(t, km)
	f.payments[id] = ports.PaymentCompleted

	cmd, err := commands.NewValidateOrderCommand(f.validator, id)
	require.NoError(t, err)
	h := f.validateHandler(false)
	_, err = h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return client, id
}

// onlineDriver seeds an available, discoverable driver at km north of the store.
func (f *fixture) onlineDriver(t *testing.T, km float64, earnings int64) authz.Actor {
	t.Helper()
	point := kmNorth(km)
	d, err := driver.RestoreDriver(kernel.NewUUID(), "Driver", &point, driver.Available, true,
		decimal.NewFromInt(earnings), 0)
	require.NoError(t, err)
	f.store.seed(d)
	return authz.Actor{UserID: d.ID(), Capabilities: []authz.Capability{authz.Driver}}
}

// setDriverStatus overwrites a stored driver's status, as if it changed outside the test.
func (f *fixture) setDriverStatus(t *testing.T, driverID kernel.UUID, status driver.Status) {
	t.Helper()
	d := f.store.driver(driverID)
	require.NotNil(t, d)
	changed, err := driver.RestoreDriver(d.ID(), d.Name(), d.Location(), status, d.IsDiscoverable(),
		d.Earnings(), d.Version())
	require.NoError(t, err)
	f.store.seed(changed)
}

func (f *fixture) setDriverDiscoverable(t *testing.T, driverID kernel.UUID, discoverable bool) {
	t.Helper()
	d := f.store.driver(driverID)
	require.NotNil(t, d)
	d.SetDiscoverable(discoverable)
	f.store.seed(d)
}

func (f *fixture) accept(t *testing.T, driverActor authz.Actor, orderID kernel.UUID) commands.GroupOrdersResult {
	t.Helper()
	cmd, err := commands.NewGroupOrdersCommand(driverActor, orderID)
	require.NoError(t, err)

	h := commands.NewGroupOrdersCommandHandler(f.store, f.policy, f.notifier, f.logger)
	result, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return result
}

func (f *fixture) startDelivery(t *testing.T, driverActor authz.Actor, orderID kernel.UUID) {
	t.Helper()
	cmd, err := commands.NewStartDeliveryCommand(driverActor, orderID)
	require.NoError(t, err)

	h := commands.NewStartDeliveryCommandHandler(f.store, f.policy, f.notifier, f.logger)
	require.NoError(t, h.Handle(t.Context(), cmd))
}

func (f *fixture) dispatcher() authz.Actor {
	return authz.Actor{UserID: kernel.NewUUID(), Capabilities: []authz.Capability{authz.Dispatcher}}
}
