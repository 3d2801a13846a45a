package queries_test

import (
	"context"
	"io"
	"time"

	"marketdelivery/internal/adapters/out/postgres/driverrepo"
	"marketdelivery/internal/adapters/out/postgres/orderrepo"
	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {
	// No-op for query tests
}

// MockAssetStorage is a mock implementation of ports.AssetStorage.
type MockAssetStorage struct {
	mock.Mock
}

func (m *MockAssetStorage) UploadFile(ctx context.Context, key string, content io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, content, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockAssetStorage) GetSignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, ref, ttl)
	return args.String(0), args.Error(1)
}

func clientActor(id kernel.UUID) authz.Actor {
	return authz.Actor{UserID: id, Capabilities: []authz.Capability{authz.Client}}
}

func validatorActor(supermarketID kernel.UUID) authz.Actor {
	return authz.Actor{
		UserID:        kernel.NewUUID(),
		Capabilities:  []authz.Capability{authz.OrderValidator},
		SupermarketID: &supermarketID,
	}
}

func driverActor(id kernel.UUID) authz.Actor {
	return authz.Actor{UserID: id, Capabilities: []authz.Capability{authz.Driver}}
}

func dispatcherActor() authz.Actor {
	return authz.Actor{UserID: kernel.NewUUID(), Capabilities: []authz.Capability{authz.Dispatcher}}
}

// orderSnapshot returns a priced standard order with a total of 27.
func orderSnapshot(supermarketID, locationID kernel.UUID, status order.Status, created time.Time) order.Snapshot {
	s := order.Snapshot{
		ID:            kernel.NewUUID(),
		ClientID:      kernel.NewUUID(),
		SupermarketID: supermarketID,
		LocationID:    locationID,
		Items: []order.LineItem{
			{
				ProductID: kernel.NewUUID(),
				Quantity:  2,
				Comment:   "ripe ones",
				UnitPrice: decimal.NewFromInt(10),
				Weight:    decimal.RequireFromString("0.5"),
			},
		},
		Address:      order.Address{Text: "1 Delivery road", Point: kernel.MustGeoPoint(48.85, 2.35)},
		DeliveryType: order.Standard,
		TotalWeight:  decimal.NewFromInt(1),
		Breakdown: order.Breakdown{
			Subtotal:    decimal.NewFromInt(20),
			DeliveryFee: decimal.NewFromInt(5),
			ServiceFee:  decimal.NewFromInt(2),
		},
		Status:    status,
		CreatedAt: created,
		UpdatedAt: created,
	}
	if status != order.CartInProgress {
		submitted := created
		s.SubmittedAt = &submitted
	}
	return s
}

func addOrder(ctx context.Context, db *gorm.DB, s order.Snapshot) (*order.Order, error) {
	o, err := order.RestoreOrder(s)
	if err != nil {
		return nil, err
	}
	if err = orderrepo.NewGormOrderRepository(db, &mockAggregateTracker{}).Add(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func addDriver(
	ctx context.Context,
	db *gorm.DB,
	name string,
	location *kernel.GeoPoint,
	status driver.Status,
	discoverable bool,
) (*driver.Driver, error) {
	d, err := driver.RestoreDriver(kernel.NewUUID(), name, location, status, discoverable, decimal.Zero, 0)
	if err != nil {
		return nil, err
	}
	if err = driverrepo.NewGormDriverRepository(db, &mockAggregateTracker{}).Add(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
