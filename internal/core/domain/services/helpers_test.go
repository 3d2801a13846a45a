package services_test

import (
	"testing"
	"time"

	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

// kmNorth returns a point on the prime meridian roughly km kilometers north of the equator.
func kmNorth(km float64) kernel.GeoPoint {
	return kernel.MustGeoPoint(km/(kernel.EarthRadiusKm*3.141592653589793/180), 0)
}

func validatedOrderAt(t *testing.T, supermarketID, locationID kernel.UUID, point kernel.GeoPoint) *order.Order {
	t.Helper()
	address, err := order.NewAddress("somewhere", point)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), supermarketID, locationID, address, order.Standard, now)
	require.NoError(t, err)

	require.NoError(t, o.SetProducts([]order.LineItem{{
		ProductID: kernel.NewUUID(),
		Quantity:  1,
		UnitPrice: decimal.NewFromInt(100),
		Weight:    decimal.NewFromInt(1),
	}}, order.Pricing{
		Subtotal:    decimal.NewFromInt(100),
		TotalWeight: decimal.NewFromInt(1),
		DeliveryFee: decimal.NewFromInt(500),
		ServiceFee:  decimal.NewFromInt(10),
	}, nil, now))
	o.SetPaymentMethod("card")

	validator := kernel.NewUUID()
	require.NoError(t, o.Submit(&validator, now))
	require.NoError(t, o.MarkValidated(validator, "123456", now))
	return o
}

func driverAt(t *testing.T, status driver.Status, point kernel.GeoPoint, earnings int64) *driver.Driver {
	t.Helper()
	d, err := driver.RestoreDriver(kernel.NewUUID(), "driver", &point, status, true, decimal.NewFromInt(earnings), 0)
	require.NoError(t, err)
	return d
}
