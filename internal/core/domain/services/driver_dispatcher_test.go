package services_test

import (
	"testing"

	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverDispatcher_FreshAssignment(t *testing.T) {
	supermarketID, locationID := kernel.NewUUID(), kernel.NewUUID()
	pickup := kernel.MustGeoPoint(0, 0)
	dispatcher := services.NewDriverDispatcher()

	t.Run("should pick the lowest combined distance", func(t *testing.T) {
		o := validatedOrderAt(t, supermarketID, locationID, kmNorth(3))
		far := driverAt(t, driver.Available, kmNorth(20), 0)
		near := driverAt(t, driver.Available, kmNorth(1), 1000)
		busy := driverAt(t, driver.Busy, kmNorth(0), 0)

		got, err := dispatcher.Dispatch(services.DispatchRequest{
			Order:      o,
			Pickup:     pickup,
			Candidates: []*driver.Driver{far, busy, near},
		}, now)

		require.NoError(t, err)
		assert.True(t, got.Driver.IsEqual(near))
		assert.False(t, got.ReusedZone())
		assert.Equal(t, near.ID(), *o.DriverID())
		assert.Nil(t, o.ZoneID())
		assert.Equal(t, order.Validated, o.Status(), "assignment does not change status")
	})

	t.Run("should include the validator location in the score", func(t *testing.T) {
		o := validatedOrderAt(t, supermarketID, locationID, kmNorth(0))
		validatorPoint := kmNorth(10)
		south := driverAt(t, driver.Available, kernel.MustGeoPoint(-0.01, 0), 0)
		north := driverAt(t, driver.Available, kernel.MustGeoPoint(0.02, 0), 0)

		got, err := dispatcher.Dispatch(services.DispatchRequest{
			Order:          o,
			Pickup:         pickup,
			ValidatorPoint: &validatorPoint,
			Candidates:     []*driver.Driver{south, north},
		}, now)

		require.NoError(t, err)
		assert.True(t, got.Driver.IsEqual(north))
	})

	t.Run("should break score ties by lower earnings", func(t *testing.T) {
		o := validatedOrderAt(t, supermarketID, locationID, kmNorth(2))
		rich := driverAt(t, driver.Available, kmNorth(1), 5000)
		poor := driverAt(t, driver.Available, kmNorth(1), 100)

		got, err := dispatcher.Dispatch(services.DispatchRequest{
			Order:      o,
			Pickup:     pickup,
			Candidates: []*driver.Driver{rich, poor},
		}, now)

		require.NoError(t, err)
		assert.True(t, got.Driver.IsEqual(poor))
	})

	t.Run("should skip drivers with an open offer", func(t *testing.T) {
		o := validatedOrderAt(t, supermarketID, locationID, kmNorth(2))
		offered := driverAt(t, driver.Available, kmNorth(1), 0)
		free := driverAt(t, driver.Available, kmNorth(8), 0)

		got, err := dispatcher.Dispatch(services.DispatchRequest{
			Order:      o,
			Pickup:     pickup,
			Candidates: []*driver.Driver{offered, free},
			OpenOffers: map[kernel.UUID]int{offered.ID(): 1},
		}, now)

		require.NoError(t, err)
		assert.True(t, got.Driver.IsEqual(free))
	})

	t.Run("should fail without assignable drivers", func(t *testing.T) {
		o := validatedOrderAt(t, supermarketID, locationID, kmNorth(2))
		hidden := driverAt(t, driver.Available, kmNorth(1), 0)
		hidden.SetDiscoverable(false)
		offline := driverAt(t, driver.Offline, kmNorth(1), 0)

		_, err := dispatcher.Dispatch(services.DispatchRequest{
			Order:      o,
			Pickup:     pickup,
			Candidates: []*driver.Driver{hidden, offline},
		}, now)

		assert.ErrorIs(t, err, errs.ErrNoDriverAvailable)
		assert.Nil(t, o.DriverID())
	})
}

func TestDriverDispatcher_ZoneReuse(t *testing.T) {
	supermarketID, locationID := kernel.NewUUID(), kernel.NewUUID()
	pickup := kernel.MustGeoPoint(0, 0)
	dispatcher := services.NewDriverDispatcher()

	readyOrderFor := func(t *testing.T, d *driver.Driver, point kernel.GeoPoint, zone kernel.UUID) *order.Order {
		t.Helper()
		o := validatedOrderAt(t, supermarketID, locationID, point)
		require.NoError(t, o.MarkReadyForPickup(d.ID(), zone, now))
		return o
	}

	t.Run("should reuse a nearby zone of a driver waiting at pickup", func(t *testing.T) {
		waiting := driverAt(t, driver.PendingPickup, kmNorth(0), 0)
		zone := kernel.NewUUID()
		ready := readyOrderFor(t, waiting, kmNorth(4), zone)
		fresh := driverAt(t, driver.Available, kmNorth(0), 0)
		o := validatedOrderAt(t, supermarketID, locationID, kmNorth(6))

		got, err := dispatcher.Dispatch(services.DispatchRequest{
			Order:              o,
			Pickup:             pickup,
			ReadyOrders:        []*order.Order{ready},
			ZoneDrivers:        map[kernel.UUID]*driver.Driver{waiting.ID(): waiting},
			ReadyCountByDriver: map[kernel.UUID]int{waiting.ID(): 3},
			Candidates:         []*driver.Driver{fresh},
		}, now)

		require.NoError(t, err)
		assert.True(t, got.ReusedZone())
		assert.True(t, got.Driver.IsEqual(waiting))
		assert.Equal(t, zone, *o.ZoneID())
		assert.Equal(t, waiting.ID(), *o.DriverID())
	})

	t.Run("should not reuse a full, distant or departed zone", func(t *testing.T) {
		full := driverAt(t, driver.PendingPickup, kmNorth(0), 0)
		departed := driverAt(t, driver.Busy, kmNorth(0), 0)
		distant := driverAt(t, driver.PendingPickup, kmNorth(0), 0)
		fresh := driverAt(t, driver.Available, kmNorth(0), 0)
		o := validatedOrderAt(t, supermarketID, locationID, kmNorth(1))

		got, err := dispatcher.Dispatch(services.DispatchRequest{
			Order:  o,
			Pickup: pickup,
			ReadyOrders: []*order.Order{
				readyOrderFor(t, full, kmNorth(1), kernel.NewUUID()),
				readyOrderFor(t, departed, kmNorth(1), kernel.NewUUID()),
				readyOrderFor(t, distant, kmNorth(7), kernel.NewUUID()),
			},
			ZoneDrivers: map[kernel.UUID]*driver.Driver{
				full.ID(): full, departed.ID(): departed, distant.ID(): distant,
			},
			ReadyCountByDriver: map[kernel.UUID]int{full.ID(): services.MaxZoneOrders, distant.ID(): 1},
			Candidates:         []*driver.Driver{fresh},
		}, now)

		require.NoError(t, err)
		assert.False(t, got.ReusedZone())
		assert.True(t, got.Driver.IsEqual(fresh))
	})
}
