package services_test

import (
	"testing"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneGrouper_Group(t *testing.T) {
	supermarketID, locationID := kernel.NewUUID(), kernel.NewUUID()
	grouper := services.NewZoneGrouper()

	t.Run("two validated orders 2km apart share one zone", func(t *testing.T) {
		first := validatedOrderAt(t, supermarketID, locationID, kmNorth(1))
		second := validatedOrderAt(t, supermarketID, locationID, kmNorth(3))
		driverID := kernel.NewUUID()
		require.NoError(t, first.AssignDriver(driverID, nil, now))

		batch, err := grouper.Group(services.GroupRequest{
			Initiator:  second,
			DriverID:   driverID,
			Candidates: []*order.Order{first, second},
			Now:        now,
		})

		require.NoError(t, err)
		require.Len(t, batch.Orders, 2)
		for _, o := range []*order.Order{first, second} {
			assert.Equal(t, order.ReadyForPickup, o.Status())
			assert.Equal(t, batch.ZoneID, *o.ZoneID())
			assert.Equal(t, driverID, *o.DriverID())
			assert.NotNil(t, o.AcceptedAt())
		}
	})

	t.Run("never exceeds the zone cap", func(t *testing.T) {
		initiator := validatedOrderAt(t, supermarketID, locationID, kmNorth(0))
		var candidates []*order.Order
		for i := range 6 {
			candidates = append(candidates, validatedOrderAt(t, supermarketID, locationID, kmNorth(float64(i)*0.5)))
		}

		batch, err := grouper.Group(services.GroupRequest{
			Initiator:  initiator,
			DriverID:   kernel.NewUUID(),
			Candidates: candidates,
			Now:        now,
		})

		require.NoError(t, err)
		assert.Len(t, batch.Orders, services.MaxZoneOrders)
		assert.True(t, batch.Orders[0].IsEqual(initiator))
		assert.True(t, batch.Orders[1].IsEqual(candidates[0]), "closest candidates are taken first")
		assert.Equal(t, order.Validated, candidates[5].Status())
	})

	t.Run("counts orders already in the zone", func(t *testing.T) {
		initiator := validatedOrderAt(t, supermarketID, locationID, kmNorth(0))
		candidates := []*order.Order{
			validatedOrderAt(t, supermarketID, locationID, kmNorth(1)),
			validatedOrderAt(t, supermarketID, locationID, kmNorth(2)),
		}

		batch, err := grouper.Group(services.GroupRequest{
			Initiator:  initiator,
			DriverID:   kernel.NewUUID(),
			Candidates: candidates,
			Occupancy:  2,
			Now:        now,
		})

		require.NoError(t, err)
		assert.Len(t, batch.Orders, 2)
	})

	t.Run("rejects a full zone", func(t *testing.T) {
		initiator := validatedOrderAt(t, supermarketID, locationID, kmNorth(0))

		_, err := grouper.Group(services.GroupRequest{
			Initiator: initiator,
			DriverID:  kernel.NewUUID(),
			Occupancy: services.MaxZoneOrders,
			Now:       now,
		})

		assert.ErrorIs(t, err, errs.ErrStateConflict)
		assert.Equal(t, order.Validated, initiator.Status())
	})

	t.Run("skips distant, foreign and taken orders", func(t *testing.T) {
		initiator := validatedOrderAt(t, supermarketID, locationID, kmNorth(0))
		distant := validatedOrderAt(t, supermarketID, locationID, kmNorth(6))
		otherLocation := validatedOrderAt(t, supermarketID, kernel.NewUUID(), kmNorth(1))
		taken := validatedOrderAt(t, supermarketID, locationID, kmNorth(1))
		require.NoError(t, taken.AssignDriver(kernel.NewUUID(), nil, now))

		batch, err := grouper.Group(services.GroupRequest{
			Initiator:  initiator,
			DriverID:   kernel.NewUUID(),
			Candidates: []*order.Order{distant, otherLocation, taken},
			Now:        now,
		})

		require.NoError(t, err)
		assert.Len(t, batch.Orders, 1)
		assert.Equal(t, order.Validated, distant.Status())
		assert.Equal(t, order.Validated, taken.Status())
	})

	t.Run("keeps the zone of a reused assignment", func(t *testing.T) {
		initiator := validatedOrderAt(t, supermarketID, locationID, kmNorth(0))
		driverID, zoneID := kernel.NewUUID(), kernel.NewUUID()
		require.NoError(t, initiator.AssignDriver(driverID, &zoneID, now))

		batch, err := grouper.Group(services.GroupRequest{Initiator: initiator, DriverID: driverID, Occupancy: 1, Now: now})

		require.NoError(t, err)
		assert.Equal(t, zoneID, batch.ZoneID)
	})
}
