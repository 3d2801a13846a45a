package services

import (
	"cmp"
	"slices"
	"time"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/pkg/errs"
)

// GroupRequest describes a driver accepting an order and the orders that may ride along.
type GroupRequest struct {
	Initiator *order.Order
	DriverID  kernel.UUID
	// Candidates are validated orders at the initiator's supermarket and location.
	Candidates []*order.Order
	// Occupancy is the number of ready_for_pickup orders already in the driver's zone.
	Occupancy int
	Now       time.Time
}

// Batch is the set of orders moved to ready_for_pickup, initiator first.
type Batch struct {
	ZoneID kernel.UUID
	Orders []*order.Order
}

// ZoneGrouper batches nearby validated orders onto one driver run.
type ZoneGrouper struct{}

func NewZoneGrouper() ZoneGrouper {
	return ZoneGrouper{}
}

// Group moves the initiator and up to MaxZoneOrders-1 nearby candidates into one zone.
// The zone never holds more than MaxZoneOrders ready orders, counting Occupancy.
func (g ZoneGrouper) Group(req GroupRequest) (Batch, error) {
	if err := req.Initiator.Validate(); err != nil {
		return Batch{}, err
	}
	capacity := MaxZoneOrders - req.Occupancy
	if capacity < 1 {
		return Batch{}, errs.NewStateConflictError("zone", "zone already holds the maximum number of orders")
	}

	zoneID := kernel.NewUUID()
	if z := req.Initiator.ZoneID(); z != nil {
		zoneID = *z
	}

	if err := req.Initiator.MarkReadyForPickup(req.DriverID, zoneID, req.Now); err != nil {
		return Batch{}, err
	}
	batch := Batch{ZoneID: zoneID, Orders: []*order.Order{req.Initiator}}

	nearby, err := g.nearbyCandidates(req)
	if err != nil {
		return Batch{}, err
	}
	for _, c := range nearby {
		if len(batch.Orders) == capacity {
			break
		}
		if err := c.MarkReadyForPickup(req.DriverID, zoneID, req.Now); err != nil {
			return Batch{}, err
		}
		batch.Orders = append(batch.Orders, c)
	}

	return batch, nil
}

type candidateDistance struct {
	order *order.Order
	km    float64
}

func (g ZoneGrouper) nearbyCandidates(req GroupRequest) ([]*order.Order, error) {
	origin := req.Initiator.Address().Point
	var nearby []candidateDistance

	for _, c := range req.Candidates {
		if c.IsEqual(req.Initiator) ||
			!c.SupermarketID().IsEqual(req.Initiator.SupermarketID()) ||
			!c.LocationID().IsEqual(req.Initiator.LocationID()) ||
			!c.CanJoinBatchOf(req.DriverID) {
			continue
		}
		km, err := origin.DistanceTo(c.Address().Point)
		if err != nil {
			return nil, err
		}
		if km <= ZoneRadiusKm {
			nearby = append(nearby, candidateDistance{order: c, km: km})
		}
	}

	slices.SortStableFunc(nearby, func(a, b candidateDistance) int {
		return cmp.Compare(a.km, b.km)
	})

	out := make([]*order.Order, 0, len(nearby))
	for _, n := range nearby {
		out = append(out, n.order)
	}
	return out, nil
}
