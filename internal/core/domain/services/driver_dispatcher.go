package services

import (
	"math"
	"time"

	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/pkg/errs"
)

const (
	// MaxZoneOrders is the number of orders one zone (one driver run) may hold.
	MaxZoneOrders = 4
	// ZoneRadiusKm is the maximum distance between delivery points grouped in one zone.
	ZoneRadiusKm = 5.0
)

// DispatchRequest is the state DriverDispatcher needs, loaded by the caller in one unit of work.
type DispatchRequest struct {
	Order *order.Order
	// Pickup is the order's pickup location.
	Pickup kernel.GeoPoint
	// ValidatorPoint is where the validating manager works; Pickup is used when unknown.
	ValidatorPoint *kernel.GeoPoint
	// ReadyOrders are ready_for_pickup orders at the same pickup location.
	ReadyOrders []*order.Order
	// ZoneDrivers holds the drivers referenced by ReadyOrders.
	ZoneDrivers map[kernel.UUID]*driver.Driver
	// ReadyCountByDriver is the number of ready_for_pickup orders per driver.
	ReadyCountByDriver map[kernel.UUID]int
	// Candidates are drivers considered for a fresh assignment.
	Candidates []*driver.Driver
	// OpenOffers is the number of validated orders already offered to each candidate
	// and not yet accepted.
	OpenOffers map[kernel.UUID]int
}

// Assignment is the dispatch result. ZoneID is set only when an existing zone was reused.
type Assignment struct {
	Driver *driver.Driver
	ZoneID *kernel.UUID
}

// ReusedZone reports whether the order was slotted into a zone of a driver at the pickup.
func (a Assignment) ReusedZone() bool {
	return a.ZoneID != nil
}

// DriverDispatcher is a domain service choosing the driver a validated order is offered to.
//
// Key responsibilities:
//   - Slotting the order into a nearby zone whose driver is still at the pickup
//   - Otherwise selecting the free driver with the lowest combined distance
//   - Recording the choice on the order without changing its status
//
// Business rules:
//   - Only validated standard orders are dispatched
//   - A reused zone holds fewer than MaxZoneOrders ready orders and its delivery points
//     lie within ZoneRadiusKm of the new one
//   - A fresh assignment goes to an assignable driver without an open offer, so one
//     driver never collects every pending order
//   - Score ties go to the driver with lower earnings
//
// Example usage:
//
//	dispatcher := services.NewDriverDispatcher()
//	assignment, err := dispatcher.Dispatch(req, time.Now())
//	if errors.Is(err, errs.ErrNoDriverAvailable) {
//	    // The order stays validated until the next sweep
//	    return
//	}
type DriverDispatcher struct{}

func NewDriverDispatcher() DriverDispatcher {
	return DriverDispatcher{}
}

// Dispatch picks a driver and records the assignment on the order.
//
// Parameters:
//   - req: the order and the dispatch state of its pickup location
//   - now: the assignment time
//
// Returns:
//   - Assignment: the chosen driver and, for a reused zone, its id
//   - error: errs.ErrNoDriverAvailable when neither a zone nor a candidate fits, or the
//     state conflict raised by Order.AssignDriver
//
// Selection algorithm:
//   - Walks ReadyOrders for a reusable zone first
//   - Scores every free candidate by the distance to the pickup, the delivery point and
//     the validator location
//   - Keeps the lowest score, breaking ties by earnings
func (d DriverDispatcher) Dispatch(req DispatchRequest, now time.Time) (Assignment, error) {
	if err := req.Order.Validate(); err != nil {
		return Assignment{}, err
	}

	assignment, found, err := d.reuseZone(req)
	if err != nil {
		return Assignment{}, err
	}
	if !found {
		best, err := d.findBestDriver(req)
		if err != nil {
			return Assignment{}, err
		}
		assignment = Assignment{Driver: best}
	}

	if err := req.Order.AssignDriver(assignment.Driver.ID(), assignment.ZoneID, now); err != nil {
		return Assignment{}, err
	}
	return assignment, nil
}

// reuseZone returns the first zone near the order whose driver is still at the pickup
// and has room left.
func (d DriverDispatcher) reuseZone(req DispatchRequest) (Assignment, bool, error) {
	target := req.Order.Address().Point

	for _, ready := range req.ReadyOrders {
		if ready.Status() != order.ReadyForPickup || !ready.DeliveryType().IsDispatchable() ||
			ready.DriverID() == nil || ready.ZoneID() == nil {
			continue
		}
		km, err := ready.Address().Point.DistanceTo(target)
		if err != nil {
			return Assignment{}, false, err
		}
		if km > ZoneRadiusKm {
			continue
		}

		zoneDriver, ok := req.ZoneDrivers[*ready.DriverID()]
		if !ok || zoneDriver.Status() != driver.PendingPickup {
			continue
		}
		if req.ReadyCountByDriver[zoneDriver.ID()] >= MaxZoneOrders {
			continue
		}

		zoneID := *ready.ZoneID()
		return Assignment{Driver: zoneDriver, ZoneID: &zoneID}, true, nil
	}

	return Assignment{}, false, nil
}

// findBestDriver searches the candidates for the lowest combined distance.
//
// Selection criteria:
//   - Validates each candidate
//   - Skips drivers that are not assignable or still have an open offer
//   - Optimizes for the minimum score
//   - Prefers lower earnings on equal scores
func (d DriverDispatcher) findBestDriver(req DispatchRequest) (*driver.Driver, error) {
	validatorPoint := req.Pickup
	if req.ValidatorPoint != nil {
		validatorPoint = *req.ValidatorPoint
	}
	delivery := req.Order.Address().Point

	var (
		best      *driver.Driver
		bestScore = math.MaxFloat64
	)

	for _, c := range req.Candidates {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if !c.IsAssignable() || req.OpenOffers[c.ID()] > 0 {
			continue
		}

		score, err := d.score(*c.Location(), req.Pickup, delivery, validatorPoint)
		if err != nil {
			return nil, err
		}

		if score < bestScore || (score == bestScore && best != nil && c.Earnings().LessThan(best.Earnings())) {
			best = c
			bestScore = score
		}
	}

	if best == nil {
		return nil, errs.ErrNoDriverAvailable
	}
	return best, nil
}

func (d DriverDispatcher) score(from kernel.GeoPoint, targets ...kernel.GeoPoint) (float64, error) {
	var total float64
	for _, to := range targets {
		km, err := from.DistanceTo(to)
		if err != nil {
			return 0, err
		}
		total += km
	}
	return total, nil
}
