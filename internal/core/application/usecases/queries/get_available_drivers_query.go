package queries

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"
)

var (
	ErrGetAvailableDriversQueryIsNotConstructed = errors.New(
		"GetAvailableDriversQuery must be created via NewGetAvailableDriversQuery constructor",
	)
)

// GetAvailableDriversQuery lists the drivers the dispatcher could assign right now.
// With a reference point the result is sorted by distance to it, and a positive
// radius drops drivers farther than radiusKm.
//
// Example:
//
//	pickup := kernel.MustGeoPoint(48.85, 2.35)
//	query, err := NewGetAvailableDriversQuery(actor, &pickup, 5)
//	if err != nil {
//	    return err
//	}
//	drivers, err := handler.Handle(ctx, query)
type GetAvailableDriversQuery struct {
	actor    authz.Actor
	near     *kernel.GeoPoint
	radiusKm float64

	guard guard.ConstructorGuard
}

func NewGetAvailableDriversQuery(
	actor authz.Actor,
	near *kernel.GeoPoint,
	radiusKm float64,
) (GetAvailableDriversQuery, error) {
	if err := requireValid("actor", actor.UserID); err != nil {
		return GetAvailableDriversQuery{}, err
	}
	if near != nil {
		if err := near.Validate(); err != nil {
			return GetAvailableDriversQuery{}, err
		}
	}
	if radiusKm < 0 {
		return GetAvailableDriversQuery{}, errs.NewValueIsOutOfRangeError("radius", radiusKm, 0, "unbounded")
	}

	return GetAvailableDriversQuery{
		actor:    actor,
		near:     near,
		radiusKm: radiusKm,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q GetAvailableDriversQuery) Validate() error {
	return q.guard.Validate(ErrGetAvailableDriversQueryIsNotConstructed)
}

func (q GetAvailableDriversQuery) Actor() authz.Actor {
	return q.actor
}

func (q GetAvailableDriversQuery) Near() *kernel.GeoPoint {
	return q.near
}

func (q GetAvailableDriversQuery) RadiusKm() float64 {
	return q.radiusKm
}

// GetAvailableDriversQueryResponse is an assignable driver. DistanceKm is set only
// when the query carries a reference point.
type GetAvailableDriversQueryResponse struct {
	ID         kernel.UUID
	Name       string
	Location   kernel.GeoPoint
	DistanceKm *float64
}
