package kernel

import (
	"errors"
	"fmt"
	"math"

	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

const (
	minLatitude  = -90.0
	maxLatitude  = 90.0
	minLongitude = -180.0
	maxLongitude = 180.0
)

// ErrGeoPointIsNotConstructed is returned when a zero GeoPoint is used.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError("geo point must be created via NewGeoPoint")

// GeoPoint is an immutable WGS84 coordinate. Store locations, delivery addresses and
// driver positions are all GeoPoints, and every distance in the system goes through
// DistanceTo so that the same formula is used everywhere.
type GeoPoint struct { //nolint:recvcheck //using for validation
	lat   float64
	lng   float64
	guard guard.ConstructorGuard
}

// NewGeoPoint validates latitude in [-90, 90] and longitude in [-180, 180].
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	p := GeoPoint{guard: guard.NewConstructorGuard()}
	if err := errors.Join(p.setLat(lat), p.setLng(lng)); err != nil {
		return GeoPoint{}, err
	}
	return p, nil
}

// MustGeoPoint is NewGeoPoint for constants and tests; it panics on invalid input.
func MustGeoPoint(lat, lng float64) GeoPoint {
	p, err := NewGeoPoint(lat, lng)
	if err != nil {
		panic(err)
	}
	return p
}

func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}

func (p GeoPoint) Lat() float64 { return p.lat }

func (p GeoPoint) Lng() float64 { return p.lng }

func (p GeoPoint) String() string {
	return fmt.Sprintf("GeoPoint(%.6f,%.6f)", p.lat, p.lng)
}

// DistanceTo returns the great-circle distance in kilometers.
// Both points must be constructed.
func (p GeoPoint) DistanceTo(other GeoPoint) (float64, error) {
	if err := errors.Join(p.Validate(), other.Validate()); err != nil {
		return 0, err
	}
	return HaversineKm(p.lat, p.lng, other.lat, other.lng), nil
}

// HaversineKm is the haversine great-circle distance between two coordinates in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

func (p *GeoPoint) setLat(lat float64) error {
	if math.IsNaN(lat) || lat < minLatitude || lat > maxLatitude {
		return errs.NewValueIsOutOfRangeError("lat", lat, minLatitude, maxLatitude)
	}
	p.lat = lat
	return nil
}

func (p *GeoPoint) setLng(lng float64) error {
	if math.IsNaN(lng) || lng < minLongitude || lng > maxLongitude {
		return errs.NewValueIsOutOfRangeError("lng", lng, minLongitude, maxLongitude)
	}
	p.lng = lng
	return nil
}
