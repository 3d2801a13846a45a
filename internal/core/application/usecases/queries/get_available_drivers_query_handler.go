package queries

import (
	"cmp"
	"context"
	"slices"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetAvailableDriversQueryHandler reads available, discoverable drivers that have
// reported a position.
type GetAvailableDriversQueryHandler struct {
	db     *gorm.DB
	policy authz.Policy
}

func NewGetAvailableDriversQueryHandler(db *gorm.DB, policy authz.Policy) GetAvailableDriversQueryHandler {
	return GetAvailableDriversQueryHandler{db: db, policy: policy}
}

// Handle returns drivers sorted by name, or by distance when the query has a
// reference point.
func (h GetAvailableDriversQueryHandler) Handle(
	ctx context.Context,
	query GetAvailableDriversQuery,
) ([]GetAvailableDriversQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if _, err := h.policy.Authorize(query.Actor(), authz.Drivers, authz.List, authz.Subject{}); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			name,
			lat,
			lng
		FROM drivers
		WHERE status = ?
			AND discoverable
			AND lat IS NOT NULL
			AND lng IS NOT NULL
		ORDER BY name, id
	`, driver.Available.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make([]GetAvailableDriversQueryResponse, 0)
	for rows.Next() {
		var (
			candidate GetAvailableDriversQueryResponse
			id        uuid.UUID
			lat, lng  float64
		)

		if err = rows.Scan(&id, &candidate.Name, &lat, &lng); err != nil {
			return nil, err
		}

		if candidate.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if candidate.Location, err = kernel.NewGeoPoint(lat, lng); err != nil {
			return nil, err
		}

		if near := query.Near(); near != nil {
			distance, distErr := near.DistanceTo(candidate.Location)
			if distErr != nil {
				return nil, distErr
			}
			if query.RadiusKm() > 0 && distance > query.RadiusKm() {
				continue
			}
			candidate.DistanceKm = &distance
		}
		drivers = append(drivers, candidate)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if query.Near() != nil {
		slices.SortStableFunc(drivers, func(a, b GetAvailableDriversQueryResponse) int {
			return cmp.Compare(*a.DistanceKm, *b.DistanceKm)
		})
	}

	return drivers, nil
}
