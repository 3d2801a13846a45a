package queries_test

import (
	"testing"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/application/usecases/queries"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetOrderQuery_Valid(t *testing.T) {
	orderID := kernel.NewUUID()
	query, err := queries.NewGetOrderQuery(clientActor(kernel.NewUUID()), orderID)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.Equal(t, orderID, query.OrderID())
}

func TestNewGetOrderQuery_RequiresActorAndOrder(t *testing.T) {
	_, err := queries.NewGetOrderQuery(authz.Actor{}, kernel.NewUUID())
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	_, err = queries.NewGetOrderQuery(clientActor(kernel.NewUUID()), kernel.UUID{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestGetOrderQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetOrderQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetOrderQueryIsNotConstructed)
}

func TestNewGetValidatorQueueQuery_RequiresLocation(t *testing.T) {
	supermarketID := kernel.NewUUID()

	query, err := queries.NewGetValidatorQueueQuery(validatorActor(supermarketID), supermarketID, kernel.NewUUID())
	require.NoError(t, err)
	require.NoError(t, query.Validate())

	_, err = queries.NewGetValidatorQueueQuery(validatorActor(supermarketID), supermarketID, kernel.UUID{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestGetValidatorQueueQuery_NotConstructedViaConstructor(t *testing.T) {
	err := queries.GetValidatorQueueQuery{}.Validate()
	assert.ErrorIs(t, err, queries.ErrGetValidatorQueueQueryIsNotConstructed)
}

func TestNewGetAvailableDriversQuery(t *testing.T) {
	point := kernel.MustGeoPoint(48.85, 2.35)

	query, err := queries.NewGetAvailableDriversQuery(dispatcherActor(), &point, 3)
	require.NoError(t, err)
	require.NoError(t, query.Validate())
	assert.InDelta(t, 3.0, query.RadiusKm(), 0.0001)

	_, err = queries.NewGetAvailableDriversQuery(dispatcherActor(), nil, -1)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	_, err = queries.NewGetAvailableDriversQuery(dispatcherActor(), &kernel.GeoPoint{}, 0)
	require.Error(t, err)
}

func TestGetAvailableDriversQuery_NotConstructedViaConstructor(t *testing.T) {
	err := queries.GetAvailableDriversQuery{}.Validate()
	assert.ErrorIs(t, err, queries.ErrGetAvailableDriversQueryIsNotConstructed)
}
