package queries_test

import (
	"context"
	"testing"

	"marketdelivery/internal/adapters/out/postgres/pgtest"
	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/application/usecases/queries"
	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type GetAvailableDriversQueryHandlerTestSuite struct {
	suite.Suite
	database *pgtest.Database
	handler  queries.GetAvailableDriversQueryHandler
}

func (suite *GetAvailableDriversQueryHandlerTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
	suite.handler = queries.NewGetAvailableDriversQueryHandler(database.DB, authz.DefaultPolicy())
}

func (suite *GetAvailableDriversQueryHandlerTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func (suite *GetAvailableDriversQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
}

func TestGetAvailableDriversQueryHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(GetAvailableDriversQueryHandlerTestSuite))
}

func (suite *GetAvailableDriversQueryHandlerTestSuite) add(
	name string,
	location *kernel.GeoPoint,
	status driver.Status,
	discoverable bool,
) *driver.Driver {
	d, err := addDriver(context.Background(), suite.database.DB, name, location, status, discoverable)
	suite.Require().NoError(err)
	return d
}

func (suite *GetAvailableDriversQueryHandlerTestSuite) list(near *kernel.GeoPoint, radiusKm float64) []queries.GetAvailableDriversQueryResponse {
	query, err := queries.NewGetAvailableDriversQuery(dispatcherActor(), near, radiusKm)
	suite.Require().NoError(err)
	result, err := suite.handler.Handle(context.Background(), query)
	suite.Require().NoError(err)
	return result
}

func (suite *GetAvailableDriversQueryHandlerTestSuite) TestHandle_OnlyAssignableDriversSortedByName() {
	near := kernel.MustGeoPoint(48.850, 2.350)
	far := kernel.MustGeoPoint(48.900, 2.400)

	bob := suite.add("Bob", &near, driver.Available, true)
	ann := suite.add("Ann", &far, driver.Available, true)
	suite.add("Hidden", &near, driver.Available, false)
	suite.add("Busy", &near, driver.Busy, true)
	suite.add("Offline", &near, driver.Offline, true)
	suite.add("Nowhere", nil, driver.Available, true)

	result := suite.list(nil, 0)

	suite.Require().Len(result, 2)
	suite.Equal(ann.ID(), result[0].ID)
	suite.Equal(bob.ID(), result[1].ID)
	suite.Nil(result[0].DistanceKm)
	suite.InDelta(48.9, result[0].Location.Lat(), 0.000001)
}

func (suite *GetAvailableDriversQueryHandlerTestSuite) TestHandle_ReferencePointSortsAndFiltersByDistance() {
	pickup := kernel.MustGeoPoint(48.850, 2.350)
	nearby := kernel.MustGeoPoint(48.851, 2.351)
	mid := kernel.MustGeoPoint(48.870, 2.370)
	remote := kernel.MustGeoPoint(45.760, 4.830)

	zed := suite.add("Zed", &nearby, driver.Available, true)
	amy := suite.add("Amy", &mid, driver.Available, true)
	suite.add("Remote", &remote, driver.Available, true)

	result := suite.list(&pickup, 10)

	suite.Require().Len(result, 2)
	suite.Equal(zed.ID(), result[0].ID)
	suite.Equal(amy.ID(), result[1].ID)
	suite.Require().NotNil(result[0].DistanceKm)
	suite.Less(*result[0].DistanceKm, *result[1].DistanceKm)

	unbounded := suite.list(&pickup, 0)
	suite.Len(unbounded, 3)
}

func (suite *GetAvailableDriversQueryHandlerTestSuite) TestHandle_ClientsAreRejected() {
	query, err := queries.NewGetAvailableDriversQuery(clientActor(kernel.NewUUID()), nil, 0)
	suite.Require().NoError(err)

	_, err = suite.handler.Handle(context.Background(), query)
	suite.Require().ErrorIs(err, errs.ErrNotAuthorized)
}

func (suite *GetAvailableDriversQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	result, err := suite.handler.Handle(context.Background(), queries.GetAvailableDriversQuery{})

	suite.Require().Error(err)
	suite.Nil(result)
}
