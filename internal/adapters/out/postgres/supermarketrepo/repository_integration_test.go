package supermarketrepo_test

import (
	"context"
	"testing"

	"marketdelivery/internal/adapters/out/postgres/pgtest"
	"marketdelivery/internal/adapters/out/postgres/supermarketrepo"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/supermarket"
	"marketdelivery/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type SupermarketRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *pgtest.Database
	repository *supermarketrepo.GormSupermarketRepository
}

func (suite *SupermarketRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
}

func (suite *SupermarketRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
	suite.repository = supermarketrepo.NewGormSupermarketRepository(suite.database.DB)
}

func (suite *SupermarketRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func TestSupermarketRepositoryIntegration(t *testing.T) {
	suite.Run(t, new(SupermarketRepositoryIntegrationTestSuite))
}

func (suite *SupermarketRepositoryIntegrationTestSuite) TestAddAndGet_KeepsOrder() {
	ctx := context.Background()
	locations := []supermarket.Location{
		{ID: kernel.NewUUID(), Name: "Center", Point: kernel.MustGeoPoint(48.85, 2.35)},
		{ID: kernel.NewUUID(), Name: "North", Point: kernel.MustGeoPoint(48.90, 2.35)},
		{ID: kernel.NewUUID(), Name: "South", Point: kernel.MustGeoPoint(48.80, 2.35)},
	}
	first, second := kernel.NewUUID(), kernel.NewUUID()
	market, err := supermarket.NewSupermarket(kernel.NewUUID(), "Corner market", locations,
		[]supermarket.ManagerAssignment{
			{ManagerID: first, LocationID: locations[0].ID, Roles: []supermarket.Role{supermarket.RoleOrderValidator}},
			{ManagerID: second, LocationID: locations[0].ID, Roles: []supermarket.Role{
				supermarket.RoleStockManager, supermarket.RoleOrderValidator,
			}},
			{ManagerID: kernel.NewUUID(), LocationID: locations[1].ID, Roles: []supermarket.Role{supermarket.RoleStockManager}},
		})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, market))

	stored, err := suite.repository.Get(ctx, market.ID())
	suite.Require().NoError(err)
	suite.Equal("Corner market", stored.Name())
	suite.Require().Len(stored.Locations(), 3)
	for i, l := range stored.Locations() {
		suite.Equal(locations[i].ID, l.ID)
		suite.Equal(locations[i].Name, l.Name)
	}
	suite.Equal([]kernel.UUID{first, second}, stored.Validators(locations[0].ID))
	suite.Empty(stored.Validators(locations[1].ID))
	suite.Len(stored.OtherLocations(locations[0].ID), 2)
}

func (suite *SupermarketRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}
