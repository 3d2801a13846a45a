package productrepo_test

import (
	"context"
	"testing"

	"marketdelivery/internal/adapters/out/postgres/pgtest"
	"marketdelivery/internal/adapters/out/postgres/productrepo"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/product"
	"marketdelivery/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ProductRepositoryIntegrationTestSuite struct {
	suite.Suite
	database   *pgtest.Database
	repository *productrepo.GormProductRepository

	supermarketID kernel.UUID
	primary       kernel.UUID
	secondary     kernel.UUID
}

func (suite *ProductRepositoryIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
}

func (suite *ProductRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
	suite.repository = productrepo.NewGormProductRepository(suite.database.DB)
	suite.supermarketID = kernel.NewUUID()
	suite.primary = kernel.NewUUID()
	suite.secondary = kernel.NewUUID()
}

func (suite *ProductRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func TestProductRepositoryIntegration(t *testing.T) {
	suite.Run(t, new(ProductRepositoryIntegrationTestSuite))
}

func (suite *ProductRepositoryIntegrationTestSuite) addProduct(name, category string, stock map[kernel.UUID]int) *product.Product {
	p, err := product.RestoreProduct(kernel.NewUUID(), suite.supermarketID, name, category,
		decimal.NewFromInt(10), decimal.RequireFromString("0.5"), nil, stock)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(context.Background(), p))
	return p
}

func (suite *ProductRepositoryIntegrationTestSuite) TestAddAndGet() {
	ctx := context.Background()
	p := suite.addProduct("Apples", "fruit", map[kernel.UUID]int{suite.primary: 10, suite.secondary: 3})
	suite.Require().NoError(p.SetPromotion(&product.Promotion{ID: kernel.NewUUID(), Price: decimal.NewFromInt(8)}))
	suite.Require().NoError(suite.repository.Update(ctx, p))

	stored, err := suite.repository.Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal("Apples", stored.Name())
	suite.Equal("fruit", stored.Category())
	suite.True(decimal.NewFromInt(10).Equal(stored.Price()))
	suite.True(decimal.RequireFromString("0.5").Equal(stored.Weight()))
	suite.Equal(10, stored.StockAt(suite.primary))
	suite.Equal(3, stored.StockAt(suite.secondary))
	suite.Require().NotNil(stored.ActivePromotion())
	suite.True(decimal.NewFromInt(8).Equal(stored.EffectivePrice()))

	_, err = suite.repository.Get(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *ProductRepositoryIntegrationTestSuite) TestUpdate_UpsertsStock() {
	ctx := context.Background()
	p := suite.addProduct("Milk", "dairy", map[kernel.UUID]int{suite.primary: 1})
	suite.Require().NoError(p.Restock(suite.primary, 4))
	suite.Require().NoError(p.Restock(suite.secondary, 2))
	suite.Require().NoError(suite.repository.Update(ctx, p))

	stored, err := suite.repository.Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(5, stored.StockAt(suite.primary))
	suite.Equal(2, stored.StockAt(suite.secondary))
}

func (suite *ProductRepositoryIntegrationTestSuite) TestDecrementStock_IsGuarded() {
	ctx := context.Background()
	p := suite.addProduct("Pears", "fruit", map[kernel.UUID]int{suite.primary: 3})

	suite.Require().NoError(suite.repository.DecrementStock(ctx, p.ID(), suite.primary, 2))

	err := suite.repository.DecrementStock(ctx, p.ID(), suite.primary, 2)
	suite.Require().ErrorIs(err, errs.ErrStockConflict)
	var conflict *errs.StockConflictError
	suite.Require().ErrorAs(err, &conflict)
	suite.Equal(2, conflict.Requested)
	suite.Equal(1, conflict.Available)

	err = suite.repository.DecrementStock(ctx, p.ID(), suite.secondary, 1)
	suite.Require().ErrorAs(err, &conflict)
	suite.Equal(0, conflict.Available, "no stock entry at that location")

	stored, err := suite.repository.Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(1, stored.StockAt(suite.primary))
}

func (suite *ProductRepositoryIntegrationTestSuite) TestGetByIDs_SkipsUnknown() {
	ctx := context.Background()
	apples := suite.addProduct("Apples", "fruit", nil)
	milk := suite.addProduct("Milk", "dairy", nil)
	unknown := kernel.NewUUID()

	found, err := suite.repository.GetByIDs(ctx, []kernel.UUID{apples.ID(), milk.ID(), unknown})
	suite.Require().NoError(err)
	suite.Len(found, 2)
	suite.Contains(found, apples.ID())
	suite.NotContains(found, unknown)

	empty, err := suite.repository.GetByIDs(ctx, nil)
	suite.Require().NoError(err)
	suite.Empty(empty)
}

func (suite *ProductRepositoryIntegrationTestSuite) TestListByCategories_ByName() {
	ctx := context.Background()
	suite.addProduct("Pears", "fruit", nil)
	suite.addProduct("Apples", "fruit", nil)
	suite.addProduct("Milk", "dairy", nil)
	suite.addProduct("Bread", "bakery", nil)

	other, err := product.NewProduct(kernel.NewUUID(), kernel.NewUUID(), "Avocado", "fruit",
		decimal.NewFromInt(3), decimal.NewFromInt(1))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, other))

	listed, err := suite.repository.ListByCategories(ctx, suite.supermarketID, []string{"fruit", "dairy"})
	suite.Require().NoError(err)
	names := make([]string, 0, len(listed))
	for _, p := range listed {
		names = append(names, p.Name())
	}
	suite.Equal([]string{"Apples", "Milk", "Pears"}, names)
}
