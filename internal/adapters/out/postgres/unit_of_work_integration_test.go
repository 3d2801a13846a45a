package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "marketdelivery/internal/adapters/out/postgres"
	"marketdelivery/internal/adapters/out/postgres/pgtest"
	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/model/product"
	"marketdelivery/internal/core/ports"
	"marketdelivery/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite tests the GORM-based Unit of Work with a real
// PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database
	factory  ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(database.DB)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func TestUnitOfWorkIntegration(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}

func (suite *UnitOfWorkIntegrationTestSuite) newCart() *order.Order {
	address, err := order.NewAddress("1 Delivery road", kernel.MustGeoPoint(48.85, 2.35))
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		address, order.Standard, time.Now().UTC())
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) TestFactory_CreatesIndependentInstances() {
	first := suite.factory.Create()
	second := suite.factory.Create()

	suite.NotSame(first, second)
	suite.NotNil(first.OrderRepository())
	suite.NotNil(first.ProductRepository())
	suite.NotNil(first.SupermarketRepository())
	suite.NotNil(first.DriverRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PersistsAndAdvancesVersions() {
	ctx := context.Background()
	cart := suite.newCart()
	d, err := driver.NewDriver(kernel.NewUUID(), "Ann")
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, cart))
	suite.Require().NoError(uow.DriverRepository().Add(ctx, d))
	suite.Equal(0, cart.Version(), "versions move only on commit")
	suite.Require().NoError(uow.Commit(ctx))
	suite.Require().NoError(uow.Rollback(ctx), "rollback after commit is a no-op")

	suite.Equal(1, cart.Version())
	suite.Equal(1, d.Version())

	// The committed aggregate can be written again without reloading it.
	next := suite.factory.Create()
	suite.Require().NoError(next.Begin(ctx))
	cart.SetPaymentMethod("card")
	suite.Require().NoError(next.OrderRepository().Update(ctx, cart))
	suite.Require().NoError(next.Commit(ctx))

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, cart.ID())
	suite.Require().NoError(err)
	suite.Equal("card", stored.PaymentMethod())
	suite.Equal(2, stored.Version())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsEverything() {
	ctx := context.Background()
	cart := suite.newCart()
	p, err := product.RestoreProduct(kernel.NewUUID(), kernel.NewUUID(), "Milk", "dairy",
		decimal.NewFromInt(2), decimal.NewFromInt(1), nil, map[kernel.UUID]int{cart.LocationID(): 3})
	suite.Require().NoError(err)

	seed := suite.factory.Create()
	suite.Require().NoError(seed.Begin(ctx))
	suite.Require().NoError(seed.ProductRepository().Add(ctx, p))
	suite.Require().NoError(seed.Commit(ctx))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, cart))
	suite.Require().NoError(uow.ProductRepository().DecrementStock(ctx, p.ID(), cart.LocationID(), 2))
	err = uow.ProductRepository().DecrementStock(ctx, p.ID(), cart.LocationID(), 2)
	suite.Require().ErrorIs(err, errs.ErrStockConflict)
	suite.Require().NoError(uow.Rollback(ctx))

	suite.Equal(0, cart.Version())
	reader := suite.factory.Create()
	_, err = reader.OrderRepository().Get(ctx, cart.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	stored, err := reader.ProductRepository().Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(3, stored.StockAt(cart.LocationID()), "the first decrement was rolled back too")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentWriters_LoserGetsConflict() {
	ctx := context.Background()
	cart := suite.newCart()
	seed := suite.factory.Create()
	suite.Require().NoError(seed.Begin(ctx))
	suite.Require().NoError(seed.OrderRepository().Add(ctx, cart))
	suite.Require().NoError(seed.Commit(ctx))

	first := suite.factory.Create()
	suite.Require().NoError(first.Begin(ctx))
	mine, err := first.OrderRepository().Get(ctx, cart.ID())
	suite.Require().NoError(err)

	second := suite.factory.Create()
	suite.Require().NoError(second.Begin(ctx))
	theirs, err := second.OrderRepository().Get(ctx, cart.ID())
	suite.Require().NoError(err)

	mine.SetPaymentMethod("card")
	suite.Require().NoError(first.OrderRepository().Update(ctx, mine))
	suite.Require().NoError(first.Commit(ctx))

	theirs.SetPaymentMethod("cash")
	err = second.OrderRepository().Update(ctx, theirs)
	suite.Require().ErrorIs(err, errs.ErrStateConflict)
	suite.Require().NoError(second.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommitWithoutBegin_Fails() {
	err := suite.factory.Create().Commit(context.Background())
	suite.Require().ErrorIs(err, gorm.ErrInvalidTransaction)
}
