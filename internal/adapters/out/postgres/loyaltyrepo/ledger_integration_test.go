package loyaltyrepo_test

import (
	"context"
	"testing"

	"marketdelivery/internal/adapters/out/postgres/loyaltyrepo"
	"marketdelivery/internal/adapters/out/postgres/pgtest"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type LoyaltyLedgerIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database
	ledger   *loyaltyrepo.GormLoyaltyLedger
}

func (suite *LoyaltyLedgerIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
}

func (suite *LoyaltyLedgerIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
	suite.ledger = loyaltyrepo.NewGormLoyaltyLedger(suite.database.DB)
}

func (suite *LoyaltyLedgerIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Stop(context.Background()))
}

func TestLoyaltyLedgerIntegration(t *testing.T) {
	suite.Run(t, new(LoyaltyLedgerIntegrationTestSuite))
}

func (suite *LoyaltyLedgerIntegrationTestSuite) balance(userID kernel.UUID) int {
	balance, err := suite.ledger.Balance(context.Background(), userID)
	suite.Require().NoError(err)
	return balance
}

func (suite *LoyaltyLedgerIntegrationTestSuite) TestEarnRedeemRefund() {
	ctx := context.Background()
	userID, orderID := kernel.NewUUID(), kernel.NewUUID()

	suite.Require().NoError(suite.ledger.Earn(ctx, userID, 30, "order delivered"))
	suite.Require().NoError(suite.ledger.Earn(ctx, userID, 20, "order delivered"))
	suite.Equal(50, suite.balance(userID))

	reduction, err := suite.ledger.Redeem(ctx, userID, 40, orderID)
	suite.Require().NoError(err)
	suite.True(decimal.NewFromInt(40).Equal(reduction), "reduction %s", reduction)
	suite.Equal(10, suite.balance(userID))

	refunded, err := suite.ledger.Refund(ctx, userID, orderID)
	suite.Require().NoError(err)
	suite.Equal(40, refunded)
	suite.Equal(50, suite.balance(userID))

	refunded, err = suite.ledger.Refund(ctx, userID, orderID)
	suite.Require().NoError(err)
	suite.Zero(refunded, "second refund is a no-op")
	suite.Equal(50, suite.balance(userID))
}

func (suite *LoyaltyLedgerIntegrationTestSuite) TestRedeem_InsufficientBalance() {
	ctx := context.Background()
	userID := kernel.NewUUID()

	_, err := suite.ledger.Redeem(ctx, userID, 1, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrValueIsOutOfRange, "no account yet")

	suite.Require().NoError(suite.ledger.Earn(ctx, userID, 5, "welcome"))
	_, err = suite.ledger.Redeem(ctx, userID, 6, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrValueIsOutOfRange)
	suite.Equal(5, suite.balance(userID))
}

func (suite *LoyaltyLedgerIntegrationTestSuite) TestRefund_UnknownUserOrOrder() {
	ctx := context.Background()
	userID := kernel.NewUUID()

	refunded, err := suite.ledger.Refund(ctx, userID, kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Zero(refunded)

	suite.Require().NoError(suite.ledger.Earn(ctx, userID, 5, "welcome"))
	refunded, err = suite.ledger.Refund(ctx, userID, kernel.NewUUID())
	suite.Require().NoError(err)
	suite.Zero(refunded)
	suite.Equal(5, suite.balance(userID))
}

func (suite *LoyaltyLedgerIntegrationTestSuite) TestEarn_RejectsNonPositive() {
	err := suite.ledger.Earn(context.Background(), kernel.NewUUID(), 0, "nothing")
	suite.Require().ErrorIs(err, errs.ErrValueIsOutOfRange)
}
