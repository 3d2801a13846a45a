package commands_test

import (
	"errors"
	"testing"

	"marketdelivery/internal/core/application/usecases/commands"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLoyaltyPointsCommandHandler_Handle(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t, f.client, 1, services.ItemRequest{ProductID: f.apples.ID(), Quantity: 1})
	f.ledger.balances[f.client.UserID] = 100

	cmd, err := commands.NewApplyLoyaltyPointsCommand(f.client, id, 60)
	require.NoError(t, err)
	h := commands.NewApplyLoyaltyPointsCommandHandler(f.store, f.policy, f.ledger, f.logger)

	breakdown, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)

	// 100 + 500 + 10 - 60
	assert.True(t, decimal.NewFromInt(60).Equal(breakdown.LoyaltyReduction))
	assert.True(t, decimal.NewFromInt(550).Equal(breakdown.Total))
	assert.Equal(t, 60, f.store.order(id).LoyaltyPointsUsed())
	assert.Equal(t, 40, f.ledger.balance(f.client.UserID))

	_, err = h.Handle(t.Context(), cmd)
	assert.ErrorIs(t, err, errs.ErrStateConflict, "points are applied once")
	assert.Equal(t, 40, f.ledger.balance(f.client.UserID))
}

func TestApplyLoyaltyPointsCommandHandler_Handle_InsufficientBalance(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t, f.client, 1, services.ItemRequest{ProductID: f.apples.ID(), Quantity: 1})
	f.ledger.balances[f.client.UserID] = 5

	cmd, err := commands.NewApplyLoyaltyPointsCommand(f.client, id, 10)
	require.NoError(t, err)
	h := commands.NewApplyLoyaltyPointsCommandHandler(f.store, f.policy, f.ledger, f.logger)

	_, err = h.Handle(t.Context(), cmd)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, 0, f.store.order(id).LoyaltyPointsUsed())
	assert.Equal(t, 5, f.ledger.balance(f.client.UserID))
}

func TestApplyLoyaltyPointsCommandHandler_Handle_TotalCannotGoNegative(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t, f.client, 1, services.ItemRequest{ProductID: f.apples.ID(), Quantity: 1})
	f.ledger.balances[f.client.UserID] = 1000

	cmd, err := commands.NewApplyLoyaltyPointsCommand(f.client, id, 611)
	require.NoError(t, err)
	h := commands.NewApplyLoyaltyPointsCommandHandler(f.store, f.policy, f.ledger, f.logger)

	_, err = h.Handle(t.Context(), cmd)
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
	assert.Equal(t, 1000, f.ledger.balance(f.client.UserID), "nothing is redeemed")
}

func TestApplyLoyaltyPointsCommandHandler_Handle_LedgerFailure(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t, f.client, 1, services.ItemRequest{ProductID: f.apples.ID(), Quantity: 1})
	f.ledger.redeemErr = errors.New("ledger unavailable")

	cmd, err := commands.NewApplyLoyaltyPointsCommand(f.client, id, 10)
	require.NoError(t, err)
	h := commands.NewApplyLoyaltyPointsCommandHandler(f.store, f.policy, f.ledger, f.logger)

	_, err = h.Handle(t.Context(), cmd)
	assert.Equal(t, errs.KindExternalService, errs.KindOf(err))
}

func TestApplyLoyaltyPointsCommandHandler_Handle_CommitFailureRefunds(t *testing.T) {
	f := newFixture(t)
	id := f.createOrder(t, f.client, 1, services.ItemRequest{ProductID: f.apples.ID(), Quantity: 1})
	f.ledger.balances[f.client.UserID] = 50
	f.store.commitErr = errors.New("connection reset")

	cmd, err := commands.NewApplyLoyaltyPointsCommand(f.client, id, 20)
	require.NoError(t, err)
	h := commands.NewApplyLoyaltyPointsCommandHandler(f.store, f.policy, f.ledger, f.logger)

	_, err = h.Handle(t.Context(), cmd)
	require.Error(t, err)
	assert.Equal(t, 50, f.ledger.balance(f.client.UserID))
	assert.Equal(t, 0, f.store.order(id).LoyaltyPointsUsed())
}

func TestNewApplyLoyaltyPointsCommand_RejectsNonPositivePoints(t *testing.T) {
	f := newFixture(t)
	_, err := commands.NewApplyLoyaltyPointsCommand(f.client, f.apples.ID(), 0)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}
