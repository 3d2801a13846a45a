package loyaltyrepo

import (
	"context"
	"errors"
	"time"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLoyaltyLedger implements ports.LoyaltyLedger. Each call runs in its own
// transaction, independent of any order unit of work: the ledger is a separate
// system and the command handlers compensate when an order write fails.
type GormLoyaltyLedger struct {
	db *gorm.DB
}

func NewGormLoyaltyLedger(db *gorm.DB) *GormLoyaltyLedger {
	return &GormLoyaltyLedger{db: db}
}

// Earn credits points to a user, opening the account on first use.
func (l *GormLoyaltyLedger) Earn(ctx context.Context, userID kernel.UUID, points int, reason string) error {
	if points < 1 {
		return errs.NewValueIsOutOfRangeError("points", points, 1, "unbounded")
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"balance":    gorm.Expr("loyalty_accounts.balance + ?", points),
				"updated_at": now,
			}),
		}).Create(&AccountDTO{UserID: userID.Bytes(), Balance: points, UpdatedAt: now}).Error; err != nil {
			return err
		}
		return appendEntry(tx, userID, nil, KindEarn, points, reason, now)
	})
}

// Redeem debits points for an order and returns the monetary reduction they buy.
// Fails with an out of range error when the balance is too small.
func (l *GormLoyaltyLedger) Redeem(
	ctx context.Context,
	userID kernel.UUID,
	points int,
	orderID kernel.UUID,
) (decimal.Decimal, error) {
	if points < 1 {
		return decimal.Zero, errs.NewValueIsOutOfRangeError("points", points, 1, "balance")
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID)
		if errors.Is(err, errs.ErrObjectNotFound) {
			return errs.NewValueIsOutOfRangeError("points", points, 1, 0)
		}
		if err != nil {
			return err
		}
		if account.Balance < points {
			return errs.NewValueIsOutOfRangeError("points", points, 1, account.Balance)
		}

		now := time.Now().UTC()
		if err = tx.Model(&AccountDTO{}).
			Where("user_id = ?", account.UserID).
			Updates(map[string]any{"balance": account.Balance - points, "updated_at": now}).Error; err != nil {
			return err
		}
		return appendEntry(tx, userID, &orderID, KindRedeem, points, "order redemption", now)
	})
	if err != nil {
		return decimal.Zero, err
	}

	return order.LoyaltyReductionFor(points), nil
}

// Refund credits back whatever is still redeemed for the order. A second refund finds
// nothing outstanding and returns 0.
func (l *GormLoyaltyLedger) Refund(ctx context.Context, userID kernel.UUID, orderID kernel.UUID) (int, error) {
	var refunded int
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account, err := lockAccount(tx, userID)
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var outstanding int
		if err = tx.Model(&EntryDTO{}).
			Select("COALESCE(SUM(CASE WHEN kind = ? THEN points ELSE -points END), 0)", string(KindRedeem)).
			Where("user_id = ? AND order_id = ? AND kind IN ?",
				account.UserID, orderID.Bytes(), []string{string(KindRedeem), string(KindRefund)}).
			Scan(&outstanding).Error; err != nil {
			return err
		}
		if outstanding <= 0 {
			return nil
		}

		now := time.Now().UTC()
		if err = tx.Model(&AccountDTO{}).
			Where("user_id = ?", account.UserID).
			Updates(map[string]any{"balance": account.Balance + outstanding, "updated_at": now}).Error; err != nil {
			return err
		}
		if err = appendEntry(tx, userID, &orderID, KindRefund, outstanding, "order refund", now); err != nil {
			return err
		}
		refunded = outstanding
		return nil
	})
	if err != nil {
		return 0, err
	}
	return refunded, nil
}

// Balance returns the current balance of a user, 0 for an unknown user.
func (l *GormLoyaltyLedger) Balance(ctx context.Context, userID kernel.UUID) (int, error) {
	var account AccountDTO
	err := l.db.WithContext(ctx).First(&account, "user_id = ?", userID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

func lockAccount(tx *gorm.DB, userID kernel.UUID) (AccountDTO, error) {
	var account AccountDTO
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&account, "user_id = ?", userID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AccountDTO{}, errs.NewObjectNotFoundError("loyalty account", userID.String())
	}
	return account, err
}

func appendEntry(
	tx *gorm.DB,
	userID kernel.UUID,
	orderID *kernel.UUID,
	kind EntryKind,
	points int,
	reason string,
	now time.Time,
) error {
	entry := EntryDTO{
		ID:        uuid.New(),
		UserID:    userID.Bytes(),
		Kind:      kind,
		Points:    points,
		Reason:    reason,
		CreatedAt: now,
	}
	if orderID != nil {
		raw := orderID.Bytes()
		entry.OrderID = &raw
	}
	return tx.Create(&entry).Error
}
