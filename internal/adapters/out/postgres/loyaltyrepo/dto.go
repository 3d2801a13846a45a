// Package loyaltyrepo is the Postgres loyalty ledger: one balance row per client and an
// append-only list of entries recording every earn, redeem and refund.
package loyaltyrepo

import (
	"time"

	"github.com/google/uuid"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	KindEarn   EntryKind = "earn"
	KindRedeem EntryKind = "redeem"
	KindRefund EntryKind = "refund"
)

// AccountDTO holds the current balance of a client.
type AccountDTO struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Balance   int       `gorm:"not null;check:balance >= 0"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name for loyalty accounts.
func (AccountDTO) TableName() string {
	return "loyalty_accounts"
}

// EntryDTO records one balance movement. Points are always positive; the kind gives the sign.
type EntryDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID   *uuid.UUID `gorm:"type:uuid;index"`
	Kind      EntryKind  `gorm:"type:varchar(16);not null"`
	Points    int        `gorm:"not null"`
	Reason    string     `gorm:"type:text"`
	CreatedAt time.Time  `gorm:"not null"`
}

// TableName specifies the database table name for loyalty entries.
func (EntryDTO) TableName() string {
	return "loyalty_entries"
}
