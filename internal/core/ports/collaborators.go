package ports

import (
	"context"
	"io"
	"time"

	"marketdelivery/internal/core/domain/model/kernel"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the state of the payment linked to an order.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentGateway exposes the payment state of an order. The core only reads it.
type PaymentGateway interface {
	GetPaymentStatus(ctx context.Context, orderID kernel.UUID) (PaymentStatus, error)
}

// LoyaltyLedger keeps client loyalty balances.
type LoyaltyLedger interface {
	// Earn credits points to a user.
	Earn(ctx context.Context, userID kernel.UUID, points int, reason string) error

	// Redeem debits points for an order and returns the monetary reduction they buy.
	Redeem(ctx context.Context, userID kernel.UUID, points int, orderID kernel.UUID) (decimal.Decimal, error)

	// Refund credits back every point redeemed for the order and returns how many.
	// Refunding twice is a no-op.
	Refund(ctx context.Context, userID kernel.UUID, orderID kernel.UUID) (int, error)
}

// Notifier delivers a message to a user. Callers log failures and move on.
type Notifier interface {
	Notify(ctx context.Context, userID kernel.UUID, message string) error
}

// AssetStorage stores product images and delivery proof photos.
type AssetStorage interface {
	UploadFile(ctx context.Context, key string, content io.Reader, contentType string) (string, error)
	GetSignedURL(ctx context.Context, ref string, ttl time.Duration) (string, error)
}
