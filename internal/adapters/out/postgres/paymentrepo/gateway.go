// Package paymentrepo reads payment states recorded by the payment provider integration.
// The fulfillment core never writes payments; Record exists for that integration and tests.
package paymentrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentDTO is the last known payment state of an order.
type PaymentDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Status    string    `gorm:"type:varchar(16);not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name for payments.
func (PaymentDTO) TableName() string {
	return "payments"
}

// GormPaymentGateway implements ports.PaymentGateway over the payments table.
type GormPaymentGateway struct {
	db *gorm.DB
}

func NewGormPaymentGateway(db *gorm.DB) *GormPaymentGateway {
	return &GormPaymentGateway{db: db}
}

// GetPaymentStatus returns the recorded status. An order with no payment row is pending.
func (g *GormPaymentGateway) GetPaymentStatus(ctx context.Context, orderID kernel.UUID) (ports.PaymentStatus, error) {
	var dto PaymentDTO
	err := g.db.WithContext(ctx).First(&dto, "order_id = ?", orderID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.PaymentPending, nil
	}
	if err != nil {
		return "", err
	}

	switch status := ports.PaymentStatus(dto.Status); status {
	case ports.PaymentPending, ports.PaymentCompleted, ports.PaymentFailed:
		return status, nil
	default:
		return "", fmt.Errorf("unknown payment status %q for order %s", dto.Status, orderID)
	}
}

// Record stores the payment status of an order, replacing any previous one.
func (g *GormPaymentGateway) Record(ctx context.Context, orderID kernel.UUID, status ports.PaymentStatus) error {
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&PaymentDTO{
		OrderID:   orderID.Bytes(),
		Status:    string(status),
		UpdatedAt: time.Now().UTC(),
	}).Error
}
