// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// Line items and applied promotions are value objects owned by the order, so they are
// stored as JSON columns of the order row instead of child tables.
package orderrepo

import (
	"time"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Indexed for the validation queue, the driver sweep and per driver or zone counts.
type OrderDTO struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClientID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SupermarketID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_orders_location_status,priority:1"`
	LocationID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_orders_location_status,priority:2"`
	Items          []LineItemDTO   `gorm:"type:jsonb;serializer:json;not null"`
	Promotions     []PromotionDTO  `gorm:"type:jsonb;serializer:json;not null"`
	Address        AddressDTO      `gorm:"embedded;embeddedPrefix:address_"`
	DeliveryType   string          `gorm:"type:varchar(32);not null"`
	TotalWeight    decimal.Decimal `gorm:"type:numeric(12,3);not null"`
	Breakdown      BreakdownDTO    `gorm:"embedded"`
	LoyaltyUsed    int             `gorm:"not null"`
	PaymentMethod  string          `gorm:"type:varchar(64)"`
	Priority       int             `gorm:"not null"`
	QueuePosition  int             `gorm:"not null"`
	ValidatorID    *uuid.UUID      `gorm:"type:uuid;index"`
	DriverID       *uuid.UUID      `gorm:"type:uuid;index"`
	ZoneID         *uuid.UUID      `gorm:"type:uuid;index"`
	Status         string          `gorm:"type:varchar(32);not null;index:idx_orders_location_status,priority:3"`
	ValidationCode string          `gorm:"type:varchar(6)"`
	IssueNote      string          `gorm:"type:text"`
	ProofPhotoRef  string          `gorm:"type:text"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime:false"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime:false"`
	SubmittedAt    *time.Time
	ValidatedAt    *time.Time
	AcceptedAt     *time.Time
	PickedUpAt     *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	Version        int `gorm:"not null"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// AddressDTO is the embedded delivery destination.
type AddressDTO struct {
	Text string  `gorm:"type:text;not null"`
	Lat  float64 `gorm:"not null"`
	Lng  float64 `gorm:"not null"`
}

// BreakdownDTO is the embedded monetary state of an order.
type BreakdownDTO struct {
	Subtotal         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DeliveryFee      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AdditionalFees   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	ServiceFee       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	LoyaltyReduction decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// LineItemDTO is one element of the items JSON column.
type LineItemDTO struct {
	ProductID           uuid.UUID        `json:"product_id"`
	Quantity            int              `json:"quantity"`
	AlternateLocationID *uuid.UUID       `json:"alternate_location_id,omitempty"`
	Comment             string           `json:"comment,omitempty"`
	PhotoRef            string           `json:"photo_ref,omitempty"`
	PromotedPrice       *decimal.Decimal `json:"promoted_price,omitempty"`
	UnitPrice           decimal.Decimal  `json:"unit_price"`
	Weight              decimal.Decimal  `json:"weight"`
}

// PromotionDTO is one element of the promotions JSON column.
type PromotionDTO struct {
	PromotionID uuid.UUID       `json:"promotion_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Discount    decimal.Decimal `json:"discount"`
}

// fromDomain converts an order aggregate to its database representation.
// The stored version is the aggregate version plus one; the unit of work advances the
// aggregate itself after commit.
func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()

	items := make([]LineItemDTO, 0, len(s.Items))
	for _, li := range s.Items {
		items = append(items, LineItemDTO{
			ProductID:           li.ProductID.Bytes(),
			Quantity:            li.Quantity,
			AlternateLocationID: optionalBytes(li.AlternateLocationID),
			Comment:             li.Comment,
			PhotoRef:            li.PhotoRef,
			PromotedPrice:       li.PromotedPrice,
			UnitPrice:           li.UnitPrice,
			Weight:              li.Weight,
		})
	}

	promotions := make([]PromotionDTO, 0, len(s.Promotions))
	for _, p := range s.Promotions {
		promotions = append(promotions, PromotionDTO{
			PromotionID: p.PromotionID.Bytes(),
			ProductID:   p.ProductID.Bytes(),
			Discount:    p.Discount,
		})
	}

	return OrderDTO{
		ID:            s.ID.Bytes(),
		ClientID:      s.ClientID.Bytes(),
		SupermarketID: s.SupermarketID.Bytes(),
		LocationID:    s.LocationID.Bytes(),
		Items:         items,
		Promotions:    promotions,
		Address: AddressDTO{
			Text: s.Address.Text,
			Lat:  s.Address.Point.Lat(),
			Lng:  s.Address.Point.Lng(),
		},
		DeliveryType: string(s.DeliveryType),
		TotalWeight:  s.TotalWeight,
		Breakdown: BreakdownDTO{
			Subtotal:         s.Breakdown.Subtotal,
			DeliveryFee:      s.Breakdown.DeliveryFee,
			AdditionalFees:   s.Breakdown.AdditionalFees,
			ServiceFee:       s.Breakdown.ServiceFee,
			LoyaltyReduction: s.Breakdown.LoyaltyReduction,
			Total:            s.Breakdown.Total,
		},
		LoyaltyUsed:    s.LoyaltyUsed,
		PaymentMethod:  s.PaymentMethod,
		Priority:       s.Priority,
		QueuePosition:  s.QueuePosition,
		ValidatorID:    optionalBytes(s.ValidatorID),
		DriverID:       optionalBytes(s.DriverID),
		ZoneID:         optionalBytes(s.ZoneID),
		Status:         s.Status.String(),
		ValidationCode: s.ValidationCode,
		IssueNote:      s.IssueNote,
		ProofPhotoRef:  s.ProofPhotoRef,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		SubmittedAt:    s.SubmittedAt,
		ValidatedAt:    s.ValidatedAt,
		AcceptedAt:     s.AcceptedAt,
		PickedUpAt:     s.PickedUpAt,
		DeliveredAt:    s.DeliveredAt,
		CancelledAt:    s.CancelledAt,
		Version:        s.Version + 1,
	}
}

// toDomain converts a database DTO to an order aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	ids, err := requiredIDs(dto.ID, dto.ClientID, dto.SupermarketID, dto.LocationID)
	if err != nil {
		return nil, err
	}

	validatorID, err := optionalID(dto.ValidatorID)
	if err != nil {
		return nil, err
	}
	driverID, err := optionalID(dto.DriverID)
	if err != nil {
		return nil, err
	}
	zoneID, err := optionalID(dto.ZoneID)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	deliveryType, err := order.ParseDeliveryType(dto.DeliveryType)
	if err != nil {
		return nil, err
	}

	point, err := kernel.NewGeoPoint(dto.Address.Lat, dto.Address.Lng)
	if err != nil {
		return nil, err
	}

	items := make([]order.LineItem, 0, len(dto.Items))
	for _, li := range dto.Items {
		productID, itemErr := kernel.UUIDFromBytes(li.ProductID[:])
		if itemErr != nil {
			return nil, itemErr
		}
		alternate, itemErr := optionalID(li.AlternateLocationID)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, order.LineItem{
			ProductID:           productID,
			Quantity:            li.Quantity,
			AlternateLocationID: alternate,
			Comment:             li.Comment,
			PhotoRef:            li.PhotoRef,
			PromotedPrice:       li.PromotedPrice,
			UnitPrice:           li.UnitPrice,
			Weight:              li.Weight,
		})
	}

	promotions := make([]order.AppliedPromotion, 0, len(dto.Promotions))
	for _, p := range dto.Promotions {
		promoIDs, promoErr := requiredIDs(p.PromotionID, p.ProductID)
		if promoErr != nil {
			return nil, promoErr
		}
		promotions = append(promotions, order.AppliedPromotion{
			PromotionID: promoIDs[0],
			ProductID:   promoIDs[1],
			Discount:    p.Discount,
		})
	}

	return order.RestoreOrder(order.Snapshot{
		ID:            ids[0],
		ClientID:      ids[1],
		SupermarketID: ids[2],
		LocationID:    ids[3],
		Items:         items,
		Promotions:    promotions,
		Address:       order.Address{Text: dto.Address.Text, Point: point},
		DeliveryType:  deliveryType,
		TotalWeight:   dto.TotalWeight,
		Breakdown: order.Breakdown{
			Subtotal:         dto.Breakdown.Subtotal,
			DeliveryFee:      dto.Breakdown.DeliveryFee,
			AdditionalFees:   dto.Breakdown.AdditionalFees,
			ServiceFee:       dto.Breakdown.ServiceFee,
			LoyaltyReduction: dto.Breakdown.LoyaltyReduction,
			Total:            dto.Breakdown.Total,
		},
		LoyaltyUsed:    dto.LoyaltyUsed,
		PaymentMethod:  dto.PaymentMethod,
		Priority:       dto.Priority,
		QueuePosition:  dto.QueuePosition,
		ValidatorID:    validatorID,
		DriverID:       driverID,
		ZoneID:         zoneID,
		Status:         status,
		ValidationCode: dto.ValidationCode,
		IssueNote:      dto.IssueNote,
		ProofPhotoRef:  dto.ProofPhotoRef,
		CreatedAt:      dto.CreatedAt,
		UpdatedAt:      dto.UpdatedAt,
		SubmittedAt:    dto.SubmittedAt,
		ValidatedAt:    dto.ValidatedAt,
		AcceptedAt:     dto.AcceptedAt,
		PickedUpAt:     dto.PickedUpAt,
		DeliveredAt:    dto.DeliveredAt,
		CancelledAt:    dto.CancelledAt,
		Version:        dto.Version,
	})
}

func requiredIDs(raw ...uuid.UUID) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func optionalID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalBytes(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}
