package order

import (
	"errors"
	"fmt"
	"strings"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// LoyaltyPointValue is the fixed monetary value of one redeemed loyalty point.
var LoyaltyPointValue = decimal.NewFromInt(1)

// LoyaltyEarnUnit is the amount of order total that earns one loyalty point.
var LoyaltyEarnUnit = decimal.NewFromInt(100)

// LineItem is one product line of an order. UnitPrice and Weight are filled in by
// the stock resolver; PromotedPrice is set when an active promotion priced the line.
type LineItem struct {
	ProductID           kernel.UUID
	Quantity            int
	AlternateLocationID *kernel.UUID
	Comment             string
	PhotoRef            string
	PromotedPrice       *decimal.Decimal
	UnitPrice           decimal.Decimal
	Weight              decimal.Decimal
}

// StockLocation returns the location whose stock backs this line.
func (li LineItem) StockLocation(primary kernel.UUID) kernel.UUID {
	if li.AlternateLocationID != nil {
		return *li.AlternateLocationID
	}
	return primary
}

// LineTotal is UnitPrice × Quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

func (li LineItem) Validate() error {
	var err error
	if pErr := li.ProductID.Validate(); pErr != nil {
		err = errors.Join(err, errs.NewValueIsRequiredErrorWithCause("product id", pErr))
	}
	if li.Quantity < 1 {
		err = errors.Join(err, errs.NewValueIsInvalidErrorWithCause(
			"quantity", fmt.Errorf("%d is not greater than 0", li.Quantity)))
	}
	if li.UnitPrice.IsNegative() {
		err = errors.Join(err, errs.NewValueIsInvalidError("unit price"))
	}
	return err
}

// Address is the delivery destination.
type Address struct {
	Text  string
	Point kernel.GeoPoint
}

func NewAddress(text string, point kernel.GeoPoint) (Address, error) {
	if strings.TrimSpace(text) == "" {
		return Address{}, errs.NewValueIsRequiredError("address")
	}
	if err := point.Validate(); err != nil {
		return Address{}, err
	}
	return Address{Text: text, Point: point}, nil
}

// AppliedPromotion records a promotion that priced one of the lines and the discount it gave.
type AppliedPromotion struct {
	PromotionID kernel.UUID
	ProductID   kernel.UUID
	Discount    decimal.Decimal
}

// Pricing is the fee computation output of a successful stock resolution.
type Pricing struct {
	Subtotal       decimal.Decimal
	TotalWeight    decimal.Decimal
	DeliveryFee    decimal.Decimal
	AdditionalFees decimal.Decimal
	ServiceFee     decimal.Decimal
}

// Total is the pre-loyalty amount.
func (p Pricing) Total() decimal.Decimal {
	return p.Subtotal.Add(p.DeliveryFee).Add(p.AdditionalFees).Add(p.ServiceFee)
}

// Breakdown is the monetary state of an order.
// Total always equals Subtotal + DeliveryFee + AdditionalFees + ServiceFee - LoyaltyReduction.
type Breakdown struct {
	Subtotal         decimal.Decimal
	DeliveryFee      decimal.Decimal
	AdditionalFees   decimal.Decimal
	ServiceFee       decimal.Decimal
	LoyaltyReduction decimal.Decimal
	Total            decimal.Decimal
}

func newBreakdown(p Pricing, loyaltyReduction decimal.Decimal) (Breakdown, error) {
	b := Breakdown{
		Subtotal:         p.Subtotal,
		DeliveryFee:      p.DeliveryFee,
		AdditionalFees:   p.AdditionalFees,
		ServiceFee:       p.ServiceFee,
		LoyaltyReduction: loyaltyReduction,
	}
	b.Total = p.Total().Sub(loyaltyReduction)
	if b.Total.IsNegative() {
		return Breakdown{}, errs.NewValueIsOutOfRangeError("total", b.Total.String(), 0, "subtotal + fees")
	}
	return b, nil
}

func (b Breakdown) pricing(totalWeight decimal.Decimal) Pricing {
	return Pricing{
		Subtotal:       b.Subtotal,
		TotalWeight:    totalWeight,
		DeliveryFee:    b.DeliveryFee,
		AdditionalFees: b.AdditionalFees,
		ServiceFee:     b.ServiceFee,
	}
}
