// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries bypass the aggregates and return read models built with plain SQL, but
// they authorize the caller with the same policy table as the commands.
package queries

import (
	"errors"
	"time"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetOrderQueryIsNotConstructed = errors.New(
		"GetOrderQuery must be created via NewGetOrderQuery constructor",
	)
)

// GetOrderQuery retrieves the detail of one order as seen by the caller.
//
// Example:
//
//	query, err := NewGetOrderQuery(actor, orderID)
//	if err != nil {
//	    return err
//	}
//
//	detail, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve order: %w", err)
//	}
//	fmt.Printf("Order %s is %s, total %s\n", detail.ID, detail.Status, detail.Total)
type GetOrderQuery struct {
	actor   authz.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for a single order.
// Both the caller identity and the order id are required.
func NewGetOrderQuery(actor authz.Actor, orderID kernel.UUID) (GetOrderQuery, error) {
	if err := actor.UserID.Validate(); err != nil {
		return GetOrderQuery{}, errs.NewValueIsRequiredErrorWithCause("actor", err)
	}
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, errs.NewValueIsRequiredErrorWithCause("order id", err)
	}

	return GetOrderQuery{
		actor:   actor,
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) Actor() authz.Actor {
	return q.actor
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderQueryResponse is the order detail read model.
// ValidationCode is only disclosed to the owning client, and ProofPhotoURL is a
// short-lived signed link that is empty until the order is delivered.
type GetOrderQueryResponse struct {
	ID               kernel.UUID
	ClientID         kernel.UUID
	SupermarketID    kernel.UUID
	LocationID       kernel.UUID
	Status           string
	DeliveryType     string
	AddressText      string
	AddressPoint     kernel.GeoPoint
	Items            []GetOrderQueryItem
	Subtotal         decimal.Decimal
	DeliveryFee      decimal.Decimal
	AdditionalFees   decimal.Decimal
	ServiceFee       decimal.Decimal
	LoyaltyReduction decimal.Decimal
	Total            decimal.Decimal
	LoyaltyUsed      int
	QueuePosition    int
	ValidatorID      *kernel.UUID
	DriverID         *kernel.UUID
	ZoneID           *kernel.UUID
	ValidationCode   string
	IssueNote        string
	ProofPhotoURL    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// GetOrderQueryItem is one line of the order detail.
type GetOrderQueryItem struct {
	ProductID           kernel.UUID
	Quantity            int
	AlternateLocationID *kernel.UUID
	Comment             string
	UnitPrice           decimal.Decimal
}
