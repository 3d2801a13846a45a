package commands

import (
	"errors"
	"slices"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a client opening a new order at a supermarket pickup location.
//
// Example:
//
//	address, _ := order.NewAddress("12 Main st", kernel.MustGeoPoint(48.85, 2.35))
//	cmd, err := NewCreateOrderCommand(actor, supermarketID, locationID, address, order.Standard, items)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
//	if result.Resolution.HasIssues() {
//	    // show result.Resolution.StockIssues to the client
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	actor         authz.Actor
	supermarketID kernel.UUID
	locationID    kernel.UUID
	address       order.Address
	deliveryType  order.DeliveryType
	items         []services.ItemRequest
	paymentMethod string
	priority      int

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the request shape. Stock and product existence are
// checked by the handler.
func NewCreateOrderCommand(
	actor authz.Actor,
	supermarketID, locationID kernel.UUID,
	address order.Address,
	deliveryType order.DeliveryType,
	items []services.ItemRequest,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		requireUser(actor),
		requireID("supermarket id", supermarketID),
		requireID("location id", locationID),
		cmd.setAddress(address),
		deliveryType.Validate(),
		requireItems(items),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	cmd.actor = actor
	cmd.supermarketID = supermarketID
	cmd.locationID = locationID
	cmd.deliveryType = deliveryType
	cmd.items = slices.Clone(items)
	return cmd, nil
}

// WithPaymentMethod returns a copy of the command carrying the payment method chosen at checkout.
func (c CreateOrderCommand) WithPaymentMethod(method string) CreateOrderCommand {
	c.paymentMethod = method
	return c
}

// WithPriority returns a copy of the command with a dispatch priority; higher goes first.
func (c CreateOrderCommand) WithPriority(priority int) CreateOrderCommand {
	c.priority = priority
	return c
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Actor() authz.Actor {
	return c.actor
}

func (c CreateOrderCommand) SupermarketID() kernel.UUID {
	return c.supermarketID
}

func (c CreateOrderCommand) LocationID() kernel.UUID {
	return c.locationID
}

func (c CreateOrderCommand) Address() order.Address {
	return c.address
}

func (c CreateOrderCommand) DeliveryType() order.DeliveryType {
	return c.deliveryType
}

func (c CreateOrderCommand) Items() []services.ItemRequest {
	return slices.Clone(c.items)
}

func (c CreateOrderCommand) PaymentMethod() string {
	return c.paymentMethod
}

func (c CreateOrderCommand) Priority() int {
	return c.priority
}

func (c *CreateOrderCommand) setAddress(address order.Address) error {
	validated, err := order.NewAddress(address.Text, address.Point)
	if err != nil {
		return err
	}

	c.address = validated
	return nil
}
