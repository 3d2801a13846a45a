package order

import (
	"fmt"

	"marketdelivery/internal/pkg/errs"
)

// DeliveryType selects the fee schedule and whether the order is dispatched to a driver.
type DeliveryType string

const (
	Standard    DeliveryType = "standard"
	Evening     DeliveryType = "evening"
	StorePickup DeliveryType = "store_pickup"
)

func ParseDeliveryType(raw string) (DeliveryType, error) {
	t := DeliveryType(raw)
	if err := t.Validate(); err != nil {
		return "", err
	}
	return t, nil
}

func (t DeliveryType) Validate() error {
	switch t {
	case Standard, Evening, StorePickup:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("delivery type", fmt.Errorf("%q is not a valid delivery type", string(t)))
	}
}

// IsDispatchable reports whether orders of this type go through driver assignment.
// Evening orders use a separate dispatch path and store pickups never leave the store.
func (t DeliveryType) IsDispatchable() bool {
	return t == Standard
}
