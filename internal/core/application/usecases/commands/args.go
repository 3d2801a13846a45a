package commands

import (
	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/pkg/errs"
)

func requireUser(actor authz.Actor) error {
	if err := actor.UserID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actor", err)
	}
	return nil
}

func requireID(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}

func requireItems(items []services.ItemRequest) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := requireID("product id", item.ProductID); err != nil {
			return err
		}
		if item.Quantity < 1 {
			return errs.NewValueIsOutOfRangeError("quantity", item.Quantity, 1, "stock")
		}
	}
	return nil
}
