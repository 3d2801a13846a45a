package commands

import (
	"errors"
	"strings"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"
)

var ErrCompleteDeliveryCommandIsNotConstructed = errors.New(
	"CompleteDeliveryCommand must be created via NewCompleteDeliveryCommand constructor",
)

// CompleteDeliveryCommand is the driver handing the order over. The client's validation
// code proves the hand-over; the proof photo reference is optional.
type CompleteDeliveryCommand struct { //nolint:recvcheck //using for validation
	orderTarget
	validationCode string
	proofPhotoRef  string

	guard guard.ConstructorGuard
}

func NewCompleteDeliveryCommand(
	actor authz.Actor,
	orderID kernel.UUID,
	validationCode, proofPhotoRef string,
) (CompleteDeliveryCommand, error) {
	target, err := newOrderTarget(actor, orderID)
	code := strings.TrimSpace(validationCode)
	if code == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("validation code"))
	}
	if err != nil {
		return CompleteDeliveryCommand{}, err
	}

	return CompleteDeliveryCommand{
		orderTarget:    target,
		validationCode: code,
		proofPhotoRef:  strings.TrimSpace(proofPhotoRef),
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrCompleteDeliveryCommandIsNotConstructed)
}

func (c CompleteDeliveryCommand) ValidationCode() string {
	return c.validationCode
}

func (c CompleteDeliveryCommand) ProofPhotoRef() string {
	return c.proofPhotoRef
}
