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
	ErrGetValidatorQueueQueryIsNotConstructed = errors.New(
		"GetValidatorQueueQuery must be created via NewGetValidatorQueueQuery constructor",
	)
)

// GetValidatorQueueQuery lists the orders waiting for validation at one pickup location.
type GetValidatorQueueQuery struct {
	actor         authz.Actor
	supermarketID kernel.UUID
	locationID    kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetValidatorQueueQuery(
	actor authz.Actor,
	supermarketID, locationID kernel.UUID,
) (GetValidatorQueueQuery, error) {
	if err := errors.Join(
		requireValid("actor", actor.UserID),
		requireValid("supermarket id", supermarketID),
		requireValid("location id", locationID),
	); err != nil {
		return GetValidatorQueueQuery{}, err
	}

	return GetValidatorQueueQuery{
		actor:         actor,
		supermarketID: supermarketID,
		locationID:    locationID,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (q GetValidatorQueueQuery) Validate() error {
	return q.guard.Validate(ErrGetValidatorQueueQueryIsNotConstructed)
}

func (q GetValidatorQueueQuery) Actor() authz.Actor {
	return q.actor
}

func (q GetValidatorQueueQuery) SupermarketID() kernel.UUID {
	return q.supermarketID
}

func (q GetValidatorQueueQuery) LocationID() kernel.UUID {
	return q.locationID
}

// GetValidatorQueueQueryResponse is one queued order. Entries are returned in queue
// order, so the first entry is the next order to validate.
type GetValidatorQueueQueryResponse struct {
	ID            kernel.UUID
	ClientID      kernel.UUID
	Status        string
	QueuePosition int
	ValidatorID   *kernel.UUID
	ItemCount     int
	Total         decimal.Decimal
	SubmittedAt   *time.Time
}

func requireValid(name string, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(name, err)
	}
	return nil
}
