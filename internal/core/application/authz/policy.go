package authz

import (
	"fmt"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
)

type Resource string

const (
	Orders         Resource = "order"
	ValidatorQueue Resource = "validator_queue"
	Drivers        Resource = "driver"
	Dispatch       Resource = "dispatch"
)

type Action string

const (
	Create           Action = "create"
	Read             Action = "read"
	UpdateProducts   Action = "update_products"
	Submit           Action = "submit"
	ApplyLoyalty     Action = "apply_loyalty"
	Validate         Action = "validate"
	Cancel           Action = "cancel"
	RetryValidator   Action = "retry_validator"
	AssignDriver     Action = "assign_driver"
	Accept           Action = "accept"
	StartDelivery    Action = "start_delivery"
	CompleteDelivery Action = "complete_delivery"
	ReportIssue      Action = "report_issue"
	List             Action = "list"
	Sweep            Action = "sweep"
	UpdatePresence   Action = "update_presence"
)

// Scope restricts a grant to subjects related to the actor.
type Scope int

const (
	// AnySubject grants the action regardless of the subject.
	AnySubject Scope = iota
	// Owner requires the actor to own the subject.
	Owner
	// SameSupermarket requires the subject to belong to the actor's supermarket.
	SameSupermarket
	// AssignedDriver requires the actor to be the subject's driver.
	AssignedDriver
	// SelfDriver grants any driver, used before an order is bound to one.
	SelfDriver
)

// Grant is one row of the policy: holders of Capability may act within Scope.
type Grant struct {
	Capability Capability
	Scope      Scope
}

// Subject describes the entity being acted upon. Nil fields never match a scoped grant.
type Subject struct {
	OwnerID       *kernel.UUID
	SupermarketID *kernel.UUID
	DriverID      *kernel.UUID
}

type key struct {
	resource Resource
	action   Action
}

// Policy maps (resource, action) to the grants allowing it.
type Policy struct {
	table map[key][]Grant
}

// DefaultPolicy is the permission table of the fulfillment API.
func DefaultPolicy() Policy {
	return Policy{table: map[key][]Grant{
		{Orders, Create}:           {{Client, AnySubject}},
		{Orders, Read}:             {{Client, Owner}, {OrderValidator, SameSupermarket}, {Driver, AssignedDriver}, {Dispatcher, AnySubject}},
		{Orders, UpdateProducts}:   {{Client, Owner}},
		{Orders, Submit}:           {{Client, Owner}},
		{Orders, ApplyLoyalty}:     {{Client, Owner}},
		{Orders, Validate}:         {{OrderValidator, SameSupermarket}},
		{Orders, Cancel}:           {{Client, Owner}, {OrderValidator, SameSupermarket}},
		{Orders, RetryValidator}:   {{Client, Owner}, {OrderValidator, SameSupermarket}, {Dispatcher, AnySubject}},
		{Orders, AssignDriver}:     {{OrderValidator, SameSupermarket}, {Dispatcher, AnySubject}},
		{Orders, Accept}:           {{Driver, SelfDriver}},
		{Orders, StartDelivery}:    {{Driver, AssignedDriver}},
		{Orders, CompleteDelivery}: {{Driver, AssignedDriver}},
		{Orders, ReportIssue}:      {{Driver, AssignedDriver}},
		{ValidatorQueue, Read}:     {{OrderValidator, SameSupermarket}},
		{Drivers, List}:            {{OrderValidator, AnySubject}, {Dispatcher, AnySubject}},
		{Drivers, Create}:          {{Dispatcher, AnySubject}},
		{Drivers, UpdatePresence}:  {{Driver, AssignedDriver}},
		{Dispatch, Sweep}:          {{Dispatcher, AnySubject}},
	}}
}

// Authorize returns the first grant of the table row satisfied by the actor, or a
// NotAuthorizedError. Unknown (resource, action) pairs are denied.
func (p Policy) Authorize(actor Actor, resource Resource, action Action, subject Subject) (Grant, error) {
	grants, ok := p.table[key{resource, action}]
	if !ok {
		return Grant{}, errs.NewNotAuthorizedError(describe(resource, action), "no policy defined")
	}

	for _, g := range grants {
		if actor.Has(g.Capability) && g.Scope.matches(actor, subject) {
			return g, nil
		}
	}
	return Grant{}, errs.NewNotAuthorizedError(describe(resource, action), "caller lacks the required role or relation")
}

func (s Scope) matches(actor Actor, subject Subject) bool {
	switch s {
	case AnySubject, SelfDriver:
		return true
	case Owner:
		return subject.OwnerID != nil && subject.OwnerID.IsEqual(actor.UserID)
	case SameSupermarket:
		return subject.SupermarketID != nil && actor.SupermarketID != nil &&
			subject.SupermarketID.IsEqual(*actor.SupermarketID)
	case AssignedDriver:
		return subject.DriverID != nil && subject.DriverID.IsEqual(actor.UserID)
	default:
		return false
	}
}

func describe(resource Resource, action Action) string {
	return fmt.Sprintf("%s %s", action, resource)
}
