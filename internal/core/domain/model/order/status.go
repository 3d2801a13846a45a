package order

import (
	"fmt"
	"slices"

	"marketdelivery/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	CartInProgress ──> PendingValidation | AwaitingValidator ──> Validated ──> ReadyForPickup ──> InDelivery ──> Delivered
//	                         AwaitingValidator ──> PendingValidation           InDelivery ──> DeliveryIssue
//	CartInProgress | PendingValidation | AwaitingValidator ──> Cancelled
//
// Delivered and Cancelled are terminal. DeliveryIssue ends the happy path and is
// resolved outside the fulfillment flow.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// CartInProgress is a cart the client is still filling. Nothing is reserved.
	CartInProgress

	// PendingValidation is a submitted order queued at its validator.
	PendingValidation

	// AwaitingValidator is a submitted order for which no validator could be selected yet.
	AwaitingValidator

	// Validated orders have stock decremented and a delivery code. Standard orders wait
	// here until a driver accepts them.
	Validated

	// ReadyForPickup orders were accepted by a driver and sit in the driver's zone.
	ReadyForPickup

	// InDelivery orders were picked up and are on the road.
	InDelivery

	// Delivered is a final state with no further transitions allowed.
	Delivered

	// Cancelled is a final state with no further transitions allowed.
	Cancelled

	// DeliveryIssue marks a delivery the driver could not complete.
	DeliveryIssue
)

var statusNames = map[Status]string{
	CartInProgress:    "cart_in_progress",
	PendingValidation: "pending_validation",
	AwaitingValidator: "awaiting_validator",
	Validated:         "validated",
	ReadyForPickup:    "ready_for_pickup",
	InDelivery:        "in_delivery",
	Delivered:         "delivered",
	Cancelled:         "cancelled",
	DeliveryIssue:     "delivery_issue",
}

// String returns the persisted snake_case name, or "unknown".
func (s Status) String() string {
	if str, ok := statusNames[s]; ok {
		return str
	}
	return "unknown"
}

// ParseStatus is the inverse of String.
func ParseStatus(raw string) (Status, error) {
	for s, name := range statusNames {
		if name == raw {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", raw))
}

// Validate checks that the Status value is one of the defined states.
func (s Status) Validate() error {
	if _, ok := statusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsQueued reports whether orders in this status occupy a validation queue slot.
func (s Status) IsQueued() bool {
	return s == PendingValidation || s == AwaitingValidator
}

// IsSelfModifiable reports whether the owning client may still change the order.
func (s Status) IsSelfModifiable() bool {
	return s == CartInProgress || s.IsQueued()
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// Submit moves a cart into the validation queue.
//
// Valid transitions:
//   - CartInProgress -> PendingValidation (a validator was selected)
//   - CartInProgress -> AwaitingValidator (no validator available)
//
// Returns:
//   - the next status on a valid transition
//   - (Unknown, error) with a state conflict from any other status
func (s Status) Submit(hasValidator bool) (Status, error) {
	if s != CartInProgress {
		return Unknown, transitionError(s, "submit")
	}
	if hasValidator {
		return PendingValidation, nil
	}
	return AwaitingValidator, nil
}

// AssignValidator completes a deferred validator assignment.
//
// Valid transitions:
//   - AwaitingValidator -> PendingValidation
//   - PendingValidation -> PendingValidation (moved to another validator)
func (s Status) AssignValidator() (Status, error) {
	return s.transition("assign validator", PendingValidation, AwaitingValidator)
}

// MarkValidated transitions a queued order to Validated.
//
// Valid transitions:
//   - PendingValidation -> Validated
//   - AwaitingValidator -> Validated (a validator of the supermarket took it directly)
func (s Status) MarkValidated() (Status, error) {
	return s.transition("validate", Validated, PendingValidation, AwaitingValidator)
}

// MarkReadyForPickup transitions Validated -> ReadyForPickup when a driver accepts.
func (s Status) MarkReadyForPickup() (Status, error) {
	return s.transition("mark ready for pickup", ReadyForPickup, Validated)
}

// StartDelivery transitions ReadyForPickup -> InDelivery.
func (s Status) StartDelivery() (Status, error) {
	return s.transition("start delivery", InDelivery, ReadyForPickup)
}

func (s Status) Deliver() (Status, error) {
	return s.transition("deliver", Delivered, InDelivery)
}

func (s Status) ReportIssue() (Status, error) {
	return s.transition("report delivery issue", DeliveryIssue, InDelivery)
}

// Cancel transitions the status to Cancelled.
//
// Valid transitions:
//   - CartInProgress -> Cancelled
//   - PendingValidation -> Cancelled
//   - AwaitingValidator -> Cancelled
//
// Invalid transitions:
//   - Validated and later statuses (stock is already decremented)
//   - Delivered, Cancelled (terminal)
//
// Returns:
//   - (Cancelled, nil) on valid transition
//   - (Unknown, error) with a state conflict otherwise
func (s Status) Cancel() (Status, error) {
	return s.transition("cancel", Cancelled, CartInProgress, PendingValidation, AwaitingValidator)
}

func (s Status) transition(action string, to Status, from ...Status) (Status, error) {
	if !slices.Contains(from, s) {
		return Unknown, transitionError(s, action)
	}
	return to, nil
}

func transitionError(s Status, action string) error {
	return errs.NewStateConflictError("order", fmt.Sprintf("cannot %s an order in status %s", action, s))
}
