package order

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")
	// ErrNoItems is returned when an order is priced or submitted without accepted lines.
	ErrNoItems = errs.NewValueIsRequiredError("items")
	// ErrPaymentMethodIsRequired is returned when submitting without a payment method.
	ErrPaymentMethodIsRequired = errs.NewValueIsRequiredError("payment method")
)

// Order is the aggregate root of the fulfillment flow. It owns its line items and
// monetary breakdown and holds weak references to the client, supermarket, validator,
// driver and zone.
//
// Order follows these invariants:
//   - Total = Subtotal + DeliveryFee + AdditionalFees + ServiceFee - LoyaltyReduction, never negative
//   - LoyaltyReduction = loyalty points used × LoyaltyPointValue
//   - queue position is non-zero only while the status is queued
//   - status changes go through Status transitions
type Order struct {
	id            kernel.UUID
	clientID      kernel.UUID
	supermarketID kernel.UUID
	locationID    kernel.UUID

	items        []LineItem
	promotions   []AppliedPromotion
	address      Address
	deliveryType DeliveryType
	totalWeight  decimal.Decimal
	breakdown    Breakdown
	loyaltyUsed  int

	paymentMethod string
	priority      int
	queuePosition int

	validatorID *kernel.UUID
	driverID    *kernel.UUID
	zoneID      *kernel.UUID

	status         Status
	validationCode string
	issueNote      string
	proofPhotoRef  string

	createdAt   time.Time
	updatedAt   time.Time
	submittedAt *time.Time
	validatedAt *time.Time
	acceptedAt  *time.Time
	pickedUpAt  *time.Time
	deliveredAt *time.Time
	cancelledAt *time.Time

	version int

	guard guard.ConstructorGuard
}

// NewOrder creates an empty cart. Lines and pricing are attached with SetProducts once
// the stock resolver has accepted every item.
//
// Example:
//
//	address, _ := order.NewAddress("12 Main st", kernel.MustGeoPoint(48.85, 2.35))
//	o, err := order.NewOrder(kernel.NewUUID(), clientID, supermarketID, locationID, address, order.Standard, time.Now())
func NewOrder(
	id, clientID, supermarketID, locationID kernel.UUID,
	address Address,
	deliveryType DeliveryType,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:      CartInProgress,
		totalWeight: decimal.Zero,
		createdAt:   now,
		updatedAt:   now,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setIDs(id, clientID, supermarketID, locationID),
		o.setAddress(address),
		deliveryType.Validate(),
	); err != nil {
		return nil, err
	}
	o.deliveryType = deliveryType

	return o, nil
}

// Snapshot is the full persisted state of an order, used by repositories to rebuild the aggregate.
type Snapshot struct {
	ID             kernel.UUID
	ClientID       kernel.UUID
	SupermarketID  kernel.UUID
	LocationID     kernel.UUID
	Items          []LineItem
	Promotions     []AppliedPromotion
	Address        Address
	DeliveryType   DeliveryType
	TotalWeight    decimal.Decimal
	Breakdown      Breakdown
	LoyaltyUsed    int
	PaymentMethod  string
	Priority       int
	QueuePosition  int
	ValidatorID    *kernel.UUID
	DriverID       *kernel.UUID
	ZoneID         *kernel.UUID
	Status         Status
	ValidationCode string
	IssueNote      string
	ProofPhotoRef  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SubmittedAt    *time.Time
	ValidatedAt    *time.Time
	AcceptedAt     *time.Time
	PickedUpAt     *time.Time
	DeliveredAt    *time.Time
	CancelledAt    *time.Time
	Version        int
}

// RestoreOrder rebuilds an order from persistence.
//
// The stored breakdown is not trusted as a whole: the loyalty reduction is derived
// again from the points used and the total is recomputed, so a corrupted row cannot
// break either breakdown invariant.
//
// Parameters:
//   - s: the persisted state, as produced by Snapshot
//
// Returns:
//   - *Order: the rebuilt aggregate carrying the stored version
//   - error: validation error for missing identifiers, an unknown status or delivery
//     type, or a breakdown whose total would be negative
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		o.setIDs(s.ID, s.ClientID, s.SupermarketID, s.LocationID),
		o.setAddress(s.Address),
		s.DeliveryType.Validate(),
		s.Status.Validate(),
	); err != nil {
		return nil, err
	}

	breakdown, err := newBreakdown(s.Breakdown.pricing(s.TotalWeight), LoyaltyReductionFor(s.LoyaltyUsed))
	if err != nil {
		return nil, err
	}

	o.items = slices.Clone(s.Items)
	o.promotions = slices.Clone(s.Promotions)
	o.deliveryType = s.DeliveryType
	o.totalWeight = s.TotalWeight
	o.breakdown = breakdown
	o.loyaltyUsed = s.LoyaltyUsed
	o.paymentMethod = s.PaymentMethod
	o.priority = s.Priority
	o.queuePosition = s.QueuePosition
	o.validatorID = s.ValidatorID
	o.driverID = s.DriverID
	o.zoneID = s.ZoneID
	o.status = s.Status
	o.validationCode = s.ValidationCode
	o.issueNote = s.IssueNote
	o.proofPhotoRef = s.ProofPhotoRef
	o.createdAt = s.CreatedAt
	o.updatedAt = s.UpdatedAt
	o.submittedAt = s.SubmittedAt
	o.validatedAt = s.ValidatedAt
	o.acceptedAt = s.AcceptedAt
	o.pickedUpAt = s.PickedUpAt
	o.deliveredAt = s.DeliveredAt
	o.cancelledAt = s.CancelledAt
	o.version = s.Version

	return o, nil
}

// Snapshot exports the full state for persistence.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:             o.id,
		ClientID:       o.clientID,
		SupermarketID:  o.supermarketID,
		LocationID:     o.locationID,
		Items:          o.Items(),
		Promotions:     o.Promotions(),
		Address:        o.address,
		DeliveryType:   o.deliveryType,
		TotalWeight:    o.totalWeight,
		Breakdown:      o.breakdown,
		LoyaltyUsed:    o.loyaltyUsed,
		PaymentMethod:  o.paymentMethod,
		Priority:       o.priority,
		QueuePosition:  o.queuePosition,
		ValidatorID:    o.validatorID,
		DriverID:       o.driverID,
		ZoneID:         o.zoneID,
		Status:         o.status,
		ValidationCode: o.validationCode,
		IssueNote:      o.issueNote,
		ProofPhotoRef:  o.proofPhotoRef,
		CreatedAt:      o.createdAt,
		UpdatedAt:      o.updatedAt,
		SubmittedAt:    o.submittedAt,
		ValidatedAt:    o.validatedAt,
		AcceptedAt:     o.acceptedAt,
		PickedUpAt:     o.pickedUpAt,
		DeliveredAt:    o.deliveredAt,
		CancelledAt:    o.cancelledAt,
		Version:        o.version,
	}
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

func (o *Order) ClientID() kernel.UUID {
	return o.clientID
}

func (o *Order) SupermarketID() kernel.UUID {
	return o.supermarketID
}

func (o *Order) LocationID() kernel.UUID {
	return o.locationID
}

func (o *Order) Address() Address {
	return o.address
}

func (o *Order) DeliveryType() DeliveryType {
	return o.deliveryType
}

func (o *Order) TotalWeight() decimal.Decimal {
	return o.totalWeight
}

func (o *Order) Breakdown() Breakdown {
	return o.breakdown
}

// Total returns the amount charged to the client after the loyalty reduction.
func (o *Order) Total() decimal.Decimal {
	return o.breakdown.Total
}

func (o *Order) LoyaltyPointsUsed() int {
	return o.loyaltyUsed
}

func (o *Order) PaymentMethod() string {
	return o.paymentMethod
}

func (o *Order) Priority() int {
	return o.priority
}

// QueuePosition returns the 1-based validation queue slot, or 0 outside the queue.
func (o *Order) QueuePosition() int {
	return o.queuePosition
}

func (o *Order) ValidatorID() *kernel.UUID {
	return o.validatorID
}

// DriverID returns the driver the order is offered to or carried by.
// Returns nil if no driver is assigned.
func (o *Order) DriverID() *kernel.UUID {
	return o.driverID
}

// ZoneID returns the zone the order rides in. It is set on acceptance, or earlier
// when dispatch reuses the zone of a driver waiting at the pickup.
func (o *Order) ZoneID() *kernel.UUID {
	return o.zoneID
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

func (o *Order) ValidationCode() string {
	return o.validationCode
}

func (o *Order) IssueNote() string {
	return o.issueNote
}

func (o *Order) ProofPhotoRef() string {
	return o.proofPhotoRef
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

func (o *Order) SubmittedAt() *time.Time {
	return o.submittedAt
}

func (o *Order) ValidatedAt() *time.Time {
	return o.validatedAt
}

func (o *Order) AcceptedAt() *time.Time {
	return o.acceptedAt
}

func (o *Order) Version() int {
	return o.version
}

func (o *Order) IsQueued() bool {
	return o.status.IsQueued()
}

func (o *Order) IsSelfModifiable() bool {
	return o.status.IsSelfModifiable()
}

func (o *Order) IsOwnedBy(clientID kernel.UUID) bool {
	return o.clientID.IsEqual(clientID)
}

func (o *Order) Items() []LineItem {
	return slices.Clone(o.items)
}

func (o *Order) Promotions() []AppliedPromotion {
	return slices.Clone(o.promotions)
}

// IsPriced reports whether a successful resolution has been attached.
func (o *Order) IsPriced() bool {
	return len(o.items) > 0
}

// AdvanceVersion is called by the persistence layer after a committed write.
func (o *Order) AdvanceVersion() {
	o.version++
}

// SetProducts replaces the lines with an accepted resolution.
//
// This method enforces the following business rules:
//   - The order must still be modifiable by its client (cart or queued)
//   - At least one line is required and every line must be valid
//   - Loyalty points already applied stay applied, so the new total must still cover them
//
// Parameters:
//   - items: the accepted lines with their unit prices
//   - pricing: subtotal, weight and fees computed for the lines
//   - promotions: promotions applied while pricing
//   - now: the modification time
//
// Returns:
//   - nil when the lines and breakdown were replaced
//   - error: state conflict outside the modifiable statuses, ErrNoItems, or a validation
//     error for a bad line or a negative total
func (o *Order) SetProducts(items []LineItem, pricing Pricing, promotions []AppliedPromotion, now time.Time) error {
	if !o.status.IsSelfModifiable() {
		return errs.NewStateConflictError("order", fmt.Sprintf("products cannot change in status %s", o.status))
	}
	if len(items) == 0 {
		return ErrNoItems
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	breakdown, err := newBreakdown(pricing, o.breakdown.LoyaltyReduction)
	if err != nil {
		return err
	}

	o.items = slices.Clone(items)
	o.promotions = slices.Clone(promotions)
	o.totalWeight = pricing.TotalWeight
	o.breakdown = breakdown
	o.updatedAt = now
	return nil
}

func (o *Order) SetPaymentMethod(method string) {
	o.paymentMethod = strings.TrimSpace(method)
}

func (o *Order) SetPriority(priority int) {
	o.priority = priority
}

// Submit moves the cart into the validation queue.
//
// This method enforces the following business rules:
//   - The order must be priced and carry a payment method
//   - Only a cart may be submitted
//   - Without a validator the order waits in AwaitingValidator, otherwise it is
//     PendingValidation
//
// Parameters:
//   - validatorID: the selected validator, or nil when none could be selected
//   - now: the submission time, also used for queue ordering
//
// Returns:
//   - nil on success
//   - error: ErrNoItems, ErrPaymentMethodIsRequired, or a state conflict when the order
//     is no longer a cart
func (o *Order) Submit(validatorID *kernel.UUID, now time.Time) error {
	if !o.IsPriced() {
		return ErrNoItems
	}
	if o.paymentMethod == "" {
		return ErrPaymentMethodIsRequired
	}

	next, err := o.status.Submit(validatorID != nil)
	if err != nil {
		return err
	}

	o.validatorID = validatorID
	o.submittedAt = &now
	o.setStatus(next, now)
	return nil
}

// AssignValidator completes a deferred validator assignment. An order already pending
// validation may be moved to another validator; it stays in PendingValidation.
//
// Returns:
//   - nil on success
//   - error if validatorID is invalid or the order is not queued
func (o *Order) AssignValidator(validatorID kernel.UUID, now time.Time) error {
	if err := validatorID.Validate(); err != nil {
		return err
	}
	next, err := o.status.AssignValidator()
	if err != nil {
		return err
	}

	o.validatorID = &validatorID
	o.setStatus(next, now)
	return nil
}

// SetQueuePosition stores a recomputed queue position. Non-queued orders always hold zero.
func (o *Order) SetQueuePosition(position int) error {
	if !o.status.IsQueued() {
		if position != 0 {
			return errs.NewValueIsOutOfRangeError("queue position", position, 0, 0)
		}
		o.queuePosition = 0
		return nil
	}
	if position < 1 {
		return errs.NewValueIsOutOfRangeError("queue position", position, 1, "queue length")
	}
	o.queuePosition = position
	return nil
}

// CanApplyLoyalty checks whether points may be redeemed on this order without changing it.
func (o *Order) CanApplyLoyalty(points int) error {
	_, err := o.loyaltyBreakdown(points)
	return err
}

// ApplyLoyalty records redeemed points and recomputes the total.
//
// This method enforces the following business rules:
//   - The order must be priced and still modifiable by its client
//   - Points are applied once per order
//   - The reduction is points × LoyaltyPointValue and may not push the total below zero
//
// Parameters:
//   - points: the number of points redeemed, at least 1
//   - now: the modification time
//
// Returns:
//   - nil on success
//   - error: state conflict when points are already applied or the status forbids it,
//     ErrNoItems, or an out of range error for points or the resulting total
func (o *Order) ApplyLoyalty(points int, now time.Time) error {
	breakdown, err := o.loyaltyBreakdown(points)
	if err != nil {
		return err
	}

	o.loyaltyUsed = points
	o.breakdown = breakdown
	o.updatedAt = now
	return nil
}

func (o *Order) loyaltyBreakdown(points int) (Breakdown, error) {
	if !o.status.IsSelfModifiable() {
		return Breakdown{}, errs.NewStateConflictError("order", fmt.Sprintf("loyalty cannot be applied in status %s", o.status))
	}
	if !o.IsPriced() {
		return Breakdown{}, ErrNoItems
	}
	if o.loyaltyUsed > 0 {
		return Breakdown{}, errs.NewStateConflictError("order", "loyalty points are already applied")
	}
	if points < 1 {
		return Breakdown{}, errs.NewValueIsOutOfRangeError("points", points, 1, "balance")
	}
	return newBreakdown(o.breakdown.pricing(o.totalWeight), LoyaltyReductionFor(points))
}

// ClearLoyalty drops redeemed points and returns how many were cleared.
func (o *Order) ClearLoyalty(now time.Time) int {
	cleared := o.loyaltyUsed
	if cleared == 0 {
		return 0
	}

	// Removing a reduction only raises the total, so this cannot fail.
	breakdown, _ := newBreakdown(o.breakdown.pricing(o.totalWeight), decimal.Zero)
	o.breakdown = breakdown
	o.loyaltyUsed = 0
	o.updatedAt = now
	return cleared
}

// LoyaltyPointsEarned is one point per LoyaltyEarnUnit of the final total, rounded down.
func (o *Order) LoyaltyPointsEarned() int {
	return int(o.breakdown.Total.Div(LoyaltyEarnUnit).Floor().IntPart())
}

// MarkValidated records the validation by validatorID with the client-facing delivery code.
//
// This method enforces the following business rules:
//   - The order must be queued (PendingValidation or AwaitingValidator)
//   - The code must be six digits
//   - The queue position drops to zero
//
// Stock must already be decremented by the caller in the same unit of work.
//
// Returns:
//   - nil on success
//   - error: validation error for the validator id or code, state conflict otherwise
func (o *Order) MarkValidated(validatorID kernel.UUID, code string, now time.Time) error {
	if err := validatorID.Validate(); err != nil {
		return err
	}
	if err := validateCode(code); err != nil {
		return err
	}
	next, err := o.status.MarkValidated()
	if err != nil {
		return err
	}

	o.validatorID = &validatorID
	o.validationCode = code
	o.validatedAt = &now
	o.setStatus(next, now)
	return nil
}

// AssignDriver offers the order to a driver.
//
// This method enforces the following business rules:
//   - Only validated standard orders are dispatched
//   - The status is left unchanged; the driver moves the order forward by accepting it
//   - zoneID is recorded only when dispatch reused the zone of a driver at the pickup
//
// Parameters:
//   - driverID: the chosen driver
//   - zoneID: the reused zone, or nil for a fresh assignment
//   - now: the modification time
//
// Returns:
//   - nil on success
//   - error: state conflict for a non-dispatchable order, validation error for driverID
func (o *Order) AssignDriver(driverID kernel.UUID, zoneID *kernel.UUID, now time.Time) error {
	if err := o.checkDispatchable(); err != nil {
		return err
	}
	if err := driverID.Validate(); err != nil {
		return err
	}

	o.driverID = &driverID
	if zoneID != nil {
		o.zoneID = zoneID
	}
	o.updatedAt = now
	return nil
}

// CanJoinBatchOf reports whether a driver may take this order in a batch:
// the order is validated and either driver-less or already on that driver.
func (o *Order) CanJoinBatchOf(driverID kernel.UUID) bool {
	if o.checkDispatchable() != nil {
		return false
	}
	return o.driverID == nil || o.driverID.IsEqual(driverID)
}

// ReleaseDriver withdraws an offer the driver has not accepted, so the order can be
// dispatched again.
//
// This method enforces the following business rules:
//   - The order must be validated, which means the driver never accepted it
//   - A driver must be assigned
//   - A zone recorded by dispatch is cleared together with the driver
//
// Returns:
//   - kernel.UUID: the driver the order was offered to
//   - error: state conflict when the order is not dispatchable or holds no driver
func (o *Order) ReleaseDriver(now time.Time) (kernel.UUID, error) {
	if err := o.checkDispatchable(); err != nil {
		return kernel.UUID{}, err
	}
	if o.driverID == nil {
		return kernel.UUID{}, errs.NewStateConflictError("order", "no driver to release")
	}

	released := *o.driverID
	o.driverID = nil
	o.zoneID = nil
	o.updatedAt = now
	return released, nil
}

// MarkReadyForPickup attaches the order to the driver's zone and records the acceptance.
//
// This method enforces the following business rules:
//   - The order must be a validated standard order
//   - An order offered to another driver cannot join this driver's batch
//   - The zone is overwritten with the accepting driver's zone
//
// Returns:
//   - nil on success
//   - error: validation error for the ids, state conflict otherwise
func (o *Order) MarkReadyForPickup(driverID, zoneID kernel.UUID, now time.Time) error {
	if err := errors.Join(driverID.Validate(), zoneID.Validate()); err != nil {
		return err
	}
	if !o.CanJoinBatchOf(driverID) {
		if err := o.checkDispatchable(); err != nil {
			return err
		}
		return errs.NewStateConflictError("order", "order is assigned to another driver")
	}
	next, err := o.status.MarkReadyForPickup()
	if err != nil {
		return err
	}

	o.driverID = &driverID
	o.zoneID = &zoneID
	o.acceptedAt = &now
	o.setStatus(next, now)
	return nil
}

// StartDelivery records the pickup by the assigned driver.
//
// Returns:
//   - nil on success
//   - error: not authorized when driverID is not the assigned driver, state conflict
//     unless the order is ready for pickup
func (o *Order) StartDelivery(driverID kernel.UUID, now time.Time) error {
	if err := o.checkAssignedDriver(driverID, "start delivery"); err != nil {
		return err
	}
	next, err := o.status.StartDelivery()
	if err != nil {
		return err
	}

	o.pickedUpAt = &now
	o.setStatus(next, now)
	return nil
}

// Deliver completes the order.
//
// This method enforces the following business rules:
//   - Only the assigned driver may deliver
//   - The order must be in delivery
//   - The driver must present the client's validation code
//   - Delivered is terminal
//
// Parameters:
//   - driverID: the delivering driver
//   - code: the code handed over by the client
//   - proofPhotoRef: storage reference of the proof photo, may be empty
//   - now: the delivery time
//
// Returns:
//   - nil on success
//   - error: not authorized, state conflict, or an invalid value error for a wrong code
func (o *Order) Deliver(driverID kernel.UUID, code, proofPhotoRef string, now time.Time) error {
	if err := o.checkAssignedDriver(driverID, "deliver"); err != nil {
		return err
	}
	next, err := o.status.Deliver()
	if err != nil {
		return err
	}
	if code != o.validationCode {
		return errs.NewValueIsInvalidErrorWithCause("validation code", errors.New("code does not match"))
	}

	o.proofPhotoRef = proofPhotoRef
	o.deliveredAt = &now
	o.setStatus(next, now)
	return nil
}

// ReportIssue moves an in-flight delivery to the delivery issue branch. A non-blank
// note is required and only the assigned driver may report.
//
// Returns:
//   - nil on success
//   - error: value required for a blank note, not authorized, or state conflict unless
//     the order is in delivery
func (o *Order) ReportIssue(driverID kernel.UUID, note string, now time.Time) error {
	if strings.TrimSpace(note) == "" {
		return errs.NewValueIsRequiredError("note")
	}
	if err := o.checkAssignedDriver(driverID, "report an issue"); err != nil {
		return err
	}
	next, err := o.status.ReportIssue()
	if err != nil {
		return err
	}

	o.issueNote = note
	o.setStatus(next, now)
	return nil
}

// Cancel moves the order to Cancelled.
//
// This method enforces the following business rules:
//   - Only carts and queued orders can be cancelled
//   - The queue position drops to zero
//   - Cancelled is terminal
//
// Loyalty refunds are the caller's concern and must be cleared with ClearLoyalty in
// the same unit of work.
//
// Returns:
//   - nil on success
//   - error: state conflict for any other status
func (o *Order) Cancel(now time.Time) error {
	next, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.cancelledAt = &now
	o.setStatus(next, now)
	return nil
}

func (o *Order) setStatus(next Status, now time.Time) {
	o.status = next
	o.updatedAt = now
	if !next.IsQueued() {
		o.queuePosition = 0
	}
}

func (o *Order) checkDispatchable() error {
	if !o.deliveryType.IsDispatchable() {
		return errs.NewStateConflictError("order", fmt.Sprintf("%s orders are not dispatched to drivers", o.deliveryType))
	}
	if o.status != Validated {
		return errs.NewStateConflictError("order", fmt.Sprintf("driver assignment requires validated status, got %s", o.status))
	}
	return nil
}

func (o *Order) checkAssignedDriver(driverID kernel.UUID, action string) error {
	if o.driverID == nil || !o.driverID.IsEqual(driverID) {
		return errs.NewNotAuthorizedError(action, "driver is not assigned to the order")
	}
	return nil
}

func (o *Order) setIDs(id, clientID, supermarketID, locationID kernel.UUID) error {
	var err error
	for name, value := range map[string]kernel.UUID{
		"id":             id,
		"client id":      clientID,
		"supermarket id": supermarketID,
		"location id":    locationID,
	} {
		if vErr := value.Validate(); vErr != nil {
			err = errors.Join(err, errs.NewValueIsRequiredErrorWithCause(name, vErr))
		}
	}
	if err != nil {
		return err
	}

	o.id = id
	o.clientID = clientID
	o.supermarketID = supermarketID
	o.locationID = locationID
	return nil
}

func (o *Order) setAddress(address Address) error {
	if err := address.Point.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("address", err)
	}
	o.address = address
	return nil
}

// LoyaltyReductionFor converts redeemed points into money.
func LoyaltyReductionFor(points int) decimal.Decimal {
	return LoyaltyPointValue.Mul(decimal.NewFromInt(int64(points)))
}
