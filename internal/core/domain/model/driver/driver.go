package driver

import (
	"errors"
	"fmt"
	"strings"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	// ErrNameIsRequired is returned when attempting to create a driver without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrDriverIsNotConstructed is returned when using an improperly initialized Driver.
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver constructor")
)

// Driver is the aggregate root for a delivery driver. A driver starts offline with no
// known position and no earnings.
type Driver struct {
	// id uniquely identifies the driver
	id   kernel.UUID
	name string
	// location is the last reported position; nil until the first ping
	location     *kernel.GeoPoint
	status       Status
	discoverable bool
	// earnings is the sum of delivery fees of completed orders
	earnings decimal.Decimal
	version  int
	guard    guard.ConstructorGuard
}

func NewDriver(id kernel.UUID, name string) (*Driver, error) {
	d := &Driver{
		status:   Offline,
		earnings: decimal.Zero,
		guard:    guard.NewConstructorGuard(),
	}

	if err := errors.Join(d.setID(id), d.setName(name)); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDriver rebuilds a driver from persistence.
func RestoreDriver(
	id kernel.UUID,
	name string,
	location *kernel.GeoPoint,
	status Status,
	discoverable bool,
	earnings decimal.Decimal,
	version int,
) (*Driver, error) {
	d := &Driver{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		status.Validate(),
	); err != nil {
		return nil, err
	}
	if location != nil {
		if err := location.Validate(); err != nil {
			return nil, err
		}
	}
	if earnings.IsNegative() {
		return nil, errs.NewValueIsInvalidErrorWithCause("earnings", fmt.Errorf("%s is negative", earnings))
	}

	d.location = location
	d.status = status
	d.discoverable = discoverable
	d.earnings = earnings
	d.version = version
	return d, nil
}

func (d *Driver) IsEqual(other *Driver) bool {
	if other == nil {
		return false
	}
	return d.id.IsEqual(other.id)
}

func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) ID() kernel.UUID {
	return d.id
}

func (d *Driver) Name() string {
	return d.name
}

func (d *Driver) Location() *kernel.GeoPoint {
	return d.location
}

func (d *Driver) Status() Status {
	return d.status
}

func (d *Driver) IsDiscoverable() bool {
	return d.discoverable
}

func (d *Driver) Earnings() decimal.Decimal {
	return d.earnings
}

func (d *Driver) Version() int {
	return d.version
}

// AdvanceVersion is called by the persistence layer after a committed write.
func (d *Driver) AdvanceVersion() {
	d.version++
}

// IsAssignable reports whether fresh orders may be dispatched to the driver.
func (d *Driver) IsAssignable() bool {
	return d.status == Available && d.discoverable && d.location != nil
}

// CanHoldAssignment reports whether orders already offered to the driver stay with them.
// A driver waiting at a pickup keeps its offers; otherwise the driver must still be
// assignable.
//
// Returns:
//   - true while the driver may still accept the orders offered to it
//   - false once the offers must be released and dispatched again
func (d *Driver) CanHoldAssignment() bool {
	return d.status == PendingPickup || d.IsAssignable()
}

// UpdateLocation records a position ping.
func (d *Driver) UpdateLocation(point kernel.GeoPoint) error {
	if err := point.Validate(); err != nil {
		return err
	}
	d.location = &point
	return nil
}

func (d *Driver) SetDiscoverable(discoverable bool) {
	d.discoverable = discoverable
}

// GoOnline makes an offline driver available.
func (d *Driver) GoOnline() error {
	if d.status != Offline && d.status != Available {
		return d.conflict("go online")
	}
	d.status = Available
	return nil
}

// GoOffline is only possible between runs.
func (d *Driver) GoOffline() error {
	if d.status != Available && d.status != Offline {
		return d.conflict("go offline")
	}
	d.status = Offline
	return nil
}

// AcceptBatch moves the driver to pending_pickup. A driver already waiting at a
// pickup may accept more orders into the same zone.
func (d *Driver) AcceptBatch() error {
	if d.status != Available && d.status != PendingPickup {
		return d.conflict("accept orders")
	}
	d.status = PendingPickup
	return nil
}

// StartDelivery marks the driver busy once the first order of the run is picked up.
func (d *Driver) StartDelivery() error {
	if d.status != PendingPickup && d.status != Busy {
		return d.conflict("start delivery")
	}
	d.status = Busy
	return nil
}

// CompleteDelivery credits the delivery fee. The driver becomes available again
// once no order of the run remains in delivery.
func (d *Driver) CompleteDelivery(fee decimal.Decimal, remainingInDelivery int) error {
	if fee.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("fee", fmt.Errorf("%s is negative", fee))
	}
	if d.status != Busy {
		return d.conflict("complete delivery")
	}

	d.earnings = d.earnings.Add(fee)
	if remainingInDelivery == 0 {
		d.status = Available
	}
	return nil
}

// ReleaseDelivery ends an order without crediting it, used when a delivery fails.
func (d *Driver) ReleaseDelivery(remainingInDelivery int) error {
	if d.status != Busy {
		return d.conflict("release delivery")
	}
	if remainingInDelivery == 0 {
		d.status = Available
	}
	return nil
}

func (d *Driver) conflict(action string) error {
	return errs.NewStateConflictError("driver", fmt.Sprintf("cannot %s while %s", action, d.status))
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameIsRequired
	}
	d.name = name
	return nil
}
