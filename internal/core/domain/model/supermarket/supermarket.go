// Package supermarket provides the Supermarket aggregate: its physical pickup
// locations and the managers bound to them.
package supermarket

import (
	"errors"
	"slices"
	"strings"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"
)

// Role is a capability a manager holds at a location.
type Role string

const (
	RoleOrderValidator Role = "order_validator"
	RoleStockManager   Role = "stock_manager"
)

var (
	ErrSupermarketIsNotConstructed = errors.New("Supermarket must be created via NewSupermarket constructor")
	ErrNameIsRequired              = errs.NewValueIsRequiredError("name")
)

// Location is a pickup site with its own stock and coordinates.
type Location struct {
	ID    kernel.UUID
	Name  string
	Point kernel.GeoPoint
}

// ManagerAssignment binds a manager to one location with a role set.
type ManagerAssignment struct {
	ManagerID  kernel.UUID
	LocationID kernel.UUID
	Roles      []Role
}

func (a ManagerAssignment) HasRole(role Role) bool {
	return slices.Contains(a.Roles, role)
}

type Supermarket struct {
	id          kernel.UUID
	name        string
	locations   []Location
	assignments []ManagerAssignment
	guard       guard.ConstructorGuard
}

func NewSupermarket(id kernel.UUID, name string, locations []Location, assignments []ManagerAssignment) (*Supermarket, error) {
	s := &Supermarket{guard: guard.NewConstructorGuard()}

	if err := errors.Join(id.Validate(), s.setName(name), s.setLocations(locations)); err != nil {
		return nil, err
	}
	s.id = id

	for _, a := range assignments {
		if err := s.AssignManager(a); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Supermarket) Validate() error {
	if s == nil {
		return ErrSupermarketIsNotConstructed
	}
	return s.guard.Validate(ErrSupermarketIsNotConstructed)
}

func (s *Supermarket) ID() kernel.UUID {
	return s.id
}

func (s *Supermarket) Name() string {
	return s.name
}

func (s *Supermarket) Locations() []Location {
	return slices.Clone(s.locations)
}

func (s *Supermarket) ManagerAssignments() []ManagerAssignment {
	return slices.Clone(s.assignments)
}

// Location looks a location up by id.
func (s *Supermarket) Location(id kernel.UUID) (Location, error) {
	for _, l := range s.locations {
		if l.ID.IsEqual(id) {
			return l, nil
		}
	}
	return Location{}, errs.NewObjectNotFoundError("location", id.String())
}

// OtherLocations returns every location except the given one, in declaration order.
func (s *Supermarket) OtherLocations(id kernel.UUID) []Location {
	out := make([]Location, 0, len(s.locations))
	for _, l := range s.locations {
		if !l.ID.IsEqual(id) {
			out = append(out, l)
		}
	}
	return out
}

// Validators lists managers holding the order validator role at the location,
// in assignment order.
func (s *Supermarket) Validators(locationID kernel.UUID) []kernel.UUID {
	var out []kernel.UUID
	for _, a := range s.assignments {
		if a.LocationID.IsEqual(locationID) && a.HasRole(RoleOrderValidator) {
			out = append(out, a.ManagerID)
		}
	}
	return out
}

// IsValidatorFor reports whether the manager validates orders at any location of this supermarket.
func (s *Supermarket) IsValidatorFor(managerID kernel.UUID) bool {
	_, ok := s.ValidatorLocation(managerID)
	return ok
}

// ValidatorLocation returns the location where the manager validates orders.
func (s *Supermarket) ValidatorLocation(managerID kernel.UUID) (Location, bool) {
	for _, a := range s.assignments {
		if a.ManagerID.IsEqual(managerID) && a.HasRole(RoleOrderValidator) {
			loc, err := s.Location(a.LocationID)
			return loc, err == nil
		}
	}
	return Location{}, false
}

func (s *Supermarket) AssignManager(a ManagerAssignment) error {
	if err := a.ManagerID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("manager id", err)
	}
	if _, err := s.Location(a.LocationID); err != nil {
		return err
	}
	s.assignments = append(s.assignments, a)
	return nil
}

func (s *Supermarket) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameIsRequired
	}
	s.name = name
	return nil
}

func (s *Supermarket) setLocations(locations []Location) error {
	if len(locations) == 0 {
		return errs.NewValueIsRequiredError("locations")
	}
	for _, l := range locations {
		if err := errors.Join(l.ID.Validate(), l.Point.Validate()); err != nil {
			return errs.NewValueIsInvalidErrorWithCause("location", err)
		}
	}
	s.locations = slices.Clone(locations)
	return nil
}
