// Package supermarketrepo persists supermarkets with their pickup locations and
// manager assignments.
package supermarketrepo

import (
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/supermarket"

	"github.com/google/uuid"
)

// SupermarketDTO represents the database structure for persisting supermarket aggregates.
type SupermarketDTO struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name        string          `gorm:"type:varchar(255);not null"`
	Locations   []LocationDTO   `gorm:"foreignKey:SupermarketID;constraint:OnDelete:CASCADE"`
	Assignments []AssignmentDTO `gorm:"foreignKey:SupermarketID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for supermarket entities.
func (SupermarketDTO) TableName() string {
	return "supermarkets"
}

// LocationDTO is a pickup location. Position keeps the declaration order.
type LocationDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupermarketID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"type:varchar(255)"`
	Lat           float64   `gorm:"not null"`
	Lng           float64   `gorm:"not null"`
	Position      int       `gorm:"not null"`
}

// TableName specifies the database table name for pickup locations.
func (LocationDTO) TableName() string {
	return "supermarket_locations"
}

// AssignmentDTO binds a manager to a location. Position keeps the assignment order.
type AssignmentDTO struct {
	SupermarketID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ManagerID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	LocationID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Roles         []string  `gorm:"type:jsonb;serializer:json;not null"`
	Position      int       `gorm:"not null"`
}

// TableName specifies the database table name for manager assignments.
func (AssignmentDTO) TableName() string {
	return "manager_assignments"
}

func fromDomain(s *supermarket.Supermarket) SupermarketDTO {
	supermarketID := s.ID().Bytes()

	locations := make([]LocationDTO, 0, len(s.Locations()))
	for i, l := range s.Locations() {
		locations = append(locations, LocationDTO{
			ID:            l.ID.Bytes(),
			SupermarketID: supermarketID,
			Name:          l.Name,
			Lat:           l.Point.Lat(),
			Lng:           l.Point.Lng(),
			Position:      i,
		})
	}

	assignments := make([]AssignmentDTO, 0, len(s.ManagerAssignments()))
	for i, a := range s.ManagerAssignments() {
		roles := make([]string, 0, len(a.Roles))
		for _, role := range a.Roles {
			roles = append(roles, string(role))
		}
		assignments = append(assignments, AssignmentDTO{
			SupermarketID: supermarketID,
			ManagerID:     a.ManagerID.Bytes(),
			LocationID:    a.LocationID.Bytes(),
			Roles:         roles,
			Position:      i,
		})
	}

	return SupermarketDTO{
		ID:          supermarketID,
		Name:        s.Name(),
		Locations:   locations,
		Assignments: assignments,
	}
}

// toDomain expects Locations and Assignments already sorted by position.
func toDomain(dto SupermarketDTO) (*supermarket.Supermarket, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	locations := make([]supermarket.Location, 0, len(dto.Locations))
	for _, l := range dto.Locations {
		locationID, locErr := kernel.UUIDFromBytes(l.ID[:])
		if locErr != nil {
			return nil, locErr
		}
		point, locErr := kernel.NewGeoPoint(l.Lat, l.Lng)
		if locErr != nil {
			return nil, locErr
		}
		locations = append(locations, supermarket.Location{ID: locationID, Name: l.Name, Point: point})
	}

	assignments := make([]supermarket.ManagerAssignment, 0, len(dto.Assignments))
	for _, a := range dto.Assignments {
		managerID, assignErr := kernel.UUIDFromBytes(a.ManagerID[:])
		if assignErr != nil {
			return nil, assignErr
		}
		locationID, assignErr := kernel.UUIDFromBytes(a.LocationID[:])
		if assignErr != nil {
			return nil, assignErr
		}
		roles := make([]supermarket.Role, 0, len(a.Roles))
		for _, role := range a.Roles {
			roles = append(roles, supermarket.Role(role))
		}
		assignments = append(assignments, supermarket.ManagerAssignment{
			ManagerID:  managerID,
			LocationID: locationID,
			Roles:      roles,
		})
	}

	return supermarket.NewSupermarket(id, dto.Name, locations, assignments)
}
