// Package driverrepo provides data transfer objects and mapping functions for driver persistence.
package driverrepo

import (
	"marketdelivery/internal/core/domain/model/driver"
	"marketdelivery/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DriverDTO represents the database structure for persisting driver aggregates.
// The position columns are null until the driver's first location ping.
type DriverDTO struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Lat          *float64
	Lng          *float64
	Status       string          `gorm:"type:varchar(32);not null;index"`
	Discoverable bool            `gorm:"not null"`
	Earnings     decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Version      int             `gorm:"not null"`
}

// TableName specifies the database table name for driver entities.
func (DriverDTO) TableName() string {
	return "drivers"
}

// fromDomain converts a driver aggregate to its database representation with the
// version the row will hold after the write.
func fromDomain(d *driver.Driver) DriverDTO {
	dto := DriverDTO{
		ID:           d.ID().Bytes(),
		Name:         d.Name(),
		Status:       d.Status().String(),
		Discoverable: d.IsDiscoverable(),
		Earnings:     d.Earnings(),
		Version:      d.Version() + 1,
	}
	if loc := d.Location(); loc != nil {
		lat, lng := loc.Lat(), loc.Lng()
		dto.Lat = &lat
		dto.Lng = &lng
	}
	return dto
}

func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := driver.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var location *kernel.GeoPoint
	if dto.Lat != nil && dto.Lng != nil {
		point, pointErr := kernel.NewGeoPoint(*dto.Lat, *dto.Lng)
		if pointErr != nil {
			return nil, pointErr
		}
		location = &point
	}

	return driver.RestoreDriver(id, dto.Name, location, status, dto.Discoverable, dto.Earnings, dto.Version)
}
