package http

import (
	"net/http"

	"marketdelivery/internal/core/application/usecases/commands"
	"marketdelivery/internal/core/application/usecases/queries"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// RegisterDriver handles POST /api/v1/drivers.
func (s *Server) RegisterDriver(c echo.Context) error {
	var req RegisterDriverRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	driverID, err := kernel.UUIDFromString(req.ID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRegisterDriverCommand(actorFrom(c), driverID, req.Name)
	if err != nil {
		return err
	}
	if err = s.handlers.RegisterDriver.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusCreated)
}

// GetAvailableDrivers handles GET /api/v1/drivers/available. With lat and lng set the
// drivers are sorted by distance and radius_km, when positive, bounds the search.
func (s *Server) GetAvailableDrivers(c echo.Context) error {
	var (
		lat, lng, radius float64
		near             *kernel.GeoPoint
	)
	err := echo.QueryParamsBinder(c).
		Float64("lat", &lat).
		Float64("lng", &lng).
		Float64("radius_km", &radius).
		BindError()
	if err != nil {
		return err
	}

	hasLat, hasLng := c.QueryParam("lat") != "", c.QueryParam("lng") != ""
	switch {
	case hasLat && hasLng:
		point, pointErr := kernel.NewGeoPoint(lat, lng)
		if pointErr != nil {
			return pointErr
		}
		near = &point
	case hasLat || hasLng:
		return errs.NewValueIsRequiredError("lat and lng")
	}

	query, err := queries.NewGetAvailableDriversQuery(actorFrom(c), near, radius)
	if err != nil {
		return err
	}
	drivers, err := s.handlers.GetAvailableDrivers.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]DriverResponse, 0, len(drivers))
	for _, d := range drivers {
		response = append(response, DriverResponse{
			ID:         d.ID.String(),
			Name:       d.Name,
			Lat:        d.Location.Lat(),
			Lng:        d.Location.Lng(),
			DistanceKm: d.DistanceKm,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateDriverPresence handles PUT /api/v1/drivers/me/presence for the calling driver.
func (s *Server) UpdateDriverPresence(c echo.Context) error {
	var req PresenceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	var location *kernel.GeoPoint
	if req.Lat != nil && req.Lng != nil {
		point, err := kernel.NewGeoPoint(*req.Lat, *req.Lng)
		if err != nil {
			return err
		}
		location = &point
	}

	cmd, err := commands.NewUpdateDriverPresenceCommand(actorFrom(c), location, req.Online, req.Discoverable)
	if err != nil {
		return err
	}
	status, err := s.handlers.UpdateDriverPresence.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, PresenceResponse{Status: status.String()})
}
