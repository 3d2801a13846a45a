package http

import (
	"net/http"

	"marketdelivery/internal/core/application/usecases/commands"
	"marketdelivery/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// GetValidatorQueue handles GET /api/v1/supermarkets/:supermarketId/locations/:locationId/queue.
func (s *Server) GetValidatorQueue(c echo.Context) error {
	supermarketID, err := pathID(c, "supermarketId")
	if err != nil {
		return err
	}
	locationID, err := pathID(c, "locationId")
	if err != nil {
		return err
	}

	query, err := queries.NewGetValidatorQueueQuery(actorFrom(c), supermarketID, locationID)
	if err != nil {
		return err
	}
	entries, err := s.handlers.GetValidatorQueue.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]QueueEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, QueueEntryResponse{
			ID:            entry.ID.String(),
			ClientID:      entry.ClientID.String(),
			Status:        entry.Status,
			QueuePosition: entry.QueuePosition,
			ValidatorID:   optionalString(entry.ValidatorID),
			ItemCount:     entry.ItemCount,
			Total:         entry.Total,
			SubmittedAt:   entry.SubmittedAt,
		})
	}
	return c.JSON(http.StatusOK, response)
}

// Sweep handles POST /api/v1/dispatch/sweep, running one driver assignment pass on demand.
func (s *Server) Sweep(c echo.Context) error {
	var req SweepRequest
	if c.Request().ContentLength > 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}

	cmd, err := commands.NewAutoAssignDriversCommand(actorFrom(c), req.Limit)
	if err != nil {
		return err
	}
	result, err := s.handlers.AutoAssignDrivers.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, SweepResponse{
		Scanned:  result.Scanned,
		Assigned: result.Assigned,
		Failed:   result.Failed,
	})
}
