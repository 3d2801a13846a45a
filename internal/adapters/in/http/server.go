// Package http exposes the fulfillment use cases over a JSON API built on echo.
// Every /api/v1 route requires a bearer token; the caller identity it carries is
// handed to the use cases, which authorize it against the policy table.
package http

import (
	"net/http"

	"marketdelivery/internal/adapters/out/assets"
	"marketdelivery/internal/core/application/usecases/commands"
	"marketdelivery/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// Handlers groups the use case handlers served over HTTP.
type Handlers struct {
	// Command handlers
	CreateOrder          commands.CreateOrderCommandHandler
	UpdateOrderProducts  commands.UpdateOrderProductsCommandHandler
	SubmitOrder          commands.SubmitOrderCommandHandler
	ApplyLoyaltyPoints   commands.ApplyLoyaltyPointsCommandHandler
	ValidateOrder        commands.ValidateOrderCommandHandler
	CancelOrder          commands.CancelOrderCommandHandler
	RetryValidator       commands.RetryValidatorAssignmentCommandHandler
	AssignDriver         commands.AssignDriverCommandHandler
	GroupOrders          commands.GroupOrdersCommandHandler
	StartDelivery        commands.StartDeliveryCommandHandler
	CompleteDelivery     commands.CompleteDeliveryCommandHandler
	ReportDeliveryIssue  commands.ReportDeliveryIssueCommandHandler
	RegisterDriver       commands.RegisterDriverCommandHandler
	UpdateDriverPresence commands.UpdateDriverPresenceCommandHandler
	AutoAssignDrivers    commands.AutoAssignDriversCommandHandler

	// Query handlers
	GetOrder            queries.GetOrderQueryHandler
	GetValidatorQueue   queries.GetValidatorQueueQueryHandler
	GetAvailableDrivers queries.GetAvailableDriversQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers Handlers
	storage  *assets.LocalStorage
	secret   []byte
}

// NewServer creates a new HTTP server. storage may be nil, in which case the upload and
// asset download routes are not registered.
func NewServer(handlers Handlers, storage *assets.LocalStorage, jwtSecret []byte) *Server {
	return &Server{
		handlers: handlers,
		storage:  storage,
		secret:   jwtSecret,
	}
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if s.storage != nil {
		e.GET("/assets/*", s.GetAsset)
	}

	api := e.Group("/api/v1", Authenticate(s.secret))

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/:id", s.GetOrder)
	api.PUT("/orders/:id/items", s.UpdateOrderProducts)
	api.POST("/orders/:id/submit", s.SubmitOrder)
	api.POST("/orders/:id/loyalty", s.ApplyLoyaltyPoints)
	api.POST("/orders/:id/validate", s.ValidateOrder)
	api.POST("/orders/:id/cancel", s.CancelOrder)
	api.POST("/orders/:id/validator", s.RetryValidatorAssignment)
	api.POST("/orders/:id/driver", s.AssignDriver)
	api.POST("/orders/:id/accept", s.AcceptOrder)
	api.POST("/orders/:id/start", s.StartDelivery)
	api.POST("/orders/:id/complete", s.CompleteDelivery)
	api.POST("/orders/:id/issue", s.ReportDeliveryIssue)
	if s.storage != nil {
		api.POST("/orders/:id/proof", s.UploadProof)
	}

	api.GET("/supermarkets/:supermarketId/locations/:locationId/queue", s.GetValidatorQueue)

	api.POST("/drivers", s.RegisterDriver)
	api.GET("/drivers/available", s.GetAvailableDrivers)
	api.PUT("/drivers/me/presence", s.UpdateDriverPresence)

	api.POST("/dispatch/sweep", s.Sweep)
}

// bind decodes and validates the request body into req.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}
