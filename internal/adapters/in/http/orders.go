package http

import (
	"fmt"
	"net/http"
	"path"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/application/usecases/commands"
	"marketdelivery/internal/core/application/usecases/queries"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// maxProofSize bounds delivery proof uploads.
const maxProofSize = 10 << 20

func pathID(c echo.Context, name string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(c.Param(name))
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

// CreateOrder handles POST /api/v1/orders. A created order answers 201; stock issues
// answer 200 with nothing persisted.
func (s *Server) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	supermarketID, err := kernel.UUIDFromString(req.SupermarketID)
	if err != nil {
		return err
	}
	locationID, err := kernel.UUIDFromString(req.LocationID)
	if err != nil {
		return err
	}
	point, err := kernel.NewGeoPoint(req.Address.Lat, req.Address.Lng)
	if err != nil {
		return err
	}
	address, err := order.NewAddress(req.Address.Text, point)
	if err != nil {
		return err
	}
	items, err := itemsToDomain(req.Items)
	if err != nil {
		return err
	}

	cmd, err := commands.NewCreateOrderCommand(
		actorFrom(c), supermarketID, locationID, address, order.DeliveryType(req.DeliveryType), items,
	)
	if err != nil {
		return err
	}
	cmd = cmd.WithPaymentMethod(req.PaymentMethod).WithPriority(req.Priority)

	result, err := s.handlers.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	if result.OrderID == nil {
		return c.JSON(http.StatusOK, toResolutionResponse(nil, "", result.Resolution))
	}
	return c.JSON(http.StatusCreated, toResolutionResponse(result.OrderID, order.CartInProgress.String(), result.Resolution))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	query, err := queries.NewGetOrderQuery(actorFrom(c), orderID)
	if err != nil {
		return err
	}

	detail, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toOrderResponse(detail))
}

// UpdateOrderProducts handles PUT /api/v1/orders/:id/items.
func (s *Server) UpdateOrderProducts(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateItemsRequest
	if err = bind(c, &req); err != nil {
		return err
	}
	items, err := itemsToDomain(req.Items)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateOrderProductsCommand(actorFrom(c), orderID, items)
	if err != nil {
		return err
	}
	result, err := s.handlers.UpdateOrderProducts.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toResolutionResponse(&orderID, result.Status.String(), result.Resolution))
}

// SubmitOrder handles POST /api/v1/orders/:id/submit.
func (s *Server) SubmitOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req SubmitOrderRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewSubmitOrderCommand(actorFrom(c), orderID, req.PaymentMethod)
	if err != nil {
		return err
	}
	result, err := s.handlers.SubmitOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQueueResponse(result))
}

// ApplyLoyaltyPoints handles POST /api/v1/orders/:id/loyalty.
func (s *Server) ApplyLoyaltyPoints(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ApplyLoyaltyRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewApplyLoyaltyPointsCommand(actorFrom(c), orderID, req.Points)
	if err != nil {
		return err
	}
	breakdown, err := s.handlers.ApplyLoyaltyPoints.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toBreakdownResponse(breakdown))
}

// ValidateOrder handles POST /api/v1/orders/:id/validate.
func (s *Server) ValidateOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewValidateOrderCommand(actorFrom(c), orderID)
	if err != nil {
		return err
	}

	result, err := s.handlers.ValidateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ValidateOrderResponse{
		ValidationCode: result.ValidationCode,
		DriverID:       optionalString(result.DriverID),
	})
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewCancelOrderCommand(actorFrom(c), orderID)
	if err != nil {
		return err
	}

	result, err := s.handlers.CancelOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CancelOrderResponse{RefundedPoints: result.RefundedPoints})
}

// RetryValidatorAssignment handles POST /api/v1/orders/:id/validator.
func (s *Server) RetryValidatorAssignment(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewRetryValidatorAssignmentCommand(actorFrom(c), orderID)
	if err != nil {
		return err
	}

	result, err := s.handlers.RetryValidator.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toQueueResponse(result))
}

// AssignDriver handles POST /api/v1/orders/:id/driver.
func (s *Server) AssignDriver(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewAssignDriverCommand(actorFrom(c), orderID)
	if err != nil {
		return err
	}

	result, err := s.handlers.AssignDriver.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, AssignDriverResponse{
		DriverID: result.DriverID.String(),
		ZoneID:   optionalString(result.ZoneID),
	})
}

// AcceptOrder handles POST /api/v1/orders/:id/accept: the calling driver accepts the
// order and nearby validated orders are grouped into the same zone.
func (s *Server) AcceptOrder(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewGroupOrdersCommand(actorFrom(c), orderID)
	if err != nil {
		return err
	}

	result, err := s.handlers.GroupOrders.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(result.OrderIDs))
	for _, id := range result.OrderIDs {
		ids = append(ids, id.String())
	}
	return c.JSON(http.StatusOK, GroupOrdersResponse{ZoneID: result.ZoneID.String(), OrderIDs: ids})
}

// StartDelivery handles POST /api/v1/orders/:id/start.
func (s *Server) StartDelivery(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewStartDeliveryCommand(actorFrom(c), orderID)
	if err != nil {
		return err
	}

	if err = s.handlers.StartDelivery.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CompleteDelivery handles POST /api/v1/orders/:id/complete.
func (s *Server) CompleteDelivery(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req CompleteDeliveryRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCompleteDeliveryCommand(actorFrom(c), orderID, req.ValidationCode, req.ProofPhotoRef)
	if err != nil {
		return err
	}
	result, err := s.handlers.CompleteDelivery.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CompleteDeliveryResponse{PointsEarned: result.PointsEarned})
}

// ReportDeliveryIssue handles POST /api/v1/orders/:id/issue.
func (s *Server) ReportDeliveryIssue(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req ReportIssueRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewReportDeliveryIssueCommand(actorFrom(c), orderID, req.Note)
	if err != nil {
		return err
	}
	if err = s.handlers.ReportDeliveryIssue.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadProof handles POST /api/v1/orders/:id/proof, a multipart upload of the delivery
// photo. The returned ref is then sent with the completion request.
func (s *Server) UploadProof(c echo.Context) error {
	orderID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if !actorFrom(c).Has(authz.Driver) {
		return errs.NewNotAuthorizedError("upload delivery proof", "caller is not a driver")
	}

	header, err := c.FormFile("photo")
	if err != nil {
		return errs.NewValueIsRequiredErrorWithCause("photo", err)
	}
	if header.Size > maxProofSize {
		return errs.NewValueIsOutOfRangeError("photo size", header.Size, 1, maxProofSize)
	}
	contentType := header.Header.Get(echo.HeaderContentType)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return errs.NewValueIsInvalidErrorWithCause("photo", fmt.Errorf("content type %q is not a jpeg or png image", contentType))
	}

	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	key := path.Join("proofs", orderID.String(), kernel.NewUUID().String()+".jpg")
	ref, err := s.storage.UploadFile(c.Request().Context(), key, file, contentType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, UploadResponse{Ref: ref})
}
