package http

import (
	"time"

	"marketdelivery/internal/core/application/usecases/commands"
	"marketdelivery/internal/core/application/usecases/queries"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/services"

	"github.com/shopspring/decimal"
)

// Requests.

type AddressRequest struct {
	Text string  `json:"text" validate:"required,max=500"`
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng  float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type ItemRequest struct {
	ProductID           string  `json:"product_id" validate:"required,uuid"`
	Quantity            int     `json:"quantity" validate:"required,min=1"`
	AlternateLocationID *string `json:"alternate_location_id,omitempty" validate:"omitempty,uuid"`
	Comment             string  `json:"comment,omitempty" validate:"max=500"`
	PhotoRef            string  `json:"photo_ref,omitempty" validate:"max=500"`
}

type CreateOrderRequest struct {
	SupermarketID string         `json:"supermarket_id" validate:"required,uuid"`
	LocationID    string         `json:"location_id" validate:"required,uuid"`
	Address       AddressRequest `json:"address"`
	DeliveryType  string         `json:"delivery_type" validate:"required,oneof=standard evening store_pickup"`
	Items         []ItemRequest  `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string         `json:"payment_method,omitempty" validate:"max=64"`
	Priority      int            `json:"priority,omitempty" validate:"gte=0"`
}

type UpdateItemsRequest struct {
	Items []ItemRequest `json:"items" validate:"required,min=1,dive"`
}

type SubmitOrderRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,max=64"`
}

type ApplyLoyaltyRequest struct {
	Points int `json:"points" validate:"required,min=1"`
}

type CompleteDeliveryRequest struct {
	ValidationCode string `json:"validation_code" validate:"required,len=6,numeric"`
	ProofPhotoRef  string `json:"proof_photo_ref,omitempty" validate:"max=500"`
}

type ReportIssueRequest struct {
	Note string `json:"note" validate:"required,max=1000"`
}

type RegisterDriverRequest struct {
	ID   string `json:"id" validate:"required,uuid"`
	Name string `json:"name" validate:"required,max=255"`
}

// PresenceRequest updates position and availability toggles; omitted fields are kept.
type PresenceRequest struct {
	Lat          *float64 `json:"lat,omitempty" validate:"required_with=Lng,omitempty,gte=-90,lte=90"`
	Lng          *float64 `json:"lng,omitempty" validate:"required_with=Lat,omitempty,gte=-180,lte=180"`
	Online       *bool    `json:"online,omitempty"`
	Discoverable *bool    `json:"discoverable,omitempty"`
}

type SweepRequest struct {
	Limit int `json:"limit" validate:"gte=0"`
}

// Responses.

type PricingResponse struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	TotalWeight    decimal.Decimal `json:"total_weight"`
	DeliveryFee    decimal.Decimal `json:"delivery_fee"`
	AdditionalFees decimal.Decimal `json:"additional_fees"`
	ServiceFee     decimal.Decimal `json:"service_fee"`
	Total          decimal.Decimal `json:"total"`
}

type SubstituteResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Available int             `json:"available"`
}

type AlternateSiteResponse struct {
	LocationID string          `json:"location_id"`
	Name       string          `json:"name"`
	Available  int             `json:"available"`
	DistanceKm float64         `json:"distance_km"`
	Fee        decimal.Decimal `json:"fee"`
}

type StockIssueResponse struct {
	ProductID      string                  `json:"product_id"`
	LocationID     string                  `json:"location_id"`
	Requested      int                     `json:"requested"`
	Available      int                     `json:"available"`
	Substitutes    []SubstituteResponse    `json:"substitutes"`
	AlternateSites []AlternateSiteResponse `json:"alternate_sites"`
}

// ResolutionResponse is returned by order creation and product updates. When StockIssues
// is not empty nothing was written and the client must resubmit.
type ResolutionResponse struct {
	OrderID     *string              `json:"order_id,omitempty"`
	Status      string               `json:"status,omitempty"`
	StockIssues []StockIssueResponse `json:"stock_issues"`
	Pricing     PricingResponse      `json:"pricing"`
}

type QueueResponse struct {
	Status        string  `json:"status"`
	QueuePosition int     `json:"queue_position"`
	ValidatorID   *string `json:"validator_id,omitempty"`
}

type BreakdownResponse struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee"`
	AdditionalFees   decimal.Decimal `json:"additional_fees"`
	ServiceFee       decimal.Decimal `json:"service_fee"`
	LoyaltyReduction decimal.Decimal `json:"loyalty_reduction"`
	Total            decimal.Decimal `json:"total"`
}

type OrderItemResponse struct {
	ProductID           string          `json:"product_id"`
	Quantity            int             `json:"quantity"`
	AlternateLocationID *string         `json:"alternate_location_id,omitempty"`
	Comment             string          `json:"comment,omitempty"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	ClientID       string              `json:"client_id"`
	SupermarketID  string              `json:"supermarket_id"`
	LocationID     string              `json:"location_id"`
	Status         string              `json:"status"`
	DeliveryType   string              `json:"delivery_type"`
	Address        AddressRequest      `json:"address"`
	Items          []OrderItemResponse `json:"items"`
	Breakdown      BreakdownResponse   `json:"breakdown"`
	LoyaltyUsed    int                 `json:"loyalty_points_used"`
	QueuePosition  int                 `json:"queue_position"`
	ValidatorID    *string             `json:"validator_id,omitempty"`
	DriverID       *string             `json:"driver_id,omitempty"`
	ZoneID         *string             `json:"zone_id,omitempty"`
	ValidationCode string              `json:"validation_code,omitempty"`
	IssueNote      string              `json:"issue_note,omitempty"`
	ProofPhotoURL  string              `json:"proof_photo_url,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type QueueEntryResponse struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"client_id"`
	Status        string          `json:"status"`
	QueuePosition int             `json:"queue_position"`
	ValidatorID   *string         `json:"validator_id,omitempty"`
	ItemCount     int             `json:"item_count"`
	Total         decimal.Decimal `json:"total"`
	SubmittedAt   *time.Time      `json:"submitted_at,omitempty"`
}

type DriverResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

type ValidateOrderResponse struct {
	ValidationCode string  `json:"validation_code"`
	DriverID       *string `json:"driver_id,omitempty"`
}

type AssignDriverResponse struct {
	DriverID string  `json:"driver_id"`
	ZoneID   *string `json:"zone_id,omitempty"`
}

type GroupOrdersResponse struct {
	ZoneID   string   `json:"zone_id"`
	OrderIDs []string `json:"order_ids"`
}

type CancelOrderResponse struct {
	RefundedPoints int `json:"refunded_points"`
}

type CompleteDeliveryResponse struct {
	PointsEarned int `json:"points_earned"`
}

type PresenceResponse struct {
	Status string `json:"status"`
}

type SweepResponse struct {
	Scanned  int `json:"scanned"`
	Assigned int `json:"assigned"`
	Failed   int `json:"failed"`
}

type UploadResponse struct {
	Ref string `json:"ref"`
}

// Mapping.

func (r ItemRequest) toDomain() (services.ItemRequest, error) {
	productID, err := kernel.UUIDFromString(r.ProductID)
	if err != nil {
		return services.ItemRequest{}, err
	}
	item := services.ItemRequest{
		ProductID: productID,
		Quantity:  r.Quantity,
		Comment:   r.Comment,
		PhotoRef:  r.PhotoRef,
	}
	if r.AlternateLocationID != nil {
		alternate, altErr := kernel.UUIDFromString(*r.AlternateLocationID)
		if altErr != nil {
			return services.ItemRequest{}, altErr
		}
		item.AlternateLocationID = &alternate
	}
	return item, nil
}

func itemsToDomain(items []ItemRequest) ([]services.ItemRequest, error) {
	result := make([]services.ItemRequest, 0, len(items))
	for _, item := range items {
		converted, err := item.toDomain()
		if err != nil {
			return nil, err
		}
		result = append(result, converted)
	}
	return result, nil
}

func toResolutionResponse(orderID *kernel.UUID, status string, resolution services.Resolution) ResolutionResponse {
	response := ResolutionResponse{
		OrderID:     optionalString(orderID),
		Status:      status,
		StockIssues: make([]StockIssueResponse, 0, len(resolution.StockIssues)),
		Pricing: PricingResponse{
			Subtotal:       resolution.Pricing.Subtotal,
			TotalWeight:    resolution.Pricing.TotalWeight,
			DeliveryFee:    resolution.Pricing.DeliveryFee,
			AdditionalFees: resolution.Pricing.AdditionalFees,
			ServiceFee:     resolution.Pricing.ServiceFee,
			Total:          resolution.TotalAmount(),
		},
	}

	for _, issue := range resolution.StockIssues {
		converted := StockIssueResponse{
			ProductID:      issue.ProductID.String(),
			LocationID:     issue.LocationID.String(),
			Requested:      issue.Requested,
			Available:      issue.Available,
			Substitutes:    make([]SubstituteResponse, 0, len(issue.Substitutes)),
			AlternateSites: make([]AlternateSiteResponse, 0, len(issue.AlternateSites)),
		}
		for _, s := range issue.Substitutes {
			converted.Substitutes = append(converted.Substitutes, SubstituteResponse{
				ProductID: s.ProductID.String(),
				Name:      s.Name,
				Price:     s.Price,
				Available: s.Available,
			})
		}
		for _, site := range issue.AlternateSites {
			converted.AlternateSites = append(converted.AlternateSites, AlternateSiteResponse{
				LocationID: site.LocationID.String(),
				Name:       site.Name,
				Available:  site.Available,
				DistanceKm: site.DistanceKm,
				Fee:        site.Fee,
			})
		}
		response.StockIssues = append(response.StockIssues, converted)
	}
	return response
}

func toQueueResponse(result commands.QueueResult) QueueResponse {
	return QueueResponse{
		Status:        result.Status.String(),
		QueuePosition: result.QueuePosition,
		ValidatorID:   optionalString(result.ValidatorID),
	}
}

func toBreakdownResponse(b order.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		Subtotal:         b.Subtotal,
		DeliveryFee:      b.DeliveryFee,
		AdditionalFees:   b.AdditionalFees,
		ServiceFee:       b.ServiceFee,
		LoyaltyReduction: b.LoyaltyReduction,
		Total:            b.Total,
	}
}

func toOrderResponse(detail queries.GetOrderQueryResponse) OrderResponse {
	items := make([]OrderItemResponse, 0, len(detail.Items))
	for _, item := range detail.Items {
		items = append(items, OrderItemResponse{
			ProductID:           item.ProductID.String(),
			Quantity:            item.Quantity,
			AlternateLocationID: optionalString(item.AlternateLocationID),
			Comment:             item.Comment,
			UnitPrice:           item.UnitPrice,
		})
	}

	return OrderResponse{
		ID:            detail.ID.String(),
		ClientID:      detail.ClientID.String(),
		SupermarketID: detail.SupermarketID.String(),
		LocationID:    detail.LocationID.String(),
		Status:        detail.Status,
		DeliveryType:  detail.DeliveryType,
		Address: AddressRequest{
			Text: detail.AddressText,
			Lat:  detail.AddressPoint.Lat(),
			Lng:  detail.AddressPoint.Lng(),
		},
		Items: items,
		Breakdown: BreakdownResponse{
			Subtotal:         detail.Subtotal,
			DeliveryFee:      detail.DeliveryFee,
			AdditionalFees:   detail.AdditionalFees,
			ServiceFee:       detail.ServiceFee,
			LoyaltyReduction: detail.LoyaltyReduction,
			Total:            detail.Total,
		},
		LoyaltyUsed:    detail.LoyaltyUsed,
		QueuePosition:  detail.QueuePosition,
		ValidatorID:    optionalString(detail.ValidatorID),
		DriverID:       optionalString(detail.DriverID),
		ZoneID:         optionalString(detail.ZoneID),
		ValidationCode: detail.ValidationCode,
		IssueNote:      detail.IssueNote,
		ProofPhotoURL:  detail.ProofPhotoURL,
		CreatedAt:      detail.CreatedAt,
		UpdatedAt:      detail.UpdatedAt,
	}
}

func optionalString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
