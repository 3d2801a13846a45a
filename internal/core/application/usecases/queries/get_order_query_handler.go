package queries

import (
	"context"
	"encoding/json"
	"time"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/ports"
	"marketdelivery/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultProofURLTTL is how long a signed delivery proof link stays valid.
const DefaultProofURLTTL = 15 * time.Minute

// GetOrderQueryHandler reads one order and checks that the caller may see it.
// Clients see their own orders, validators the orders of their supermarket, drivers
// the orders assigned to them and dispatchers every order.
type GetOrderQueryHandler struct {
	db       *gorm.DB
	policy   authz.Policy
	assets   ports.AssetStorage
	proofTTL time.Duration
}

// NewGetOrderQueryHandler creates a handler for order detail queries.
func NewGetOrderQueryHandler(
	db *gorm.DB,
	policy authz.Policy,
	assets ports.AssetStorage,
	proofTTL time.Duration,
) GetOrderQueryHandler {
	if proofTTL <= 0 {
		proofTTL = DefaultProofURLTTL
	}
	return GetOrderQueryHandler{db: db, policy: policy, assets: assets, proofTTL: proofTTL}
}

type orderItemRow struct {
	ProductID           uuid.UUID       `json:"product_id"`
	Quantity            int             `json:"quantity"`
	AlternateLocationID *uuid.UUID      `json:"alternate_location_id"`
	Comment             string          `json:"comment"`
	UnitPrice           decimal.Decimal `json:"unit_price"`
}

// Handle executes the query. A missing order yields ObjectNotFoundError and a caller
// outside the order's audience yields NotAuthorizedError.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			client_id,
			supermarket_id,
			location_id,
			status,
			delivery_type,
			address_text,
			address_lat,
			address_lng,
			items,
			subtotal,
			delivery_fee,
			additional_fees,
			service_fee,
			loyalty_reduction,
			total,
			loyalty_used,
			queue_position,
			validator_id,
			driver_id,
			zone_id,
			validation_code,
			issue_note,
			proof_photo_ref,
			created_at,
			updated_at
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Rows()
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetOrderQueryResponse{}, err
		}
		return GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID().String())
	}

	var (
		response                              GetOrderQueryResponse
		id, clientID, supermarketID, location uuid.UUID
		validatorID, driverID, zoneID         uuid.NullUUID
		lat, lng                              float64
		items                                 []byte
		proofRef                              string
	)
	err = rows.Scan(
		&id,
		&clientID,
		&supermarketID,
		&location,
		&response.Status,
		&response.DeliveryType,
		&response.AddressText,
		&lat,
		&lng,
		&items,
		&response.Subtotal,
		&response.DeliveryFee,
		&response.AdditionalFees,
		&response.ServiceFee,
		&response.LoyaltyReduction,
		&response.Total,
		&response.LoyaltyUsed,
		&response.QueuePosition,
		&validatorID,
		&driverID,
		&zoneID,
		&response.ValidationCode,
		&response.IssueNote,
		&proofRef,
		&response.CreatedAt,
		&response.UpdatedAt,
	)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	if err = rows.Err(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	if response.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.ClientID, err = kernel.UUIDFromBytes(clientID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.SupermarketID, err = kernel.UUIDFromBytes(supermarketID[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.LocationID, err = kernel.UUIDFromBytes(location[:]); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.ValidatorID, err = nullableID(validatorID); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.DriverID, err = nullableID(driverID); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.ZoneID, err = nullableID(zoneID); err != nil {
		return GetOrderQueryResponse{}, err
	}
	if response.AddressPoint, err = kernel.NewGeoPoint(lat, lng); err != nil {
		return GetOrderQueryResponse{}, err
	}

	grant, err := h.policy.Authorize(query.Actor(), authz.Orders, authz.Read, authz.Subject{
		OwnerID:       &response.ClientID,
		SupermarketID: &response.SupermarketID,
		DriverID:      response.DriverID,
	})
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	if grant.Capability != authz.Client {
		response.ValidationCode = ""
	}

	if response.Items, err = decodeItems(items); err != nil {
		return GetOrderQueryResponse{}, err
	}

	if proofRef != "" && h.assets != nil {
		url, signErr := h.assets.GetSignedURL(ctx, proofRef, h.proofTTL)
		if signErr != nil {
			return GetOrderQueryResponse{}, errs.NewExternalServiceError("asset storage", signErr)
		}
		response.ProofPhotoURL = url
	}

	return response, nil
}

func decodeItems(raw []byte) ([]GetOrderQueryItem, error) {
	var rows []orderItemRow
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, err
		}
	}

	items := make([]GetOrderQueryItem, 0, len(rows))
	for _, row := range rows {
		productID, err := kernel.UUIDFromBytes(row.ProductID[:])
		if err != nil {
			return nil, err
		}
		item := GetOrderQueryItem{
			ProductID: productID,
			Quantity:  row.Quantity,
			Comment:   row.Comment,
			UnitPrice: row.UnitPrice,
		}
		if row.AlternateLocationID != nil {
			if item.AlternateLocationID, err = nullableID(uuid.NullUUID{UUID: *row.AlternateLocationID, Valid: true}); err != nil {
				return nil, err
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func nullableID(raw uuid.NullUUID) (*kernel.UUID, error) {
	if !raw.Valid {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw.UUID[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
