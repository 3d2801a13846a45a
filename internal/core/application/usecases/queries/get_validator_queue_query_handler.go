package queries

import (
	"context"
	"database/sql"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetValidatorQueueQueryHandler reads the validation queue of a pickup location.
// Only validators of the owning supermarket may read it.
type GetValidatorQueueQueryHandler struct {
	db     *gorm.DB
	policy authz.Policy
}

func NewGetValidatorQueueQueryHandler(db *gorm.DB, policy authz.Policy) GetValidatorQueueQueryHandler {
	return GetValidatorQueueQueryHandler{db: db, policy: policy}
}

// Handle returns the queued orders ordered by queue position, then submission time.
func (h GetValidatorQueueQueryHandler) Handle(
	ctx context.Context,
	query GetValidatorQueueQuery,
) ([]GetValidatorQueueQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	supermarketID := query.SupermarketID()
	if _, err := h.policy.Authorize(query.Actor(), authz.ValidatorQueue, authz.Read, authz.Subject{
		SupermarketID: &supermarketID,
	}); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			client_id,
			status,
			queue_position,
			validator_id,
			jsonb_array_length(items),
			total,
			submitted_at
		FROM orders
		WHERE supermarket_id = ?
			AND location_id = ?
			AND status IN ?
		ORDER BY queue_position, submitted_at, id
	`, supermarketID.Bytes(), query.LocationID().Bytes(),
		[]string{order.PendingValidation.String(), order.AwaitingValidator.String()},
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	queue := make([]GetValidatorQueueQueryResponse, 0)
	for rows.Next() {
		var (
			entry        GetValidatorQueueQueryResponse
			id, clientID uuid.UUID
			validatorID  uuid.NullUUID
			submittedAt  sql.NullTime
		)

		err = rows.Scan(
			&id,
			&clientID,
			&entry.Status,
			&entry.QueuePosition,
			&validatorID,
			&entry.ItemCount,
			&entry.Total,
			&submittedAt,
		)
		if err != nil {
			return nil, err
		}

		if entry.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if entry.ClientID, err = kernel.UUIDFromBytes(clientID[:]); err != nil {
			return nil, err
		}
		if entry.ValidatorID, err = nullableID(validatorID); err != nil {
			return nil, err
		}
		if submittedAt.Valid {
			at := submittedAt.Time
			entry.SubmittedAt = &at
		}
		queue = append(queue, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return queue, nil
}
