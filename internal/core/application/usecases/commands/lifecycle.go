package commands

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/model/product"
	"marketdelivery/internal/core/domain/model/supermarket"
	"marketdelivery/internal/core/domain/services"
	"marketdelivery/internal/core/ports"
	"marketdelivery/internal/pkg/errs"
)

// now is the timestamp source of every handler.
func now() time.Time {
	return time.Now().UTC()
}

// reindexQueue recomputes queue positions at the changed order's pickup location.
// changed is the in-memory version of an order already loaded in this unit of work; it is
// not persisted here, every other order whose position moved is.
func reindexQueue(ctx context.Context, repo ports.OrderRepository, changed *order.Order) error {
	stored, err := repo.ListQueued(ctx, changed.SupermarketID(), changed.LocationID())
	if err != nil {
		return err
	}

	queue := make([]*order.Order, 0, len(stored)+1)
	for _, o := range stored {
		if !o.IsEqual(changed) {
			queue = append(queue, o)
		}
	}
	if changed.IsQueued() {
		queue = append(queue, changed)
	}
	slices.SortStableFunc(queue, compareSubmission)

	for i, o := range queue {
		position := i + 1
		if o == changed {
			if err := changed.SetQueuePosition(position); err != nil {
				return err
			}
			continue
		}
		if o.QueuePosition() == position {
			continue
		}
		if err := o.SetQueuePosition(position); err != nil {
			return err
		}
		if err := repo.Update(ctx, o); err != nil {
			return err
		}
	}

	if !changed.IsQueued() {
		return changed.SetQueuePosition(0)
	}
	return nil
}

func compareSubmission(a, b *order.Order) int {
	if c := compareTimes(a.SubmittedAt(), b.SubmittedAt()); c != 0 {
		return c
	}
	if c := a.CreatedAt().Compare(b.CreatedAt()); c != 0 {
		return c
	}
	return cmp.Compare(a.ID().String(), b.ID().String())
}

func compareTimes(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// selectValidator returns the least loaded validator of the order's pickup location,
// or nil when the location has none.
func selectValidator(
	ctx context.Context,
	repo ports.OrderRepository,
	market *supermarket.Supermarket,
	o *order.Order,
) (*kernel.UUID, error) {
	candidates := market.Validators(o.LocationID())
	if len(candidates) == 0 {
		return nil, nil
	}

	workload, err := repo.CountQueuedByValidator(ctx, o.SupermarketID(), o.LocationID())
	if err != nil {
		return nil, err
	}

	validatorID, err := services.NewValidatorSelector().Select(candidates, workload)
	if errors.Is(err, errs.ErrNoValidatorAvailable) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &validatorID, nil
}

// ItemsPlacement is where and how an order's items are to be delivered.
type ItemsPlacement struct {
	Supermarket   *supermarket.Supermarket
	LocationID    kernel.UUID
	DeliveryType  order.DeliveryType
	DeliveryPoint kernel.GeoPoint
}

// resolveItems loads the referenced products and their same-category catalog, then runs
// the stock resolver.
func resolveItems(
	ctx context.Context,
	repo ports.ProductRepository,
	placement ItemsPlacement,
	items []services.ItemRequest,
) (services.Resolution, error) {
	ids := make([]kernel.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return services.Resolution{}, err
	}

	categories := make([]string, 0, len(products))
	for _, p := range products {
		if p.BelongsTo(placement.Supermarket.ID()) && !slices.Contains(categories, p.Category()) {
			categories = append(categories, p.Category())
		}
	}

	var catalog []*product.Product
	if len(categories) > 0 {
		catalog, err = repo.ListByCategories(ctx, placement.Supermarket.ID(), categories)
		if err != nil {
			return services.Resolution{}, err
		}
	}

	return services.NewStockResolver().Resolve(services.ResolveRequest{
		Supermarket:   placement.Supermarket,
		LocationID:    placement.LocationID,
		DeliveryType:  placement.DeliveryType,
		DeliveryPoint: placement.DeliveryPoint,
		Items:         items,
		Products:      products,
		Catalog:       catalog,
	})
}

// orderSubject describes an order to the permission policy.
func orderSubject(o *order.Order) authz.Subject {
	clientID := o.ClientID()
	supermarketID := o.SupermarketID()
	return authz.Subject{
		OwnerID:       &clientID,
		SupermarketID: &supermarketID,
		DriverID:      o.DriverID(),
	}
}
