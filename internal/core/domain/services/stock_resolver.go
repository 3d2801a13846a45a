package services

import (
	"errors"

	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/core/domain/model/order"
	"marketdelivery/internal/core/domain/model/product"
	"marketdelivery/internal/core/domain/model/supermarket"
	"marketdelivery/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// MaxSubstitutes caps the substitute proposals of one stock issue.
const MaxSubstitutes = 3

// ItemRequest is a line as submitted by the client.
type ItemRequest struct {
	ProductID           kernel.UUID
	Quantity            int
	AlternateLocationID *kernel.UUID
	Comment             string
	PhotoRef            string
}

// ResolveRequest carries everything needed to resolve an order without I/O.
// Products must contain every product referenced by Items; Catalog holds the
// supermarket products considered as substitutes.
type ResolveRequest struct {
	Supermarket   *supermarket.Supermarket
	LocationID    kernel.UUID
	DeliveryType  order.DeliveryType
	DeliveryPoint kernel.GeoPoint
	Items         []ItemRequest
	Products      map[kernel.UUID]*product.Product
	Catalog       []*product.Product
}

type Substitute struct {
	ProductID kernel.UUID
	Name      string
	Price     decimal.Decimal
	Available int
}

type AlternateSite struct {
	LocationID kernel.UUID
	Name       string
	Available  int
	DistanceKm float64
	Fee        decimal.Decimal
}

// StockIssue explains why a line was not accepted and what the client can do instead.
type StockIssue struct {
	ProductID      kernel.UUID
	LocationID     kernel.UUID
	Requested      int
	Available      int
	Substitutes    []Substitute
	AlternateSites []AlternateSite
}

// Resolution is the outcome of StockResolver.Resolve. When StockIssues is not empty
// only Pricing.Subtotal (of the accepted lines) and Pricing.DeliveryFee are set and
// the order must not be priced with it.
type Resolution struct {
	StockIssues   []StockIssue
	AcceptedItems []order.LineItem
	Promotions    []order.AppliedPromotion
	Pricing       order.Pricing
}

func (r Resolution) HasIssues() bool {
	return len(r.StockIssues) > 0
}

// TotalAmount is the pre-loyalty total; zero while issues are pending.
func (r Resolution) TotalAmount() decimal.Decimal {
	if r.HasIssues() {
		return decimal.Zero
	}
	return r.Pricing.Total()
}

// StockResolver validates stock for an order's lines and prices the order.
type StockResolver struct{}

func NewStockResolver() StockResolver {
	return StockResolver{}
}

type stockKey struct {
	productID  kernel.UUID
	locationID kernel.UUID
}

func (s StockResolver) Resolve(req ResolveRequest) (Resolution, error) {
	if err := s.validateRequest(req); err != nil {
		return Resolution{}, err
	}

	primary, err := req.Supermarket.Location(req.LocationID)
	if err != nil {
		return Resolution{}, err
	}
	pickupKm, err := primary.Point.DistanceTo(req.DeliveryPoint)
	if err != nil {
		return Resolution{}, err
	}

	var (
		res            Resolution
		subtotal       = decimal.Zero
		totalWeight    = decimal.Zero
		additionalFees = decimal.Zero
		demand         = make(map[stockKey]int)
	)

	for _, item := range req.Items {
		p, err := s.lookupProduct(req, item)
		if err != nil {
			return Resolution{}, err
		}

		stockLocation := primary
		if item.AlternateLocationID != nil && !item.AlternateLocationID.IsEqual(primary.ID) {
			stockLocation, err = req.Supermarket.Location(*item.AlternateLocationID)
			if err != nil {
				return Resolution{}, err
			}
		}

		key := stockKey{productID: p.ID(), locationID: stockLocation.ID}
		alreadyTaken := demand[key]
		available := max(0, p.StockAt(stockLocation.ID)-alreadyTaken)
		if available < item.Quantity {
			issue, err := s.stockIssue(req, primary, p, stockLocation.ID, item.Quantity, available)
			if err != nil {
				return Resolution{}, err
			}
			res.StockIssues = append(res.StockIssues, issue)
			continue
		}
		demand[key] = alreadyTaken + item.Quantity

		line := order.LineItem{
			ProductID: p.ID(),
			Quantity:  item.Quantity,
			Comment:   item.Comment,
			PhotoRef:  item.PhotoRef,
			UnitPrice: p.EffectivePrice(),
			Weight:    p.Weight(),
		}
		if !stockLocation.ID.IsEqual(primary.ID) {
			alternateID := stockLocation.ID
			line.AlternateLocationID = &alternateID

			km, err := primary.Point.DistanceTo(stockLocation.Point)
			if err != nil {
				return Resolution{}, err
			}
			additionalFees = additionalFees.Add(AlternateSiteFee(km))
		}
		if promo := p.ActivePromotion(); promo != nil {
			promoPrice := promo.Price
			line.PromotedPrice = &promoPrice
			res.Promotions = append(res.Promotions, order.AppliedPromotion{
				PromotionID: promo.ID,
				ProductID:   p.ID(),
				Discount:    p.Price().Sub(promo.Price).Mul(decimal.NewFromInt(int64(item.Quantity))),
			})
		}

		res.AcceptedItems = append(res.AcceptedItems, line)
		subtotal = subtotal.Add(line.LineTotal())
		totalWeight = totalWeight.Add(p.Weight().Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	res.Pricing.Subtotal = subtotal
	res.Pricing.DeliveryFee = DeliveryFee(req.DeliveryType, pickupKm, totalWeight)
	if res.HasIssues() {
		return res, nil
	}

	res.Pricing.TotalWeight = totalWeight
	res.Pricing.AdditionalFees = additionalFees
	res.Pricing.ServiceFee = ServiceFee(subtotal)
	return res, nil
}

func (s StockResolver) validateRequest(req ResolveRequest) error {
	if err := req.Supermarket.Validate(); err != nil {
		return err
	}
	if len(req.Items) == 0 {
		return order.ErrNoItems
	}
	var err error
	for _, item := range req.Items {
		if item.Quantity < 1 {
			err = errors.Join(err, errs.NewValueIsOutOfRangeError("quantity", item.Quantity, 1, "stock"))
		}
	}
	return errors.Join(err, req.DeliveryType.Validate(), req.DeliveryPoint.Validate())
}

func (s StockResolver) lookupProduct(req ResolveRequest, item ItemRequest) (*product.Product, error) {
	p, ok := req.Products[item.ProductID]
	if !ok || p == nil {
		return nil, errs.NewObjectNotFoundError("product", item.ProductID.String())
	}
	if !p.BelongsTo(req.Supermarket.ID()) {
		return nil, errs.NewValueIsInvalidErrorWithCause("product",
			errors.New("product "+p.ID().String()+" does not belong to the supermarket"))
	}
	return p, nil
}

func (s StockResolver) stockIssue(
	req ResolveRequest,
	primary supermarket.Location,
	p *product.Product,
	checkedAt kernel.UUID,
	requested, available int,
) (StockIssue, error) {
	issue := StockIssue{
		ProductID:  p.ID(),
		LocationID: checkedAt,
		Requested:  requested,
		Available:  available,
	}

	for _, candidate := range req.Catalog {
		if len(issue.Substitutes) == MaxSubstitutes {
			break
		}
		if candidate.ID().IsEqual(p.ID()) || !candidate.BelongsTo(req.Supermarket.ID()) ||
			candidate.Category() != p.Category() || !candidate.HasStock(primary.ID, requested) {
			continue
		}
		issue.Substitutes = append(issue.Substitutes, Substitute{
			ProductID: candidate.ID(),
			Name:      candidate.Name(),
			Price:     candidate.EffectivePrice(),
			Available: candidate.StockAt(primary.ID),
		})
	}

	for _, loc := range req.Supermarket.OtherLocations(primary.ID) {
		if !p.HasStock(loc.ID, requested) {
			continue
		}
		km, err := primary.Point.DistanceTo(loc.Point)
		if err != nil {
			return StockIssue{}, err
		}
		issue.AlternateSites = append(issue.AlternateSites, AlternateSite{
			LocationID: loc.ID,
			Name:       loc.Name,
			Available:  p.StockAt(loc.ID),
			DistanceKm: km,
			Fee:        AlternateSiteFee(km),
		})
	}

	return issue, nil
}
