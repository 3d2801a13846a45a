package services

import (
	"math"

	"marketdelivery/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// Fee schedule, in currency units.
var (
	standardBaseFee       = decimal.NewFromInt(500)
	eveningBaseFee        = decimal.NewFromInt(400)
	freeDistanceKm        = decimal.NewFromInt(5)
	perKmFee              = decimal.NewFromInt(100)
	freeWeight            = decimal.NewFromInt(5)
	perWeightUnitFee      = decimal.NewFromInt(50)
	alternateSiteBaseFee  = decimal.NewFromInt(200)
	alternateSitePerKmFee = decimal.NewFromInt(50)
	serviceFeeRate        = decimal.RequireFromString("0.10")
)

// moneyPlaces is the precision of fees derived from distances.
const moneyPlaces = 2

// DeliveryFee is the base fee (400 evening, 500 otherwise) plus, for non-evening
// deliveries, 100 per km beyond 5 km and 50 per weight unit beyond 5.
func DeliveryFee(deliveryType order.DeliveryType, distanceKm float64, totalWeight decimal.Decimal) decimal.Decimal {
	if deliveryType == order.Evening {
		return eveningBaseFee
	}

	km := kilometers(distanceKm)
	distanceFee := decimal.Max(decimal.Zero, km.Sub(freeDistanceKm)).Mul(perKmFee)
	weightFee := decimal.Max(decimal.Zero, totalWeight.Sub(freeWeight)).Mul(perWeightUnitFee)

	return standardBaseFee.Add(distanceFee).Add(weightFee).Round(moneyPlaces)
}

// AlternateSiteFee is charged per line sourced from a location other than the
// order's pickup location: 200 + 50 per km between the two sites.
func AlternateSiteFee(distanceKm float64) decimal.Decimal {
	return alternateSiteBaseFee.Add(kilometers(distanceKm).Mul(alternateSitePerKmFee)).Round(moneyPlaces)
}

// ServiceFee is 10% of the subtotal rounded to whole units, half away from zero.
func ServiceFee(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(serviceFeeRate).Round(0)
}

func kilometers(km float64) decimal.Decimal {
	if math.IsNaN(km) || km < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(km)
}
