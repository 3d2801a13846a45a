// Package order provides the Order aggregate root of the fulfillment flow.
//
// The package includes:
//   - Order: line items, delivery address, monetary breakdown, queue position and
//     the validator, driver and zone references
//   - Status: the lifecycle state machine from cart to delivery or cancellation
//   - DeliveryType: standard, evening or in-store pickup
//   - Breakdown and Pricing: decimal money values produced by the stock resolver
//
// Key business rules:
//   - The total is recomputed on every monetary change and never goes negative
//   - Loyalty reduction is always points used × LoyaltyPointValue
//   - Only queued orders (pending validation or awaiting a validator) hold a queue position
//   - Only standard orders are dispatched to drivers
package order
