// Package services holds stateless domain services of the fulfillment flow:
// the stock and fee resolver, validator selection, driver dispatch and zone grouping.
// They operate on aggregates loaded by the application layer and never perform I/O.
package services
