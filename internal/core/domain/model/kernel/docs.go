// Package kernel provides core domain primitives shared by every aggregate of the
// market delivery system.
//
// The package includes:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - GeoPoint: validated coordinate with the haversine distance used by the stock
//     resolver, the fee calculator and driver dispatch
//
// These primitives are immutable and safe for concurrent use.
package kernel
