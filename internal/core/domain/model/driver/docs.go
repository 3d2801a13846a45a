// Package driver provides the Driver aggregate used by dispatch.
//
// The package includes:
//   - Driver: identity, last known position, availability status, discoverability
//     and cumulative earnings
//   - Status: available, pending_pickup, busy or offline
//
// Key business rules:
//   - Only available, discoverable drivers with a known position can take new orders
//   - Accepting a batch moves the driver to pending_pickup; the first pickup makes them busy
//   - Completing the last delivery of a run credits the fee and resets the driver to available
package driver
