// Package authz evaluates caller permissions with a declarative policy table keyed by
// (resource, action). Identity comes from the inbound adapter and is trusted as is.
package authz

import (
	"slices"

	"marketdelivery/internal/core/domain/model/kernel"
)

// Capability is a role-derived permission held by an actor.
type Capability string

const (
	Client         Capability = "client"
	OrderValidator Capability = "order_validator"
	Driver         Capability = "driver"
	Dispatcher     Capability = "dispatcher"
)

// Actor is the authenticated caller. SupermarketID and LocationID are set for managers.
type Actor struct {
	UserID        kernel.UUID
	Capabilities  []Capability
	SupermarketID *kernel.UUID
	LocationID    *kernel.UUID
}

// System is the actor used by scheduled jobs.
func System() Actor {
	return Actor{Capabilities: []Capability{Dispatcher}}
}

func (a Actor) Has(c Capability) bool {
	return slices.Contains(a.Capabilities, c)
}
