package commands

import (
	"errors"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"
)

var ErrUpdateDriverPresenceCommandIsNotConstructed = errors.New(
	"UpdateDriverPresenceCommand must be created via NewUpdateDriverPresenceCommand constructor",
)

// UpdateDriverPresenceCommand is a driver's position ping and availability toggles.
// Nil fields are left unchanged.
type UpdateDriverPresenceCommand struct { //nolint:recvcheck //using for validation
	actor        authz.Actor
	location     *kernel.GeoPoint
	online       *bool
	discoverable *bool

	guard guard.ConstructorGuard
}

func NewUpdateDriverPresenceCommand(
	actor authz.Actor,
	location *kernel.GeoPoint,
	online, discoverable *bool,
) (UpdateDriverPresenceCommand, error) {
	err := requireUser(actor)
	if location != nil {
		err = errors.Join(err, location.Validate())
	}
	if location == nil && online == nil && discoverable == nil {
		err = errors.Join(err, errs.NewValueIsRequiredError("presence update"))
	}
	if err != nil {
		return UpdateDriverPresenceCommand{}, err
	}

	return UpdateDriverPresenceCommand{
		actor:        actor,
		location:     location,
		online:       online,
		discoverable: discoverable,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateDriverPresenceCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverPresenceCommandIsNotConstructed)
}

func (c UpdateDriverPresenceCommand) Actor() authz.Actor {
	return c.actor
}

func (c UpdateDriverPresenceCommand) Location() *kernel.GeoPoint {
	return c.location
}

func (c UpdateDriverPresenceCommand) Online() *bool {
	return c.online
}

func (c UpdateDriverPresenceCommand) Discoverable() *bool {
	return c.discoverable
}
