package commands

import (
	"errors"
	"strings"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"
)

var ErrRegisterDriverCommandIsNotConstructed = errors.New(
	"RegisterDriverCommand must be created via NewRegisterDriverCommand constructor",
)

// RegisterDriverCommand represents a dispatcher onboarding a driver. The driver id is the
// driver's user id, so tokens issued to the driver identify the aggregate directly.
//
// Example:
//
//	cmd, err := NewRegisterDriverCommand(dispatcher, driverUserID, "John Doe")
//	if err != nil {
//	    return fmt.Errorf("invalid driver data: %w", err)
//	}
//
//	handler := NewRegisterDriverCommandHandler(uowFactory, authz.DefaultPolicy())
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to register driver: %w", err)
//	}
type RegisterDriverCommand struct { //nolint:recvcheck //using for validation
	actor    authz.Actor
	driverID kernel.UUID
	name     string

	guard guard.ConstructorGuard
}

func NewRegisterDriverCommand(actor authz.Actor, driverID kernel.UUID, name string) (RegisterDriverCommand, error) {
	command := RegisterDriverCommand{
		actor: actor,
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDriverID(driverID),
		command.setName(name),
	); err != nil {
		return RegisterDriverCommand{}, err
	}

	return command, nil
}

func (c RegisterDriverCommand) Validate() error {
	return c.guard.Validate(ErrRegisterDriverCommandIsNotConstructed)
}

func (c RegisterDriverCommand) Actor() authz.Actor {
	return c.actor
}

func (c RegisterDriverCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c RegisterDriverCommand) Name() string {
	return c.name
}

func (c *RegisterDriverCommand) setDriverID(id kernel.UUID) error {
	if err := requireID("driver id", id); err != nil {
		return err
	}

	c.driverID = id
	return nil
}

func (c *RegisterDriverCommand) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}

	c.name = name
	return nil
}
