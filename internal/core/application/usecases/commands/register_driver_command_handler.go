package commands

import (
	"context"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/driver"
)

// RegisterDriverCommandHandler persists a new driver. Drivers start offline.
type RegisterDriverCommandHandler struct {
	uowFactory UoWFactory
	policy     authz.Policy
}

func NewRegisterDriverCommandHandler(uowFactory UoWFactory, policy authz.Policy) RegisterDriverCommandHandler {
	return RegisterDriverCommandHandler{
		uowFactory: uowFactory,
		policy:     policy,
	}
}

func (h *RegisterDriverCommandHandler) Handle(ctx context.Context, cmd RegisterDriverCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	if _, err := h.policy.Authorize(cmd.Actor(), authz.Drivers, authz.Create, authz.Subject{}); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	registered, err := driver.NewDriver(cmd.DriverID(), cmd.Name())
	if err != nil {
		return err
	}

	if err = uow.DriverRepository().Add(ctx, registered); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
