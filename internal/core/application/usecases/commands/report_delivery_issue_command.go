package commands

import (
	"errors"
	"strings"

	"marketdelivery/internal/core/application/authz"
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
	"marketdelivery/internal/pkg/guard"
)

var ErrReportDeliveryIssueCommandIsNotConstructed = errors.New(
	"ReportDeliveryIssueCommand must be created via NewReportDeliveryIssueCommand constructor",
)

// ReportDeliveryIssueCommand is the driver reporting that an order cannot be handed over.
type ReportDeliveryIssueCommand struct { //nolint:recvcheck //using for validation
	orderTarget
	note string

	guard guard.ConstructorGuard
}

func NewReportDeliveryIssueCommand(actor authz.Actor, orderID kernel.UUID, note string) (ReportDeliveryIssueCommand, error) {
	target, err := newOrderTarget(actor, orderID)
	note = strings.TrimSpace(note)
	if note == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("note"))
	}
	if err != nil {
		return ReportDeliveryIssueCommand{}, err
	}

	return ReportDeliveryIssueCommand{
		orderTarget: target,
		note:        note,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c ReportDeliveryIssueCommand) Validate() error {
	return c.guard.Validate(ErrReportDeliveryIssueCommandIsNotConstructed)
}

func (c ReportDeliveryIssueCommand) Note() string {
	return c.note
}
