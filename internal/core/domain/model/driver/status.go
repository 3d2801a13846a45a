package driver

import (
	"fmt"

	"marketdelivery/internal/pkg/errs"
)

type Status string

const (
	Available     Status = "available"
	PendingPickup Status = "pending_pickup"
	Busy          Status = "busy"
	Offline       Status = "offline"
)

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

func (s Status) Validate() error {
	switch s {
	case Available, PendingPickup, Busy, Offline:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("driver status", fmt.Errorf("%q is not a valid status", string(s)))
	}
}

func (s Status) String() string {
	return string(s)
}
