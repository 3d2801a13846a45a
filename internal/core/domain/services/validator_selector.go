package services

import (
	"marketdelivery/internal/core/domain/model/kernel"
	"marketdelivery/internal/pkg/errs"
)

// ValidatorSelector picks the order validator with the lightest queue.
type ValidatorSelector struct{}

func NewValidatorSelector() ValidatorSelector {
	return ValidatorSelector{}
}

// Select returns the candidate with the fewest queued orders; the first candidate
// wins ties. Missing workload entries count as zero.
func (ValidatorSelector) Select(candidates []kernel.UUID, workload map[kernel.UUID]int) (kernel.UUID, error) {
	if len(candidates) == 0 {
		return kernel.UUID{}, errs.ErrNoValidatorAvailable
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if workload[c] < workload[best] {
			best = c
		}
	}
	return best, nil
}
