package order

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"marketdelivery/internal/pkg/errs"
)

const validationCodeDigits = 6

var validationCodeSpace = big.NewInt(1_000_000)

// NewValidationCode returns a random 6 digit code the client shows the driver at delivery.
func NewValidationCode() (string, error) {
	n, err := rand.Int(rand.Reader, validationCodeSpace)
	if err != nil {
		return "", fmt.Errorf("generate validation code: %w", err)
	}
	return fmt.Sprintf("%0*d", validationCodeDigits, n.Int64()), nil
}

func validateCode(code string) error {
	if len(code) != validationCodeDigits {
		return errs.NewValueIsInvalidErrorWithCause("validation code", fmt.Errorf("must have %d digits", validationCodeDigits))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return errs.NewValueIsInvalidErrorWithCause("validation code", fmt.Errorf("must have %d digits", validationCodeDigits))
		}
	}
	return nil
}
