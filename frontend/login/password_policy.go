package login

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrPasswordPolicy wraps every password rule violation.
var ErrPasswordPolicy = errors.New("weak password")

func ValidatePasswordPolicy(password string) error {
	if len(password) < 12 {
		return fmt.Errorf("%w: password must be at least 12 characters", ErrPasswordPolicy)
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSymbol = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSymbol {
		return fmt.Errorf("%w: password must include upper, lower, digit and symbol", ErrPasswordPolicy)
	}

	return nil
}
