package auth

import (
	stderrors "errors"
	"fmt"
	"messenger/errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Credentials is what a client presents to sign up or log in. The email is
// the identity every token and message carries.
type Credentials struct {
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=12,max=128"`
}

// NewCredentials trims the email so " alice@example.com" and
// "alice@example.com" name the same identity.
func NewCredentials(email, password string) Credentials {
	return Credentials{Email: strings.TrimSpace(email), Password: password}
}

// ValidateSignup rejects malformed emails and weak passwords.
// The returned error wraps errors.ErrInvalidSignup and names the failing field.
func ValidateSignup(c Credentials) error {
	if err := validate.Struct(c); err != nil {
		var fields validator.ValidationErrors
		if stderrors.As(err, &fields) && len(fields) > 0 {
			return fmt.Errorf("%w: %s fails %q", errors.ErrInvalidSignup, strings.ToLower(fields[0].Field()), fields[0].Tag())
		}
		return fmt.Errorf("%w: %v", errors.ErrInvalidSignup, err)
	}
	if missing := missingClasses(c.Password); len(missing) > 0 {
		return fmt.Errorf("%w: password needs %s", errors.ErrInvalidSignup, strings.Join(missing, ", "))
	}
	return nil
}

// missingClasses lists the character classes absent from password.
func missingClasses(password string) []string {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	var missing []string
	for _, class := range []struct {
		ok   bool
		name string
	}{{upper, "an uppercase letter"}, {lower, "a lowercase letter"}, {digit, "a digit"}, {special, "a symbol"}} {
		if !class.ok {
			missing = append(missing, class.name)
		}
	}
	return missing
}
