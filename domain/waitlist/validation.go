package waitlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const emailTag = "waitlist_email"

// notSpaceOrAt is JavaScript's [^@\s]: RE2's \s is ASCII-only, so the Unicode
// separators (\p{Z}), \v and U+FEFF are listed explicitly to agree with the form.
const notSpaceOrAt = `[^@\t\n\v\f\r\p{Z}\x{FEFF}]`

var emailPattern = regexp.MustCompile(`^` + notSpaceOrAt + `+@` + notSpaceOrAt + `+\.` + notSpaceOrAt + `+$`)

var registerOnce sync.Once

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if !IsValidEmail(email) {
		return ErrInvalidEmail
	}
	return nil
}

// RegisterValidators installs the waitlist_email tag on gin's validator engine.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			err := v.RegisterValidation(emailTag, func(fl validator.FieldLevel) bool {
				return IsValidEmail(fl.Field().String())
			})
			if err != nil {
				panic(fmt.Sprintf("Unable to register the '%s' validation tag: %v", emailTag, err))
			}
		}
	})
}

// BindErrorMessage maps a gin bind error to the message returned to clients.
func BindErrorMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		if validationErrors[0].Tag() == "required" {
			return MessageEmailRequired
		}
		return MessageInvalidEmail
	}

	// {"email": 42} is a well-formed body with a bad email.
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field == "email" {
		return MessageInvalidEmail
	}

	return MessageInvalidRequestBody
}

func messageForValidationError(err error) string {
	if errors.Is(err, ErrEmailRequired) {
		return MessageEmailRequired
	}
	return MessageInvalidEmail
}
