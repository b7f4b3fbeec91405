package record

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator"
)

// Field format patterns.
var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\d{0,3}\+?\d{3}-?\d{3}-?\d{4}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	rules := map[string]func(string) bool{
		"notblank":   func(s string) bool { return strings.TrimSpace(s) != "" },
		"basicemail": emailPattern.MatchString,
		"phone":      phonePattern.MatchString,
	}
	for tag, match := range rules {
		match := match
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return match(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("record: register %s: %v", tag, err))
		}
	}
	return v
}

// CheckName requires a value that is non-empty once trimmed.
func CheckName(field, value string) error {
	return check(field, value, "notblank", "must be a non-empty string")
}

// CheckText is CheckName for free-text fields such as subject or message.
func CheckText(field, value string) error {
	return check(field, value, "notblank", "must be non-empty text")
}

// CheckEmail requires a local@domain.tld shaped address.
func CheckEmail(field, value string) error {
	if err := CheckName(field, value); err != nil {
		return err
	}
	return check(field, value, "basicemail", "must be a valid email address")
}

// CheckPhone requires a digit-group phone number such as 905-555-1234.
func CheckPhone(field, value string) error {
	if err := CheckName(field, value); err != nil {
		return err
	}
	return check(field, value, "phone", "must be a valid phone number")
}

// CheckMinLength requires at least n characters.
func CheckMinLength(field, value string, n int) error {
	return check(field, value, fmt.Sprintf("min=%d", n), fmt.Sprintf("must be at least %d characters", n))
}

func check(field, value, tag, reason string) error {
	if err := validate.Var(value, tag); err != nil {
		return Invalid(field, reason)
	}
	return nil
}
