package handler

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/publicsuffix"

	"github.com/authlab/members/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Field names in reported violations come from the form tag.
func NewValidator() *echoValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	_ = v.RegisterValidation(domain.RuleMax, maxLength)
	_ = v.RegisterValidation(domain.RuleEmailDomain, emailDomain)
	return &echoValidator{v: v}
}

// maxLength bounds a string by its UTF-16 code units, so a character outside
// the basic plane counts twice. At 20 units a password is at most 60 bytes,
// below bcrypt's 72-byte limit.
func maxLength(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(utf16.Encode([]rune(fl.Field().String()))) <= limit
}

// emailDomain requires the address to end in an ICANN top-level domain.
func emailDomain(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	at := strings.LastIndexByte(addr, '@')
	if at < 0 {
		return false
	}
	host := strings.ToLower(strings.TrimSuffix(addr[at+1:], "."))
	tld := host[strings.LastIndexByte(host, '.')+1:]
	if tld == "" || tld == host {
		return false
	}
	_, icann := publicsuffix.PublicSuffix(tld)
	return icann
}

// Validate satisfies the echo.Validator interface. Rule failures are reported
// as a *domain.ValidationError listing violations in field order.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			violations := make([]domain.Violation, 0, len(ve))
			for _, fe := range ve {
				violations = append(violations, fieldViolation(fe))
			}
			return domain.NewValidationError(violations...)
		}
		return err
	}
	return nil
}

// fieldViolation converts a single FieldError into a domain violation.
func fieldViolation(fe validator.FieldError) domain.Violation {
	return domain.Violation{
		Field: fe.Field(),
		Rule:  fe.Tag(),
		Param: fe.Param(),
	}
}
