// internal/common/validation/struct.go
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	hhmmRegex = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	once     sync.Once
	validate *validator.Validate
)

// Validator returns the shared validator with the isodate and hhmm tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("isodate", validateISODate)
		_ = v.RegisterValidation("hhmm", validateHHMM)
		validate = v
	})
	return validate
}

// ValidateStruct runs the struct tags on s and flattens failures into ValidationErrors.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Namespace(),
			Message: describe(fe),
		})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "isodate":
		return "must be a YYYY-MM-DD date"
	case "hhmm":
		return "must be an HH:MM time"
	case "email":
		return "must be a valid email address"
	case "ltefield":
		return fmt.Sprintf("must not exceed %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	default:
		return fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
	}
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateHHMM(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

func ValidateEmail(email string) bool {
	return Validator().Var(email, "required,email") == nil
}
