package settings

import (
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	// Language segment plus optional region/script segments, "es-419" style.
	localeTagPattern = regexp.MustCompile(`^[a-zA-Z]{2,3}(-[a-zA-Z0-9]{2,8})*$`)
)

// validatorInstance configures and returns the shared validator instance
// used across the settings package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("locale_tag", func(fl validator.FieldLevel) bool {
			tag := fl.Field().String()
			if tag == "" {
				return true // Allow empty if not required
			}
			return localeTagPattern.MatchString(tag)
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns the configured validator instance for use outside
// the settings package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}
