package router

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// phonePattern accepts E.164-style numbers with optional separators,
// e.g. "+254712345678" or "0712 345 678".
var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s-]{6,17}$`)

func validatePhone(fl validator.FieldLevel) bool {
	return phonePattern.MatchString(fl.Field().String())
}

// registerValidators installs custom binding tags on gin's validator.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("phone", validatePhone)
	}
}
