package materia

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tupad/organizador/core"
)

var (
	codigoTag   = "codigo"
	codigoText  = "el código solo admite letras mayúsculas, dígitos, guiones y guiones bajos"
	codigoRegex = regexp.MustCompile(`^[A-Z0-9_-]+$`)
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(codigoTag, func(fl validator.FieldLevel) bool {
		return codigoRegex.MatchString(fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, codigoTag, codigoText)
}
