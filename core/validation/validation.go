// Package validation assembles the validator shared by the API server and the client,
// so both reject the same input with the same messages.
package validation

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/contenido"
	"github.com/tupad/organizador/core/evaluacion"
	"github.com/tupad/organizador/core/horario"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/usuario"
)

func New() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()

	core.InitValidators(validate, translator)
	usuario.InitValidators(validate, translator)
	materia.InitValidators(validate, translator)
	horario.InitValidators(validate, translator)
	contenido.InitValidators(validate, translator)
	evaluacion.InitValidators(validate, translator)
	return validate, translator
}

// Errors translates err when it holds field validation errors.
// ok is false for any other kind of error.
func Errors(err error, translator ut.Translator) (fields map[string]string, ok bool) {
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, false
	}
	return core.TranslateErrors(vErrs, translator), true
}
