package evaluacion

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tupad/organizador/core"
)

var (
	fechaLimiteTag  = "fechalimite"
	fechaLimiteText = "la fecha límite debe ser igual o posterior a la fecha de evaluación"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(evaluacionStructValidation, Evaluacion{})
	core.RegisterCustomTranslation(validate, translator, fechaLimiteTag, fechaLimiteText)
}

// evaluacionStructValidation checks fecha_limite >= fecha_evaluacion.
func evaluacionStructValidation(sl validator.StructLevel) {
	e, ok := sl.Current().Interface().(Evaluacion)
	if !ok {
		return
	}
	if e.FechaLimite != nil && !e.FechaEvaluacion.IsZero() && e.FechaLimite.Before(e.FechaEvaluacion) {
		sl.ReportError(e.FechaLimite, "fecha_limite", "FechaLimite", fechaLimiteTag, "")
	}
}
