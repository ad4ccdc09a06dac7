package horario

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tupad/organizador/core"
)

var (
	horaFinTag  = "horafin"
	horaFinText = "la hora de fin debe ser posterior a la hora de inicio"

	linkReunionTag  = "linkreunion"
	linkReunionText = "las clases virtuales o híbridas requieren un link de reunión"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(horarioStructValidation, Horario{})
	core.RegisterCustomTranslation(validate, translator, horaFinTag, horaFinText)
	core.RegisterCustomTranslation(validate, translator, linkReunionTag, linkReunionText)
}

// horarioStructValidation checks the rules spanning several fields:
// - hora_fin > hora_inicio
// - virtual & hibrida meetings need a link
func horarioStructValidation(sl validator.StructLevel) {
	h, ok := sl.Current().Interface().(Horario)
	if !ok {
		return
	}
	if h.HoraInicio != "" && h.HoraFin != "" && h.HoraFin <= h.HoraInicio {
		sl.ReportError(h.HoraFin, "hora_fin", "HoraFin", horaFinTag, "")
	}
	if (h.TipoReunion == ReunionVirtual || h.TipoReunion == ReunionHibrida) && !h.LinkReunion.Valid {
		sl.ReportError(h.LinkReunion, "link_reunion", "LinkReunion", linkReunionTag, "")
	}
}
