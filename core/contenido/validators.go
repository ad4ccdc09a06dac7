package contenido

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tupad/organizador/core"
)

var (
	fuenteTag  = "fuente"
	fuenteText = "los enlaces y videos requieren una url o un archivo"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(contenidoStructValidation, Contenido{})
	core.RegisterCustomTranslation(validate, translator, fuenteTag, fuenteText)
}

func contenidoStructValidation(sl validator.StructLevel) {
	c, ok := sl.Current().Interface().(Contenido)
	if !ok {
		return
	}
	if (c.Tipo == TipoEnlace || c.Tipo == TipoVideo) && !c.URL.Valid && !c.Archivo.Valid {
		sl.ReportError(c.URL, "url", "URL", fuenteTag, "")
	}
}
