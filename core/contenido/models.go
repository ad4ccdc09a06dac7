package contenido

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tupad/organizador/core"
)

// Tipos
const (
	TipoDocumento    = "documento"
	TipoVideo        = "video"
	TipoEnlace       = "enlace"
	TipoPresentacion = "presentacion"
	TipoOtro         = "otro"
)

// Estados
const (
	EstadoBorrador  = "borrador"
	EstadoPublicado = "publicado"
	EstadoArchivado = "archivado"
)

var (
	Tipos   = []string{TipoDocumento, TipoVideo, TipoEnlace, TipoPresentacion, TipoOtro}
	Estados = []string{EstadoBorrador, EstadoPublicado, EstadoArchivado}

	nowFunc = time.Now // mockable
)

type Contenido struct {
	ID               int         `json:"id" db:"id"`
	Titulo           string      `json:"titulo" db:"titulo" validate:"required,max=150"`
	MateriaID        int         `json:"materia_id" db:"materia_id" validate:"required"`
	Descripcion      string      `json:"descripcion" db:"descripcion" validate:"max=2000"`
	Tipo             string      `json:"tipo" db:"tipo" validate:"required,oneof=documento video enlace presentacion otro"`
	Autor            string      `json:"autor" db:"autor" validate:"max=120"`
	URL              null.String `json:"url" db:"url" validate:"omitempty,url"`
	Archivo          null.String `json:"archivo" db:"archivo"` // name of the uploaded file, set by upload only
	Estado           string      `json:"estado" db:"estado" validate:"required,oneof=borrador publicado archivado"`
	FechaPublicacion *time.Time  `json:"fecha_publicacion" db:"fecha_publicacion"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

func (c Contenido) GetID() int { return c.ID }

func (c Contenido) WithID(id int) Contenido {
	c.ID = id
	return c
}

func (c Contenido) Clean() Contenido {
	c.Titulo = core.CleanString(c.Titulo)
	c.Descripcion = core.CleanString(c.Descripcion)
	c.Tipo = core.CleanString(c.Tipo, true /* lower */)
	c.Autor = core.CleanString(c.Autor)
	c.Estado = core.CleanString(c.Estado, true /* lower */)
	if c.Estado == "" {
		c.Estado = EstadoBorrador
	}
	if c.URL.Valid {
		c.URL.String = core.CleanString(c.URL.String)
		c.URL.Valid = c.URL.String != ""
	}
	if c.Estado == EstadoPublicado && c.FechaPublicacion == nil {
		now := nowFunc().UTC()
		c.FechaPublicacion = &now
	}
	return c
}

type Filter struct {
	Search    string
	MateriaID int
	Tipo      string
	Estado    string
}

func (f *Filter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Tipo = core.CleanString(f.Tipo, true /* lower */)
	f.Estado = core.CleanString(f.Estado, true /* lower */)
}
