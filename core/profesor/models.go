package profesor

import (
	"time"

	"github.com/tupad/organizador/core"
)

// Tipos
const (
	TipoTitular  = "titular"
	TipoAsociado = "asociado"
	TipoAdjunto  = "adjunto"
	TipoJTP      = "jtp"
	TipoAyudante = "ayudante"
)

var Tipos = []string{TipoTitular, TipoAsociado, TipoAdjunto, TipoJTP, TipoAyudante}

type Profesor struct {
	ID        int       `json:"id" db:"id"`
	Nombre    string    `json:"nombre" db:"nombre" validate:"required,max=80"`
	Apellido  string    `json:"apellido" db:"apellido" validate:"required,max=80"`
	Email     string    `json:"email" db:"email" validate:"required,email"`
	Tipo      string    `json:"tipo" db:"tipo" validate:"required,oneof=titular asociado adjunto jtp ayudante"`
	Telefono  string    `json:"telefono" db:"telefono" validate:"max=30"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (p Profesor) GetID() int { return p.ID }

func (p Profesor) WithID(id int) Profesor {
	p.ID = id
	return p
}

func (p Profesor) Clean() Profesor {
	p.Nombre = core.CleanString(p.Nombre)
	p.Apellido = core.CleanString(p.Apellido)
	p.Email = core.CleanString(p.Email, true /* lower */)
	p.Tipo = core.CleanString(p.Tipo, true /* lower */)
	p.Telefono = core.CleanString(p.Telefono)
	return p
}

func (p Profesor) NombreCompleto() string {
	return p.Nombre + " " + p.Apellido
}

type Filter struct {
	Search string
	Tipo   string
}

func (f *Filter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Tipo = core.CleanString(f.Tipo, true /* lower */)
}
