package materia

import (
	"strings"
	"time"

	"github.com/tupad/organizador/core"
)

// Estados
const (
	EstadoActiva   = "activa"
	EstadoInactiva = "inactiva"
)

var Estados = []string{EstadoActiva, EstadoInactiva}

type Materia struct {
	ID          int       `json:"id" db:"id"`
	Nombre      string    `json:"nombre" db:"nombre" validate:"required,max=120"`
	Codigo      string    `json:"codigo" db:"codigo" validate:"required,max=20,codigo"`
	Descripcion string    `json:"descripcion" db:"descripcion" validate:"max=2000"`
	Creditos    int       `json:"creditos" db:"creditos" validate:"min=0,max=30"`
	Estado      string    `json:"estado" db:"estado" validate:"required,oneof=activa inactiva"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (m Materia) GetID() int { return m.ID }

func (m Materia) WithID(id int) Materia {
	m.ID = id
	return m
}

func (m Materia) Clean() Materia {
	m.Nombre = core.CleanString(m.Nombre)
	m.Codigo = strings.ToUpper(core.CleanString(m.Codigo))
	m.Descripcion = core.CleanString(m.Descripcion)
	m.Estado = core.CleanString(m.Estado, true /* lower */)
	if m.Estado == "" {
		m.Estado = EstadoActiva
	}
	return m
}

// Comision is a section (cohort) of a Materia.
type Comision struct {
	ID        int       `json:"id" db:"id"`
	MateriaID int       `json:"materia_id" db:"materia_id" validate:"required"`
	Nombre    string    `json:"nombre" db:"nombre" validate:"required,max=60"`
	Capacidad int       `json:"capacidad" db:"capacidad" validate:"min=1,max=500"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func (c Comision) Clean() Comision {
	c.Nombre = core.CleanString(c.Nombre)
	return c
}

type Filter struct {
	Search string
	Estado string
}

func (f *Filter) Clean() {
	f.Search = core.CleanString(f.Search)
	f.Estado = core.CleanString(f.Estado, true /* lower */)
}
