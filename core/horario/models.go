package horario

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/tupad/organizador/core"
)

// Tipos de clase
const (
	ClaseTeorica     = "teorica"
	ClasePractica    = "practica"
	ClaseLaboratorio = "laboratorio"
)

// Tipos de reunión
const (
	ReunionPresencial = "presencial"
	ReunionVirtual    = "virtual"
	ReunionHibrida    = "hibrida"
)

var (
	TiposClase   = []string{ClaseTeorica, ClasePractica, ClaseLaboratorio}
	TiposReunion = []string{ReunionPresencial, ReunionVirtual, ReunionHibrida}

	// DiasSemana is indexed by DiaSemana (1 = lunes).
	DiasSemana = []string{"", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado", "domingo"}
)

// Horario is a weekly class meeting. HoraInicio and HoraFin are "HH:MM" strings,
// which keeps them comparable as plain strings.
type Horario struct {
	ID          int         `json:"id" db:"id"`
	MateriaID   int         `json:"materia_id" db:"materia_id" validate:"required"`
	ComisionID  null.Int    `json:"comision_id" db:"comision_id"`
	ProfesorID  null.Int    `json:"profesor_id" db:"profesor_id"`
	DiaSemana   int         `json:"dia_semana" db:"dia_semana" validate:"required,min=1,max=7"`
	HoraInicio  string      `json:"hora_inicio" db:"hora_inicio" validate:"required,hhmm"`
	HoraFin     string      `json:"hora_fin" db:"hora_fin" validate:"required,hhmm"`
	TipoClase   string      `json:"tipo_clase" db:"tipo_clase" validate:"required,oneof=teorica practica laboratorio"`
	LinkReunion null.String `json:"link_reunion" db:"link_reunion" validate:"omitempty,url"`
	TipoReunion string      `json:"tipo_reunion" db:"tipo_reunion" validate:"omitempty,oneof=presencial virtual hibrida"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

func (h Horario) GetID() int { return h.ID }

func (h Horario) WithID(id int) Horario {
	h.ID = id
	return h
}

func (h Horario) Clean() Horario {
	h.HoraInicio = core.CleanString(h.HoraInicio)
	h.HoraFin = core.CleanString(h.HoraFin)
	h.TipoClase = core.CleanString(h.TipoClase, true /* lower */)
	h.TipoReunion = core.CleanString(h.TipoReunion, true /* lower */)
	if h.LinkReunion.Valid {
		h.LinkReunion.String = core.CleanString(h.LinkReunion.String)
		h.LinkReunion.Valid = h.LinkReunion.String != ""
	}
	return h
}

func (h Horario) Dia() string {
	if h.DiaSemana < 1 || h.DiaSemana >= len(DiasSemana) {
		return ""
	}
	return DiasSemana[h.DiaSemana]
}

type Filter struct {
	MateriaID  int
	ComisionID int
	ProfesorID int
	DiaSemana  int
	TipoClase  string
}

func (f *Filter) Clean() {
	f.TipoClase = core.CleanString(f.TipoClase, true /* lower */)
}
