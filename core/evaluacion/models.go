package evaluacion

import (
	"time"

	"github.com/tupad/organizador/core"
)

// Tipos
const (
	TipoParcial       = "parcial"
	TipoFinal         = "final"
	TipoRecuperatorio = "recuperatorio"
	TipoTP            = "tp"
	TipoQuiz          = "quiz"
)

// Estados
const (
	EstadoProgramada = "programada"
	EstadoEnCurso    = "en_curso"
	EstadoFinalizada = "finalizada"
	EstadoCancelada  = "cancelada"
)

var (
	Tipos   = []string{TipoParcial, TipoFinal, TipoRecuperatorio, TipoTP, TipoQuiz}
	Estados = []string{EstadoProgramada, EstadoEnCurso, EstadoFinalizada, EstadoCancelada}
)

type Evaluacion struct {
	ID              int        `json:"id" db:"id"`
	Titulo          string     `json:"titulo" db:"titulo" validate:"required,max=150"`
	MateriaID       int        `json:"materia_id" db:"materia_id" validate:"required"`
	Descripcion     string     `json:"descripcion" db:"descripcion" validate:"max=2000"`
	Tipo            string     `json:"tipo" db:"tipo" validate:"required,oneof=parcial final recuperatorio tp quiz"`
	FechaEvaluacion time.Time  `json:"fecha_evaluacion" db:"fecha_evaluacion" validate:"required"`
	FechaLimite     *time.Time `json:"fecha_limite" db:"fecha_limite"`
	PuntajeTotal    float64    `json:"puntaje_total" db:"puntaje_total" validate:"gt=0"`
	Peso            float64    `json:"peso" db:"peso" validate:"min=0,max=100"`
	Estado          string     `json:"estado" db:"estado" validate:"required,oneof=programada en_curso finalizada cancelada"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

func (e Evaluacion) GetID() int { return e.ID }

func (e Evaluacion) WithID(id int) Evaluacion {
	e.ID = id
	return e
}

func (e Evaluacion) Clean() Evaluacion {
	e.Titulo = core.CleanString(e.Titulo)
	e.Descripcion = core.CleanString(e.Descripcion)
	e.Tipo = core.CleanString(e.Tipo, true /* lower */)
	e.Estado = core.CleanString(e.Estado, true /* lower */)
	if e.Estado == "" {
		e.Estado = EstadoProgramada
	}
	if !e.FechaEvaluacion.IsZero() {
		e.FechaEvaluacion = e.FechaEvaluacion.UTC()
	}
	if e.FechaLimite != nil {
		lim := e.FechaLimite.UTC()
		e.FechaLimite = &lim
	}
	return e
}

// Vencimiento is the instant the evaluacion is due: its FechaLimite if set, else its FechaEvaluacion.
func (e Evaluacion) Vencimiento() time.Time {
	if e.FechaLimite != nil {
		return *e.FechaLimite
	}
	return e.FechaEvaluacion
}

type Filter struct {
	MateriaID int
	Tipo      string
	Estado    string
	Desde     time.Time
	Hasta     time.Time
	// HastaDia makes Hasta a calendar day: everything on that day is included.
	HastaDia bool
}

func (f *Filter) Clean() {
	f.Tipo = core.CleanString(f.Tipo, true /* lower */)
	f.Estado = core.CleanString(f.Estado, true /* lower */)
}
