package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/evaluacion"
)

type evaluacionRepository struct {
	table[evaluacion.Evaluacion]
}

func NewEvaluacionRepository(db *sqlx.DB, engine string) *evaluacionRepository {
	return &evaluacionRepository{
		table: newTable[evaluacion.Evaluacion](db, engine, "evaluaciones", evaluacion.ErrNotFound,
			[]string{"fecha_evaluacion ASC"},
			"titulo", "materia_id", "tipo", "fecha_evaluacion", "fecha_limite", "peso", "estado", "created_at"),
	}
}

func evaluacionValues(e evaluacion.Evaluacion) map[string]interface{} {
	return map[string]interface{}{
		"titulo":           e.Titulo,
		"materia_id":       e.MateriaID,
		"descripcion":      e.Descripcion,
		"tipo":             e.Tipo,
		"fecha_evaluacion": e.FechaEvaluacion.UTC(),
		"fecha_limite":     e.FechaLimite,
		"puntaje_total":    e.PuntajeTotal,
		"peso":             e.Peso,
		"estado":           e.Estado,
		"updated_at":       now(),
	}
}

func (repo *evaluacionRepository) Query(ctx context.Context, filter evaluacion.Filter, page core.PageParams, ordering []core.DBOrdering) ([]evaluacion.Evaluacion, int, error) {
	filter.Clean()
	where := sq.And{}
	if filter.MateriaID > 0 {
		where = append(where, sq.Eq{"materia_id": filter.MateriaID})
	}
	if filter.Tipo != "" {
		where = append(where, sq.Eq{"tipo": filter.Tipo})
	}
	if filter.Estado != "" {
		where = append(where, sq.Eq{"estado": filter.Estado})
	}
	if !filter.Desde.IsZero() {
		where = append(where, sq.GtOrEq{"fecha_evaluacion": filter.Desde.UTC()})
	}
	switch {
	case filter.Hasta.IsZero():
	case filter.HastaDia:
		where = append(where, sq.Lt{"fecha_evaluacion": filter.Hasta.UTC().AddDate(0, 0, 1)})
	default:
		where = append(where, sq.LtOrEq{"fecha_evaluacion": filter.Hasta.UTC()})
	}
	return repo.query(ctx, where, page, ordering)
}

func (repo *evaluacionRepository) Get(ctx context.Context, id int) (evaluacion.Evaluacion, error) {
	return repo.getByID(ctx, id)
}

func (repo *evaluacionRepository) Create(ctx context.Context, e evaluacion.Evaluacion) (evaluacion.Evaluacion, error) {
	values := evaluacionValues(e)
	values["created_at"] = values["updated_at"]
	id, err := repo.insert(ctx, repo.db, values)
	if err != nil {
		return evaluacion.Evaluacion{}, err
	}
	return repo.getByID(ctx, id)
}

func (repo *evaluacionRepository) Update(ctx context.Context, e evaluacion.Evaluacion) (evaluacion.Evaluacion, error) {
	return repo.updateByID(ctx, e.ID, evaluacionValues(e))
}

func (repo *evaluacionRepository) Delete(ctx context.Context, id int) error {
	return repo.delete(ctx, sq.Eq{"id": id})
}

// QueryDue matches on fecha_limite when set, else on fecha_evaluacion.
func (repo *evaluacionRepository) QueryDue(ctx context.Context, from, to time.Time) ([]evaluacion.Evaluacion, error) {
	from, to = from.UTC(), to.UTC()
	where := sq.And{
		sq.NotEq{"estado": []string{evaluacion.EstadoCancelada, evaluacion.EstadoFinalizada}},
		sq.Or{
			sq.And{sq.NotEq{"fecha_limite": nil}, sq.GtOrEq{"fecha_limite": from}, sq.LtOrEq{"fecha_limite": to}},
			sq.And{sq.Eq{"fecha_limite": nil}, sq.GtOrEq{"fecha_evaluacion": from}, sq.LtOrEq{"fecha_evaluacion": to}},
		},
	}
	evals, err := repo.selectAll(ctx, where, "fecha_evaluacion ASC", "id ASC")
	if err != nil {
		return nil, err
	}
	return evals, nil
}
