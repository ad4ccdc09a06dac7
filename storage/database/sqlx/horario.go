package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/horario"
)

type horarioRepository struct {
	table[horario.Horario]
}

func NewHorarioRepository(db *sqlx.DB, engine string) *horarioRepository {
	return &horarioRepository{
		table: newTable[horario.Horario](db, engine, "horarios", horario.ErrNotFound,
			[]string{"dia_semana ASC", "hora_inicio ASC"},
			"materia_id", "dia_semana", "hora_inicio", "hora_fin", "tipo_clase", "created_at"),
	}
}

func horarioValues(h horario.Horario) map[string]interface{} {
	return map[string]interface{}{
		"materia_id":   h.MateriaID,
		"comision_id":  h.ComisionID,
		"profesor_id":  h.ProfesorID,
		"dia_semana":   h.DiaSemana,
		"hora_inicio":  h.HoraInicio,
		"hora_fin":     h.HoraFin,
		"tipo_clase":   h.TipoClase,
		"link_reunion": h.LinkReunion,
		"tipo_reunion": h.TipoReunion,
		"updated_at":   now(),
	}
}

func (repo *horarioRepository) Query(ctx context.Context, filter horario.Filter, page core.PageParams, ordering []core.DBOrdering) ([]horario.Horario, int, error) {
	filter.Clean()
	where := sq.And{}
	if filter.MateriaID > 0 {
		where = append(where, sq.Eq{"materia_id": filter.MateriaID})
	}
	if filter.ComisionID > 0 {
		where = append(where, sq.Eq{"comision_id": filter.ComisionID})
	}
	if filter.ProfesorID > 0 {
		where = append(where, sq.Eq{"profesor_id": filter.ProfesorID})
	}
	if filter.DiaSemana > 0 {
		where = append(where, sq.Eq{"dia_semana": filter.DiaSemana})
	}
	if filter.TipoClase != "" {
		where = append(where, sq.Eq{"tipo_clase": filter.TipoClase})
	}
	return repo.query(ctx, where, page, ordering)
}

func (repo *horarioRepository) Get(ctx context.Context, id int) (horario.Horario, error) {
	return repo.getByID(ctx, id)
}

func (repo *horarioRepository) Create(ctx context.Context, h horario.Horario) (horario.Horario, error) {
	values := horarioValues(h)
	values["created_at"] = values["updated_at"]
	id, err := repo.insert(ctx, repo.db, values)
	if err != nil {
		return horario.Horario{}, err
	}
	return repo.getByID(ctx, id)
}

func (repo *horarioRepository) Update(ctx context.Context, h horario.Horario) (horario.Horario, error) {
	return repo.updateByID(ctx, h.ID, horarioValues(h))
}

func (repo *horarioRepository) Delete(ctx context.Context, id int) error {
	return repo.delete(ctx, sq.Eq{"id": id})
}
