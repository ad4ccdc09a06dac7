package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tupad/organizador/core/dashboard"
	"github.com/tupad/organizador/core/evaluacion"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/storage/database"
)

type dashboardRepository struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func NewDashboardRepository(db *sqlx.DB, engine string) *dashboardRepository {
	return &dashboardRepository{db: db, sb: database.StatementBuilder(engine)}
}

func (repo *dashboardRepository) count(table string, where sq.Sqlizer) sq.SelectBuilder {
	stmt := sq.Select("COUNT(*)").From(table)
	if where != nil {
		stmt = stmt.Where(where)
	}
	return stmt
}

func (repo *dashboardRepository) Stats(ctx context.Context, from, to time.Time) (dashboard.Stats, error) {
	counts := []struct {
		alias string
		stmt  sq.SelectBuilder
	}{
		{"materias", repo.count("materias", nil)},
		{"materias_activas", repo.count("materias", sq.Eq{"estado": materia.EstadoActiva})},
		{"profesores", repo.count("profesores", nil)},
		{"horarios", repo.count("horarios", nil)},
		{"contenidos", repo.count("contenidos", nil)},
		{"evaluaciones", repo.count("evaluaciones", nil)},
		{"evaluaciones_proximas", repo.count("evaluaciones", sq.And{
			sq.NotEq{"estado": evaluacion.EstadoCancelada},
			sq.GtOrEq{"fecha_evaluacion": from.UTC()},
			sq.LtOrEq{"fecha_evaluacion": to.UTC()},
		})},
		{"usuarios", repo.count("usuarios", nil)},
	}

	// one round trip: SELECT (SELECT COUNT(*) ...) AS materias, ...
	stmt := repo.sb.Select()
	for _, c := range counts {
		stmt = stmt.Column(sq.Alias(c.stmt, c.alias))
	}
	query, args, err := stmt.ToSql()
	if err != nil {
		return dashboard.Stats{}, err
	}

	var stats dashboard.Stats
	if err = repo.db.GetContext(ctx, &stats, query, args...); err != nil {
		return dashboard.Stats{}, errors.Wrap(err, "computing dashboard stats")
	}
	return stats, nil
}
