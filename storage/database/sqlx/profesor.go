package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/profesor"
)

type profesorRepository struct {
	table[profesor.Profesor]
}

func NewProfesorRepository(db *sqlx.DB, engine string) *profesorRepository {
	return &profesorRepository{
		table: newTable[profesor.Profesor](db, engine, "profesores", profesor.ErrNotFound,
			[]string{"apellido ASC", "nombre ASC"},
			"nombre", "apellido", "email", "tipo", "created_at"),
	}
}

func profesorValues(p profesor.Profesor) map[string]interface{} {
	return map[string]interface{}{
		"nombre":     p.Nombre,
		"apellido":   p.Apellido,
		"email":      p.Email,
		"tipo":       p.Tipo,
		"telefono":   p.Telefono,
		"updated_at": now(),
	}
}

func (repo *profesorRepository) Query(ctx context.Context, filter profesor.Filter, page core.PageParams, ordering []core.DBOrdering) ([]profesor.Profesor, int, error) {
	filter.Clean()
	where := sq.And{}
	if filter.Search != "" {
		where = append(where, search(filter.Search, "nombre", "apellido", "email"))
	}
	if filter.Tipo != "" {
		where = append(where, sq.Eq{"tipo": filter.Tipo})
	}
	return repo.query(ctx, where, page, ordering)
}

func (repo *profesorRepository) Get(ctx context.Context, id int) (profesor.Profesor, error) {
	return repo.getByID(ctx, id)
}

func (repo *profesorRepository) Create(ctx context.Context, p profesor.Profesor) (profesor.Profesor, error) {
	values := profesorValues(p)
	values["created_at"] = values["updated_at"]
	id, err := repo.insert(ctx, repo.db, values)
	if err != nil {
		return profesor.Profesor{}, err
	}
	return repo.getByID(ctx, id)
}

func (repo *profesorRepository) Update(ctx context.Context, p profesor.Profesor) (profesor.Profesor, error) {
	return repo.updateByID(ctx, p.ID, profesorValues(p))
}

func (repo *profesorRepository) Delete(ctx context.Context, id int) error {
	return repo.delete(ctx, sq.Eq{"id": id})
}

func (repo *profesorRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedID int) error {
	found, err := repo.exists(ctx, sq.Eq{"email": email}, excludedID)
	if err != nil {
		return err
	}
	if found {
		return profesor.ErrEmailExists
	}
	return nil
}
