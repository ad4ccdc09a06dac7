package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/contenido"
)

type contenidoRepository struct {
	table[contenido.Contenido]
}

func NewContenidoRepository(db *sqlx.DB, engine string) *contenidoRepository {
	return &contenidoRepository{
		table: newTable[contenido.Contenido](db, engine, "contenidos", contenido.ErrNotFound,
			[]string{"created_at DESC"},
			"titulo", "materia_id", "tipo", "autor", "estado", "fecha_publicacion", "created_at"),
	}
}

// contenidoValues leaves out archivo, which only SetArchivo writes.
func contenidoValues(c contenido.Contenido) map[string]interface{} {
	return map[string]interface{}{
		"titulo":            c.Titulo,
		"materia_id":        c.MateriaID,
		"descripcion":       c.Descripcion,
		"tipo":              c.Tipo,
		"autor":             c.Autor,
		"url":               c.URL,
		"estado":            c.Estado,
		"fecha_publicacion": c.FechaPublicacion,
		"updated_at":        now(),
	}
}

func (repo *contenidoRepository) Query(ctx context.Context, filter contenido.Filter, page core.PageParams, ordering []core.DBOrdering) ([]contenido.Contenido, int, error) {
	filter.Clean()
	where := sq.And{}
	if filter.Search != "" {
		where = append(where, search(filter.Search, "titulo", "autor"))
	}
	if filter.MateriaID > 0 {
		where = append(where, sq.Eq{"materia_id": filter.MateriaID})
	}
	if filter.Tipo != "" {
		where = append(where, sq.Eq{"tipo": filter.Tipo})
	}
	if filter.Estado != "" {
		where = append(where, sq.Eq{"estado": filter.Estado})
	}
	return repo.query(ctx, where, page, ordering)
}

func (repo *contenidoRepository) Get(ctx context.Context, id int) (contenido.Contenido, error) {
	return repo.getByID(ctx, id)
}

func (repo *contenidoRepository) Create(ctx context.Context, c contenido.Contenido) (contenido.Contenido, error) {
	values := contenidoValues(c)
	values["created_at"] = values["updated_at"]
	id, err := repo.insert(ctx, repo.db, values)
	if err != nil {
		return contenido.Contenido{}, err
	}
	return repo.getByID(ctx, id)
}

func (repo *contenidoRepository) Update(ctx context.Context, c contenido.Contenido) (contenido.Contenido, error) {
	return repo.updateByID(ctx, c.ID, contenidoValues(c))
}

func (repo *contenidoRepository) SetArchivo(ctx context.Context, id int, archivo null.String) (contenido.Contenido, error) {
	return repo.updateByID(ctx, id, map[string]interface{}{
		"archivo":    archivo,
		"updated_at": now(),
	})
}

func (repo *contenidoRepository) Delete(ctx context.Context, id int) error {
	return repo.delete(ctx, sq.Eq{"id": id})
}
