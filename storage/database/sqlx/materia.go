package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/materia"
)

type materiaRepository struct {
	table[materia.Materia]
	comisiones table[materia.Comision]
}

func NewMateriaRepository(db *sqlx.DB, engine string) *materiaRepository {
	return &materiaRepository{
		table: newTable[materia.Materia](db, engine, "materias", materia.ErrNotFound,
			[]string{"nombre ASC"},
			"nombre", "codigo", "creditos", "estado", "created_at"),
		comisiones: newTable[materia.Comision](db, engine, "comisiones", materia.ErrComisionNotFound,
			[]string{"nombre ASC"}),
	}
}

func materiaValues(m materia.Materia) map[string]interface{} {
	return map[string]interface{}{
		"nombre":      m.Nombre,
		"codigo":      m.Codigo,
		"descripcion": m.Descripcion,
		"creditos":    m.Creditos,
		"estado":      m.Estado,
		"updated_at":  now(),
	}
}

func (repo *materiaRepository) Query(ctx context.Context, filter materia.Filter, page core.PageParams, ordering []core.DBOrdering) ([]materia.Materia, int, error) {
	filter.Clean()
	where := sq.And{}
	if filter.Search != "" {
		where = append(where, search(filter.Search, "nombre", "codigo"))
	}
	if filter.Estado != "" {
		where = append(where, sq.Eq{"estado": filter.Estado})
	}
	return repo.query(ctx, where, page, ordering)
}

func (repo *materiaRepository) Get(ctx context.Context, id int) (materia.Materia, error) {
	return repo.getByID(ctx, id)
}

func (repo *materiaRepository) Create(ctx context.Context, m materia.Materia) (materia.Materia, error) {
	values := materiaValues(m)
	values["created_at"] = values["updated_at"]
	id, err := repo.insert(ctx, repo.db, values)
	if err != nil {
		return materia.Materia{}, err
	}
	return repo.getByID(ctx, id)
}

func (repo *materiaRepository) CreateWithComision(ctx context.Context, m materia.Materia, c materia.Comision) (materia.Materia, error) {
	var id int
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		values := materiaValues(m)
		ts := values["updated_at"]
		values["created_at"] = ts

		var err error
		if id, err = repo.insert(ctx, tx, values); err != nil {
			return err
		}
		_, err = repo.comisiones.insert(ctx, tx, map[string]interface{}{
			"materia_id": id,
			"nombre":     c.Nombre,
			"capacidad":  c.Capacidad,
			"created_at": ts,
			"updated_at": ts,
		})
		return err
	})
	if err != nil {
		return materia.Materia{}, err
	}
	return repo.getByID(ctx, id)
}

func (repo *materiaRepository) Update(ctx context.Context, m materia.Materia) (materia.Materia, error) {
	return repo.updateByID(ctx, m.ID, materiaValues(m))
}

func (repo *materiaRepository) Delete(ctx context.Context, id int) error {
	return repo.delete(ctx, sq.Eq{"id": id})
}

func (repo *materiaRepository) CheckCodigoUniqueness(ctx context.Context, codigo string, excludedID int) error {
	found, err := repo.exists(ctx, sq.Eq{"codigo": codigo}, excludedID)
	if err != nil {
		return err
	}
	if found {
		return materia.ErrCodigoExists
	}
	return nil
}

func (repo *materiaRepository) QueryComisiones(ctx context.Context, materiaID int) ([]materia.Comision, error) {
	comisiones, err := repo.comisiones.selectAll(ctx, sq.Eq{"materia_id": materiaID}, "nombre ASC", "id ASC")
	if err != nil {
		return nil, err
	}
	if comisiones == nil {
		comisiones = []materia.Comision{}
	}
	return comisiones, nil
}

func (repo *materiaRepository) GetComision(ctx context.Context, id int) (materia.Comision, error) {
	return repo.comisiones.getByID(ctx, id)
}

func (repo *materiaRepository) CreateComision(ctx context.Context, c materia.Comision) (materia.Comision, error) {
	ts := now()
	id, err := repo.comisiones.insert(ctx, repo.db, map[string]interface{}{
		"materia_id": c.MateriaID,
		"nombre":     c.Nombre,
		"capacidad":  c.Capacidad,
		"created_at": ts,
		"updated_at": ts,
	})
	if err != nil {
		return materia.Comision{}, err
	}
	return repo.comisiones.getByID(ctx, id)
}

func (repo *materiaRepository) DeleteComision(ctx context.Context, id int) error {
	return repo.comisiones.delete(ctx, sq.Eq{"id": id})
}
