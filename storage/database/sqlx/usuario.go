package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/usuario"
)

type usuarioRepository struct {
	table[usuario.Usuario]
}

func NewUsuarioRepository(db *sqlx.DB, engine string) *usuarioRepository {
	return &usuarioRepository{
		table: newTable[usuario.Usuario](db, engine, "usuarios", usuario.ErrNotFound,
			[]string{"nombre ASC", "apellido ASC"},
			"nombre", "apellido", "email", "rol", "activo", "ultimo_acceso", "created_at"),
	}
}

func (repo *usuarioRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedID int) error {
	found, err := repo.exists(ctx, sq.Eq{"email": email}, excludedID)
	if err != nil {
		return err
	}
	if found {
		return usuario.ErrEmailExists
	}
	return nil
}

func (repo *usuarioRepository) Create(ctx context.Context, usr usuario.Usuario) (usuario.Usuario, error) {
	ts := now()
	id, err := repo.insert(ctx, repo.db, map[string]interface{}{
		"nombre":        usr.Nombre,
		"apellido":      usr.Apellido,
		"email":         usr.Email,
		"password_hash": usr.PasswordHash,
		"rol":           usr.Rol,
		"activo":        usr.Activo,
		"created_at":    ts,
		"updated_at":    ts,
	})
	if err != nil {
		return usuario.Usuario{}, err
	}
	return repo.getByID(ctx, id)
}

func (repo *usuarioRepository) Query(ctx context.Context, filter usuario.QueryFilter, page core.PageParams, ordering []core.DBOrdering) ([]usuario.Usuario, int, error) {
	where := sq.And{}
	if filter.Search != "" {
		where = append(where, search(filter.Search, "nombre", "apellido", "email"))
	}
	if filter.Rol != "" {
		where = append(where, sq.Eq{"rol": filter.Rol})
	}
	if filter.Activo != nil {
		where = append(where, sq.Eq{"activo": *filter.Activo})
	}
	return repo.query(ctx, where, page, ordering)
}

func (repo *usuarioRepository) GetByID(ctx context.Context, id int) (usuario.Usuario, error) {
	return repo.getByID(ctx, id)
}

func (repo *usuarioRepository) GetByEmail(ctx context.Context, email string) (usuario.Usuario, error) {
	return repo.get(ctx, repo.db, sq.Eq{"email": email})
}

func (repo *usuarioRepository) Activos(ctx context.Context) ([]usuario.Usuario, error) {
	return repo.selectAll(ctx, sq.Eq{"activo": true}, "id ASC")
}

func (repo *usuarioRepository) Update(ctx context.Context, usr usuario.Usuario) (usuario.Usuario, error) {
	return repo.updateByID(ctx, usr.ID, map[string]interface{}{
		"nombre":        usr.Nombre,
		"apellido":      usr.Apellido,
		"email":         usr.Email,
		"password_hash": usr.PasswordHash,
		"rol":           usr.Rol,
		"activo":        usr.Activo,
		"updated_at":    now(),
	})
}

func (repo *usuarioRepository) SetUltimoAcceso(ctx context.Context, id int, at time.Time) error {
	return repo.update(ctx, repo.db, sq.Eq{"id": id}, map[string]interface{}{"ultimo_acceso": at.UTC()})
}

func (repo *usuarioRepository) DeleteByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return repo.delete(ctx, sq.Eq{"id": ids})
}
