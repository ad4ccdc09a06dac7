package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/notificacion"
	"github.com/tupad/organizador/storage/database"
)

type notificacionRepository struct {
	table[notificacion.Notificacion]
}

func NewNotificacionRepository(db *sqlx.DB, engine string) *notificacionRepository {
	return &notificacionRepository{
		table: newTable[notificacion.Notificacion](db, engine, "notificaciones", notificacion.ErrNotFound,
			[]string{"created_at DESC"}),
	}
}

func (repo *notificacionRepository) Create(ctx context.Context, n notificacion.Notificacion) (notificacion.Notificacion, bool, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}
	query, args, err := repo.sb.Insert(repo.name).
		SetMap(map[string]interface{}{
			"usuario_id":    n.UsuarioID,
			"tipo":          n.Tipo,
			"titulo":        n.Titulo,
			"mensaje":       n.Mensaje,
			"leida":         n.Leida,
			"enviado_email": n.EnviadoEmail,
			"referencia":    n.Referencia,
			"created_at":    n.CreatedAt.UTC(),
		}).
		Suffix("ON CONFLICT (usuario_id, referencia) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return n, false, err
	}

	if err = repo.db.QueryRowxContext(ctx, query, args...).Scan(&n.ID); err != nil {
		if err == sql.ErrNoRows {
			return n, false, nil // already notified
		}
		return n, false, database.ConstraintError(errors.Wrap(err, "inserting notificacion"))
	}
	n, err = repo.getByID(ctx, n.ID)
	return n, err == nil, err
}

func (repo *notificacionRepository) QuerySince(ctx context.Context, usuarioID int, since, until time.Time) ([]notificacion.Notificacion, error) {
	where := sq.And{
		sq.Eq{"usuario_id": usuarioID},
		sq.Gt{"created_at": since.UTC()},
		sq.LtOrEq{"created_at": until.UTC()},
	}
	return repo.selectAll(ctx, where, "created_at DESC", "id DESC")
}

func (repo *notificacionRepository) QueryAfter(ctx context.Context, usuarioID, afterID int) ([]notificacion.Notificacion, error) {
	where := sq.And{
		sq.Eq{"usuario_id": usuarioID},
		sq.Gt{"id": afterID},
	}
	return repo.selectAll(ctx, where, "id DESC")
}

func (repo *notificacionRepository) Query(ctx context.Context, usuarioID int, filter notificacion.Filter, page core.PageParams) ([]notificacion.Notificacion, int, error) {
	where := sq.And{sq.Eq{"usuario_id": usuarioID}}
	if filter.Tipo != "" {
		where = append(where, sq.Eq{"tipo": filter.Tipo})
	}
	if filter.Leida != nil {
		where = append(where, sq.Eq{"leida": *filter.Leida})
	}
	return repo.query(ctx, where, page, nil)
}

func (repo *notificacionRepository) CountUnread(ctx context.Context, usuarioID int) (int, error) {
	query, args, err := repo.sb.Select("COUNT(*)").
		From(repo.name).
		Where(sq.Eq{"usuario_id": usuarioID, "leida": false}).
		ToSql()
	if err != nil {
		return 0, err
	}
	var count int
	if err = repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, errors.Wrap(err, "counting unread notificaciones")
	}
	return count, nil
}

func (repo *notificacionRepository) Stats(ctx context.Context, usuarioID int) (notificacion.Stats, error) {
	query, args, err := repo.sb.Select("tipo", "COUNT(*) AS total", "SUM(CASE WHEN leida THEN 0 ELSE 1 END) AS unread").
		From(repo.name).
		Where(sq.Eq{"usuario_id": usuarioID}).
		GroupBy("tipo").
		ToSql()
	if err != nil {
		return notificacion.Stats{}, err
	}

	var rows []struct {
		Tipo   string `db:"tipo"`
		Total  int    `db:"total"`
		Unread int    `db:"unread"`
	}
	if err = repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return notificacion.Stats{}, errors.Wrap(err, "computing notificaciones stats")
	}

	stats := notificacion.Stats{PorTipo: make(map[string]int, len(notificacion.Tipos))}
	for _, t := range notificacion.Tipos {
		stats.PorTipo[t] = 0
	}
	for _, r := range rows {
		stats.Total += r.Total
		stats.Unread += r.Unread
		stats.PorTipo[r.Tipo] = r.Total
	}
	return stats, nil
}

func (repo *notificacionRepository) MarkRead(ctx context.Context, usuarioID, id int) error {
	return repo.update(ctx, repo.db, sq.Eq{"id": id, "usuario_id": usuarioID}, map[string]interface{}{"leida": true})
}

func (repo *notificacionRepository) MarkAllRead(ctx context.Context, usuarioID int) (int, error) {
	query, args, err := repo.sb.Update(repo.name).
		Set("leida", true).
		Where(sq.Eq{"usuario_id": usuarioID, "leida": false}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "marking notificaciones as read")
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (repo *notificacionRepository) MarkEmailed(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return repo.update(ctx, repo.db, sq.Eq{"id": ids}, map[string]interface{}{"enviado_email": true})
}

func (repo *notificacionRepository) Delete(ctx context.Context, usuarioID, id int) error {
	return repo.delete(ctx, sq.Eq{"id": id, "usuario_id": usuarioID})
}
