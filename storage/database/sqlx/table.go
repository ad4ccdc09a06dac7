package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/storage/database"
)

var nowFunc = time.Now // mockable

func now() time.Time {
	return nowFunc().UTC()
}

// table holds the queries shared by every repository. T is scanned with sqlx, so its
// db tags must cover every column of the table.
type table[T any] struct {
	db       *sqlx.DB
	sb       sq.StatementBuilderType
	name     string
	notFound error
	// orderable whitelists the columns accepted in orderings
	orderable    map[string]bool
	defaultOrder []string
}

func newTable[T any](db *sqlx.DB, engine, name string, notFound error, defaultOrder []string, orderable ...string) table[T] {
	cols := make(map[string]bool, len(orderable)+1)
	cols["id"] = true
	for _, c := range orderable {
		cols[c] = true
	}
	return table[T]{
		db:           db,
		sb:           database.StatementBuilder(engine),
		name:         name,
		notFound:     notFound,
		orderable:    cols,
		defaultOrder: defaultOrder,
	}
}

func (t table[T]) orderBy(ordering []core.DBOrdering) []string {
	var clauses []string
	for _, ord := range ordering {
		if t.orderable[ord.Field] {
			clauses = append(clauses, ord.String())
		}
	}
	if len(clauses) == 0 {
		clauses = t.defaultOrder
	}
	// tie-breaker for stable pages
	return append(clauses, "id ASC")
}

func (t table[T]) get(ctx context.Context, q sqlx.QueryerContext, where sq.Sqlizer) (T, error) {
	var obj T
	query, args, err := t.sb.Select("*").From(t.name).Where(where).Limit(1).ToSql()
	if err != nil {
		return obj, err
	}
	if err = sqlx.GetContext(ctx, q, &obj, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return obj, t.notFound
		}
		return obj, errors.Wrapf(err, "selecting from %s", t.name)
	}
	return obj, nil
}

func (t table[T]) getByID(ctx context.Context, id int) (T, error) {
	return t.get(ctx, t.db, sq.Eq{"id": id})
}

func (t table[T]) selectAll(ctx context.Context, where sq.Sqlizer, orderBy ...string) ([]T, error) {
	stmt := t.sb.Select("*").From(t.name).OrderBy(orderBy...)
	if where != nil {
		stmt = stmt.Where(where)
	}
	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, err
	}
	var objs []T
	if err = sqlx.SelectContext(ctx, t.db, &objs, query, args...); err != nil {
		return nil, errors.Wrapf(err, "selecting from %s", t.name)
	}
	return objs, nil
}

// query returns one page of the matching rows along with the total count of matching rows.
func (t table[T]) query(ctx context.Context, where sq.And, page core.PageParams, ordering []core.DBOrdering) ([]T, int, error) {
	var total int
	countQuery, args, err := t.sb.Select("COUNT(*)").From(t.name).Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	if err = t.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, errors.Wrapf(err, "counting %s", t.name)
	}
	if total == 0 {
		return []T{}, 0, nil
	}

	query, args, err := t.sb.Select("*").
		From(t.name).
		Where(where).
		OrderBy(t.orderBy(ordering)...).
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, err
	}
	objs := make([]T, 0, page.Limit)
	if err = t.db.SelectContext(ctx, &objs, query, args...); err != nil {
		return nil, 0, errors.Wrapf(err, "selecting from %s", t.name)
	}
	return objs, total, nil
}

// insert returns the id of the new row.
func (t table[T]) insert(ctx context.Context, q sqlx.QueryerContext, values map[string]interface{}) (int, error) {
	query, args, err := t.sb.Insert(t.name).SetMap(values).Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, err
	}
	var id int
	if err = q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, database.ConstraintError(errors.Wrapf(err, "inserting into %s", t.name))
	}
	return id, nil
}

func (t table[T]) update(ctx context.Context, e sqlx.ExecerContext, where sq.Sqlizer, values map[string]interface{}) error {
	query, args, err := t.sb.Update(t.name).SetMap(values).Where(where).ToSql()
	if err != nil {
		return err
	}
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return database.ConstraintError(errors.Wrapf(err, "updating %s", t.name))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return t.notFound
	}
	return nil
}

func (t table[T]) updateByID(ctx context.Context, id int, values map[string]interface{}) (T, error) {
	if err := t.update(ctx, t.db, sq.Eq{"id": id}, values); err != nil {
		var zero T
		return zero, err
	}
	return t.getByID(ctx, id)
}

// delete fails with the table's not found error when nothing matched.
func (t table[T]) delete(ctx context.Context, where sq.Sqlizer) error {
	query, args, err := t.sb.Delete(t.name).Where(where).ToSql()
	if err != nil {
		return err
	}
	res, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return database.ConstraintError(errors.Wrapf(err, "deleting from %s", t.name))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return t.notFound
	}
	return nil
}

// exists reports whether a row other than excludedID matches where.
func (t table[T]) exists(ctx context.Context, where sq.Sqlizer, excludedID int) (bool, error) {
	cond := sq.And{where}
	if excludedID > 0 {
		cond = append(cond, sq.NotEq{"id": excludedID})
	}
	query, args, err := t.sb.Select("COUNT(*)").From(t.name).Where(cond).ToSql()
	if err != nil {
		return false, err
	}
	var count int
	if err = t.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, errors.Wrapf(err, "checking %s", t.name)
	}
	return count > 0, nil
}

// search matches s case-insensitively anywhere in one of the given columns.
func search(s string, columns ...string) sq.Or {
	pattern := "%" + strings.ToLower(s) + "%"
	cond := make(sq.Or, len(columns))
	for i, c := range columns {
		cond[i] = sq.Like{"LOWER(" + c + ")": pattern}
	}
	return cond
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
