package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/tupad/organizador/core"
	appfs "github.com/tupad/organizador/fs"
)

// engines
const (
	SQLite   = "sqlite3"
	Postgres = "postgres"
)

const migrationsDir = "migrations"

func dsn(dbName string, admin bool, conf *core.Config) string {
	if conf.Database.Engine == SQLite {
		name := dbName
		if !strings.HasPrefix(name, "file:") {
			name = "file:" + name
		}
		sep := "?"
		if strings.Contains(name, "?") {
			sep = "&"
		}
		if !strings.Contains(name, "_foreign_keys") {
			name += sep + "_foreign_keys=on"
			sep = "&"
		}
		if !strings.Contains(name, "_busy_timeout") {
			name += sep + "_busy_timeout=5000"
		}
		return name
	}

	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func open(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	switch conf.Database.Engine {
	case SQLite, Postgres:
	default:
		return nil, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
	}

	db, err := sqlx.Open(conf.Database.Engine, dsn(dbName, admin, conf))
	if err != nil {
		return nil, err
	}
	if conf.Database.Engine == SQLite {
		// a single connection serializes writers and keeps in-memory databases alive
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// Open opens the application database and waits for it to be reachable.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.Database.Name, false, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func exists(db *sqlx.DB, query string, args ...interface{}) (bool, error) {
	var found bool
	err := db.Get(&found, query, args...)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return found, err
}

func createAppUser(db *sqlx.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}

	found, err := exists(db, "SELECT true FROM pg_roles WHERE rolname = $1", conf.Database.User)
	if err != nil {
		return errors.Wrap(err, "checking app user")
	}
	if !found {
		q := fmt.Sprintf("CREATE USER %s CREATEDB ENCRYPTED PASSWORD %s",
			pq.QuoteIdentifier(conf.Database.User), pq.QuoteLiteral(conf.Database.Password))
		if _, err = db.Exec(q); err != nil {
			return errors.Wrap(err, "creating app user")
		}
	}
	return nil
}

func createDB(db *sqlx.DB, conf *core.Config) error {
	found, err := exists(db, "SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name)
	if err != nil {
		return errors.Wrap(err, "checking DB")
	}
	if !found {
		if _, err = db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(conf.Database.Name)); err != nil {
			return errors.Wrap(err, "creating database")
		}
	}
	return nil
}

// CreateIfNotExist creates the postgres app user and database. SQLite creates its file on open.
func CreateIfNotExist(conf *core.Config) error {
	if conf.Database.Engine != Postgres {
		return nil
	}

	// connect as admin
	db, err := open("postgres", true, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = db.Close() }()

	if err = ping(db.DB); err != nil {
		return errors.Wrap(err, "pinging database")
	}
	if err = createAppUser(db, conf); err != nil {
		return err
	}

	// create DB as app user
	appDB, err := open("postgres", false, conf)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer func() { _ = appDB.Close() }()
	return createDB(appDB, conf)
}

// MigrationsDir is the embedded directory holding the migrations of the given engine.
func MigrationsDir(engine string) string {
	return path.Join(migrationsDir, engine)
}

// SetupGoose points goose at the embedded migrations of the given engine.
func SetupGoose(engine string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(engine); err != nil {
		return errors.Wrap(err, "setting migrations dialect")
	}
	return nil
}

func Migrate(db *sqlx.DB, engine string) error {
	if err := SetupGoose(engine); err != nil {
		return err
	}
	if err := goose.Up(db.DB, MigrationsDir(engine)); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// StatementBuilder returns a squirrel builder using the placeholders of the given engine.
func StatementBuilder(engine string) sq.StatementBuilderType {
	if engine == Postgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// constraint error codes
const (
	pqForeignKeyViolation = "23503"
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
)

// ConstraintError translates the store's integrity violations into a core.ValidationError;
// any other error is returned as is.
func ConstraintError(err error) error {
	cause := errors.Cause(err)
	var msg string

	switch e := cause.(type) {
	case sqlite3.Error:
		if e.Code != sqlite3.ErrConstraint {
			return err
		}
		switch e.ExtendedCode {
		case sqlite3.ErrConstraintForeignKey:
			msg = "el registro relacionado no existe o está en uso"
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			msg = "ya existe un registro con estos datos"
		case sqlite3.ErrConstraintCheck:
			msg = "los datos no cumplen las restricciones del registro"
		default:
			return err
		}
	case *pq.Error:
		switch string(e.Code) {
		case pqForeignKeyViolation:
			msg = "el registro relacionado no existe o está en uso"
		case pqUniqueViolation:
			msg = "ya existe un registro con estos datos"
		case pqCheckViolation:
			msg = "los datos no cumplen las restricciones del registro"
		default:
			return err
		}
	default:
		return err
	}
	return core.NewValidationError(errors.New(msg))
}
