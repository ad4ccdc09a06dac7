package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/usuario"
	"github.com/tupad/organizador/storage/database"
)

// NewConfig returns a test configuration pointing at a fresh in-memory SQLite database.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	conf := core.NewConfig()
	conf.TestMode = true
	conf.Debug = false
	conf.SecretKey = "test-secret-key"
	conf.Database.Engine = database.SQLite
	conf.Database.Name = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conf.Server.UploadsDir = t.TempDir()
	conf.Notificaciones.EmailEnabled = false
	return conf
}

// PrepareDB opens and migrates the database of conf. It is closed when the test ends.
func PrepareDB(t *testing.T, conf *core.Config) *sqlx.DB {
	t.Helper()
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	return db
}

func CreateUsuario(t *testing.T, repo usuario.Repository, nombre, email, pwd, rol string, activo bool) usuario.Usuario {
	t.Helper()
	usr := usuario.Usuario{
		Nombre: nombre,
		Email:  email,
		Rol:    rol,
		Activo: activo,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUsuario() failed: %v", err)
		}
	} else {
		usr.PasswordHash = []byte{}
	}
	usr, err := repo.Create(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUsuario() failed: %v", err)
	}
	return usr
}

func CreateMateria(t *testing.T, repo materia.Repository, nombre, codigo string) materia.Materia {
	t.Helper()
	m, err := repo.Create(context.Background(), materia.Materia{
		Nombre: nombre,
		Codigo: codigo,
		Estado: materia.EstadoActiva,
	})
	if err != nil {
		t.Fatalf("CreateMateria() failed: %v", err)
	}
	return m
}
