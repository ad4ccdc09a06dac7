package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/usuario"
	"github.com/tupad/organizador/tests"
)

func Test_usuarioApi(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUsuario(t, app.usrRepo, "Admin", "admin@tupad.edu.ar", "", usuario.RolAdmin, true)
	profe := testutil.CreateUsuario(t, app.usrRepo, "Profe", "profe@tupad.edu.ar", "", usuario.RolProfesor, true)
	ana := testutil.CreateUsuario(t, app.usrRepo, "Ana", "ana@tupad.edu.ar", "", usuario.RolEstudiante, true)
	beto := testutil.CreateUsuario(t, app.usrRepo, "Beto", "beto@tupad.edu.ar", "", usuario.RolEstudiante, false)
	token := getToken(t, app.conf, admin)
	forbidden := marchallObj(t, httpErr{Error: "permiso denegado"})

	tests := []httpTest{
		{
			name:     "profesor cannot list",
			method:   http.MethodGet,
			path:     "/api/usuarios",
			token:    getToken(t, app.conf, profe),
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "roles",
			method:   http.MethodGet,
			path:     "/api/usuarios/roles",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marchallObj(t, usuario.Roles),
		},
		{
			name:     "cannot delete self",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/usuarios/%d", admin.ID),
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "cannot delete self among others",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/api/usuarios?id=%d&id=%d", ana.ID, admin.ID),
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "cannot demote self",
			method:   http.MethodPut,
			path:     fmt.Sprintf("/api/usuarios/%d", admin.ID),
			body:     []byte(`{"rol":"estudiante"}`),
			token:    token,
			wantCode: http.StatusForbidden,
			wantData: forbidden,
		},
		{
			name:     "unknown usuario",
			method:   http.MethodGet,
			path:     "/api/usuarios/999",
			token:    token,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "usuario no encontrado"}),
		},
	}
	runHttpTests(t, app, tests)

	t.Run("filters", func(t *testing.T) {
		rec := do(app, http.MethodGet, "/api/usuarios?rol=estudiante&ordering=-nombre", token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		page := decode[core.Page[usuario.Usuario]](t, rec)
		require.Equal(t, 2, page.Total)
		assert.Equal(t, beto.ID, page.Data[0].ID)

		rec = do(app, http.MethodGet, "/api/usuarios?activo=false", token)
		require.Equal(t, http.StatusOK, rec.Code)
		page = decode[core.Page[usuario.Usuario]](t, rec)
		require.Equal(t, 1, page.Total)
		assert.Equal(t, beto.ID, page.Data[0].ID)
	})

	t.Run("promote and reactivate", func(t *testing.T) {
		rec := do(app, http.MethodPut, fmt.Sprintf("/api/usuarios/%d", beto.ID), token, []byte(`{"rol":"profesor","activo":true}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		usr := decode[usuario.Usuario](t, rec)
		assert.Equal(t, usuario.RolProfesor, usr.Rol)
		assert.True(t, usr.Activo)
	})

	t.Run("create", func(t *testing.T) {
		rec := do(app, http.MethodPost, "/api/usuarios", token, marchallObj(t, usuario.NewUsuario{
			Nombre: "Carla", Email: "carla@tupad.edu.ar", Password: strongPwd, PasswordConfirm: strongPwd, Rol: usuario.RolProfesor,
		}))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, usuario.RolProfesor, decode[usuario.Usuario](t, rec).Rol)
	})

	t.Run("delete multiple", func(t *testing.T) {
		rec := do(app, http.MethodDelete, fmt.Sprintf("/api/usuarios?id=%d&id=%d", ana.ID, beto.ID), token)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		rec = do(app, http.MethodGet, fmt.Sprintf("/api/usuarios/%d", ana.ID), token)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
