package tests

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/contenido"
	"github.com/tupad/organizador/core/evaluacion"
	"github.com/tupad/organizador/core/horario"
	"github.com/tupad/organizador/core/profesor"
	"github.com/tupad/organizador/core/usuario"
	"github.com/tupad/organizador/tests"
)

func Test_resourceApi_evaluaciones(t *testing.T) {
	app := setup(t)
	profe := testutil.CreateUsuario(t, app.usrRepo, "Profe", "profe@tupad.edu.ar", "", usuario.RolProfesor, true)
	token := getToken(t, app.conf, profe)
	m := testutil.CreateMateria(t, app.matRepo, "Programación II", "PROG2")

	t.Run("invalid", func(t *testing.T) {
		body := fmt.Sprintf(`{
			"titulo": "Parcial 1", "materia_id": %d, "tipo": "parcial",
			"fecha_evaluacion": "2026-06-10T14:00:00Z", "fecha_limite": "2026-06-09T14:00:00Z",
			"puntaje_total": 0, "peso": 150
		}`, m.ID)
		rec := do(app, http.MethodPost, "/api/evaluaciones", token, []byte(body))
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		fields := decode[map[string]string](t, rec)
		assert.Contains(t, fields, "fecha_limite")
		assert.Contains(t, fields, "puntaje_total")
		assert.Contains(t, fields, "peso")
	})

	t.Run("unknown materia", func(t *testing.T) {
		body := `{"titulo": "TP", "materia_id": 999, "tipo": "tp", "fecha_evaluacion": "2026-06-10T14:00:00Z", "puntaje_total": 10, "peso": 10}`
		rec := do(app, http.MethodPost, "/api/evaluaciones", token, []byte(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("valid", func(t *testing.T) {
		body := fmt.Sprintf(`{
			"titulo": " Parcial 1 ", "materia_id": %d, "tipo": "PARCIAL",
			"fecha_evaluacion": "2026-06-10T11:00:00-03:00", "fecha_limite": "2026-06-10T16:00:00Z",
			"puntaje_total": 10, "peso": 40
		}`, m.ID)
		rec := do(app, http.MethodPost, "/api/evaluaciones", token, []byte(body))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		ev := decode[evaluacion.Evaluacion](t, rec)
		assert.Equal(t, "Parcial 1", ev.Titulo)
		assert.Equal(t, evaluacion.TipoParcial, ev.Tipo)
		assert.Equal(t, evaluacion.EstadoProgramada, ev.Estado)
		assert.Equal(t, 14, ev.FechaEvaluacion.UTC().Hour())

		rec = do(app, http.MethodGet, fmt.Sprintf("/api/evaluaciones?materia_id=%d&desde=2026-06-01&hasta=2026-06-30", m.ID), token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, decode[core.Page[evaluacion.Evaluacion]](t, rec).Total)

		// same-day upper bound
		rec = do(app, http.MethodGet, "/api/evaluaciones?desde=2026-06-10&hasta=2026-06-10", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, decode[core.Page[evaluacion.Evaluacion]](t, rec).Total)

		rec = do(app, http.MethodDelete, fmt.Sprintf("/api/evaluaciones/%d", ev.ID), token)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func Test_resourceApi_horarios(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUsuario(t, app.usrRepo, "Admin", "admin@tupad.edu.ar", "", usuario.RolAdmin, true)
	token := getToken(t, app.conf, admin)
	m := testutil.CreateMateria(t, app.matRepo, "Programación II", "PROG2")

	horarioBody := func(inicio, fin, reunion, link string) []byte {
		h := horario.Horario{MateriaID: m.ID, DiaSemana: 2, HoraInicio: inicio, HoraFin: fin, TipoClase: horario.ClaseTeorica, TipoReunion: reunion}
		if link != "" {
			h.LinkReunion.SetValid(link)
		}
		return marchallObj(t, h)
	}

	tests := []struct {
		name       string
		body       []byte
		wantCode   int
		wantFields []string
	}{
		{"fin before inicio", horarioBody("10:00", "08:00", "", ""), http.StatusBadRequest, []string{"hora_fin"}},
		{"same hour", horarioBody("10:00", "10:00", "", ""), http.StatusBadRequest, []string{"hora_fin"}},
		{"bad format", horarioBody("8:00", "25:00", "", ""), http.StatusBadRequest, []string{"hora_inicio", "hora_fin"}},
		{"virtual without link", horarioBody("08:00", "10:00", horario.ReunionVirtual, ""), http.StatusBadRequest, []string{"link_reunion"}},
		{"virtual", horarioBody("08:00", "10:00", horario.ReunionVirtual, "https://meet.tupad.edu.ar/prog2"), http.StatusCreated, nil},
		{"presencial", horarioBody("14:00", "16:30", horario.ReunionPresencial, ""), http.StatusCreated, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(app, http.MethodPost, "/api/horarios", token, tt.body)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantFields != nil {
				fields := decode[map[string]string](t, rec)
				for _, f := range tt.wantFields {
					assert.Contains(t, fields, f)
				}
			}
		})
	}

	rec := do(app, http.MethodGet, fmt.Sprintf("/api/horarios?materia_id=%d&dia_semana=2", m.ID), token)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[core.Page[horario.Horario]](t, rec)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "08:00", page.Data[0].HoraInicio)
}

func Test_resourceApi_profesores(t *testing.T) {
	app := setup(t)
	admin := testutil.CreateUsuario(t, app.usrRepo, "Admin", "admin@tupad.edu.ar", "", usuario.RolAdmin, true)
	token := getToken(t, app.conf, admin)

	rec := do(app, http.MethodPost, "/api/profesores", token,
		[]byte(`{"nombre":"Marta","apellido":"Gómez","email":"MARTA@tupad.edu.ar","tipo":"titular"}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[profesor.Profesor](t, rec)
	assert.Equal(t, "marta@tupad.edu.ar", p.Email)

	rec = do(app, http.MethodPut, fmt.Sprintf("/api/profesores/%d", p.ID), token,
		[]byte(`{"nombre":"Marta","apellido":"Gómez","email":"marta@tupad.edu.ar","tipo":"jtp"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, profesor.TipoJTP, decode[profesor.Profesor](t, rec).Tipo)

	rec = do(app, http.MethodPost, "/api/profesores", token,
		[]byte(`{"nombre":"Otra","apellido":"Marta","email":"marta@tupad.edu.ar","tipo":"titular"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(app, http.MethodPut, "/api/profesores/999", token,
		[]byte(`{"nombre":"Nadie","apellido":"X","email":"x@tupad.edu.ar","tipo":"jtp"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func Test_contenidoApi_archivo(t *testing.T) {
	app := setup(t)
	profe := testutil.CreateUsuario(t, app.usrRepo, "Profe", "profe@tupad.edu.ar", "", usuario.RolProfesor, true)
	alumno := testutil.CreateUsuario(t, app.usrRepo, "Alumno", "alumno@tupad.edu.ar", "", usuario.RolEstudiante, true)
	token := getToken(t, app.conf, profe)
	m := testutil.CreateMateria(t, app.matRepo, "Programación II", "PROG2")

	rec := do(app, http.MethodPost, "/api/contenidos", token,
		[]byte(fmt.Sprintf(`{"titulo":"Apunte punteros","materia_id":%d,"tipo":"documento"}`, m.ID)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[contenido.Contenido](t, rec)
	assert.Equal(t, contenido.EstadoBorrador, c.Estado)
	assert.False(t, c.Archivo.Valid)

	upload := func(token, filename string, content []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		fw, err := w.CreateFormFile("archivo", filename)
		require.NoError(t, err)
		_, _ = fw.Write(content)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/contenidos/%d/archivo", c.ID), &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		return rec
	}

	rec = upload(token, "virus.exe", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = upload(getToken(t, app.conf, alumno), "apunte.pdf", []byte("%PDF-1.4"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = upload(token, "Apunte.PDF", []byte("%PDF-1.4 punteros"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c = decode[contenido.Contenido](t, rec)
	require.True(t, c.Archivo.Valid)
	assert.Regexp(t, `\.pdf$`, c.Archivo.String)

	rec = do(app, http.MethodGet, fmt.Sprintf("/api/contenidos/%d/archivo", c.ID), getToken(t, app.conf, alumno))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4 punteros", rec.Body.String())

	rec = do(app, http.MethodDelete, fmt.Sprintf("/api/contenidos/%d", c.ID), token)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(app, http.MethodGet, fmt.Sprintf("/api/contenidos/%d/archivo", c.ID), token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
