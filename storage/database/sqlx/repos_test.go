package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/evaluacion"
	"github.com/tupad/organizador/core/horario"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/notificacion"
	"github.com/tupad/organizador/core/usuario"
	"github.com/tupad/organizador/tests"
)

func TestMateriaRepository(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig(t)
	db := testutil.PrepareDB(t, conf)
	repo := NewMateriaRepository(db, conf.Database.Engine)

	prog2, err := repo.CreateWithComision(ctx,
		materia.Materia{Nombre: "Programación II", Codigo: "PROG2", Estado: materia.EstadoActiva},
		materia.Comision{Nombre: "Comisión A", Capacidad: 30},
	)
	require.NoError(t, err)
	assert.NotZero(t, prog2.ID)
	assert.False(t, prog2.CreatedAt.IsZero())

	comisiones, err := repo.QueryComisiones(ctx, prog2.ID)
	require.NoError(t, err)
	require.Len(t, comisiones, 1)
	assert.Equal(t, "Comisión A", comisiones[0].Nombre)
	assert.Equal(t, 30, comisiones[0].Capacidad)

	// a failing comision rolls the materia back
	_, err = repo.CreateWithComision(ctx,
		materia.Materia{Nombre: "Base de Datos", Codigo: "BD1", Estado: materia.EstadoActiva},
		materia.Comision{Nombre: "Comisión A", Capacidad: 0},
	)
	require.Error(t, err)
	_, ok := err.(*core.ValidationError)
	assert.True(t, ok, "want a validation error, got %T", err)
	assert.NoError(t, repo.CheckCodigoUniqueness(ctx, "BD1", 0))

	assert.Equal(t, materia.ErrCodigoExists, repo.CheckCodigoUniqueness(ctx, "PROG2", 0))
	assert.NoError(t, repo.CheckCodigoUniqueness(ctx, "PROG2", prog2.ID))

	testutil.CreateMateria(t, repo, "Matemática", "MAT1")
	inactiva, err := repo.Create(ctx, materia.Materia{Nombre: "Programación I", Codigo: "PROG1", Estado: materia.EstadoInactiva})
	require.NoError(t, err)

	tests := []struct {
		name      string
		filter    materia.Filter
		ordering  string
		page      core.PageParams
		wantCodes []string
		wantTotal int
	}{
		{name: "all", page: core.NewPageParams(1, 10), wantCodes: []string{"MAT1", "PROG1", "PROG2"}, wantTotal: 3},
		{name: "search", filter: materia.Filter{Search: "PROGRA"}, page: core.NewPageParams(1, 10), wantCodes: []string{"PROG1", "PROG2"}, wantTotal: 2},
		{name: "search codigo", filter: materia.Filter{Search: "mat"}, page: core.NewPageParams(1, 10), wantCodes: []string{"MAT1"}, wantTotal: 1},
		{name: "estado", filter: materia.Filter{Estado: "inactiva"}, page: core.NewPageParams(1, 10), wantCodes: []string{"PROG1"}, wantTotal: 1},
		{name: "ordering", ordering: "-codigo", page: core.NewPageParams(1, 10), wantCodes: []string{"PROG2", "PROG1", "MAT1"}, wantTotal: 3},
		{name: "unknown ordering", ordering: "password", page: core.NewPageParams(1, 10), wantCodes: []string{"MAT1", "PROG1", "PROG2"}, wantTotal: 3},
		{name: "second page", ordering: "codigo", page: core.NewPageParams(2, 2), wantCodes: []string{"PROG2"}, wantTotal: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.Query(ctx, tt.filter, tt.page, core.ParseOrdering(tt.ordering))
			require.NoError(t, err)
			codes := make([]string, len(got))
			for i, m := range got {
				codes[i] = m.Codigo
			}
			assert.Equal(t, tt.wantCodes, codes)
			assert.Equal(t, tt.wantTotal, total)
		})
	}

	require.NoError(t, repo.Delete(ctx, inactiva.ID))
	_, err = repo.Get(ctx, inactiva.ID)
	assert.Equal(t, materia.ErrNotFound, err)
	assert.Equal(t, materia.ErrNotFound, repo.Delete(ctx, inactiva.ID))

	// comisiones go with their materia
	require.NoError(t, repo.Delete(ctx, prog2.ID))
	_, err = repo.GetComision(ctx, comisiones[0].ID)
	assert.Equal(t, materia.ErrComisionNotFound, err)
}

func TestHorarioRepositoryConstraints(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig(t)
	db := testutil.PrepareDB(t, conf)
	materias := NewMateriaRepository(db, conf.Database.Engine)
	repo := NewHorarioRepository(db, conf.Database.Engine)

	m := testutil.CreateMateria(t, materias, "Programación II", "PROG2")

	h, err := repo.Create(ctx, horario.Horario{MateriaID: m.ID, DiaSemana: 1, HoraInicio: "08:00", HoraFin: "10:00", TipoClase: horario.ClaseTeorica})
	require.NoError(t, err)
	assert.False(t, h.ComisionID.Valid)

	// the store enforces the same rules as the validator
	_, err = repo.Create(ctx, horario.Horario{MateriaID: m.ID, DiaSemana: 1, HoraInicio: "10:00", HoraFin: "08:00", TipoClase: horario.ClaseTeorica})
	assert.IsType(t, &core.ValidationError{}, err)
	_, err = repo.Create(ctx, horario.Horario{MateriaID: m.ID + 100, DiaSemana: 1, HoraInicio: "08:00", HoraFin: "10:00", TipoClase: horario.ClaseTeorica})
	assert.IsType(t, &core.ValidationError{}, err)

	h.ProfesorID = null.IntFrom(999)
	_, err = repo.Update(ctx, h)
	assert.IsType(t, &core.ValidationError{}, err)

	got, total, err := repo.Query(ctx, horario.Filter{MateriaID: m.ID, DiaSemana: 1}, core.NewPageParams(1, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, h.ID, got[0].ID)
}

func TestEvaluacionRepositoryQueryDue(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig(t)
	db := testutil.PrepareDB(t, conf)
	m := testutil.CreateMateria(t, NewMateriaRepository(db, conf.Database.Engine), "Programación II", "PROG2")
	repo := NewEvaluacionRepository(db, conf.Database.Engine)

	base := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	create := func(titulo string, fecha time.Time, limite *time.Time, estado string) evaluacion.Evaluacion {
		e, err := repo.Create(ctx, evaluacion.Evaluacion{
			Titulo:          titulo,
			MateriaID:       m.ID,
			Tipo:            evaluacion.TipoParcial,
			FechaEvaluacion: fecha,
			FechaLimite:     limite,
			PuntajeTotal:    10,
			Peso:            30,
			Estado:          estado,
		})
		require.NoError(t, err)
		return e
	}
	tomorrowLimit := base.Add(20 * time.Hour)

	soon := create("Parcial 1", base.Add(2*time.Hour), nil, evaluacion.EstadoProgramada)
	create("Parcial 2", base.Add(72*time.Hour), nil, evaluacion.EstadoProgramada)
	create("Cancelado", base.Add(3*time.Hour), nil, evaluacion.EstadoCancelada)
	tp := create("TP", base.Add(-48*time.Hour), &tomorrowLimit, evaluacion.EstadoEnCurso)

	due, err := repo.QueryDue(ctx, base, base.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, tp.ID, due[0].ID)
	assert.Equal(t, soon.ID, due[1].ID)
	assert.True(t, due[0].FechaLimite.Equal(tomorrowLimit))

	// a limit earlier than the date is rejected by the store
	before := base.Add(-time.Hour)
	_, err = repo.Create(ctx, evaluacion.Evaluacion{
		Titulo: "Inválida", MateriaID: m.ID, Tipo: evaluacion.TipoQuiz, FechaEvaluacion: base,
		FechaLimite: &before, PuntajeTotal: 10, Estado: evaluacion.EstadoProgramada,
	})
	assert.IsType(t, &core.ValidationError{}, err)

	got, total, err := repo.Query(ctx, evaluacion.Filter{Desde: base, Hasta: base.Add(96 * time.Hour)}, core.NewPageParams(1, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, soon.ID, got[0].ID)

	// a plain date as upper bound covers that whole day
	day := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	_, total, err = repo.Query(ctx, evaluacion.Filter{Desde: day, Hasta: day, HastaDia: true}, core.NewPageParams(1, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	_, total, err = repo.Query(ctx, evaluacion.Filter{Desde: day, Hasta: day}, core.NewPageParams(1, 10), nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestNotificacionRepository(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig(t)
	db := testutil.PrepareDB(t, conf)
	usuarios := NewUsuarioRepository(db, conf.Database.Engine)
	repo := NewNotificacionRepository(db, conf.Database.Engine)

	ana := testutil.CreateUsuario(t, usuarios, "Ana", "ana@tupad.edu.ar", "", usuario.RolEstudiante, true)
	beto := testutil.CreateUsuario(t, usuarios, "Beto", "beto@tupad.edu.ar", "", usuario.RolEstudiante, true)

	t0 := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	notify := func(usr usuario.Usuario, tipo, ref string, at time.Time) (notificacion.Notificacion, bool) {
		n := notificacion.Notificacion{UsuarioID: usr.ID, Tipo: tipo, Titulo: "Aviso", Mensaje: "Hola", CreatedAt: at}
		if ref != "" {
			n.Referencia = null.StringFrom(ref)
		}
		n, created, err := repo.Create(ctx, n)
		require.NoError(t, err)
		return n, created
	}

	n1, created := notify(ana, notificacion.TipoInfo, "evaluacion:1", t0)
	assert.True(t, created)
	_, created = notify(ana, notificacion.TipoInfo, "evaluacion:1", t0.Add(time.Minute))
	assert.False(t, created, "same referencia must not notify twice")
	_, created = notify(beto, notificacion.TipoInfo, "evaluacion:1", t0)
	assert.True(t, created, "referencia is unique per usuario")
	n2, _ := notify(ana, notificacion.TipoWarning, "", t0.Add(time.Second))
	n3, _ := notify(ana, notificacion.TipoWarning, "", t0.Add(2*time.Second))

	// (since, until]
	since, err := repo.QuerySince(ctx, ana.ID, t0, t0.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, n2.ID, since[0].ID)

	since, err = repo.QuerySince(ctx, ana.ID, t0.Add(-time.Second), t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, since, 3)
	assert.Equal(t, []int{n3.ID, n2.ID, n1.ID}, []int{since[0].ID, since[1].ID, since[2].ID})

	after, err := repo.QueryAfter(ctx, ana.ID, n1.ID)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, []int{n3.ID, n2.ID}, []int{after[0].ID, after[1].ID})

	require.NoError(t, repo.MarkRead(ctx, ana.ID, n1.ID))
	assert.Equal(t, notificacion.ErrNotFound, repo.MarkRead(ctx, beto.ID, n2.ID), "not the owner")

	unread, err := repo.CountUnread(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	stats, err := repo.Stats(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, notificacion.Stats{
		Total:   3,
		Unread:  2,
		PorTipo: map[string]int{"info": 1, "success": 0, "warning": 2, "error": 0},
	}, stats)

	count, err := repo.MarkAllRead(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	page, total, err := repo.Query(ctx, ana.ID, notificacion.Filter{Tipo: notificacion.TipoWarning}, core.NewPageParams(1, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, n3.ID, page[0].ID)
	assert.True(t, page[0].Leida)

	require.NoError(t, repo.Delete(ctx, ana.ID, n3.ID))
	assert.Equal(t, notificacion.ErrNotFound, repo.Delete(ctx, ana.ID, n3.ID))
}

func TestDashboardRepository(t *testing.T) {
	ctx := context.Background()
	conf := testutil.NewConfig(t)
	db := testutil.PrepareDB(t, conf)
	materias := NewMateriaRepository(db, conf.Database.Engine)
	evals := NewEvaluacionRepository(db, conf.Database.Engine)

	m := testutil.CreateMateria(t, materias, "Programación II", "PROG2")
	_, err := materias.Create(ctx, materia.Materia{Nombre: "Historia", Codigo: "HIS", Estado: materia.EstadoInactiva})
	require.NoError(t, err)
	testutil.CreateUsuario(t, NewUsuarioRepository(db, conf.Database.Engine), "Ana", "ana@tupad.edu.ar", "", usuario.RolAdmin, true)

	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	for i, fecha := range []time.Time{now.Add(time.Hour), now.Add(30 * 24 * time.Hour)} {
		_, err = evals.Create(ctx, evaluacion.Evaluacion{
			Titulo: "Parcial", MateriaID: m.ID, Tipo: evaluacion.TipoParcial, FechaEvaluacion: fecha,
			PuntajeTotal: 10, Peso: float64(10 * i), Estado: evaluacion.EstadoProgramada,
		})
		require.NoError(t, err)
	}

	stats, err := NewDashboardRepository(db, conf.Database.Engine).Stats(ctx, now, now.Add(7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Materias)
	assert.Equal(t, 1, stats.MateriasActivas)
	assert.Equal(t, 2, stats.Evaluaciones)
	assert.Equal(t, 1, stats.EvaluacionesProximas)
	assert.Equal(t, 1, stats.Usuarios)
	assert.Zero(t, stats.Profesores)
}
