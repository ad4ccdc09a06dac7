package notificacion_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/evaluacion"
	"github.com/tupad/organizador/core/notificacion"
	"github.com/tupad/organizador/core/usuario"
	"github.com/tupad/organizador/core/validation"
	"github.com/tupad/organizador/services/email"
	"github.com/tupad/organizador/services/logger"
	"github.com/tupad/organizador/storage/database/sqlx"
	"github.com/tupad/organizador/tests"
)

type fixture struct {
	svc      *notificacion.Service
	usuarios usuario.Repository
	evals    evaluacion.Repository
	materia  int
}

func setup(t *testing.T, emailEnabled bool) fixture {
	t.Helper()
	conf := testutil.NewConfig(t)
	conf.Notificaciones.EmailEnabled = emailEnabled
	conf.Notificaciones.ReminderWindow = 24 * time.Hour
	db := testutil.PrepareDB(t, conf)
	validate, _ := validation.New()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	core.ParseEmailTemplates(conf, logger)

	usuarios := sqlxrepos.NewUsuarioRepository(db, conf.Database.Engine)
	evals := sqlxrepos.NewEvaluacionRepository(db, conf.Database.Engine)
	m := testutil.CreateMateria(t, sqlxrepos.NewMateriaRepository(db, conf.Database.Engine), "Programación II", "PROG2")

	svc := notificacion.NewService(
		sqlxrepos.NewNotificacionRepository(db, conf.Database.Engine),
		usuario.NewService(usuarios, validate),
		evaluacion.NewService(evals, validate),
		emailsvc.NewConsoleServiceMock(conf, logger),
		validate,
		conf,
		logger,
	)
	return fixture{svc: svc, usuarios: usuarios, evals: evals, materia: m.ID}
}

func TestService_Check(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)
	ana := testutil.CreateUsuario(t, f.usuarios, "Ana", "ana@tupad.edu.ar", "", usuario.RolEstudiante, true)

	t0 := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	notificacion.NowFunc = func() time.Time { return t0 }
	defer func() { notificacion.NowFunc = time.Now }()

	first, err := f.svc.Check(ctx, ana.ID, time.Time{}, 0)
	require.NoError(t, err)
	assert.Empty(t, first.Notifications)
	assert.NotNil(t, first.Notifications)
	assert.True(t, first.ServerTime.Equal(t0))
	assert.Zero(t, first.LastID)

	notificacion.NowFunc = func() time.Time { return t0.Add(time.Second) }
	n, err := f.svc.SendTest(ctx, ana.ID)
	require.NoError(t, err)

	notificacion.NowFunc = func() time.Time { return t0.Add(2 * time.Second) }
	second, err := f.svc.Check(ctx, ana.ID, first.ServerTime, first.LastID)
	require.NoError(t, err)
	require.Len(t, second.Notifications, 1)
	assert.Equal(t, n.ID, second.Notifications[0].ID)
	assert.Equal(t, 1, second.UnreadCount)
	assert.Equal(t, n.ID, second.LastID)

	// nothing new after the cursor
	third, err := f.svc.Check(ctx, ana.ID, second.ServerTime, second.LastID)
	require.NoError(t, err)
	assert.Empty(t, third.Notifications)
	assert.Equal(t, 1, third.UnreadCount)
	assert.Equal(t, second.LastID, third.LastID)

	t.Run("stamped before the previous check", func(t *testing.T) {
		notificacion.NowFunc = func() time.Time { return t0 }
		late, err := f.svc.SendTest(ctx, ana.ID)
		require.NoError(t, err)

		notificacion.NowFunc = func() time.Time { return t0.Add(3 * time.Second) }
		res, err := f.svc.Check(ctx, ana.ID, third.ServerTime, third.LastID)
		require.NoError(t, err)
		require.Len(t, res.Notifications, 1)
		assert.Equal(t, late.ID, res.Notifications[0].ID)
		assert.Equal(t, late.ID, res.LastID)
	})
}

func TestService_CheckDuringNotify(t *testing.T) {
	ctx := context.Background()
	f := setup(t, false)

	recipients := make([]usuario.Usuario, 300)
	for i := range recipients {
		email := fmt.Sprintf("alumno%03d@tupad.edu.ar", i)
		recipients[i] = testutil.CreateUsuario(t, f.usuarios, "Alumno", email, "", usuario.RolEstudiante, true)
	}
	last := recipients[len(recipients)-1]

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Notify(ctx, notificacion.NewNotificacion{Titulo: "Aviso", Mensaje: "Cambio de aula"}, recipients...)
		done <- err
	}()

	var (
		res       notificacion.CheckResult
		delivered int
		finished  bool
	)
	for !finished {
		select {
		case err := <-done:
			require.NoError(t, err)
			finished = true
		default:
		}

		var err error
		res, err = f.svc.Check(ctx, last.ID, res.ServerTime, res.LastID)
		require.NoError(t, err)
		delivered += len(res.Notifications)
	}

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, res.UnreadCount)
}

func TestService_NotifyValidation(t *testing.T) {
	f := setup(t, false)
	ana := testutil.CreateUsuario(t, f.usuarios, "Ana", "ana@tupad.edu.ar", "", usuario.RolEstudiante, true)

	_, err := f.svc.Notify(context.Background(), notificacion.NewNotificacion{Tipo: "urgente", Titulo: "x", Mensaje: "y"}, ana)
	assert.Error(t, err)
	_, err = f.svc.Notify(context.Background(), notificacion.NewNotificacion{Titulo: " ", Mensaje: "y"}, ana)
	assert.Error(t, err)
}

func TestService_RemindUpcoming(t *testing.T) {
	ctx := context.Background()
	f := setup(t, true)
	emailsvc.ClearSentMessages()

	ana := testutil.CreateUsuario(t, f.usuarios, "Ana", "ana@tupad.edu.ar", "", usuario.RolEstudiante, true)
	testutil.CreateUsuario(t, f.usuarios, "Beto", "beto@tupad.edu.ar", "", usuario.RolProfesor, true)
	testutil.CreateUsuario(t, f.usuarios, "Inactivo", "inactivo@tupad.edu.ar", "", usuario.RolEstudiante, false)

	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	_, err := f.evals.Create(ctx, evaluacion.Evaluacion{
		Titulo: "Parcial 1", MateriaID: f.materia, Tipo: evaluacion.TipoParcial,
		FechaEvaluacion: now.Add(3 * time.Hour), PuntajeTotal: 10, Peso: 40, Estado: evaluacion.EstadoProgramada,
	})
	require.NoError(t, err)
	_, err = f.evals.Create(ctx, evaluacion.Evaluacion{
		Titulo: "Final", MateriaID: f.materia, Tipo: evaluacion.TipoFinal,
		FechaEvaluacion: now.Add(10 * 24 * time.Hour), PuntajeTotal: 10, Peso: 60, Estado: evaluacion.EstadoProgramada,
	})
	require.NoError(t, err)

	sent, err := f.svc.RemindUpcoming(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, sent, "one reminder per active usuario")
	mails := emailsvc.GetSentMessages()
	require.Len(t, mails, 2)
	// the email service adds the app prefix
	assert.Equal(t, "Próxima evaluación: Parcial 1", mails[0].Subject)

	// running again later in the hour sends nothing new
	sent, err = f.svc.RemindUpcoming(ctx, now.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Len(t, emailsvc.GetSentMessages(), 2)

	page, err := f.svc.List(ctx, ana.ID, notificacion.Filter{}, core.NewPageParams(1, 10))
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, notificacion.TipoWarning, page.Data[0].Tipo)
	assert.Contains(t, page.Data[0].Titulo, "Parcial 1")
}
