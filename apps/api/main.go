package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/tupad/organizador/apps/api/echo"
	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/contenido"
	"github.com/tupad/organizador/core/dashboard"
	"github.com/tupad/organizador/core/evaluacion"
	"github.com/tupad/organizador/core/horario"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/notificacion"
	"github.com/tupad/organizador/core/profesor"
	"github.com/tupad/organizador/core/usuario"
	"github.com/tupad/organizador/core/validation"
	emailsvc "github.com/tupad/organizador/services/email"
	logsvc "github.com/tupad/organizador/services/logger"
	"github.com/tupad/organizador/storage/database"
	sqlxrepos "github.com/tupad/organizador/storage/database/sqlx"
	"github.com/tupad/organizador/storage/files"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	uploads, err := files.NewLocalStore(conf.Server.UploadsDir)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up uploads dir: %v", err), err)
	}

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := validation.New()
	core.ParseEmailTemplates(conf, logger)
	usuario.LoadCommonPasswords(logger)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	engine := conf.Database.Engine
	usrSvc := usuario.NewService(sqlxrepos.NewUsuarioRepository(db, engine), validate)
	matSvc := materia.NewService(sqlxrepos.NewMateriaRepository(db, engine), validate, conf)
	evalSvc := evaluacion.NewService(sqlxrepos.NewEvaluacionRepository(db, engine), validate)
	notifSvc := notificacion.NewService(
		sqlxrepos.NewNotificacionRepository(db, engine), usrSvc, evalSvc, mailSvc, validate, conf, logger,
	)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Jobs

	jobs, err := startJobs(conf, logger, notifSvc)
	if err != nil {
		logger.Fatal(fmt.Sprintf("scheduling jobs: %v", err), err)
	}

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			Validate:        validate,
			Translator:      translator,
			UsuarioSvc:      usrSvc,
			MateriaSvc:      matSvc,
			ProfesorSvc:     profesor.NewService(sqlxrepos.NewProfesorRepository(db, engine), validate),
			HorarioSvc:      horario.NewService(sqlxrepos.NewHorarioRepository(db, engine), matSvc, validate),
			ContenidoSvc:    contenido.NewService(sqlxrepos.NewContenidoRepository(db, engine), uploads, validate),
			EvaluacionSvc:   evalSvc,
			NotificacionSvc: notifSvc,
			DashboardSvc:    dashboard.NewService(sqlxrepos.NewDashboardRepository(db, engine)),
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// wait for a running reminder pass before closing the DB
		<-jobs.Stop().Done()

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db, conf.Database.Engine); err != nil {
		return nil, err
	}
	return db, nil
}
