package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/contenido"
	"github.com/tupad/organizador/core/dashboard"
	"github.com/tupad/organizador/core/evaluacion"
	"github.com/tupad/organizador/core/horario"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/notificacion"
	"github.com/tupad/organizador/core/profesor"
	"github.com/tupad/organizador/core/usuario"
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

		UsuarioSvc      *usuario.Service
		MateriaSvc      *materia.Service
		ProfesorSvc     *profesor.Service
		HorarioSvc      *horario.Service
		ContenidoSvc    *contenido.Service
		EvaluacionSvc   *evaluacion.Service
		NotificacionSvc *notificacion.Service
		DashboardSvc    *dashboard.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		jwtConf  middleware.JWTConfig
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		jwtConf:  newJWTConfig(deps.Conf),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: conf.Server.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	s.app.Use(telemetryMiddleware(conf.AppName))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug && !conf.TestMode

	s.app.GET("/", home)

	api := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(s.jwtConf)
	ctxUser := ctxUserMiddleware(s.deps.UsuarioSvc)

	registerAuthAPI(api, jwt, ctxUser, s.deps)
	registerUsuarioAPI(api, jwt, ctxUser, s.deps)
	registerMateriaAPI(api, jwt, ctxUser, s.deps)
	registerResourceAPI[profesor.Profesor, profesor.Filter](
		api.Group("/profesores", jwt, ctxUser), s.deps.ProfesorSvc, bindProfesorFilter, usuario.RolAdmin,
	)
	registerResourceAPI[horario.Horario, horario.Filter](
		api.Group("/horarios", jwt, ctxUser), s.deps.HorarioSvc, bindHorarioFilter, usuario.RolAdmin,
	)
	registerResourceAPI[evaluacion.Evaluacion, evaluacion.Filter](
		api.Group("/evaluaciones", jwt, ctxUser), s.deps.EvaluacionSvc, bindEvaluacionFilter, usuario.RolAdmin, usuario.RolProfesor,
	)
	registerContenidoAPI(api, jwt, ctxUser, s.deps)
	registerNotificacionAPI(api, jwt, ctxUser, s.deps)
	registerDashboardAPI(api, jwt, ctxUser, s.deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "¡Bienvenido a la API del Organizador Académico TUPAD!")
}
