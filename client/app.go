package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

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
)

type (
	AppDeps struct {
		Conf         *core.Config
		Store        Store
		Logger       core.Logger
		SchemeSource SchemeSource
		ThemeApplier ThemeApplier
		HTTPClient   *http.Client  // optional
		Backoff      BackoffPolicy // optional, fixed Conf.Client.RetryDelay by default
	}

	// App is the state of one client: built at start up, torn down on logout or on any 401.
	App struct {
		Client        *Client
		Session       *Session
		Notifications *NotificationList
		Poller        *Poller
		Theme         *ThemeService
		Stats         *StatsCache

		Materias     *MateriaResource
		Horarios     *Resource[horario.Horario]
		Profesores   *Resource[profesor.Profesor]
		Evaluaciones *Resource[evaluacion.Evaluacion]
		Contenidos   *Resource[contenido.Contenido]

		validate   *validator.Validate
		translator ut.Translator
		logger     core.Logger
	}

	Credentials struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	authResponse struct {
		Token string          `json:"token"`
		User  usuario.Usuario `json:"user"`
	}
)

func NewApp(deps AppDeps) (*App, error) {
	conf := deps.Conf.Client

	session, err := NewSession(deps.Store)
	if err != nil {
		return nil, errors.Wrap(err, "restoring session")
	}
	var opts []Option
	if deps.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(deps.HTTPClient))
	}
	c := New(conf.BaseURL, session, opts...)

	notifs, err := NewNotificationList(deps.Store, conf.MaxNotifications)
	if err != nil {
		return nil, errors.Wrap(err, "restoring notifications")
	}
	theme, err := NewThemeService(deps.Store, deps.SchemeSource, deps.ThemeApplier)
	if err != nil {
		return nil, errors.Wrap(err, "restoring theme")
	}

	backoff := deps.Backoff
	if backoff == nil {
		backoff = FixedBackoff(conf.RetryDelay)
	}
	validate, translator := validation.New()

	app := &App{
		Client:        c,
		Session:       session,
		Notifications: notifs,
		Poller: NewPoller(c, notifs, deps.Logger, PollerConfig{
			Interval:   conf.PollInterval,
			MaxRetries: conf.MaxRetries,
			Backoff:    backoff,
		}),
		Theme: theme,
		Stats: NewStatsCache(c, conf.StatsTTL),

		Materias:     &MateriaResource{NewResource[materia.Materia](c, "/api/materias", validate)},
		Horarios:     NewResource[horario.Horario](c, "/api/horarios", validate),
		Profesores:   NewResource[profesor.Profesor](c, "/api/profesores", validate),
		Evaluaciones: NewResource[evaluacion.Evaluacion](c, "/api/evaluaciones", validate),
		Contenidos:   NewResource[contenido.Contenido](c, "/api/contenidos", validate),

		validate:   validate,
		translator: translator,
		logger:     deps.Logger,
	}
	c.OnUnauthorized(app.teardown)
	return app, nil
}

// Resume restarts polling for a session restored from the store.
func (app *App) Resume(ctx context.Context) error {
	if !app.Session.IsAuthenticated() {
		return ErrNoSession
	}
	return app.Poller.Start(ctx)
}

// Login signs in and starts polling. Nothing is persisted unless the server accepts the credentials.
func (app *App) Login(ctx context.Context, creds Credentials) (usuario.Usuario, error) {
	creds.Email = core.CleanString(creds.Email, true /* lower */)
	if err := app.validate.Struct(creds); err != nil {
		return usuario.Usuario{}, err
	}

	var res authResponse
	if err := app.Client.Do(ctx, rest.Post, "/api/auth/login", nil, creds, &res); err != nil {
		return usuario.Usuario{}, err
	}
	return app.startSession(res)
}

// Register signs up a new estudiante and signs them in.
func (app *App) Register(ctx context.Context, nu usuario.NewUsuario) (usuario.Usuario, error) {
	nu.Clean()
	nu.Rol = usuario.RolEstudiante
	if err := app.validate.Struct(nu); err != nil {
		return usuario.Usuario{}, err
	}

	var res authResponse
	if err := app.Client.Do(ctx, rest.Post, "/api/auth/register", nil, nu, &res); err != nil {
		return usuario.Usuario{}, err
	}
	return app.startSession(res)
}

func (app *App) startSession(res authResponse) (usuario.Usuario, error) {
	if err := app.Session.Set(res.Token, res.User); err != nil {
		return usuario.Usuario{}, err
	}
	app.Poller.Reset()
	if err := app.Poller.Start(context.Background()); err != nil {
		return res.User, err
	}
	return res.User, nil
}

// Logout notifies the server on a best-effort basis and tears the session down.
func (app *App) Logout(ctx context.Context) {
	if app.Session.IsAuthenticated() {
		if err := app.Client.Do(ctx, rest.Post, "/api/auth/logout", nil, nil, nil); err != nil {
			app.logger.Debug(fmt.Sprintf("logout: %v", err))
		}
	}
	done := app.Poller.Halt()
	app.teardown()
	if done != nil {
		<-done
	}
}

func (app *App) teardown() {
	app.Poller.Halt()
	app.Stats.Invalidate()
	if err := app.Notifications.Clear(); err != nil {
		app.logger.Warn(fmt.Sprintf("clearing notifications: %v", err), err)
	}
	if err := app.Session.Clear(); err != nil {
		app.logger.Warn(fmt.Sprintf("clearing session: %v", err), err)
	}
}

// Close stops the background work without signing out.
func (app *App) Close() {
	app.Poller.Stop()
	app.Theme.Close()
}

func (app *App) Profile(ctx context.Context) (usuario.Usuario, error) {
	var usr usuario.Usuario
	if err := app.Client.Do(ctx, rest.Get, "/api/auth/profile", nil, nil, &usr); err != nil {
		return usr, err
	}
	return usr, app.Session.SetUser(usr)
}

func (app *App) UpdateProfile(ctx context.Context, uu usuario.UpdateUsuario) (usuario.Usuario, error) {
	current, _ := app.Session.User()
	uu.Clean(current)
	if err := app.validate.Struct(uu); err != nil {
		return usuario.Usuario{}, err
	}

	var usr usuario.Usuario
	if err := app.Client.Do(ctx, rest.Put, "/api/auth/profile", nil, uu, &usr); err != nil {
		return usr, err
	}
	return usr, app.Session.SetUser(usr)
}

func (app *App) DashboardStats(ctx context.Context) (dashboard.Stats, error) {
	return app.Stats.Get(ctx)
}

func (app *App) LoadSchedule(ctx context.Context, filters map[string]string) (Schedule, error) {
	return LoadSchedule(ctx, app.Horarios, app.Materias, app.Profesores, filters)
}

func (app *App) MarkNotificationRead(ctx context.Context, id int) error {
	if err := app.Client.Do(ctx, rest.Put, fmt.Sprintf("/api/notificaciones/%d/read", id), nil, nil, nil); err != nil {
		return err
	}
	return app.Notifications.MarkRead(id)
}

func (app *App) MarkAllNotificationsRead(ctx context.Context) error {
	if err := app.Client.Do(ctx, rest.Put, "/api/notificaciones/read-all", nil, nil, nil); err != nil {
		return err
	}
	return app.Notifications.MarkAllRead()
}

func (app *App) DeleteNotification(ctx context.Context, id int) error {
	if err := app.Client.Do(ctx, rest.Delete, fmt.Sprintf("/api/notificaciones/%d", id), nil, nil, nil); err != nil {
		return err
	}
	return app.Notifications.Remove(id)
}

// SendTestNotification asks the server for a test notification and checks right away.
func (app *App) SendTestNotification(ctx context.Context) (notificacion.Notificacion, error) {
	var n notificacion.Notificacion
	if err := app.Client.Do(ctx, rest.Post, "/api/notificaciones/test", nil, nil, &n); err != nil {
		return n, err
	}
	_, err := app.Poller.CheckNow(ctx)
	return n, err
}

func (app *App) NotificationStats(ctx context.Context) (notificacion.Stats, error) {
	var stats notificacion.Stats
	err := app.Client.Do(ctx, rest.Get, "/api/notificaciones/stats", nil, nil, &stats)
	return stats, err
}

// Message is the text to show the user for err.
func (app *App) Message(err error) string {
	return strings.Join(Messages(err, app.translator), "\n")
}
