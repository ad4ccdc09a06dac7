package notificacion

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/evaluacion"
	"github.com/tupad/organizador/core/usuario"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("notificación")

	NowFunc = time.Now // mockable
)

const (
	emailTemplate = "notificacion"

	// checkGrace widens time based checks over rows stamped before they were committed
	checkGrace = time.Minute
)

type (
	Repository interface {
		// Create stores n unless its usuario already has a notification with the same
		// Referencia, in which case created is false.
		Create(ctx context.Context, n Notificacion) (_ Notificacion, created bool, err error)
		// QuerySince returns the notifications created within (since, until], newest first.
		QuerySince(ctx context.Context, usuarioID int, since, until time.Time) ([]Notificacion, error)
		// QueryAfter returns the notifications whose id is greater than afterID, newest first.
		QueryAfter(ctx context.Context, usuarioID, afterID int) ([]Notificacion, error)
		Query(ctx context.Context, usuarioID int, filter Filter, page core.PageParams) ([]Notificacion, int, error)
		CountUnread(ctx context.Context, usuarioID int) (int, error)
		Stats(ctx context.Context, usuarioID int) (Stats, error)
		MarkRead(ctx context.Context, usuarioID, id int) error
		MarkAllRead(ctx context.Context, usuarioID int) (int, error)
		MarkEmailed(ctx context.Context, ids ...int) error
		Delete(ctx context.Context, usuarioID, id int) error
	}

	// RecipientFinder looks up the usuarios notifications are sent to.
	RecipientFinder interface {
		GetByID(ctx context.Context, id int) (usuario.Usuario, error)
		Activos(ctx context.Context) ([]usuario.Usuario, error)
	}

	// EvaluacionFinder looks up the evaluaciones due within a time range.
	EvaluacionFinder interface {
		QueryDue(ctx context.Context, from, to time.Time) ([]evaluacion.Evaluacion, error)
	}

	Service struct {
		repo        Repository
		usuarios    RecipientFinder
		evaluations EvaluacionFinder
		mailSvc     core.EmailService
		validate    *validator.Validate
		conf        *core.Config
		logger      core.Logger
	}
)

func NewService(
	repo Repository,
	usuarios RecipientFinder,
	evaluations EvaluacionFinder,
	mailSvc core.EmailService,
	validate *validator.Validate,
	conf *core.Config,
	logger core.Logger,
) *Service {
	return &Service{
		repo:        repo,
		usuarios:    usuarios,
		evaluations: evaluations,
		mailSvc:     mailSvc,
		validate:    validate,
		conf:        conf,
		logger:      logger,
	}
}

// Check returns the usuario's new notifications along with the unread count.
// Ids only grow, so afterID (the LastID of the previous result) is the cursor; a row stored
// with an older timestamp after a check still has a greater id. Without a cursor the
// window is (since - checkGrace, now] and the caller drops the ids it already has.
func (svc *Service) Check(ctx context.Context, usuarioID int, since time.Time, afterID int) (CheckResult, error) {
	now := NowFunc().UTC()

	var (
		notifs []Notificacion
		err    error
	)
	if afterID > 0 {
		notifs, err = svc.repo.QueryAfter(ctx, usuarioID, afterID)
	} else {
		if !since.IsZero() {
			since = since.Add(-checkGrace)
		}
		notifs, err = svc.repo.QuerySince(ctx, usuarioID, since.UTC(), now)
	}
	if err != nil {
		return CheckResult{}, errors.Wrap(err, "querying new notifications")
	}

	unread, err := svc.repo.CountUnread(ctx, usuarioID)
	if err != nil {
		return CheckResult{}, errors.Wrap(err, "counting unread notifications")
	}

	res := CheckResult{Notifications: notifs, UnreadCount: unread, ServerTime: now, LastID: afterID}
	if res.Notifications == nil {
		res.Notifications = []Notificacion{}
	}
	for _, n := range notifs {
		if n.ID > res.LastID {
			res.LastID = n.ID
		}
	}
	return res, nil
}

func (svc *Service) List(ctx context.Context, usuarioID int, filter Filter, page core.PageParams) (core.Page[Notificacion], error) {
	filter.Clean()
	notifs, total, err := svc.repo.Query(ctx, usuarioID, filter, page)
	if err != nil {
		return core.Page[Notificacion]{}, err
	}
	return core.NewPage(notifs, total, page), nil
}

func (svc *Service) Stats(ctx context.Context, usuarioID int) (Stats, error) {
	return svc.repo.Stats(ctx, usuarioID)
}

func (svc *Service) MarkRead(ctx context.Context, usuarioID, id int) error {
	return svc.repo.MarkRead(ctx, usuarioID, id)
}

func (svc *Service) MarkAllRead(ctx context.Context, usuarioID int) (int, error) {
	return svc.repo.MarkAllRead(ctx, usuarioID)
}

func (svc *Service) Delete(ctx context.Context, usuarioID, id int) error {
	return svc.repo.Delete(ctx, usuarioID, id)
}

// Notify sends nn to every given usuario and returns the notifications actually created.
func (svc *Service) Notify(ctx context.Context, nn NewNotificacion, recipients ...usuario.Usuario) ([]Notificacion, error) {
	nn.Clean()
	if err := svc.validate.Struct(nn); err != nil {
		return nil, err
	}

	created := make([]Notificacion, 0, len(recipients))
	var messages []*core.EmailMessage
	for _, usr := range recipients {
		n := Notificacion{
			UsuarioID: usr.ID,
			Tipo:      nn.Tipo,
			Titulo:    nn.Titulo,
			Mensaje:   nn.Mensaje,
			CreatedAt: NowFunc().UTC(),
		}
		if nn.Referencia != "" {
			n.Referencia = null.StringFrom(nn.Referencia)
		}

		n, isNew, err := svc.repo.Create(ctx, n)
		if err != nil {
			return created, errors.Wrapf(err, "notifying usuario %d", usr.ID)
		}
		if !isNew {
			continue
		}
		created = append(created, n)

		if svc.conf.Notificaciones.EmailEnabled {
			messages = append(messages, &core.EmailMessage{
				To:           []mail.Address{{Name: usr.NombreCompleto(), Address: usr.Email}},
				Subject:      n.Titulo,
				TemplateName: emailTemplate,
				TemplateData: n,
			})
		}
	}

	if len(messages) > 0 {
		svc.mailSvc.SendMessages(messages...)
		ids := make([]int, len(created))
		for i, n := range created {
			ids[i] = n.ID
		}
		if err := svc.repo.MarkEmailed(ctx, ids...); err != nil {
			svc.logger.Error(fmt.Sprintf("marking notifications as emailed: %v", err), err)
		}
	}
	return created, nil
}

// SendTest sends a test notification to the given usuario.
func (svc *Service) SendTest(ctx context.Context, usuarioID int) (Notificacion, error) {
	usr, err := svc.usuarios.GetByID(ctx, usuarioID)
	if err != nil {
		return Notificacion{}, err
	}
	notifs, err := svc.Notify(ctx, NewNotificacion{
		Tipo:    TipoInfo,
		Titulo:  "Notificación de prueba",
		Mensaje: "Las notificaciones funcionan correctamente.",
	}, usr)
	if err != nil {
		return Notificacion{}, err
	}
	if len(notifs) == 0 {
		return Notificacion{}, ErrNotFound
	}
	return notifs[0], nil
}

// RemindUpcoming notifies every active usuario about the evaluaciones due within the
// configured window starting at now. Each reminder is sent once per usuario and evaluacion.
func (svc *Service) RemindUpcoming(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	evals, err := svc.evaluations.QueryDue(ctx, now, now.Add(svc.conf.Notificaciones.ReminderWindow))
	if err != nil {
		return 0, errors.Wrap(err, "querying due evaluaciones")
	}
	if len(evals) == 0 {
		return 0, nil
	}

	recipients, err := svc.usuarios.Activos(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "querying recipients")
	}

	var sent int
	for _, ev := range evals {
		due := ev.Vencimiento()
		notifs, err := svc.Notify(ctx, NewNotificacion{
			Tipo:       TipoWarning,
			Titulo:     fmt.Sprintf("Próxima evaluación: %s", ev.Titulo),
			Mensaje:    fmt.Sprintf("La evaluación \"%s\" vence el %s.", ev.Titulo, due.Format("02/01/2006 15:04")),
			Referencia: reminderRef(ev),
		}, recipients...)
		if err != nil {
			return sent, err
		}
		sent += len(notifs)
	}
	return sent, nil
}

// reminderRef changes when the due date does, so a rescheduled evaluacion is reminded again.
func reminderRef(ev evaluacion.Evaluacion) string {
	return fmt.Sprintf("evaluacion:%d:%d", ev.ID, ev.Vencimiento().Unix())
}
