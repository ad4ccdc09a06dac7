package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/notificacion"
)

var (
	lastCheckParam  = "lastCheck"
	lastIDParam     = "lastId"
	errBadLastCheck = errors.New("lastCheck debe ser una fecha RFC 3339")
	errBadLastID    = errors.New("lastId debe ser un entero positivo")
)

// notificacionApi only ever exposes the notifications of the authenticated usuario.
type notificacionApi struct {
	svc *notificacion.Service
}

func registerNotificacionAPI(g *echo.Group, jwt, ctxUser echo.MiddlewareFunc, deps ServerDeps) {
	api := notificacionApi{svc: deps.NotificacionSvc}

	ng := g.Group("/notificaciones", jwt, ctxUser)
	ng.GET("", api.query)
	ng.GET("/check", api.check)
	ng.GET("/stats", api.stats)
	ng.POST("/test", api.sendTest)
	ng.PUT("/read-all", api.markAllRead)
	ng.PUT("/:id/read", api.markRead)
	ng.DELETE("/:id", api.destroy)
}

func (api *notificacionApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	page, err := api.svc.List(ctx.Request().Context(), usr.ID, bindNotificacionFilter(ctx), bindPage(ctx))
	if err != nil {
		return errors.Wrap(err, "querying notificaciones")
	}
	return ctx.JSON(http.StatusOK, page)
}

// check returns what arrived after lastId (or, lacking it, lastCheck); without either, the whole backlog.
func (api *notificacionApi) check(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var since time.Time
	if val := ctx.QueryParam(lastCheckParam); val != "" {
		if since, err = time.Parse(time.RFC3339Nano, val); err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: lastCheckParam, Error: errBadLastCheck.Error()})
		}
	}

	var afterID int
	if val := ctx.QueryParam(lastIDParam); val != "" {
		if afterID, err = strconv.Atoi(val); err != nil || afterID < 0 {
			return core.NewValidationError(nil, core.FieldError{Field: lastIDParam, Error: errBadLastID.Error()})
		}
	}

	res, err := api.svc.Check(ctx.Request().Context(), usr.ID, since, afterID)
	if err != nil {
		return errors.Wrap(err, "checking notificaciones")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *notificacionApi) stats(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	stats, err := api.svc.Stats(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "computing notificacion stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *notificacionApi) sendTest(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	n, err := api.svc.SendTest(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "sending test notificacion")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *notificacionApi) markRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.MarkRead(ctx.Request().Context(), usr.ID, id); err != nil {
		return errors.Wrap(err, "marking notificacion as read")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *notificacionApi) markAllRead(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	n, err := api.svc.MarkAllRead(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "marking all notificaciones as read")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"updated": n})
}

func (api *notificacionApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), usr.ID, id); err != nil {
		return errors.Wrap(err, "deleting notificacion")
	}
	return ctx.NoContent(http.StatusNoContent)
}
