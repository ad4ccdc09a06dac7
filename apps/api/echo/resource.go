package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tupad/organizador/core"
)

type (
	// resourceService is implemented by resource.Service and the domain services embedding it.
	resourceService[T any, F any] interface {
		Query(ctx context.Context, filter F, page core.PageParams, ordering []core.DBOrdering) (core.Page[T], error)
		Get(ctx context.Context, id int) (T, error)
		Create(ctx context.Context, obj T) (T, error)
		Update(ctx context.Context, id int, obj T) (T, error)
		Delete(ctx context.Context, id int) error
	}

	resourceApi[T any, F any] struct {
		svc        resourceService[T, F]
		bindFilter func(echo.Context) F
	}
)

// registerResourceAPI mounts the CRUD endpoints of an entity on g.
// Any authenticated usuario may read; only writeRoles may write.
func registerResourceAPI[T any, F any](
	g *echo.Group,
	svc resourceService[T, F],
	bindFilter func(echo.Context) F,
	writeRoles ...string,
) *resourceApi[T, F] {
	api := &resourceApi[T, F]{svc: svc, bindFilter: bindFilter}
	canWrite := rolesMiddleware(writeRoles...)

	g.GET("", api.query)
	g.POST("", api.create, canWrite)
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update, canWrite)
	g.DELETE("/:id", api.destroy, canWrite)
	return api
}

// Handlers

func (api *resourceApi[T, F]) query(ctx echo.Context) error {
	page, err := api.svc.Query(ctx.Request().Context(), api.bindFilter(ctx), bindPage(ctx), bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *resourceApi[T, F]) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	obj, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "retrieving")
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *resourceApi[T, F]) create(ctx echo.Context) error {
	var data T
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding")
	}
	obj, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating")
	}
	return ctx.JSON(http.StatusCreated, obj)
}

func (api *resourceApi[T, F]) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data T
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding")
	}
	obj, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating")
	}
	return ctx.JSON(http.StatusOK, obj)
}

func (api *resourceApi[T, F]) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting")
	}
	return ctx.NoContent(http.StatusNoContent)
}
