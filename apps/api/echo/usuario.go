package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tupad/organizador/core/usuario"
)

type usuarioApi struct {
	svc *usuario.Service
}

func registerUsuarioAPI(g *echo.Group, jwt, ctxUser echo.MiddlewareFunc, deps ServerDeps) {
	api := usuarioApi{svc: deps.UsuarioSvc}

	ug := g.Group("/usuarios", jwt, ctxUser, adminMiddleware())
	ug.GET("", api.query)
	ug.POST("", api.create)
	ug.DELETE("", api.destroyMultiple)
	ug.GET("/roles", api.queryRoles)

	// detail endpoints
	ug.GET("/:id", api.retrieve)
	ug.PUT("/:id", api.update)
	ug.DELETE("/:id", api.destroy)
}

// Handlers

func (api *usuarioApi) query(ctx echo.Context) error {
	page, err := api.svc.Query(ctx.Request().Context(), bindUsuarioFilter(ctx), bindPage(ctx), bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying usuarios")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *usuarioApi) create(ctx echo.Context) error {
	var data usuario.NewUsuario
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUsuario")
	}
	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating usuario")
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *usuarioApi) retrieve(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	usr, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding usuario by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *usuarioApi) update(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data usuario.UpdateUsuario
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUsuario")
	}

	// an admin cannot demote or deactivate themselves
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if id == ctxUsr.ID && ((data.Rol != "" && data.Rol != ctxUsr.Rol) || (data.Activo != nil && !*data.Activo)) {
		return errHttpForbidden
	}

	usr, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating usuario")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *usuarioApi) destroy(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	// ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if id == ctxUsr.ID {
		return errHttpForbidden
	}

	if _, err = api.svc.GetByID(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "finding usuario by ID")
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting usuario")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *usuarioApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}

	// ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	for _, id := range query.IDs {
		if id == ctxUsr.ID {
			return errHttpForbidden
		}
	}

	if err = api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting usuarios")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *usuarioApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, usuario.Roles)
}

type DestroyMultipleRequest struct {
	IDs []int `query:"id"`
}
