package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/usuario"
)

type materiaApi struct {
	svc *materia.Service
}

func registerMateriaAPI(g *echo.Group, jwt, ctxUser echo.MiddlewareFunc, deps ServerDeps) {
	api := materiaApi{svc: deps.MateriaSvc}

	mg := g.Group("/materias", jwt, ctxUser)
	registerResourceAPI[materia.Materia, materia.Filter](mg, deps.MateriaSvc, bindMateriaFilter, usuario.RolAdmin)

	mg.GET("/:id/comisiones", api.queryComisiones)
	mg.POST("/:id/comisiones", api.createComision, adminMiddleware())
	mg.DELETE("/:id/comisiones/:comisionId", api.destroyComision, adminMiddleware())
}

func (api *materiaApi) queryComisiones(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	comisiones, err := api.svc.QueryComisiones(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying comisiones")
	}
	if comisiones == nil {
		comisiones = []materia.Comision{}
	}
	return ctx.JSON(http.StatusOK, comisiones)
}

func (api *materiaApi) createComision(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var data materia.Comision
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Comision")
	}
	c, err := api.svc.CreateComision(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "creating comision")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *materiaApi) destroyComision(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	comisionID, err := paramID(ctx, "comisionId")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteComision(ctx.Request().Context(), id, comisionID); err != nil {
		return errors.Wrap(err, "deleting comision")
	}
	return ctx.NoContent(http.StatusNoContent)
}
