package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/contenido"
	"github.com/tupad/organizador/core/evaluacion"
	"github.com/tupad/organizador/core/horario"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/notificacion"
	"github.com/tupad/organizador/core/profesor"
	"github.com/tupad/organizador/core/usuario"
)

var (
	orderingParam = "ordering"
	pageParam     = "page"
	limitParam    = "limit"
)

func bindOrdering(ctx echo.Context) []core.DBOrdering {
	return core.ParseOrdering(ctx.QueryParam(orderingParam))
}

// bindPage reads page & limit; invalid values fall back to the defaults.
func bindPage(ctx echo.Context) core.PageParams {
	return core.NewPageParams(queryInt(ctx, pageParam), queryInt(ctx, limitParam))
}

func queryInt(ctx echo.Context, name string) int {
	i, _ := strconv.Atoi(ctx.QueryParam(name))
	return i
}

func queryBool(ctx echo.Context, name string) *bool {
	b, err := strconv.ParseBool(ctx.QueryParam(name))
	if err != nil {
		return nil
	}
	return &b
}

// queryTime accepts RFC 3339 timestamps and plain dates; dateOnly tells which one it got.
func queryTime(ctx echo.Context, name string) (t time.Time, dateOnly bool) {
	val := ctx.QueryParam(name)
	if val == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, val); err == nil {
		return t.UTC(), false
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// paramID reads a positive integer path parameter; anything else is reported as not found.
func paramID(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Filters

func bindUsuarioFilter(ctx echo.Context) usuario.QueryFilter {
	return usuario.QueryFilter{
		Search: ctx.QueryParam("search"),
		Rol:    ctx.QueryParam("rol"),
		Activo: queryBool(ctx, "activo"),
	}
}

func bindMateriaFilter(ctx echo.Context) materia.Filter {
	return materia.Filter{
		Search: ctx.QueryParam("search"),
		Estado: ctx.QueryParam("estado"),
	}
}

func bindProfesorFilter(ctx echo.Context) profesor.Filter {
	return profesor.Filter{
		Search: ctx.QueryParam("search"),
		Tipo:   ctx.QueryParam("tipo"),
	}
}

func bindHorarioFilter(ctx echo.Context) horario.Filter {
	return horario.Filter{
		MateriaID:  queryInt(ctx, "materia_id"),
		ComisionID: queryInt(ctx, "comision_id"),
		ProfesorID: queryInt(ctx, "profesor_id"),
		DiaSemana:  queryInt(ctx, "dia_semana"),
		TipoClase:  ctx.QueryParam("tipo_clase"),
	}
}

func bindEvaluacionFilter(ctx echo.Context) evaluacion.Filter {
	desde, _ := queryTime(ctx, "desde")
	hasta, hastaDia := queryTime(ctx, "hasta")
	return evaluacion.Filter{
		MateriaID: queryInt(ctx, "materia_id"),
		Tipo:      ctx.QueryParam("tipo"),
		Estado:    ctx.QueryParam("estado"),
		Desde:     desde,
		Hasta:     hasta,
		HastaDia:  hastaDia,
	}
}

func bindNotificacionFilter(ctx echo.Context) notificacion.Filter {
	return notificacion.Filter{
		Tipo:  ctx.QueryParam("tipo"),
		Leida: queryBool(ctx, "leida"),
	}
}

func bindContenidoFilter(ctx echo.Context) contenido.Filter {
	return contenido.Filter{
		Search:    ctx.QueryParam("search"),
		MateriaID: queryInt(ctx, "materia_id"),
		Tipo:      ctx.QueryParam("tipo"),
		Estado:    ctx.QueryParam("estado"),
	}
}
