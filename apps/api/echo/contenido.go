package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/contenido"
	"github.com/tupad/organizador/core/usuario"
)

var (
	archivoField      = "archivo"
	errArchivoMissing = errors.New("no se recibió ningún archivo")
	errArchivoTooBig  = errors.New("el archivo excede el tamaño máximo permitido")
)

type contenidoApi struct {
	svc           *contenido.Service
	maxUploadSize int64
}

func registerContenidoAPI(g *echo.Group, jwt, ctxUser echo.MiddlewareFunc, deps ServerDeps) {
	api := contenidoApi{
		svc:           deps.ContenidoSvc,
		maxUploadSize: deps.Conf.Server.MaxUploadSize,
	}
	writers := []string{usuario.RolAdmin, usuario.RolProfesor}

	cg := g.Group("/contenidos", jwt, ctxUser)
	registerResourceAPI[contenido.Contenido, contenido.Filter](cg, deps.ContenidoSvc, bindContenidoFilter, writers...)

	cg.POST("/:id/archivo", api.upload, rolesMiddleware(writers...))
	cg.GET("/:id/archivo", api.download)
}

// upload expects a multipart form with the file under the "archivo" field.
func (api *contenidoApi) upload(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile(archivoField)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: archivoField, Error: errArchivoMissing.Error()})
	}
	if api.maxUploadSize > 0 && fh.Size > api.maxUploadSize {
		return core.NewValidationError(nil, core.FieldError{Field: archivoField, Error: errArchivoTooBig.Error()})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	c, err := api.svc.AttachArchivo(ctx.Request().Context(), id, fh.Filename, f)
	if err != nil {
		return errors.Wrap(err, "attaching archivo")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *contenidoApi) download(ctx echo.Context) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	f, c, err := api.svc.OpenArchivo(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "opening archivo")
	}
	defer f.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+c.Archivo.String+`"`)
	return ctx.Stream(http.StatusOK, echo.MIMEOctetStream, f)
}
