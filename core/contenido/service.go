package contenido

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/resource"
)

var (
	ErrNotFound   = core.NewNotFoundError("contenido")
	ErrNoArchivo  = core.NewNotFoundError("archivo")
	ErrBadArchivo = errors.New("tipo de archivo no permitido")

	allowedExts = map[string]bool{
		".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
		".xls": true, ".xlsx": true, ".txt": true, ".md": true, ".zip": true,
		".png": true, ".jpg": true, ".jpeg": true, ".mp4": true,
	}
)

type (
	Repository interface {
		resource.Repository[Contenido, Filter]
		// SetArchivo is the only way to change Contenido.Archivo.
		SetArchivo(ctx context.Context, id int, archivo null.String) (Contenido, error)
	}

	// FileStore keeps the uploaded files.
	FileStore interface {
		Save(r io.Reader, ext string) (string, error)
		Open(name string) (io.ReadCloser, error)
		Remove(name string) error
	}

	Service struct {
		*resource.Service[Contenido, Filter]
		repo  Repository
		files FileStore
	}
)

func NewService(repo Repository, files FileStore, validate *validator.Validate) *Service {
	return &Service{
		Service: resource.NewService[Contenido, Filter](repo, validate),
		repo:    repo,
		files:   files,
	}
}

// AttachArchivo stores the uploaded file and references it from the Contenido,
// replacing (and removing) any previous one.
func (svc *Service) AttachArchivo(ctx context.Context, id int, filename string, r io.Reader) (Contenido, error) {
	c, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Contenido{}, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] {
		return Contenido{}, core.NewValidationError(ErrBadArchivo, core.FieldError{Field: "archivo", Error: ErrBadArchivo.Error()})
	}

	name, err := svc.files.Save(r, ext)
	if err != nil {
		return Contenido{}, errors.Wrap(err, "saving archivo")
	}
	prev := c.Archivo
	if c, err = svc.repo.SetArchivo(ctx, id, null.StringFrom(name)); err != nil {
		_ = svc.files.Remove(name)
		return Contenido{}, errors.Wrap(err, "updating contenido")
	}
	if prev.Valid {
		_ = svc.files.Remove(prev.String)
	}
	return c, nil
}

// OpenArchivo returns the uploaded file of the Contenido; callers close it.
func (svc *Service) OpenArchivo(ctx context.Context, id int) (io.ReadCloser, Contenido, error) {
	c, err := svc.repo.Get(ctx, id)
	if err != nil {
		return nil, Contenido{}, err
	}
	if !c.Archivo.Valid {
		return nil, c, ErrNoArchivo
	}
	f, err := svc.files.Open(c.Archivo.String)
	if err != nil {
		return nil, c, errors.Wrap(err, "opening archivo")
	}
	return f, c, nil
}

// Delete removes the Contenido and its uploaded file, if any.
func (svc *Service) Delete(ctx context.Context, id int) error {
	c, err := svc.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.Delete(ctx, id); err != nil {
		return err
	}
	if c.Archivo.Valid {
		_ = svc.files.Remove(c.Archivo.String)
	}
	return nil
}
