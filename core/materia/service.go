package materia

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/pkg/errors"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/resource"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("materia")
	ErrComisionNotFound = core.NewNotFoundError("comisión")
	ErrCodigoExists     = errors.New("ya existe una materia con este código")
	ErrComisionExists   = errors.New("ya existe una comisión con este nombre")
)

type (
	Repository interface {
		resource.Repository[Materia, Filter]

		// CreateWithComision stores m and its first Comision atomically.
		CreateWithComision(ctx context.Context, m Materia, c Comision) (Materia, error)
		CheckCodigoUniqueness(ctx context.Context, codigo string, excludedID int) error
		QueryComisiones(ctx context.Context, materiaID int) ([]Comision, error)
		GetComision(ctx context.Context, id int) (Comision, error)
		CreateComision(ctx context.Context, c Comision) (Comision, error)
		DeleteComision(ctx context.Context, id int) error
	}

	Service struct {
		*resource.Service[Materia, Filter]
		repo            Repository
		validate        *validator.Validate
		defaultComision Comision
	}
)

func NewService(repo Repository, validate *validator.Validate, conf *core.Config) *Service {
	svc := &Service{
		repo:     repo,
		validate: validate,
		defaultComision: Comision{
			Nombre:    conf.Comisiones.DefaultNombre,
			Capacidad: conf.Comisiones.DefaultCapacidad,
		},
	}
	svc.Service = resource.NewService[Materia, Filter](repo, validate, svc.checkCodigo)
	return svc
}

func (svc *Service) checkCodigo(ctx context.Context, m Materia) error {
	if err := svc.repo.CheckCodigoUniqueness(ctx, m.Codigo, m.ID); err != nil {
		if err == ErrCodigoExists {
			return core.NewValidationError(err, core.FieldError{Field: "codigo", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create stores a new Materia together with its default Comision.
func (svc *Service) Create(ctx context.Context, m Materia) (Materia, error) {
	m, err := svc.Prepare(ctx, m.WithID(0))
	if err != nil {
		return m, err
	}
	return svc.repo.CreateWithComision(ctx, m, svc.defaultComision)
}

func (svc *Service) QueryComisiones(ctx context.Context, materiaID int) ([]Comision, error) {
	if _, err := svc.repo.Get(ctx, materiaID); err != nil {
		return nil, err
	}
	return svc.repo.QueryComisiones(ctx, materiaID)
}

// GetComision returns the Comision only if it belongs to the given Materia.
func (svc *Service) GetComision(ctx context.Context, materiaID, id int) (Comision, error) {
	c, err := svc.repo.GetComision(ctx, id)
	if err != nil {
		return Comision{}, err
	}
	if c.MateriaID != materiaID {
		return Comision{}, ErrComisionNotFound
	}
	return c, nil
}

func (svc *Service) CreateComision(ctx context.Context, materiaID int, c Comision) (Comision, error) {
	if _, err := svc.repo.Get(ctx, materiaID); err != nil {
		return Comision{}, err
	}
	c = c.Clean()
	c.ID = 0
	c.MateriaID = materiaID
	if err := svc.validate.Struct(c); err != nil {
		return c, err
	}
	existing, err := svc.repo.QueryComisiones(ctx, materiaID)
	if err != nil {
		return c, pkgerrors.Wrap(err, "querying comisiones")
	}
	for _, e := range existing {
		if e.Nombre == c.Nombre {
			return c, core.NewValidationError(ErrComisionExists, core.FieldError{Field: "nombre", Error: ErrComisionExists.Error()})
		}
	}
	return svc.repo.CreateComision(ctx, c)
}

func (svc *Service) DeleteComision(ctx context.Context, materiaID, id int) error {
	if _, err := svc.GetComision(ctx, materiaID, id); err != nil {
		return err
	}
	return svc.repo.DeleteComision(ctx, id)
}
