package horario

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/resource"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("horario")
	ErrComisionMismatch = errors.New("la comisión no pertenece a la materia")
)

type (
	Repository = resource.Repository[Horario, Filter]

	// ComisionFinder resolves comisiones scoped to a materia.
	ComisionFinder interface {
		GetComision(ctx context.Context, materiaID, id int) (materia.Comision, error)
	}

	Service struct {
		*resource.Service[Horario, Filter]
		comisiones ComisionFinder
	}
)

func NewService(repo Repository, comisiones ComisionFinder, validate *validator.Validate) *Service {
	svc := &Service{comisiones: comisiones}
	svc.Service = resource.NewService[Horario, Filter](repo, validate, svc.checkComision)
	return svc
}

func (svc *Service) checkComision(ctx context.Context, h Horario) error {
	if !h.ComisionID.Valid {
		return nil
	}
	if _, err := svc.comisiones.GetComision(ctx, h.MateriaID, h.ComisionID.Int); err != nil {
		if core.IsNotFound(err) {
			return core.NewValidationError(ErrComisionMismatch, core.FieldError{Field: "comision_id", Error: ErrComisionMismatch.Error()})
		}
		return err
	}
	return nil
}
