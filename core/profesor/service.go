package profesor

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/resource"
)

var (
	// errors
	ErrNotFound    = core.NewNotFoundError("profesor")
	ErrEmailExists = errors.New("ya existe un profesor con este email")
)

type (
	Repository interface {
		resource.Repository[Profesor, Filter]
		CheckEmailUniqueness(ctx context.Context, email string, excludedID int) error
	}

	Service struct {
		*resource.Service[Profesor, Filter]
		repo Repository
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	svc := &Service{repo: repo}
	svc.Service = resource.NewService[Profesor, Filter](repo, validate, svc.checkEmail)
	return svc
}

func (svc *Service) checkEmail(ctx context.Context, p Profesor) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, p.Email, p.ID); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}
