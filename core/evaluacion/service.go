package evaluacion

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/resource"
)

var ErrNotFound = core.NewNotFoundError("evaluación")

type (
	Repository interface {
		resource.Repository[Evaluacion, Filter]
		// QueryDue returns the non cancelled evaluaciones whose due date falls within [from, to].
		QueryDue(ctx context.Context, from, to time.Time) ([]Evaluacion, error)
	}

	Service struct {
		*resource.Service[Evaluacion, Filter]
		repo Repository
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{
		Service: resource.NewService[Evaluacion, Filter](repo, validate),
		repo:    repo,
	}
}

func (svc *Service) QueryDue(ctx context.Context, from, to time.Time) ([]Evaluacion, error) {
	return svc.repo.QueryDue(ctx, from.UTC(), to.UTC())
}
