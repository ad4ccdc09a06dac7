// Package resource holds the CRUD service shared by every academic entity.
package resource

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/tupad/organizador/core"
)

type (
	// Entity is implemented (on value receivers) by the records handled by a Service.
	Entity[T any] interface {
		GetID() int
		// WithID returns a copy carrying the given id.
		WithID(id int) T
		// Clean returns a copy with its user input normalized (trimmed, cased, defaulted).
		Clean() T
	}

	Repository[T any, F any] interface {
		Query(ctx context.Context, filter F, page core.PageParams, ordering []core.DBOrdering) ([]T, int, error)
		Get(ctx context.Context, id int) (T, error)
		Create(ctx context.Context, obj T) (T, error)
		Update(ctx context.Context, obj T) (T, error)
		Delete(ctx context.Context, id int) error
	}

	// CheckFunc runs checks that need other records, e.g. uniqueness or ownership.
	CheckFunc[T any] func(ctx context.Context, obj T) error

	Service[T Entity[T], F any] struct {
		repo     Repository[T, F]
		validate *validator.Validate
		checks   []CheckFunc[T]
	}
)

func NewService[T Entity[T], F any](repo Repository[T, F], validate *validator.Validate, checks ...CheckFunc[T]) *Service[T, F] {
	return &Service[T, F]{
		repo:     repo,
		validate: validate,
		checks:   checks,
	}
}

// Prepare cleans and validates obj, then runs the cross-record checks.
func (svc *Service[T, F]) Prepare(ctx context.Context, obj T) (T, error) {
	obj = obj.Clean()
	if err := svc.validate.Struct(obj); err != nil {
		return obj, err
	}
	for _, check := range svc.checks {
		if err := check(ctx, obj); err != nil {
			return obj, err
		}
	}
	return obj, nil
}

func (svc *Service[T, F]) Query(ctx context.Context, filter F, page core.PageParams, ordering []core.DBOrdering) (core.Page[T], error) {
	objs, total, err := svc.repo.Query(ctx, filter, page, ordering)
	if err != nil {
		return core.Page[T]{}, errors.Wrap(err, "querying")
	}
	return core.NewPage(objs, total, page), nil
}

func (svc *Service[T, F]) Get(ctx context.Context, id int) (T, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service[T, F]) Create(ctx context.Context, obj T) (T, error) {
	obj, err := svc.Prepare(ctx, obj.WithID(0))
	if err != nil {
		return obj, err
	}
	return svc.repo.Create(ctx, obj)
}

func (svc *Service[T, F]) Update(ctx context.Context, id int, obj T) (T, error) {
	if _, err := svc.repo.Get(ctx, id); err != nil {
		return obj, err
	}
	obj, err := svc.Prepare(ctx, obj.WithID(id))
	if err != nil {
		return obj, err
	}
	return svc.repo.Update(ctx, obj)
}

func (svc *Service[T, F]) Delete(ctx context.Context, id int) error {
	return svc.repo.Delete(ctx, id)
}
