package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sendgrid/rest"

	"github.com/tupad/organizador/core"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/resource"
)

const allPageLimit = 100

// Resource maps the CRUD verbs of one entity to its REST endpoints.
// Writes are cleaned and validated locally first; invalid input never reaches the network.
type Resource[T resource.Entity[T]] struct {
	client   *Client
	path     string
	validate *validator.Validate
}

func NewResource[T resource.Entity[T]](c *Client, path string, validate *validator.Validate) *Resource[T] {
	return &Resource[T]{client: c, path: path, validate: validate}
}

// GetAll fetches one page. Filters are sent as query parameters; empty values are skipped.
func (r *Resource[T]) GetAll(ctx context.Context, filters map[string]string, page, limit int) (core.Page[T], error) {
	query := make(map[string]string, len(filters)+2)
	for k, v := range filters {
		if v != "" {
			query[k] = v
		}
	}
	if page > 0 {
		query["page"] = strconv.Itoa(page)
	}
	if limit > 0 {
		query["limit"] = strconv.Itoa(limit)
	}

	var p core.Page[T]
	err := r.client.Do(ctx, rest.Get, r.path, query, nil, &p)
	return p, err
}

// All walks every page matching filters.
func (r *Resource[T]) All(ctx context.Context, filters map[string]string) ([]T, error) {
	var items []T
	for page := 1; ; page++ {
		p, err := r.GetAll(ctx, filters, page, allPageLimit)
		if err != nil {
			return nil, err
		}
		items = append(items, p.Data...)
		if !p.HasNext {
			return items, nil
		}
	}
}

func (r *Resource[T]) GetByID(ctx context.Context, id int) (T, error) {
	var obj T
	err := r.client.Do(ctx, rest.Get, r.itemPath(id), nil, nil, &obj)
	return obj, err
}

func (r *Resource[T]) Create(ctx context.Context, obj T) (T, error) {
	obj, err := r.prepare(obj)
	if err != nil {
		return obj, err
	}
	var created T
	err = r.client.Do(ctx, rest.Post, r.path, nil, obj, &created)
	return created, err
}

func (r *Resource[T]) Update(ctx context.Context, id int, obj T) (T, error) {
	obj, err := r.prepare(obj.WithID(id))
	if err != nil {
		return obj, err
	}
	var updated T
	err = r.client.Do(ctx, rest.Put, r.itemPath(id), nil, obj, &updated)
	return updated, err
}

func (r *Resource[T]) Delete(ctx context.Context, id int) error {
	return r.client.Do(ctx, rest.Delete, r.itemPath(id), nil, nil, nil)
}

func (r *Resource[T]) prepare(obj T) (T, error) {
	obj = obj.Clean()
	return obj, r.validate.Struct(obj)
}

func (r *Resource[T]) itemPath(id int) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

// MateriaResource adds the comisiones endpoints.
type MateriaResource struct {
	*Resource[materia.Materia]
}

func (r *MateriaResource) Comisiones(ctx context.Context, materiaID int) ([]materia.Comision, error) {
	var comisiones []materia.Comision
	err := r.client.Do(ctx, rest.Get, r.itemPath(materiaID)+"/comisiones", nil, nil, &comisiones)
	return comisiones, err
}

func (r *MateriaResource) CreateComision(ctx context.Context, materiaID int, c materia.Comision) (materia.Comision, error) {
	c.MateriaID = materiaID
	c = c.Clean()
	if err := r.validate.Struct(c); err != nil {
		return c, err
	}
	var created materia.Comision
	err := r.client.Do(ctx, rest.Post, r.itemPath(materiaID)+"/comisiones", nil, c, &created)
	return created, err
}

func (r *MateriaResource) DeleteComision(ctx context.Context, materiaID, id int) error {
	return r.client.Do(ctx, rest.Delete, fmt.Sprintf("%s/comisiones/%d", r.itemPath(materiaID), id), nil, nil, nil)
}
