// Package dashboard aggregates the counters shown on the landing page.
package dashboard

import (
	"context"
	"time"
)

var NowFunc = time.Now // mockable

// ProximasWindow is how far ahead an evaluacion counts as upcoming.
const ProximasWindow = 7 * 24 * time.Hour

type (
	Stats struct {
		Materias             int       `json:"materias" db:"materias"`
		MateriasActivas      int       `json:"materias_activas" db:"materias_activas"`
		Profesores           int       `json:"profesores" db:"profesores"`
		Horarios             int       `json:"horarios" db:"horarios"`
		Contenidos           int       `json:"contenidos" db:"contenidos"`
		Evaluaciones         int       `json:"evaluaciones" db:"evaluaciones"`
		EvaluacionesProximas int       `json:"evaluaciones_proximas" db:"evaluaciones_proximas"`
		Usuarios             int       `json:"usuarios" db:"usuarios"`
		GeneratedAt          time.Time `json:"generated_at" db:"-"`
	}

	Repository interface {
		// Stats counts the records of every entity; upcoming evaluaciones are the
		// non cancelled ones whose fecha_evaluacion falls within [from, to].
		Stats(ctx context.Context, from, to time.Time) (Stats, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	now := NowFunc().UTC()
	stats, err := svc.repo.Stats(ctx, now, now.Add(ProximasWindow))
	if err != nil {
		return Stats{}, err
	}
	stats.GeneratedAt = now
	return stats, nil
}
