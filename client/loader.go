package client

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tupad/organizador/core/horario"
	"github.com/tupad/organizador/core/materia"
	"github.com/tupad/organizador/core/profesor"
)

// Schedule is the weekly timetable with the records its horarios point to.
type Schedule struct {
	Horarios   []horario.Horario
	Materias   map[int]materia.Materia
	Profesores map[int]profesor.Profesor
}

// ByDay groups the horarios by dia_semana, each day sorted by hora_inicio.
func (s Schedule) ByDay() map[int][]horario.Horario {
	days := make(map[int][]horario.Horario)
	for _, h := range s.Horarios {
		days[h.DiaSemana] = append(days[h.DiaSemana], h)
	}
	for _, hs := range days {
		sort.SliceStable(hs, func(i, j int) bool { return hs[i].HoraInicio < hs[j].HoraInicio })
	}
	return days
}

// LoadSchedule fetches horarios, materias and profesores concurrently and joins them
// once all three are in. The first failure cancels the others.
func LoadSchedule(
	ctx context.Context,
	horarios *Resource[horario.Horario],
	materias *MateriaResource,
	profesores *Resource[profesor.Profesor],
	filters map[string]string,
) (Schedule, error) {
	var (
		hs []horario.Horario
		ms []materia.Materia
		ps []profesor.Profesor
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		hs, err = horarios.All(ctx, filters)
		return err
	})
	g.Go(func() (err error) {
		ms, err = materias.All(ctx, nil)
		return err
	})
	g.Go(func() (err error) {
		ps, err = profesores.All(ctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return Schedule{}, err
	}

	sched := Schedule{
		Horarios:   hs,
		Materias:   make(map[int]materia.Materia, len(ms)),
		Profesores: make(map[int]profesor.Profesor, len(ps)),
	}
	for _, m := range ms {
		sched.Materias[m.ID] = m
	}
	for _, p := range ps {
		sched.Profesores[p.ID] = p
	}
	return sched, nil
}
