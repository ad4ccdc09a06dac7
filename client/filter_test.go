package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tupad/organizador/core/materia"
)

func TestFilterLocal(t *testing.T) {
	materias := []materia.Materia{
		{ID: 1, Nombre: "Matemática", Codigo: "MAT1"},
		{ID: 2, Nombre: "Programación II", Codigo: "PROG2"},
		{ID: 3, Nombre: "Programación I", Codigo: "PROG1"},
		{ID: 4, Nombre: "Inglés Técnico", Codigo: "ING1"},
	}
	fields := func(m materia.Materia) []string { return []string{m.Nombre, m.Codigo} }
	ids := func(ms []materia.Materia) []int {
		out := make([]int, 0, len(ms))
		for _, m := range ms {
			out = append(out, m.ID)
		}
		return out
	}

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"empty query", "  ", []int{1, 2, 3, 4}},
		{"accent insensitive", "matematica", []int{1}},
		{"case insensitive", "PROGRAMACIÓN", []int{2, 3}},
		{"every word", "programacion ii", []int{2}},
		{"by codigo", "ing1", []int{4}},
		{"no match", "física", []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterLocal(materias, tt.query, fields)))
		})
	}
}
