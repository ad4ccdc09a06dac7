package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tupad/organizador/client"
	"github.com/tupad/organizador/core/notificacion"
)

func Test_terminal_PrefersDark(t *testing.T) {
	tests := []struct {
		colorFGBG string
		want      bool
	}{
		{"", false},
		{"15;0", true},
		{"0;15", false},
		{"12;default;8", true},
		{"lol", false},
	}
	for _, tt := range tests {
		t.Run(tt.colorFGBG, func(t *testing.T) {
			assert.Equal(t, tt.want, newTerminal(&bytes.Buffer{}, tt.colorFGBG, true).PrefersDark())
		})
	}
}

func Test_terminal_printNotification(t *testing.T) {
	var out bytes.Buffer
	term := newTerminal(&out, "", true)
	term.Apply(client.ThemeDark, client.PaletteFor(client.ThemeDark))

	term.printNotification(notificacion.Notificacion{
		ID:        1,
		Tipo:      notificacion.TipoWarning,
		Titulo:    "Parcial de Programación II",
		Mensaje:   "Mañana a las 18:00",
		CreatedAt: time.Date(2026, 6, 9, 21, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, out.String(), "● Parcial de Programación II")
	assert.Contains(t, out.String(), "Mañana a las 18:00")
}
