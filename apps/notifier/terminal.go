package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/labstack/gommon/color"

	"github.com/tupad/organizador/client"
	"github.com/tupad/organizador/core/dashboard"
	"github.com/tupad/organizador/core/notificacion"
)

// terminal renders notifications with the colors of the resolved theme.
type terminal struct {
	out       io.Writer
	colorFGBG string

	mu       sync.Mutex
	color    *color.Color
	resolved string
}

func newTerminal(out io.Writer, colorFGBG string, noColor bool) *terminal {
	c := color.New()
	c.SetOutput(out)
	if noColor {
		c.Disable()
	} else {
		c.Enable()
	}
	return &terminal{out: out, colorFGBG: colorFGBG, color: c}
}

// PrefersDark reads COLORFGBG ("fg;bg"): backgrounds 0-6 and 8 are dark.
func (t *terminal) PrefersDark() bool {
	parts := strings.Split(t.colorFGBG, ";")
	bg, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return false
	}
	return bg <= 6 || bg == 8
}

// Watch is a no-op: terminals do not announce scheme changes.
func (t *terminal) Watch(func(dark bool)) func() {
	return func() {}
}

func (t *terminal) Apply(resolved string, _ client.Palette) {
	t.mu.Lock()
	t.resolved = resolved
	t.mu.Unlock()
}

func (t *terminal) paint(tipo, msg string) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var styles []string
	if t.resolved == client.ThemeDark {
		styles = append(styles, color.B)
	}
	switch tipo {
	case notificacion.TipoSuccess:
		return t.color.Green(msg, styles...)
	case notificacion.TipoWarning:
		return t.color.Yellow(msg, styles...)
	case notificacion.TipoError:
		return t.color.Red(msg, styles...)
	}
	if t.resolved == client.ThemeDark {
		return t.color.Cyan(msg, styles...)
	}
	return t.color.Blue(msg, styles...)
}

func (t *terminal) printNotification(n notificacion.Notificacion) {
	mark := "●"
	if n.Leida {
		mark = "○"
	}
	_, _ = fmt.Fprintf(t.out, "%s %s %s\n    %s\n",
		mark,
		t.paint(n.Tipo, n.Titulo),
		t.color.Grey(n.CreatedAt.Local().Format("02/01 15:04")),
		n.Mensaje,
	)
}

func (t *terminal) printStats(s dashboard.Stats, unread int) {
	_, _ = fmt.Fprintf(t.out, "%s\n", t.color.Bold("Organizador académico"))
	_, _ = fmt.Fprintf(t.out, "  materias: %d (%d activas)  profesores: %d  horarios: %d\n",
		s.Materias, s.MateriasActivas, s.Profesores, s.Horarios)
	_, _ = fmt.Fprintf(t.out, "  evaluaciones: %d (%d próximas)  contenidos: %d\n",
		s.Evaluaciones, s.EvaluacionesProximas, s.Contenidos)
	_, _ = fmt.Fprintf(t.out, "  notificaciones sin leer: %d\n\n", unread)
}
