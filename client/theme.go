package client

import (
	"sync"

	"github.com/pkg/errors"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"

	defaultTheme = ThemeLight
)

var ErrInvalidTheme = errors.New("tema inválido: use light, dark o auto")

type (
	// Palette maps CSS custom properties to their values.
	Palette map[string]string

	// SchemeSource reports the color scheme preferred by the operating system.
	SchemeSource interface {
		PrefersDark() bool
		// Watch calls fn on every system change until the returned func is called.
		// fn must not be called before Watch returns.
		Watch(fn func(dark bool)) (stop func())
	}

	ThemeApplier interface {
		Apply(resolved string, vars Palette)
	}
)

var palettes = map[string]Palette{
	ThemeLight: {
		"--bg-color":        "#ffffff",
		"--bg-secondary":    "#f8f9fa",
		"--text-color":      "#212529",
		"--text-muted":      "#6c757d",
		"--border-color":    "#dee2e6",
		"--card-bg":         "#ffffff",
		"--primary-color":   "#0d6efd",
		"--navbar-bg":       "#343a40",
		"--shadow-color":    "rgba(0, 0, 0, 0.1)",
		"--input-bg":        "#ffffff",
		"--table-stripe-bg": "rgba(0, 0, 0, 0.05)",
	},
	ThemeDark: {
		"--bg-color":        "#121212",
		"--bg-secondary":    "#1e1e1e",
		"--text-color":      "#e0e0e0",
		"--text-muted":      "#a0a0a0",
		"--border-color":    "#333333",
		"--card-bg":         "#1e1e1e",
		"--primary-color":   "#4dabf7",
		"--navbar-bg":       "#1a1a1a",
		"--shadow-color":    "rgba(0, 0, 0, 0.5)",
		"--input-bg":        "#2d2d2d",
		"--table-stripe-bg": "rgba(255, 255, 255, 0.05)",
	},
}

// PaletteFor returns a copy of the palette of a resolved theme (light or dark).
func PaletteFor(resolved string) Palette {
	p := make(Palette, len(palettes[resolved]))
	for k, v := range palettes[resolved] {
		p[k] = v
	}
	return p
}

// ThemeService persists the display preference and applies the resolved palette.
type ThemeService struct {
	store   Store
	source  SchemeSource
	applier ThemeApplier

	mu       sync.Mutex
	theme    string
	resolved string
	unwatch  func()
	subs     []chan string
}

// NewThemeService applies the persisted preference, or light when there is none.
func NewThemeService(store Store, source SchemeSource, applier ThemeApplier) (*ThemeService, error) {
	s := &ThemeService{store: store, source: source, applier: applier}

	theme := defaultTheme
	if _, err := store.Get(keyTheme, &theme); err != nil {
		return nil, err
	}
	if !validTheme(theme) {
		theme = defaultTheme
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.use(theme)
	return s, nil
}

func validTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark || theme == ThemeAuto
}

// SetTheme persists, applies and broadcasts a new preference.
func (s *ThemeService) SetTheme(theme string) error {
	if !validTheme(theme) {
		return ErrInvalidTheme
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Set(keyTheme, theme); err != nil {
		return errors.Wrap(err, "saving theme")
	}
	s.use(theme)
	return nil
}

// Toggle flips between light and dark, leaving auto.
func (s *ThemeService) Toggle() error {
	if s.Resolved() == ThemeDark {
		return s.SetTheme(ThemeLight)
	}
	return s.SetTheme(ThemeDark)
}

func (s *ThemeService) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// Resolved is the palette in effect: auto resolves to light or dark.
func (s *ThemeService) Resolved() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

// Subscribe receives the resolved theme on every change of preference or of resolved theme.
// Slow readers miss intermediate values.
func (s *ThemeService) Subscribe() <-chan string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan string, 1)
	s.subs = append(s.subs, ch)
	return ch
}

// Close drops the system watch.
func (s *ThemeService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unwatch != nil {
		s.unwatch()
		s.unwatch = nil
	}
}

// use switches to theme, broadcasting when the preference or the resolved theme changes;
// s.mu must be held.
func (s *ThemeService) use(theme string) {
	changed := theme != s.theme
	s.theme = theme

	resolved := theme
	if theme == ThemeAuto {
		resolved = s.systemTheme(s.source.PrefersDark())
		if s.unwatch == nil {
			s.unwatch = s.source.Watch(s.onSystemChange)
		}
	} else if s.unwatch != nil {
		s.unwatch()
		s.unwatch = nil
	}

	if s.apply(resolved) || changed {
		s.broadcast()
	}
}

func (s *ThemeService) onSystemChange(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == ThemeAuto && s.apply(s.systemTheme(dark)) {
		s.broadcast()
	}
}

func (s *ThemeService) systemTheme(dark bool) string {
	if dark {
		return ThemeDark
	}
	return ThemeLight
}

// apply hands the palette of resolved to the applier unless it is already in effect.
func (s *ThemeService) apply(resolved string) bool {
	if resolved == s.resolved {
		return false
	}
	s.resolved = resolved
	s.applier.Apply(resolved, PaletteFor(resolved))
	return true
}

func (s *ThemeService) broadcast() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.resolved
	}
}
