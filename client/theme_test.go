package client

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schemeMock struct {
	mu       sync.Mutex
	dark     bool
	watchers map[int]func(bool)
	nextID   int
}

func (s *schemeMock) PrefersDark() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

func (s *schemeMock) Watch(fn func(bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchers == nil {
		s.watchers = make(map[int]func(bool))
	}
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

func (s *schemeMock) set(dark bool) {
	s.mu.Lock()
	s.dark = dark
	fns := make([]func(bool), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(dark)
	}
}

func (s *schemeMock) watching() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

type applierMock struct {
	applied []string
	vars    Palette
}

func (a *applierMock) Apply(resolved string, vars Palette) {
	a.applied = append(a.applied, resolved)
	a.vars = vars
}

func TestThemeService(t *testing.T) {
	store := NewMemoryStore()
	source := &schemeMock{}
	applier := &applierMock{}

	svc, err := NewThemeService(store, source, applier)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, svc.Theme())
	assert.Equal(t, []string{ThemeLight}, applier.applied)
	assert.Equal(t, "#ffffff", applier.vars["--bg-color"])

	t.Run("invalid", func(t *testing.T) {
		assert.Equal(t, ErrInvalidTheme, svc.SetTheme("sepia"))
		assert.Equal(t, ThemeLight, svc.Theme())
		ok, _ := store.Get(keyTheme, new(string))
		assert.False(t, ok)
	})

	t.Run("dark", func(t *testing.T) {
		changes := svc.Subscribe()
		require.NoError(t, svc.SetTheme(ThemeDark))
		assert.Equal(t, ThemeDark, <-changes)
		assert.Equal(t, "#121212", applier.vars["--bg-color"])

		var saved string
		_, err := store.Get(keyTheme, &saved)
		require.NoError(t, err)
		assert.Equal(t, ThemeDark, saved)
	})

	t.Run("auto follows the system", func(t *testing.T) {
		source.set(false)
		require.NoError(t, svc.SetTheme(ThemeAuto))
		assert.Equal(t, ThemeLight, svc.Resolved())
		assert.Equal(t, 1, source.watching())

		source.set(true)
		assert.Equal(t, ThemeDark, svc.Resolved())
		source.set(false)
		assert.Equal(t, ThemeLight, svc.Resolved())
	})

	t.Run("leaving auto drops the watch", func(t *testing.T) {
		require.NoError(t, svc.Toggle())
		assert.Equal(t, ThemeDark, svc.Theme())
		assert.Zero(t, source.watching())

		source.set(false)
		assert.Equal(t, ThemeDark, svc.Resolved())
	})

	t.Run("restored", func(t *testing.T) {
		restored, err := NewThemeService(store, source, &applierMock{})
		require.NoError(t, err)
		assert.Equal(t, ThemeDark, restored.Theme())
	})

	t.Run("new preference with the same palette", func(t *testing.T) {
		source.set(true)
		applied := len(applier.applied)
		changes := svc.Subscribe()

		require.NoError(t, svc.SetTheme(ThemeAuto))
		select {
		case resolved := <-changes:
			assert.Equal(t, ThemeDark, resolved)
		default:
			t.Fatal("preference change not broadcast")
		}
		assert.Len(t, applier.applied, applied, "palette already in effect")

		require.NoError(t, svc.SetTheme(ThemeAuto))
		select {
		case <-changes:
			t.Error("nothing changed")
		default:
		}
	})
}
