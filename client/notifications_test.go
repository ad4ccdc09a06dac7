package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tupad/organizador/core/notificacion"
)

func notif(id int, read bool, at time.Time) notificacion.Notificacion {
	return notificacion.Notificacion{ID: id, Tipo: "info", Titulo: "n", Mensaje: "m", Leida: read, CreatedAt: at}
}

func TestNotificationList_Add(t *testing.T) {
	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	list, err := NewNotificationList(store, 3)
	require.NoError(t, err)

	n, err := list.Add(notif(1, false, base), notif(2, true, base.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, list.Unread())

	t.Run("existing id is a no-op", func(t *testing.T) {
		n, err := list.Add(notif(1, false, base))
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 1, list.Unread())
		assert.Len(t, list.Items(), 2)
	})

	t.Run("duplicates within one batch", func(t *testing.T) {
		n, err := list.Add(notif(3, false, base.Add(2*time.Minute)), notif(3, false, base.Add(2*time.Minute)))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 2, list.Unread())
	})

	t.Run("cap evicts the oldest", func(t *testing.T) {
		_, err := list.Add(notif(4, false, base.Add(3*time.Minute)), notif(5, false, base.Add(4*time.Minute)))
		require.NoError(t, err)

		items := list.Items()
		require.Len(t, items, 3)
		ids := []int{items[0].ID, items[1].ID, items[2].ID}
		assert.Equal(t, []int{5, 4, 3}, ids)
	})

	t.Run("persisted", func(t *testing.T) {
		restored, err := NewNotificationList(store, 3)
		require.NoError(t, err)
		assert.Equal(t, list.Items()[0].ID, restored.Items()[0].ID)
		assert.Equal(t, list.Unread(), restored.Unread())
	})
}

func TestNotificationList_readAndRemove(t *testing.T) {
	base := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	list, err := NewNotificationList(NewMemoryStore(), 10)
	require.NoError(t, err)
	_, err = list.Add(notif(1, false, base), notif(2, false, base), notif(3, true, base))
	require.NoError(t, err)
	require.Equal(t, 2, list.Unread())

	updated, unsubscribe := list.Subscribe()
	defer unsubscribe()

	require.NoError(t, list.MarkRead(1))
	assert.Equal(t, 1, list.Unread())
	select {
	case <-updated:
	default:
		t.Error("no update signal after MarkRead")
	}

	// reading twice does not decrement twice
	require.NoError(t, list.MarkRead(1))
	assert.Equal(t, 1, list.Unread())

	require.NoError(t, list.Remove(2))
	assert.Zero(t, list.Unread())
	assert.Len(t, list.Items(), 2)

	require.NoError(t, list.SetUnread(4))
	require.NoError(t, list.MarkAllRead())
	assert.Zero(t, list.Unread())

	require.NoError(t, list.Clear())
	assert.Empty(t, list.Items())
}
