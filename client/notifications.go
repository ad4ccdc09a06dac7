package client

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/tupad/organizador/core/notificacion"
)

// NotificationList is the bounded, newest-first list of notifications of the session.
// Every mutation is persisted and signalled to the subscribers.
type NotificationList struct {
	store Store
	max   int

	mu     sync.Mutex
	items  []notificacion.Notificacion
	unread int
	subs   map[int]chan struct{}
	nextID int
}

// NewNotificationList restores the persisted list, trimmed to max items.
func NewNotificationList(store Store, max int) (*NotificationList, error) {
	if max < 1 {
		max = 1
	}
	l := &NotificationList{store: store, max: max, subs: make(map[int]chan struct{})}
	if _, err := store.Get(keyNotifications, &l.items); err != nil {
		return nil, err
	}
	if _, err := store.Get(keyUnreadCount, &l.unread); err != nil {
		return nil, err
	}
	if len(l.items) > max {
		l.items = l.items[:max]
	}
	return l, nil
}

// Add prepends the notifications not already listed and returns how many were new.
// The unread counter grows by the new unread ones; the oldest items beyond the cap are dropped.
func (l *NotificationList) Add(notifs ...notificacion.Notificacion) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := make(map[int]bool, len(l.items)+len(notifs))
	for _, n := range l.items {
		seen[n.ID] = true
	}
	var fresh []notificacion.Notificacion
	for _, n := range notifs {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		fresh = append(fresh, n)
		if !n.Leida {
			l.unread++
		}
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		if fresh[i].CreatedAt.Equal(fresh[j].CreatedAt) {
			return fresh[i].ID > fresh[j].ID
		}
		return fresh[i].CreatedAt.After(fresh[j].CreatedAt)
	})
	l.items = append(fresh, l.items...)
	if len(l.items) > l.max {
		l.items = l.items[:l.max]
	}
	return len(fresh), l.changed()
}

// SetUnread replaces the counter with the authoritative count from the server.
func (l *NotificationList) SetUnread(n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n == l.unread {
		return nil
	}
	l.unread = n
	return l.changed()
}

func (l *NotificationList) MarkRead(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.items[i].ID == id && !l.items[i].Leida {
			l.items[i].Leida = true
			if l.unread > 0 {
				l.unread--
			}
			return l.changed()
		}
	}
	return nil
}

func (l *NotificationList) MarkAllRead() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		l.items[i].Leida = true
	}
	l.unread = 0
	return l.changed()
}

func (l *NotificationList) Remove(id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, n := range l.items {
		if n.ID == id {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			if !n.Leida && l.unread > 0 {
				l.unread--
			}
			return l.changed()
		}
	}
	return nil
}

// Clear empties the list and forgets the persisted copy.
func (l *NotificationList) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items, l.unread = nil, 0
	l.broadcast()
	return l.store.Delete(keyNotifications, keyUnreadCount)
}

func (l *NotificationList) Items() []notificacion.Notificacion {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]notificacion.Notificacion, len(l.items))
	copy(items, l.items)
	return items
}

func (l *NotificationList) Unread() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unread
}

// Subscribe returns a channel signalled after every change and a func to unsubscribe.
// Signals coalesce: a slow reader sees one pending signal, never a blocked writer.
func (l *NotificationList) Subscribe() (<-chan struct{}, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	ch := make(chan struct{}, 1)
	l.subs[id] = ch
	return ch, func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// changed persists and signals; l.mu must be held.
func (l *NotificationList) changed() error {
	l.broadcast()
	if err := l.store.Set(keyNotifications, l.items); err != nil {
		return errors.Wrap(err, "saving notifications")
	}
	return errors.Wrap(l.store.Set(keyUnreadCount, l.unread), "saving unread count")
}

func (l *NotificationList) broadcast() {
	for _, ch := range l.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
