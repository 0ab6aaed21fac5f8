package store

import (
	"slices"
	"sync"

	"github.com/tridigitals/ispmanagement-realtime/internal/model"
)

// DefaultNotificationLimit bounds the tray when no limit is configured.
const DefaultNotificationLimit = 200

// NotificationStore is the notification tray: a bounded newest-first
// list plus an unread counter. The counter tracks local mutations but
// the server's count is authoritative; SetUnread overwrites it whenever
// the server reports one.
type NotificationStore struct {
	mu     sync.RWMutex
	limit  int
	items  []model.Notification
	unread int
}

// NewNotificationStore returns a tray bounded to limit entries. A
// non-positive limit selects DefaultNotificationLimit.
func NewNotificationStore(limit int) *NotificationStore {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	return &NotificationStore{limit: limit}
}

// Insert prepends a notification. A duplicate ID replaces the existing
// entry in place instead of double counting. The oldest entry is
// dropped once the tray is full.
func (s *NotificationStore) Insert(n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == n.ID {
			if !s.items[i].Read && n.Read {
				s.unread--
			} else if s.items[i].Read && !n.Read {
				s.unread++
			}
			s.items[i] = n
			return
		}
	}

	s.items = slices.Insert(s.items, 0, n)
	if len(s.items) > s.limit {
		dropped := s.items[len(s.items)-1]
		s.items = s.items[:s.limit]
		if !dropped.Read && s.unread > 0 {
			s.unread--
		}
	}
	if !n.Read {
		s.unread++
	}
}

// MarkRead marks a notification read and reports whether it was found.
func (s *NotificationStore) MarkRead(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID == id {
			if !s.items[i].Read {
				s.items[i].Read = true
				if s.unread > 0 {
					s.unread--
				}
			}
			return true
		}
	}
	return false
}

// Replace swaps the tray contents for a server snapshot, newest first,
// and overwrites the unread counter.
func (s *NotificationStore) Replace(items []model.Notification, unread int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	if len(s.items) > s.limit {
		s.items = s.items[:s.limit]
	}
	s.unread = max(unread, 0)
}

// SetUnread overwrites the unread counter with the server's count.
func (s *NotificationStore) SetUnread(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread = max(count, 0)
}

// Unread returns the current unread count.
func (s *NotificationStore) Unread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// List returns a copy of the tray, newest first.
func (s *NotificationStore) List() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the number of notifications held.
func (s *NotificationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Clear empties the tray and zeroes the unread counter.
func (s *NotificationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.unread = 0
}
