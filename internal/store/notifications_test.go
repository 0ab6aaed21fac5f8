package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tridigitals/ispmanagement-realtime/internal/model"
)

func TestNotificationStore_InsertNewestFirst(t *testing.T) {
	s := NewNotificationStore(0)

	s.Insert(model.Notification{ID: "n1", Title: "first"})
	s.Insert(model.Notification{ID: "n2", Title: "second"})

	list := s.List()
	assert.Len(t, list, 2)
	assert.Equal(t, "n2", list[0].ID)
	assert.Equal(t, "n1", list[1].ID)
	assert.Equal(t, 2, s.Unread())
}

func TestNotificationStore_DuplicateReplaces(t *testing.T) {
	s := NewNotificationStore(0)

	s.Insert(model.Notification{ID: "n1", Title: "old"})
	s.Insert(model.Notification{ID: "n1", Title: "new"})

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "new", s.List()[0].Title)
	assert.Equal(t, 1, s.Unread())
}

func TestNotificationStore_MarkRead(t *testing.T) {
	s := NewNotificationStore(0)
	s.Insert(model.Notification{ID: "n1"})
	s.Insert(model.Notification{ID: "n2"})

	assert.True(t, s.MarkRead("n1"))
	assert.Equal(t, 1, s.Unread())

	// Marking again is a no-op.
	assert.True(t, s.MarkRead("n1"))
	assert.Equal(t, 1, s.Unread())

	assert.False(t, s.MarkRead("missing"))
	assert.Equal(t, 1, s.Unread())
}

func TestNotificationStore_SetUnread(t *testing.T) {
	s := NewNotificationStore(0)
	s.Insert(model.Notification{ID: "n1"})

	s.SetUnread(7)
	assert.Equal(t, 7, s.Unread())

	s.SetUnread(-3)
	assert.Equal(t, 0, s.Unread())
}

func TestNotificationStore_TrimsAtLimit(t *testing.T) {
	s := NewNotificationStore(3)

	for i := 1; i <= 5; i++ {
		s.Insert(model.Notification{ID: fmt.Sprintf("n%d", i)})
	}

	list := s.List()
	assert.Len(t, list, 3)
	assert.Equal(t, "n5", list[0].ID)
	assert.Equal(t, "n3", list[2].ID)
	assert.Equal(t, 3, s.Unread())
}

func TestNotificationStore_Replace(t *testing.T) {
	s := NewNotificationStore(2)
	s.Insert(model.Notification{ID: "stale"})

	s.Replace([]model.Notification{
		{ID: "n3"},
		{ID: "n2"},
		{ID: "n1"},
	}, 5)

	list := s.List()
	assert.Len(t, list, 2, "replace respects the tray limit")
	assert.Equal(t, "n3", list[0].ID)
	assert.Equal(t, 5, s.Unread())
}

func TestNotificationStore_Clear(t *testing.T) {
	s := NewNotificationStore(0)
	s.Insert(model.Notification{ID: "n1"})

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Unread())
}
