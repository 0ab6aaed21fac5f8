package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNavStore_StartsAtDefault(t *testing.T) {
	s := NewNavStore()

	assert.Equal(t, DefaultPath, s.CurrentPath())
	assert.True(t, s.ChangedAt().IsZero())
}

func TestNavStore_Navigate(t *testing.T) {
	s := NewNavStore()

	assert.True(t, s.Navigate("/maintenance"))
	assert.Equal(t, "/maintenance", s.CurrentPath())
	assert.False(t, s.ChangedAt().IsZero())

	// Same route again is not a change.
	assert.False(t, s.Navigate("/maintenance"))

	assert.True(t, s.Navigate(DefaultPath))
	assert.Equal(t, DefaultPath, s.CurrentPath())
}
