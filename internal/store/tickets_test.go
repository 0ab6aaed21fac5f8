package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tridigitals/ispmanagement-realtime/internal/model"
)

func TestTicketFeed_FanOut(t *testing.T) {
	f := NewTicketFeed(0)

	ch1, cancel1 := f.Subscribe()
	defer cancel1()
	ch2, cancel2 := f.Subscribe()
	defer cancel2()

	require.Equal(t, 2, f.Subscribers())

	msg := model.TicketMessage{TicketID: 101, MessageID: "m1", Preview: "router down"}
	f.Publish(msg)

	assert.Equal(t, msg, <-ch1)
	assert.Equal(t, msg, <-ch2)
}

func TestTicketFeed_SlowSubscriberDrops(t *testing.T) {
	f := NewTicketFeed(1)

	ch, cancel := f.Subscribe()
	defer cancel()

	f.Publish(model.TicketMessage{TicketID: 1, MessageID: "m1"})
	f.Publish(model.TicketMessage{TicketID: 1, MessageID: "m2"})

	assert.Equal(t, uint64(1), f.Dropped())

	got := <-ch
	assert.Equal(t, "m1", got.MessageID)
}

func TestTicketFeed_Cancel(t *testing.T) {
	f := NewTicketFeed(0)

	ch, cancel := f.Subscribe()
	cancel()
	cancel() // second call is a no-op

	assert.Equal(t, 0, f.Subscribers())

	_, open := <-ch
	assert.False(t, open, "channel should be closed after cancel")

	// Publishing with no subscribers is fine.
	f.Publish(model.TicketMessage{TicketID: 1})
	assert.Equal(t, uint64(0), f.Dropped())
}
