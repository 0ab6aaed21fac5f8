package store

import (
	"sync"

	"github.com/tridigitals/ispmanagement-realtime/internal/model"
)

// DefaultTicketBuffer is the per-subscriber channel depth.
const DefaultTicketBuffer = 16

// TicketFeed fans ticket messages out to subscribers. Slow subscribers
// never block the router: a send to a full channel drops the message
// and counts the drop.
type TicketFeed struct {
	mu      sync.RWMutex
	subs    map[uint64]chan model.TicketMessage
	nextID  uint64
	buffer  int
	dropped uint64
}

// NewTicketFeed returns a feed with the given per-subscriber buffer. A
// non-positive buffer selects DefaultTicketBuffer.
func NewTicketFeed(buffer int) *TicketFeed {
	if buffer <= 0 {
		buffer = DefaultTicketBuffer
	}
	return &TicketFeed{
		subs:   make(map[uint64]chan model.TicketMessage),
		buffer: buffer,
	}
}

// Subscribe registers a new subscriber. The returned cancel func
// unregisters it and closes the channel; it is safe to call twice.
func (f *TicketFeed) Subscribe() (<-chan model.TicketMessage, func()) {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	ch := make(chan model.TicketMessage, f.buffer)
	f.subs[id] = ch
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers msg to every subscriber without blocking.
func (f *TicketFeed) Publish(msg model.TicketMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- msg:
		default:
			f.dropped++
		}
	}
}

// Subscribers returns the number of registered subscribers.
func (f *TicketFeed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Dropped returns how many messages were dropped on full channels.
func (f *TicketFeed) Dropped() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.dropped
}
