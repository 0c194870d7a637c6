package relay

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dgnsrekt/gas_chart/internal/dashboard"
)

const subscriberBufSize = 256

// Event is one session notification ready to be written to a client.
type Event struct {
	Feed    string
	Session string
	Payload string
}

// Broker fans out session notifications to SSE and WebSocket subscribers.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[int64]chan Event
	nextID      atomic.Int64
	dropped     atomic.Int64
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[int64]chan Event),
	}
}

// Subscribe registers a new client. The channel is buffered; slow consumers
// have events dropped.
func (b *Broker) Subscribe() (int64, <-chan Event) {
	id := b.nextID.Add(1)
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broker) Unsubscribe(id int64) {
	b.mu.Lock()
	ch, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers without blocking.
func (b *Broker) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			b.dropped.Add(1)
		}
	}
}

// Notify is a dashboard.Observer that publishes n under its kind.
func (b *Broker) Notify(n dashboard.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		slog.Debug("relay notification marshal failed", "kind", n.Kind, "error", err)
		return
	}
	b.Publish(Event{Feed: n.Kind, Session: n.Session, Payload: string(data)})
}

func (b *Broker) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped returns how many events were dropped for slow subscribers.
func (b *Broker) Dropped() int64 { return b.dropped.Load() }
