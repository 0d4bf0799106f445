package workout

import (
	"sync"
	"time"
)

// Event is one store-layer failure (or background completion) surfaced to
// whoever is observing the sink.
type Event struct {
	Op   string    `json:"op"`
	Err  error     `json:"-"`
	Time time.Time `json:"time"`
}

// Sink is the central error sink: store-layer errors are reported here and
// fanned out to subscribers instead of being swallowed, so a boundary layer
// can surface them however it likes. Validation errors never pass through
// the sink; they go back to the immediate caller.
type Sink struct {
	mu   sync.Mutex
	subs []chan Event
}

// NewSink returns an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Subscribe registers a new observer. The channel is buffered; a slow
// observer drops events rather than blocking a store operation.
func (s *Sink) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Report delivers an event to every subscriber without blocking.
func (s *Sink) Report(op string, err error) {
	ev := Event{Op: op, Err: err, Time: time.Now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
