package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sockbowl/sockbowl-client/go/internal/transport"
)

var errUnknownType = errors.New("unknown event type")

const subscriberBuffer = 16

// Dispatcher demultiplexes the transport's raw inbound stream into
// typed events. Every successfully decoded event goes out on the single
// ordered Events channel (the state store's feed) and is additionally
// published to that type's lazily created subscriber cell for UI-facing
// listeners. Malformed payloads and unknown discriminators are logged
// and dropped; they never escape the dispatch boundary.
type Dispatcher struct {
	decoded chan Event

	mu    sync.Mutex
	cells map[EventType]*cell
}

// cell is a single-slot latest-value holder plus subscriber channels
// for one event type.
type cell struct {
	latest *Event
	subs   []chan Event
}

// New creates a Dispatcher with the given decoded-stream buffer.
func New(buffer int) *Dispatcher {
	return &Dispatcher{
		decoded: make(chan Event, buffer),
		cells:   make(map[EventType]*cell),
	}
}

// Events is the ordered decoded stream. Events appear in transport
// delivery order with no reordering or coalescing.
func (d *Dispatcher) Events() <-chan Event {
	return d.decoded
}

// Subscribe returns a per-type channel, creating the cell on first use.
// Late subscribers see no historical events, except for the full-state
// event, whose latest value is replayed to each new subscriber so a
// late-attaching surface can render immediately.
func (d *Dispatcher) Subscribe(eventType EventType) <-chan Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.cell(eventType)
	ch := make(chan Event, subscriberBuffer)
	c.subs = append(c.subs, ch)
	if eventType == EventGameSessionUpdate && c.latest != nil {
		ch <- *c.latest
	}
	return ch
}

// Run consumes raw transport messages until ctx is done or the inbound
// channel closes.
func (d *Dispatcher) Run(ctx context.Context, inbound <-chan transport.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-inbound:
			if !ok {
				close(d.decoded)
				return
			}
			d.dispatch(ctx, msg)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, msg transport.Message) {
	var env envelope
	if err := json.Unmarshal(msg.Data, &env); err != nil {
		log.Error().Err(err).Str("subject", msg.Subject).Msg("dropping malformed envelope")
		return
	}

	event, err := decodeEvent(env.MessageContentType, msg.Data)
	if err != nil {
		if errors.Is(err, errUnknownType) {
			log.Warn().Str("event_type", string(env.MessageContentType)).Msg("dropping event with unknown type")
		} else {
			log.Error().Err(err).Str("event_type", string(env.MessageContentType)).Msg("dropping malformed event payload")
		}
		return
	}

	select {
	case d.decoded <- event:
	case <-ctx.Done():
		return
	}
	d.publish(event)
}

func (d *Dispatcher) publish(event Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	c := d.cell(event.Type)
	c.latest = &event
	for _, sub := range c.subs {
		select {
		case sub <- event:
		default:
			log.Warn().Str("event_type", string(event.Type)).Msg("subscriber buffer full, dropping event")
		}
	}
}

func (d *Dispatcher) cell(eventType EventType) *cell {
	c, ok := d.cells[eventType]
	if !ok {
		c = &cell{}
		d.cells[eventType] = c
	}
	return c
}
