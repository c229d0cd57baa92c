package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_published_total",
			Help: "Total ticket events published to the broker",
		},
		[]string{"kind"},
	)

	eventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_delivered_total",
			Help: "Total ticket events delivered to subscribers",
		},
		[]string{"kind"},
	)

	eventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_events_dropped_total",
			Help: "Ticket events discarded because they could not be decoded or buffered",
		},
	)

	subscriptionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_subscriptions_active",
			Help: "Currently open ticket subscriptions",
		},
	)
)

// Handlers receives decoded events for one subscription. Nil fields
// are skipped. Callbacks run serially on the subscription's dispatch
// goroutine, so events for a ticket arrive in publish order.
type Handlers struct {
	OnMessage           func(MessageEvent)
	OnPermissionChanged func(PermissionEvent)
	OnStatusChanged     func(StatusEvent)
}

func (h Handlers) empty() bool {
	return h.OnMessage == nil && h.OnPermissionChanged == nil && h.OnStatusChanged == nil
}

// Bridge publishes and subscribes ticket events over a Broker.
type Bridge struct {
	broker Broker
}

// NewBridge creates a bridge on top of a broker.
func NewBridge(broker Broker) *Bridge {
	return &Bridge{broker: broker}
}

// PublishMessage broadcasts a persisted message to all viewers of the
// ticket, the sender's own open view included.
func (b *Bridge) PublishMessage(ctx context.Context, ticketUUID string, ev MessageEvent) error {
	return b.publish(ctx, &Event{
		Kind:       EventMessage,
		TicketUUID: ticketUUID,
		OccurredAt: ev.CreatedAt,
		Message:    &ev,
	})
}

// PublishPermissionChange broadcasts a send-permission toggle.
func (b *Bridge) PublishPermissionChange(ctx context.Context, ticketUUID string, ev PermissionEvent, occurredAt time.Time) error {
	return b.publish(ctx, &Event{
		Kind:       EventPermissionChanged,
		TicketUUID: ticketUUID,
		OccurredAt: occurredAt,
		Permission: &ev,
	})
}

// PublishStatusChange broadcasts a ticket status transition.
func (b *Bridge) PublishStatusChange(ctx context.Context, ticketUUID string, ev StatusEvent, occurredAt time.Time) error {
	return b.publish(ctx, &Event{
		Kind:       EventStatusChanged,
		TicketUUID: ticketUUID,
		OccurredAt: occurredAt,
		Status:     &ev,
	})
}

func (b *Bridge) publish(ctx context.Context, e *Event) error {
	payload, err := e.Encode()
	if err != nil {
		return err
	}
	if err := b.broker.Publish(ctx, e.TicketUUID, payload); err != nil {
		return err
	}
	eventsPublished.WithLabelValues(string(e.Kind)).Inc()
	return nil
}

// Subscribe opens a live view on a ticket's conversation. Events are
// dispatched to the handlers; when no handlers are given they are
// buffered on the Events channel instead. Close the subscription when
// the conversation view goes away.
func (b *Bridge) Subscribe(ctx context.Context, ticketUUID string, h Handlers) (*Subscription, error) {
	receiver, err := b.broker.Subscribe(ctx, ticketUUID)
	if err != nil {
		return nil, err
	}

	s := &Subscription{
		ticketUUID: ticketUUID,
		receiver:   receiver,
		handlers:   h,
		events:     make(chan *Event, 64),
		done:       make(chan struct{}),
	}
	subscriptionsActive.Inc()
	go s.dispatch()
	return s, nil
}

// Subscription is one viewer's live attachment to a ticket.
type Subscription struct {
	ticketUUID string
	receiver   Receiver
	handlers   Handlers
	events     chan *Event
	done       chan struct{}
	closeOnce  sync.Once
}

// TicketUUID returns the ticket this subscription watches.
func (s *Subscription) TicketUUID() string {
	return s.ticketUUID
}

// Events returns the decoded event channel. Only populated when the
// subscription was opened without handlers. The channel is closed when
// the subscription ends.
func (s *Subscription) Events() <-chan *Event {
	return s.events
}

// Done is closed when the subscription has fully shut down.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close detaches from the ticket. Safe to call more than once; later
// calls are no-ops.
func (s *Subscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.receiver.Close()
	})
	return err
}

func (s *Subscription) dispatch() {
	defer func() {
		subscriptionsActive.Dec()
		close(s.events)
		close(s.done)
	}()

	useChannel := s.handlers.empty()

	for payload := range s.receiver.Messages() {
		e, err := DecodeEvent(payload)
		if err != nil {
			eventsDropped.Inc()
			continue
		}

		if useChannel {
			select {
			case s.events <- e:
				eventsDelivered.WithLabelValues(string(e.Kind)).Inc()
			default:
				eventsDropped.Inc()
			}
			continue
		}

		switch e.Kind {
		case EventMessage:
			if e.Message != nil && s.handlers.OnMessage != nil {
				s.handlers.OnMessage(*e.Message)
			}
		case EventPermissionChanged:
			if e.Permission != nil && s.handlers.OnPermissionChanged != nil {
				s.handlers.OnPermissionChanged(*e.Permission)
			}
		case EventStatusChanged:
			if e.Status != nil && s.handlers.OnStatusChanged != nil {
				s.handlers.OnStatusChanged(*e.Status)
			}
		default:
			eventsDropped.Inc()
			continue
		}
		eventsDelivered.WithLabelValues(string(e.Kind)).Inc()
	}
}
