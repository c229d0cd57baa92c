package realtime

import (
	"context"
	"errors"
	"sync"
)

// ErrBrokerClosed is returned when publishing or subscribing on a
// closed broker.
var ErrBrokerClosed = errors.New("realtime: broker closed")

// MemoryBroker is an in-process Broker. It backs single-node
// deployments that run without Redis, and tests.
type MemoryBroker struct {
	mu        sync.RWMutex
	topics    map[string]map[*memoryReceiver]struct{}
	closed    bool
	bufferLen int
}

// NewMemoryBroker creates an in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		topics:    make(map[string]map[*memoryReceiver]struct{}),
		bufferLen: 64,
	}
}

// Publish delivers the payload to every current subscriber of the
// topic. A subscriber whose buffer is full drops the payload rather
// than stalling the publisher, matching Redis pub/sub semantics.
func (b *MemoryBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBrokerClosed
	}

	for r := range b.topics[topic] {
		select {
		case r.out <- payload:
		default:
		}
	}
	return nil
}

// Subscribe registers a new receiver for the topic.
func (b *MemoryBroker) Subscribe(ctx context.Context, topic string) (Receiver, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBrokerClosed
	}

	r := &memoryReceiver{
		broker: b,
		topic:  topic,
		out:    make(chan []byte, b.bufferLen),
	}
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[*memoryReceiver]struct{})
	}
	b.topics[topic][r] = struct{}{}
	return r, nil
}

// Close shuts the broker down and closes every receiver channel.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for topic, receivers := range b.topics {
		for r := range receivers {
			r.markClosed()
		}
		delete(b.topics, topic)
	}
	return nil
}

func (b *MemoryBroker) unsubscribe(r *memoryReceiver) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if receivers, ok := b.topics[r.topic]; ok {
		if _, ok := receivers[r]; ok {
			delete(receivers, r)
			if len(receivers) == 0 {
				delete(b.topics, r.topic)
			}
			r.markClosed()
		}
	}
}

type memoryReceiver struct {
	broker    *MemoryBroker
	topic     string
	out       chan []byte
	closeOnce sync.Once
}

func (r *memoryReceiver) Messages() <-chan []byte {
	return r.out
}

func (r *memoryReceiver) Close() error {
	r.broker.unsubscribe(r)
	return nil
}

// markClosed closes the payload channel exactly once. Callers must
// hold the broker lock so no publish races the close.
func (r *memoryReceiver) markClosed() {
	r.closeOnce.Do(func() {
		close(r.out)
	})
}
