package realtime

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBroker fans events out across processes via Redis pub/sub.
// Each ticket gets its own channel, so a subscriber only receives
// traffic for conversations it is watching.
type RedisBroker struct {
	client *redis.Client
	prefix string
}

// NewRedisBroker creates a broker on top of an existing Redis client.
// The client's lifecycle belongs to the caller.
func NewRedisBroker(client *redis.Client, prefix string) *RedisBroker {
	return &RedisBroker{
		client: client,
		prefix: prefix,
	}
}

// Publish sends a payload to every subscriber of the topic.
func (b *RedisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.client.Publish(ctx, b.prefix+topic, payload).Err()
}

// Subscribe opens a dedicated pub/sub connection for the topic.
// go-redis reconnects the underlying connection automatically, though
// payloads published while disconnected are lost.
func (b *RedisBroker) Subscribe(ctx context.Context, topic string) (Receiver, error) {
	ps := b.client.Subscribe(ctx, b.prefix+topic)

	// Confirm the subscription before handing it out, so publishes
	// after Subscribe returns are not missed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	r := &redisReceiver{
		ps:  ps,
		out: make(chan []byte, 64),
	}
	go r.pump()
	return r, nil
}

// Close is a no-op; the Redis client is shared and closed by its owner.
func (b *RedisBroker) Close() error {
	return nil
}

type redisReceiver struct {
	ps        *redis.PubSub
	out       chan []byte
	closeOnce sync.Once
}

func (r *redisReceiver) pump() {
	defer close(r.out)
	for msg := range r.ps.Channel() {
		r.out <- []byte(msg.Payload)
	}
}

func (r *redisReceiver) Messages() <-chan []byte {
	return r.out
}

func (r *redisReceiver) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.ps.Close()
	})
	return err
}
