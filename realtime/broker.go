package realtime

import "context"

// Broker is the transport below the Bridge. Implementations deliver
// published payloads to every active subscriber of the same topic.
// Delivery is at-most-once per subscriber; receivers that fall behind
// may miss payloads.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Receiver, error)
	Close() error
}

// Receiver is one subscriber's end of a topic.
type Receiver interface {
	// Messages returns the payload channel. The channel is closed
	// when the receiver is closed or the broker shuts down.
	Messages() <-chan []byte
	Close() error
}
