package realtime

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kasraden/bazaar-support/models"
	"github.com/kasraden/bazaar-support/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectEvents(t *testing.T, sub *Subscription, n int) []*Event {
	t.Helper()
	events := make([]*Event, 0, n)
	timeout := time.After(2 * time.Second)
	for len(events) < n {
		select {
		case e, ok := <-sub.Events():
			require.True(t, ok, "event channel closed after %d of %d events", len(events), n)
			events = append(events, e)
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %d of %d", len(events), n)
		}
	}
	return events
}

func TestBridgePublishSubscribe(t *testing.T) {
	broker := NewMemoryBroker()
	defer broker.Close()
	bridge := NewBridge(broker)
	ctx := context.Background()

	sub, err := bridge.Subscribe(ctx, "ticket-1", Handlers{})
	require.NoError(t, err)
	defer sub.Close()

	now := utils.UTCNow()
	err = bridge.PublishMessage(ctx, "ticket-1", MessageEvent{
		UUID:       "msg-1",
		SenderRole: models.RoleUser,
		SenderName: "Sara",
		Body:       "My order never arrived",
		CreatedAt:  now,
	})
	require.NoError(t, err)

	events := collectEvents(t, sub, 1)
	e := events[0]
	assert.Equal(t, EventMessage, e.Kind)
	assert.Equal(t, "ticket-1", e.TicketUUID)
	require.NotNil(t, e.Message)
	assert.Equal(t, "msg-1", e.Message.UUID)
	assert.Equal(t, models.RoleUser, e.Message.SenderRole)
	assert.Equal(t, "My order never arrived", e.Message.Body)
	assert.True(t, e.Message.CreatedAt.Equal(now))
}

func TestBridgeDeliversInPublishOrder(t *testing.T) {
	broker := NewMemoryBroker()
	defer broker.Close()
	bridge := NewBridge(broker)
	ctx := context.Background()

	sub, err := bridge.Subscribe(ctx, "ticket-1", Handlers{})
	require.NoError(t, err)
	defer sub.Close()

	const count = 20
	for i := 0; i < count; i++ {
		err := bridge.PublishMessage(ctx, "ticket-1", MessageEvent{
			UUID:       fmt.Sprintf("msg-%d", i),
			SenderRole: models.RoleStore,
			Body:       fmt.Sprintf("reply %d", i),
			CreatedAt:  utils.UTCNow(),
		})
		require.NoError(t, err)
	}

	events := collectEvents(t, sub, count)
	for i, e := range events {
		require.NotNil(t, e.Message)
		assert.Equal(t, fmt.Sprintf("msg-%d", i), e.Message.UUID)
	}
}

func TestBridgeTopicsAreIsolated(t *testing.T) {
	broker := NewMemoryBroker()
	defer broker.Close()
	bridge := NewBridge(broker)
	ctx := context.Background()

	subA, err := bridge.Subscribe(ctx, "ticket-a", Handlers{})
	require.NoError(t, err)
	defer subA.Close()

	subB, err := bridge.Subscribe(ctx, "ticket-b", Handlers{})
	require.NoError(t, err)
	defer subB.Close()

	require.NoError(t, bridge.PublishStatusChange(ctx, "ticket-a", StatusEvent{
		Status: models.TicketStatusResolved,
	}, utils.UTCNow()))

	events := collectEvents(t, subA, 1)
	assert.Equal(t, EventStatusChanged, events[0].Kind)

	select {
	case e := <-subB.Events():
		t.Fatalf("subscription on ticket-b received foreign event %+v", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBridgeHandlerDispatch(t *testing.T) {
	broker := NewMemoryBroker()
	defer broker.Close()
	bridge := NewBridge(broker)
	ctx := context.Background()

	permissions := make(chan PermissionEvent, 1)
	statuses := make(chan StatusEvent, 1)

	sub, err := bridge.Subscribe(ctx, "ticket-1", Handlers{
		OnPermissionChanged: func(ev PermissionEvent) { permissions <- ev },
		OnStatusChanged:     func(ev StatusEvent) { statuses <- ev },
	})
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bridge.PublishPermissionChange(ctx, "ticket-1", PermissionEvent{
		Field:   models.PermissionFieldUser,
		Allowed: false,
	}, utils.UTCNow()))

	require.NoError(t, bridge.PublishStatusChange(ctx, "ticket-1", StatusEvent{
		Status: models.TicketStatusInProgress,
	}, utils.UTCNow()))

	select {
	case ev := <-permissions:
		assert.Equal(t, models.PermissionFieldUser, ev.Field)
		assert.False(t, ev.Allowed)
	case <-time.After(2 * time.Second):
		t.Fatal("permission handler was not invoked")
	}

	select {
	case ev := <-statuses:
		assert.Equal(t, models.TicketStatusInProgress, ev.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("status handler was not invoked")
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	broker := NewMemoryBroker()
	defer broker.Close()
	bridge := NewBridge(broker)

	sub, err := bridge.Subscribe(context.Background(), "ticket-1", Handlers{})
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not shut down")
	}

	_, ok := <-sub.Events()
	assert.False(t, ok, "event channel should be closed")
}

func TestBrokerCloseEndsSubscriptions(t *testing.T) {
	broker := NewMemoryBroker()
	bridge := NewBridge(broker)

	sub, err := bridge.Subscribe(context.Background(), "ticket-1", Handlers{})
	require.NoError(t, err)

	require.NoError(t, broker.Close())

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not end after broker close")
	}

	err = broker.Publish(context.Background(), "ticket-1", []byte("{}"))
	assert.ErrorIs(t, err, ErrBrokerClosed)

	_, err = broker.Subscribe(context.Background(), "ticket-1")
	assert.ErrorIs(t, err, ErrBrokerClosed)
}

func TestEventEncodeDecode(t *testing.T) {
	now := utils.UTCNow()
	original := &Event{
		Kind:       EventMessage,
		TicketUUID: "ticket-1",
		OccurredAt: now,
		Message: &MessageEvent{
			UUID:       "msg-1",
			SenderRole: models.RoleAdmin,
			SenderName: "Support",
			Body:       "We are looking into it",
			MediaURL:   "/uploads/2026-01-05/clip.mp4",
			CreatedAt:  now,
		},
	}

	payload, err := original.Encode()
	require.NoError(t, err)

	decoded, err := DecodeEvent(payload)
	require.NoError(t, err)
	assert.Equal(t, original.Kind, decoded.Kind)
	assert.Equal(t, original.TicketUUID, decoded.TicketUUID)
	require.NotNil(t, decoded.Message)
	assert.Equal(t, original.Message.UUID, decoded.Message.UUID)
	assert.Equal(t, original.Message.MediaURL, decoded.Message.MediaURL)
	assert.Nil(t, decoded.Permission)
	assert.Nil(t, decoded.Status)
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)
}
