package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// go-redis keeps a pool reaper per client until Close returns
		goleak.IgnoreTopFunction("github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func TestBus_PublishToAllSubscribers(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	a := bus.Subscribe(4, nil)
	b := bus.Subscribe(4, nil)
	defer a.Close()
	defer b.Close()

	bus.Publish(Event{Collection: "favorites", Action: ActionAdd, OwnerID: "u1", ItemID: 7})

	for _, sub := range []*Subscription{a, b} {
		select {
		case ev := <-sub.C():
			assert.Equal(t, "favorites", ev.Collection)
			assert.Equal(t, ActionAdd, ev.Action)
			assert.Equal(t, int64(7), ev.ItemID)
			assert.False(t, ev.At.IsZero())
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestBus_SlowSubscriberDropsEvents(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	sub := bus.Subscribe(1, nil)
	defer sub.Close()

	bus.Publish(Event{Collection: "library", Action: ActionAdd, ItemID: 1})
	bus.Publish(Event{Collection: "library", Action: ActionAdd, ItemID: 2})

	ev := <-sub.C()
	assert.Equal(t, int64(1), ev.ItemID)
	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected event %+v", extra)
	default:
	}
}

func TestBus_FilteredEventsAreNotQueued(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	mine := bus.Subscribe(1, ForOwner("u1"))
	defer mine.Close()

	for i := int64(1); i <= 5; i++ {
		bus.Publish(Event{Collection: "favorites", Action: ActionAdd, OwnerID: "u2", ItemID: i})
	}
	bus.Publish(Event{Collection: "favorites", Action: ActionAdd, OwnerID: "u1", ItemID: 42})

	select {
	case ev := <-mine.C():
		assert.Equal(t, "u1", ev.OwnerID)
		assert.Equal(t, int64(42), ev.ItemID)
	case <-time.After(time.Second):
		t.Fatal("own event was dropped")
	}
	select {
	case extra := <-mine.C():
		t.Fatalf("unexpected event %+v", extra)
	default:
	}
}

func TestBus_CloseUnsubscribes(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	sub := bus.Subscribe(1, nil)
	assert.Equal(t, 1, bus.Subscribers())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, bus.Subscribers())

	_, ok := <-sub.C()
	assert.False(t, ok)

	// publishing without subscribers is a no-op
	bus.Publish(Event{Collection: "favorites", Action: ActionRemove})
}

func TestRedisRelay_Forwards(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := client.Subscribe(ctx, DefaultChannel)
	defer pubsub.Close()
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	bus := NewBus(zaptest.NewLogger(t))
	relay := NewRedisRelay(client, "", zaptest.NewLogger(t))
	done := make(chan struct{})
	go func() {
		relay.Run(ctx, bus.Subscribe(8, nil))
		close(done)
	}()

	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	bus.Publish(Event{Collection: "continue-watching", Action: ActionUpdate, OwnerID: "u9", ItemID: 3})

	msg, err := pubsub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
	assert.Equal(t, "continue-watching", ev.Collection)
	assert.Equal(t, ActionUpdate, ev.Action)

	cancel()
	<-done
	assert.Equal(t, 0, bus.Subscribers())
}
