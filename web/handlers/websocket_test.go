package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvEvent(t *testing.T, ch <-chan []byte) Event {
	t.Helper()
	select {
	case data, ok := <-ch:
		require.True(t, ok, "channel closed before an event arrived")
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcastDeliversDirectoryLoaded(t *testing.T) {
	hub := NewEventHub()
	defer hub.Stop()

	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Broadcast(Event{Type: EventDirectoryLoaded, Source: "primary", Agents: 42})

	event := recvEvent(t, ch)
	assert.Equal(t, EventDirectoryLoaded, event.Type)
	assert.Equal(t, "primary", event.Source)
	assert.Equal(t, 42, event.Agents)
}

func TestBroadcastDeliversImportCompleted(t *testing.T) {
	hub := NewEventHub()
	defer hub.Stop()

	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Broadcast(Event{Type: EventImportCompleted, RunID: "run_abc", Imported: 17})

	event := recvEvent(t, ch)
	assert.Equal(t, EventImportCompleted, event.Type)
	assert.Equal(t, "run_abc", event.RunID)
	assert.Equal(t, 17, event.Imported)
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewEventHub()
	defer hub.Stop()

	chA, cancelA := hub.Subscribe()
	defer cancelA()
	chB, cancelB := hub.Subscribe()
	defer cancelB()

	require.Equal(t, 2, hub.Subscribers())

	hub.Broadcast(Event{Type: EventDirectoryLoaded, Source: "secondary", Agents: 5})

	assert.Equal(t, "secondary", recvEvent(t, chA).Source)
	assert.Equal(t, "secondary", recvEvent(t, chB).Source)
}

func TestCancelRemovesSubscriberAndClosesChannel(t *testing.T) {
	hub := NewEventHub()
	defer hub.Stop()

	ch, cancel := hub.Subscribe()
	require.Equal(t, 1, hub.Subscribers())

	cancel()
	assert.Equal(t, 0, hub.Subscribers())

	_, ok := <-ch
	assert.False(t, ok, "cancelled channel should be closed")

	// A second cancel is a no-op.
	cancel()
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	hub := NewEventHub()
	defer hub.Stop()

	ch, cancel := hub.Subscribe()
	defer cancel()

	// Fill the buffer and push one more without the subscriber reading.
	for i := 0; i <= subscriberBuffer; i++ {
		hub.Broadcast(Event{Type: EventDirectoryLoaded, Agents: i})
	}

	assert.Equal(t, 0, hub.Subscribers())

	// Drain the buffered events; the channel must end up closed.
	for range ch {
	}
}

func TestStopClosesSubscribers(t *testing.T) {
	hub := NewEventHub()

	ch, _ := hub.Subscribe()
	hub.Stop()

	_, ok := <-ch
	assert.False(t, ok, "stop should close subscriber channels")
	assert.Equal(t, 0, hub.Subscribers())

	// Subscribing after Stop yields an already-closed channel.
	late, cancel := hub.Subscribe()
	defer cancel()
	_, ok = <-late
	assert.False(t, ok)
}
