package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, s *Subscription) Event {
	t.Helper()
	select {
	case e := <-s.C():
		return e
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
	return Event{}
}

func TestHubDeliversToMatchingSubscribers(t *testing.T) {
	hub := NewHub(nil)
	all := hub.Subscribe(nil, 4)
	tasks := hub.Subscribe(func(e Event) bool { return e.Collection == "tasks" }, 4)
	defer all.Close()
	defer tasks.Close()

	hub.Publish(Event{Collection: "mood_entries", Op: OpAdd, ID: "mood_1"})
	hub.Publish(Event{Collection: "tasks", Op: OpUpdate, ID: "task_1", StudentID: "EST-1234"})

	assert.Equal(t, "mood_1", receive(t, all).ID)
	second := receive(t, all)
	assert.Equal(t, "task_1", second.ID)
	assert.Equal(t, hub.Origin(), second.Origin)

	got := receive(t, tasks)
	assert.Equal(t, OpUpdate, got.Op)
	assert.Equal(t, "EST-1234", got.StudentID)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(nil)
	dropped := 0
	hub.OnDrop = func(Event) { dropped++ }
	s := hub.Subscribe(nil, 1)
	defer s.Close()

	hub.Publish(Event{Collection: "tasks", ID: "task_1"})
	hub.Publish(Event{Collection: "tasks", ID: "task_2"})

	assert.Equal(t, 1, dropped)
	assert.Equal(t, "task_1", receive(t, s).ID)
}

func TestSubscriptionClose(t *testing.T) {
	hub := NewHub(nil)
	s := hub.Subscribe(nil, 1)
	require.Equal(t, 1, hub.Subscribers())

	s.Close()
	s.Close()
	assert.Equal(t, 0, hub.Subscribers())
	_, open := <-s.C()
	assert.False(t, open)

	hub.Publish(Event{Collection: "tasks"})
}

func TestRelayReceivesLocalEvents(t *testing.T) {
	hub := NewHub(nil)
	var relayed []Event
	hub.Relay(func(e Event) { relayed = append(relayed, e) })

	hub.Publish(Event{Collection: "sessions", Op: OpDelete, ID: "session_1"})
	hub.Deliver(Event{Collection: "sessions", Op: OpAdd, ID: "session_2", Origin: "other"})

	require.Len(t, relayed, 1)
	assert.Equal(t, "session_1", relayed[0].ID)
}
