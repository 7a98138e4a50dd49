package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rfid-attendance/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingNotifier keeps every published event
type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Publish(event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, Event{Name: event, Data: payload})
}

func (n *recordingNotifier) names() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Name
	}
	return out
}

type panickingNotifier struct{}

func (panickingNotifier) Publish(string, interface{}) { panic("sink down") }

func TestNotifiersSkipPanickingSink(t *testing.T) {
	rec := &recordingNotifier{}
	sinks := Notifiers{panickingNotifier{}, nil, rec, NopNotifier{}}

	assert.NotPanics(t, func() { sinks.Publish("attendance:timein", "x") })
	assert.Equal(t, []string{"attendance:timein"}, rec.names())
}

func TestSSEHubBroadcast(t *testing.T) {
	hub := NewSSEHub(nil)
	fixed := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return fixed }

	client := &SSEClient{ID: "c1", AdminID: 1, Role: "admin", Channel: make(chan Event, 1)}
	hub.Register(client)
	assert.Equal(t, 1, hub.GetClientCount())

	hub.Publish("card_updated", map[string]interface{}{"driver_id": "DRV-1"})
	ev := <-client.Channel
	assert.Equal(t, "card_updated", ev.Name)
	assert.Equal(t, fixed, ev.At)

	hub.Unregister("c1")
	assert.Equal(t, 0, hub.GetClientCount())
	_, open := <-client.Channel
	assert.False(t, open)

	// unknown ids are ignored
	hub.Unregister("c1")
}

func TestSSEHubNeverBlocksOnSlowClient(t *testing.T) {
	hub := NewSSEHub(nil)
	slow := &SSEClient{ID: "slow", Channel: make(chan Event)}
	fast := &SSEClient{ID: "fast", Channel: make(chan Event, 4)}
	hub.Register(slow)
	hub.Register(fast)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			hub.Publish("updated", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on an unread client")
	}
	require.Len(t, fast.Channel, 3)
}

// staticAudience maps driver ids to admin ids
type staticAudience map[string][]uint

func (a staticAudience) AdminsForDrivers(_ context.Context, ids []string) (map[string][]uint, error) {
	out := map[string][]uint{}
	for _, id := range ids {
		if admins, ok := a[id]; ok {
			out[id] = admins
		}
	}
	return out, nil
}

type failingAudience struct{}

func (failingAudience) AdminsForDrivers(context.Context, []string) (map[string][]uint, error) {
	return nil, errors.New("db down")
}

func TestSSEHubScopesEventsToTenant(t *testing.T) {
	hub := NewSSEHub(staticAudience{"DRV-1": {2}, "DRV-2": {3}})
	owner := &SSEClient{ID: "owner", AdminID: 2, Role: domain.RoleAdmin, Channel: make(chan Event, 4)}
	other := &SSEClient{ID: "other", AdminID: 3, Role: domain.RoleAdmin, Channel: make(chan Event, 4)}
	root := &SSEClient{ID: "root", AdminID: 1, Role: domain.RoleSuperAdmin, Channel: make(chan Event, 4)}
	hub.Register(owner)
	hub.Register(other)
	hub.Register(root)

	hub.Publish(domain.EventTimeIn, map[string]interface{}{"driver_id": "DRV-1"})
	assert.Len(t, owner.Channel, 1)
	assert.Len(t, other.Channel, 0)
	assert.Len(t, root.Channel, 1)

	hub.Publish(domain.EventPaymentReminder, map[string]interface{}{
		"count": 2,
		"records": []map[string]interface{}{
			{"driver_id": "DRV-1", "full_name": "Juan"},
			{"driver_id": "DRV-2", "full_name": "Pedro"},
		},
	})

	<-owner.Channel
	ev := <-owner.Channel
	data := ev.Data.(map[string]interface{})
	assert.Equal(t, 1, data["count"])
	recs := data["records"].([]map[string]interface{})
	require.Len(t, recs, 1)
	assert.Equal(t, "DRV-1", recs[0]["driver_id"])

	ev = <-other.Channel
	recs = ev.Data.(map[string]interface{})["records"].([]map[string]interface{})
	require.Len(t, recs, 1)
	assert.Equal(t, "DRV-2", recs[0]["driver_id"])

	<-root.Channel
	ev = <-root.Channel
	assert.Equal(t, 2, ev.Data.(map[string]interface{})["count"])

	// events without a driver reach everyone
	hub.Publish("system", "ping")
	assert.Len(t, owner.Channel, 1)
	assert.Len(t, other.Channel, 1)
	assert.Len(t, root.Channel, 1)
}

func TestSSEHubFailedAudienceLookupReachesSuperAdminsOnly(t *testing.T) {
	hub := NewSSEHub(failingAudience{})
	admin := &SSEClient{ID: "admin", AdminID: 2, Role: domain.RoleAdmin, Channel: make(chan Event, 1)}
	root := &SSEClient{ID: "root", AdminID: 1, Role: domain.RoleSuperAdmin, Channel: make(chan Event, 1)}
	hub.Register(admin)
	hub.Register(root)

	hub.Publish(domain.EventTimeIn, map[string]interface{}{"driver_id": "DRV-1"})
	assert.Len(t, admin.Channel, 0)
	assert.Len(t, root.Channel, 1)
}
