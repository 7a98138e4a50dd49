package broadcast

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/core/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHub struct {
	mu     sync.Mutex
	events []services.Event
}

func (h *fakeHub) Broadcast(event services.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

type resolveCall struct {
	driverID string
	recordID uint
	fullName string
}

type fakeResolver struct {
	calls []resolveCall
}

func (r *fakeResolver) ResolveWaiter(driverID string, recordID uint, fullName string) bool {
	r.calls = append(r.calls, resolveCall{driverID, recordID, fullName})
	return true
}

func newTestRelay() (*RedisRelay, *fakeHub, *fakeResolver) {
	hub := &fakeHub{}
	res := &fakeResolver{}
	return &RedisRelay{
		instance: "local",
		hub:      hub,
		resolver: res,
		queue:    make(chan envelope, 2),
	}, hub, res
}

func encode(t *testing.T, origin, event string, payload interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	raw, err := json.Marshal(envelope{Origin: origin, Name: event, Data: data, At: time.Now()})
	require.NoError(t, err)
	return raw
}

func TestRelayIgnoresOwnMessages(t *testing.T) {
	relay, hub, res := newTestRelay()

	relay.handle(encode(t, "local", domain.EventLogoutCompleted, map[string]interface{}{"driver_id": "D-1"}))

	assert.Empty(t, hub.events)
	assert.Empty(t, res.calls)
}

func TestRelayBroadcastsRemoteEvents(t *testing.T) {
	relay, hub, res := newTestRelay()

	relay.handle(encode(t, "remote", domain.EventTimeIn, map[string]interface{}{"driver_id": "D-1", "attendance_id": 7}))

	require.Len(t, hub.events, 1)
	assert.Equal(t, domain.EventTimeIn, hub.events[0].Name)
	data, ok := hub.events[0].Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "D-1", data["driver_id"])
	assert.Empty(t, res.calls)
}

func TestRelayResolvesRemoteLogout(t *testing.T) {
	relay, hub, res := newTestRelay()

	relay.handle(encode(t, "remote", domain.EventLogoutCompleted, map[string]interface{}{
		"driver_id":     "D-1",
		"attendance_id": 42,
		"full_name":     "Juan Dela Cruz",
	}))

	assert.Len(t, hub.events, 1)
	require.Len(t, res.calls, 1)
	assert.Equal(t, resolveCall{"D-1", 42, "Juan Dela Cruz"}, res.calls[0])
}

func TestRelayDropsMalformedMessages(t *testing.T) {
	relay, hub, res := newTestRelay()

	relay.handle([]byte("not json"))

	assert.Empty(t, hub.events)
	assert.Empty(t, res.calls)
}

func TestRelayPublishNeverBlocks(t *testing.T) {
	relay, _, _ := newTestRelay()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			relay.Publish(domain.EventTimeIn, map[string]interface{}{"n": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full queue")
	}

	require.Len(t, relay.queue, 2)
	env := <-relay.queue
	assert.Equal(t, "local", env.Origin)
	assert.Equal(t, domain.EventTimeIn, env.Name)
	assert.JSONEq(t, `{"n":0}`, string(env.Data))
}
