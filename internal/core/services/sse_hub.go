package services

import (
	"context"
	"log"
	"sync"
	"time"

	"rfid-attendance/internal/core/domain"
)

const audienceTimeout = 2 * time.Second

// SSEClient represents a connected administrator stream
type SSEClient struct {
	ID      string
	AdminID uint
	Role    string
	Channel chan Event
}

// AudienceResolver maps external driver ids to the admins that manage them
type AudienceResolver interface {
	AdminsForDrivers(ctx context.Context, driverIDs []string) (map[string][]uint, error)
}

// SSEHub manages all SSE connections and is the local EventNotifier sink.
// With an AudienceResolver, admins only receive events about their own
// drivers; super-admins receive everything.
type SSEHub struct {
	mu       sync.RWMutex
	clients  map[string]*SSEClient
	audience AudienceResolver
	now      func() time.Time
}

// NewSSEHub creates a new SSE hub. A nil audience broadcasts to every client.
func NewSSEHub(audience AudienceResolver) *SSEHub {
	return &SSEHub{
		clients:  make(map[string]*SSEClient),
		audience: audience,
		now:      time.Now,
	}
}

// Register adds a new SSE client
func (h *SSEHub) Register(client *SSEClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("📡 SSE client registered: %s (admin=%d, role=%s) | total=%d",
		client.ID, client.AdminID, client.Role, len(h.clients))
}

// Unregister removes an SSE client and closes its channel
func (h *SSEHub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Channel)
		delete(h.clients, clientID)
		log.Printf("📡 SSE client unregistered: %s | total=%d", clientID, len(h.clients))
	}
}

// Publish stamps and broadcasts an event
func (h *SSEHub) Publish(event string, payload interface{}) {
	h.Broadcast(Event{Name: event, Data: payload, At: h.now()})
}

// Broadcast delivers a ready event. Clients with a full buffer miss it.
func (h *SSEHub) Broadcast(event Event) {
	owners, scoped := h.owners(event)

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, client := range h.clients {
		ev := event
		if scoped && client.Role != domain.RoleSuperAdmin {
			var ok bool
			if ev, ok = scopeEvent(event, owners.allows(client.AdminID)); !ok {
				continue
			}
		}

		select {
		case client.Channel <- ev:
			sent++
		default:
			log.Printf("⚠️ SSE channel full for client %s, skipping [%s]", client.ID, event.Name)
		}
	}
	if sent > 0 {
		log.Printf("📡 SSE broadcast [%s] → %d clients", event.Name, sent)
	}
}

// GetClientCount returns the number of connected clients
func (h *SSEHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ownerSet maps a driver id to the set of admin ids managing it
type ownerSet map[string]map[uint]bool

func (o ownerSet) allows(adminID uint) func(driverID string) bool {
	return func(driverID string) bool {
		return o[driverID][adminID]
	}
}

// owners resolves who may see event. scoped is false when the event names
// no driver or no resolver is configured. A failed lookup leaves the event
// to super-admins only.
func (h *SSEHub) owners(event Event) (ownerSet, bool) {
	if h.audience == nil {
		return nil, false
	}
	ids := eventDriverIDs(event.Data)
	if len(ids) == 0 {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), audienceTimeout)
	defer cancel()

	byDriver, err := h.audience.AdminsForDrivers(ctx, ids)
	if err != nil {
		log.Printf("⚠️ SSE audience lookup failed for [%s]: %v", event.Name, err)
		return ownerSet{}, true
	}

	set := make(ownerSet, len(byDriver))
	for driverID, admins := range byDriver {
		set[driverID] = make(map[uint]bool, len(admins))
		for _, id := range admins {
			set[driverID][id] = true
		}
	}
	return set, true
}

// eventDriverIDs returns the drivers an event payload is about: its
// driver_id, or the driver_id of each entry in records
func eventDriverIDs(data interface{}) []string {
	m, ok := data.(map[string]interface{})
	if !ok {
		return nil
	}
	if id, ok := m["driver_id"].(string); ok {
		return []string{id}
	}

	var ids []string
	for _, rec := range payloadRecords(m) {
		if id, ok := rec["driver_id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// payloadRecords reads the records list of a local or relayed payload
func payloadRecords(m map[string]interface{}) []map[string]interface{} {
	switch recs := m["records"].(type) {
	case []map[string]interface{}:
		return recs
	case []interface{}:
		out := make([]map[string]interface{}, 0, len(recs))
		for _, r := range recs {
			if rm, ok := r.(map[string]interface{}); ok {
				out = append(out, rm)
			}
		}
		return out
	}
	return nil
}

// scopeEvent narrows event to what allowed permits. Single-driver events are
// kept or dropped whole; record lists are filtered and recounted.
func scopeEvent(event Event, allowed func(driverID string) bool) (Event, bool) {
	m := event.Data.(map[string]interface{})
	if id, ok := m["driver_id"].(string); ok {
		return event, allowed(id)
	}

	var kept []map[string]interface{}
	for _, rec := range payloadRecords(m) {
		if id, ok := rec["driver_id"].(string); ok && allowed(id) {
			kept = append(kept, rec)
		}
	}
	if len(kept) == 0 {
		return event, false
	}

	narrowed := make(map[string]interface{}, len(m))
	for k, v := range m {
		narrowed[k] = v
	}
	narrowed["records"] = kept
	narrowed["count"] = len(kept)
	event.Data = narrowed
	return event, true
}
