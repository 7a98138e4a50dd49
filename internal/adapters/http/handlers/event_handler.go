package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"rfid-attendance/internal/adapters/http/middleware"
	"rfid-attendance/internal/core/services"
	"rfid-attendance/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	sseBuffer         = 50
	heartbeatInterval = 30 * time.Second
)

// EventHandler streams notifier events to administrator sessions
type EventHandler struct {
	hub *services.SSEHub
}

// NewEventHandler creates a new event handler
func NewEventHandler(hub *services.SSEHub) *EventHandler {
	return &EventHandler{hub: hub}
}

// ============================================================
// GET /api/v1/events (SSE)
// ============================================================

// Stream opens a server-sent event stream
// @Summary Real-time events
// @Description Server-sent events: connected, then every published event
// @Tags Events
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string
// @Router /events [get]
func (h *EventHandler) Stream(c *fiber.Ctx) error {
	subject, ok := middleware.GetSubject(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	client := &services.SSEClient{
		ID:      uuid.NewString(),
		AdminID: subject.ID,
		Role:    subject.Role,
		Channel: make(chan services.Event, sseBuffer),
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		h.hub.Register(client)
		defer h.hub.Unregister(client.ID)

		fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":\"%s\"}\n\n", client.ID)
		if err := w.Flush(); err != nil {
			return
		}

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case event, ok := <-client.Channel:
				if !ok {
					return
				}
				if err := writeSSEEvent(w, event); err != nil {
					log.Printf("📡 SSE client disconnected: %s", client.ID)
					return
				}

			case <-heartbeat.C:
				fmt.Fprintf(w, ": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					log.Printf("📡 SSE client disconnected: %s", client.ID)
					return
				}
			}
		}
	})

	return nil
}

// writeSSEEvent writes one event frame and flushes it
func writeSSEEvent(w *bufio.Writer, event services.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("⚠️ SSE: cannot encode [%s]: %v", event.Name, err)
		return nil
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Name, data)
	return w.Flush()
}
