package services

import (
	"log"
	"time"
)

// Event is one state-change notification pushed to administrator sessions
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// EventNotifier is a best-effort fan-out sink. Publish must never block the
// caller and never report failure.
type EventNotifier interface {
	Publish(event string, payload interface{})
}

// Notifiers publishes to every sink in order. A panicking sink is logged and skipped.
type Notifiers []EventNotifier

// Publish implements EventNotifier
func (n Notifiers) Publish(event string, payload interface{}) {
	for _, sink := range n {
		if sink == nil {
			continue
		}
		publishSafely(sink, event, payload)
	}
}

func publishSafely(sink EventNotifier, event string, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("⚠️ notifier sink %T panicked on [%s]: %v", sink, event, r)
		}
	}()
	sink.Publish(event, payload)
}

// NopNotifier discards every event
type NopNotifier struct{}

// Publish implements EventNotifier
func (NopNotifier) Publish(string, interface{}) {}
