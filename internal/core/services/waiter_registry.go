package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WaiterKey identifies the kiosk connection waiting on one attendance record
type WaiterKey struct {
	DriverID string
	RecordID uint
}

func (k WaiterKey) String() string {
	return fmt.Sprintf("%s_%d", k.DriverID, k.RecordID)
}

// LogoutResult is the terminal state of a waiter
type LogoutResult int

const (
	// LogoutCompleted means an administrator closed the record in time
	LogoutCompleted LogoutResult = iota + 1
	// LogoutTimedOut means the wait window elapsed first
	LogoutTimedOut
	// LogoutSuperseded means a newer request for the same key replaced this one
	LogoutSuperseded
	// LogoutAbandoned means the caller stopped waiting before either outcome
	LogoutAbandoned
)

func (r LogoutResult) String() string {
	switch r {
	case LogoutCompleted:
		return "completed"
	case LogoutTimedOut:
		return "timed_out"
	case LogoutSuperseded:
		return "superseded"
	case LogoutAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// LogoutOutcome is delivered exactly once to a waiter
type LogoutOutcome struct {
	Result   LogoutResult
	FullName string
}

// Waiter is a suspended kiosk logout request
type Waiter struct {
	ID        uuid.UUID
	Key       WaiterKey
	CreatedAt time.Time

	outcome chan LogoutOutcome
	timer   *time.Timer
}

// Done yields the single outcome of the waiter
func (w *Waiter) Done() <-chan LogoutOutcome {
	return w.outcome
}

// deliver is only called by whoever removed w from the registry, so it runs once.
func (w *Waiter) deliver(o LogoutOutcome) {
	w.timer.Stop()
	w.outcome <- o
}

// WaiterRegistry holds at most one live waiter per key. Every removal goes
// through take-if-present under the mutex, so resolve and expiry have a
// single winner.
type WaiterRegistry struct {
	mu      sync.Mutex
	waiters map[WaiterKey]*Waiter
	now     func() time.Time
}

// NewWaiterRegistry creates an empty registry
func NewWaiterRegistry() *WaiterRegistry {
	return &WaiterRegistry{
		waiters: make(map[WaiterKey]*Waiter),
		now:     time.Now,
	}
}

// Register inserts a waiter that expires after wait. A waiter already holding
// the key is released with LogoutSuperseded.
func (r *WaiterRegistry) Register(key WaiterKey, wait time.Duration) *Waiter {
	w := &Waiter{
		ID:        uuid.New(),
		Key:       key,
		CreatedAt: r.now(),
		outcome:   make(chan LogoutOutcome, 1),
	}

	r.mu.Lock()
	prev := r.waiters[key]
	r.waiters[key] = w
	w.timer = time.AfterFunc(wait, func() { r.expire(w) })
	r.mu.Unlock()

	if prev != nil {
		log.Printf("⚠️ Logout waiter %s superseded by a new request", key)
		prev.deliver(LogoutOutcome{Result: LogoutSuperseded})
	}
	return w
}

// Take removes and returns the waiter for key, or nil if none is present
func (r *WaiterRegistry) Take(key WaiterKey) *Waiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.waiters[key]
	if !ok {
		return nil
	}
	delete(r.waiters, key)
	return w
}

// Resolve delivers outcome to the waiter for key. It reports false when the
// key is absent, which is not an error.
func (r *WaiterRegistry) Resolve(key WaiterKey, outcome LogoutOutcome) bool {
	w := r.Take(key)
	if w == nil {
		return false
	}
	w.deliver(outcome)
	return true
}

// ResolveWaiter completes the logout waiter of one attendance record. It
// reports false when nobody is waiting.
func (r *WaiterRegistry) ResolveWaiter(driverID string, recordID uint, fullName string) bool {
	key := WaiterKey{DriverID: driverID, RecordID: recordID}
	resolved := r.Resolve(key, LogoutOutcome{Result: LogoutCompleted, FullName: fullName})
	if resolved {
		log.Printf("📡 Logout waiter %s resolved", key)
	}
	return resolved
}

// Release withdraws w if it is still the live waiter for its key
func (r *WaiterRegistry) Release(w *Waiter) bool {
	if !r.takeIfCurrent(w) {
		return false
	}
	w.deliver(LogoutOutcome{Result: LogoutAbandoned})
	return true
}

func (r *WaiterRegistry) expire(w *Waiter) {
	if !r.takeIfCurrent(w) {
		return
	}
	log.Printf("⏱️ Logout waiter %s timed out", w.Key)
	w.deliver(LogoutOutcome{Result: LogoutTimedOut})
}

func (r *WaiterRegistry) takeIfCurrent(w *Waiter) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.waiters[w.Key] != w {
		return false
	}
	delete(r.waiters, w.Key)
	return true
}

// Len returns the number of live waiters
func (r *WaiterRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters)
}
