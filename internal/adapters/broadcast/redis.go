package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"rfid-attendance/internal/core/domain"
	"rfid-attendance/internal/core/services"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const relayBuffer = 256

// LocalHub receives events published by other instances
type LocalHub interface {
	Broadcast(event services.Event)
}

// WaiterResolver completes a kiosk logout held by this instance
type WaiterResolver interface {
	ResolveWaiter(driverID string, recordID uint, fullName string) bool
}

// envelope is the wire form of a relayed event
type envelope struct {
	Origin string          `json:"origin"`
	Name   string          `json:"event"`
	Data   json.RawMessage `json:"data"`
	At     time.Time       `json:"at"`
}

type logoutCompleted struct {
	DriverID     string `json:"driver_id"`
	AttendanceID uint   `json:"attendance_id"`
	FullName     string `json:"full_name"`
}

// RedisRelay shares notifier events between server instances over Redis pub/sub
type RedisRelay struct {
	rdb      *goredis.Client
	channel  string
	instance string
	hub      LocalHub
	resolver WaiterResolver

	queue chan envelope
	wg    sync.WaitGroup
	once  sync.Once
}

// ConnectRedis connects to Redis, retrying the ping up to attempts times
func ConnectRedis(ctx context.Context, opts *goredis.Options, attempts int) (*goredis.Client, error) {
	rdb := goredis.NewClient(opts)
	for i := 0; i < attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			log.Printf("✅ Connected to Redis at %s", opts.Addr)
			return rdb, nil
		}
		log.Printf("⚠️ Waiting for Redis... (%d/%d): %v", i+1, attempts, err)

		select {
		case <-ctx.Done():
			rdb.Close()
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	rdb.Close()
	return nil, fmt.Errorf("redis: failed to connect after %d attempts", attempts)
}

// NewRedisRelay creates a relay; Run must be started to receive remote events
func NewRedisRelay(rdb *goredis.Client, channel string, hub LocalHub, resolver WaiterResolver) *RedisRelay {
	r := &RedisRelay{
		rdb:      rdb,
		channel:  channel,
		instance: uuid.NewString(),
		hub:      hub,
		resolver: resolver,
		queue:    make(chan envelope, relayBuffer),
	}
	r.wg.Add(1)
	go r.sendLoop()
	return r
}

// Instance returns the id stamped on events sent by this relay
func (r *RedisRelay) Instance() string {
	return r.instance
}

// Publish implements services.EventNotifier. It drops the event when the
// send queue is full.
func (r *RedisRelay) Publish(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("❌ Redis relay: cannot encode [%s]: %v", event, err)
		return
	}

	env := envelope{Origin: r.instance, Name: event, Data: data, At: time.Now()}
	select {
	case r.queue <- env:
	default:
		log.Printf("⚠️ Redis relay queue full, dropping [%s]", event)
	}
}

func (r *RedisRelay) sendLoop() {
	defer r.wg.Done()
	for env := range r.queue {
		msg, err := json.Marshal(env)
		if err != nil {
			log.Printf("❌ Redis relay: cannot encode envelope: %v", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err = r.rdb.Publish(ctx, r.channel, msg).Err()
		cancel()
		if err != nil {
			log.Printf("❌ Redis relay publish [%s]: %v", env.Name, err)
		}
	}
}

// Run subscribes to the relay channel until ctx ends
func (r *RedisRelay) Run(ctx context.Context) {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	log.Printf("📡 Redis relay listening on %s (instance %s)", r.channel, r.instance)
	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			r.handle([]byte(msg.Payload))
		}
	}
}

// handle applies one relayed message. Own messages are ignored since the
// local notifier chain already delivered them.
func (r *RedisRelay) handle(raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("⚠️ Redis relay: bad message: %v", err)
		return
	}
	if env.Origin == r.instance {
		return
	}

	var data interface{}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			log.Printf("⚠️ Redis relay: bad payload for [%s]: %v", env.Name, err)
			return
		}
	}
	r.hub.Broadcast(services.Event{Name: env.Name, Data: data, At: env.At})

	if env.Name == domain.EventLogoutCompleted && r.resolver != nil {
		var done logoutCompleted
		if err := json.Unmarshal(env.Data, &done); err != nil {
			log.Printf("⚠️ Redis relay: bad logout payload: %v", err)
			return
		}
		r.resolver.ResolveWaiter(done.DriverID, done.AttendanceID, done.FullName)
	}
}

// Close flushes queued events and stops the sender
func (r *RedisRelay) Close() {
	r.once.Do(func() {
		close(r.queue)
		r.wg.Wait()
	})
}
