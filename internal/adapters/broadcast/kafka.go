package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const auditBuffer = 1024

// AuditRecord is the message value written for every published event
type AuditRecord struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
	At    time.Time   `json:"at"`
}

// messageWriter is the part of kafka-go's Writer the sink uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaAudit appends every notifier event to a Kafka topic
type KafkaAudit struct {
	writer messageWriter
	queue  chan kafkago.Message
	wg     sync.WaitGroup
	once   sync.Once
	now    func() time.Time
}

// EnsureTopic creates topic on the first reachable broker, retrying up to attempts times
func EnsureTopic(ctx context.Context, brokers []string, topic string, attempts int) error {
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := kafkago.DialContext(ctx, "tcp", brokers[0])
		if err != nil {
			log.Printf("⚠️ Kafka not ready, retrying in 3s... (%d/%d)", attempt, attempts)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}

		err = conn.CreateTopics(kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
		conn.Close()
		if err != nil {
			log.Printf("⚠️ Kafka topic creation returned (may already exist): %v", err)
		}
		log.Printf("✅ Kafka topic ensured: %s", topic)
		return nil
	}
	return fmt.Errorf("kafka: could not connect after %d attempts", attempts)
}

// NewKafkaAudit creates a sink writing to topic on brokers
func NewKafkaAudit(brokers []string, topic string) *KafkaAudit {
	return newKafkaAudit(&kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	})
}

func newKafkaAudit(w messageWriter) *KafkaAudit {
	k := &KafkaAudit{
		writer: w,
		queue:  make(chan kafkago.Message, auditBuffer),
		now:    time.Now,
	}
	k.wg.Add(1)
	go k.writeLoop()
	return k
}

// Publish implements services.EventNotifier. Events are dropped when the
// queue is full.
func (k *KafkaAudit) Publish(event string, payload interface{}) {
	value, err := json.Marshal(AuditRecord{Event: event, Data: payload, At: k.now()})
	if err != nil {
		log.Printf("❌ Kafka audit: cannot encode [%s]: %v", event, err)
		return
	}

	select {
	case k.queue <- kafkago.Message{Key: []byte(event), Value: value}:
	default:
		log.Printf("⚠️ Kafka audit queue full, dropping [%s]", event)
	}
}

func (k *KafkaAudit) writeLoop() {
	defer k.wg.Done()
	for msg := range k.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := k.writer.WriteMessages(ctx, msg)
		cancel()
		if err != nil {
			log.Printf("❌ Kafka audit write [%s]: %v", msg.Key, err)
		}
	}
}

// Close drains the queue and closes the writer
func (k *KafkaAudit) Close() error {
	var err error
	k.once.Do(func() {
		close(k.queue)
		k.wg.Wait()
		err = k.writer.Close()
	})
	return err
}
