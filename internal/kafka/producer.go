package kafka

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/dajiagoods/storefront/internal/events"
)

// Producer buffers storefront events and writes them from a single loop.
// Publishing never blocks a checkout or lead submission; a full inbox drops
// the event with a log line. A nil *Producer is valid and publishes nothing,
// which is how the service runs when no brokers are configured.
type Producer struct {
	w         *kafka.Writer
	service   string
	inbox     chan kafka.Message
	closeOnce sync.Once
	closeCh   chan struct{}
}

func NewProducer(brokers []string, service string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
		},
		service: service,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	if p == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				p.closeOnce.Do(func() { close(p.inbox) })
				for m := range p.inbox {
					_ = p.w.WriteMessages(context.Background(), m)
				}
				_ = p.w.Close()
				close(p.closeCh)
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					close(p.closeCh)
					return
				}
				if err := p.w.WriteMessages(context.Background(), m); err != nil {
					log.Printf("kafka: write %s: %v", m.Topic, err)
				}
			}
		}
	}()
}

// Publish wraps payload in the event envelope and enqueues it on topic.
func (p *Producer) Publish(topic, eventType, correlationID string, payload any) {
	if p == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("kafka: marshal %s payload: %v", eventType, err)
		return
	}
	env := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.service,
		CorrelationID: correlationID,
		Payload:       raw,
	}
	value, err := json.Marshal(env)
	if err != nil {
		log.Printf("kafka: marshal %s envelope: %v", eventType, err)
		return
	}
	m := kafka.Message{
		Topic: topic,
		Key:   events.PartitionKey(correlationID),
		Value: value,
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
	select {
	case p.inbox <- m:
	default:
		log.Printf("kafka: inbox full, dropping %s for %s", eventType, correlationID)
	}
}

// Close the inbox so the loop flushes remaining messages and exits. Safe to
// call alongside context cancellation.
func (p *Producer) Close() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() { close(p.inbox) })
}

func (p *Producer) WaitClosed() {
	if p == nil {
		return
	}
	<-p.closeCh
}
