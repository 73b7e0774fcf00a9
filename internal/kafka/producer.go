package kafka

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/greenleaf/nursery-market/internal/market"
)

// Producer writes domain events asynchronously through an inbox goroutine.
// One writer serves every topic; each message carries its own topic.
type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
}

func NewProducer(brokers []string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true, // fire-and-forget untuk throughput; error di-log di loop
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					return
				}
				p.write(m)
			case <-ctx.Done():
				// flush sisa pesan yang sudah masuk buffer, lalu keluar
				for {
					select {
					case m, ok := <-p.inbox:
						if !ok {
							_ = p.w.Close()
							return
						}
						p.write(m)
					default:
						_ = p.w.Close()
						return
					}
				}
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		log.Error().Err(err).Str("topic", m.Topic).Msg("kafka: write failed")
	}
}

// Publish implements market.Publisher.
func (p *Producer) Publish(topic string, key []byte, env market.Envelope) {
	p.inbox <- kafka.Message{
		Topic: topic,
		Key:   key,
		Value: MustMarshal(env),
		Time:  time.Now(),
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(env.EventType)},
			{Key: "x-event-version", Value: []byte("1")},
		},
	}
}

// Close menutup inbox supaya goroutine nge-flush sisa pesan lalu exit rapi.
func (p *Producer) Close() { close(p.inbox) }

// WaitClosed blocks until the inbox goroutine has drained and exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
