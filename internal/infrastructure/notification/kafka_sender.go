package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinic-booking-api/config"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSender publishes confirmations as JSON events keyed by appointment id,
// so every event of one appointment lands on the same partition.
type KafkaSender struct {
	writer messageWriter
}

func NewKafkaSender(cfg config.KafkaConfig) *KafkaSender {
	return &KafkaSender{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (s *KafkaSender) Send(ctx context.Context, c Confirmation) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal confirmation: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(c.AppointmentID.String()),
		Value: payload,
		Time:  c.BookedAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte("appointment.confirmed")},
		},
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish %s: %w", c.AppointmentID, err)
	}
	return nil
}

func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
