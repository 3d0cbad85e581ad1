// Package kafka publishes outbox events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/DanielPopoola/tourvista-payments/internal/config"
	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const flushTimeoutMs = 5000

type Publisher struct {
	producer *kafka.Producer
	topic    string
	codec    *Codec
	logger   *slog.Logger
}

func NewPublisher(cfg config.KafkaConfig, logger *slog.Logger) (*Publisher, error) {
	codec, err := NewCodec()
	if err != nil {
		return nil, err
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":  cfg.Brokers,
		"acks":               "all",
		"enable.idempotence": true,
	})
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	p := &Publisher{
		producer: producer,
		topic:    cfg.Topic,
		codec:    codec,
		logger:   logger,
	}
	go p.watchEvents()
	return p, nil
}

// watchEvents logs client-level errors. Delivery reports go to the
// per-message channel passed to Produce.
func (p *Publisher) watchEvents() {
	for e := range p.producer.Events() {
		if kerr, ok := e.(kafka.Error); ok {
			p.logger.Error("kafka producer error", "code", kerr.Code(), "error", kerr)
		}
	}
}

// Publish sends the event keyed by booking id and waits for the broker ack.
func (p *Publisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	confirmed, err := event.BookingConfirmed()
	if err != nil {
		return err
	}
	value, err := p.codec.EncodeBookingConfirmed(event.ID, confirmed)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	err = p.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &p.topic, Partition: kafka.PartitionAny},
		Key:            []byte(strconv.FormatInt(event.AggregateID, 10)),
		Value:          value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, delivery)
	if err != nil {
		return fmt.Errorf("produce %s: %w", event.ID, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery report %T", e)
		}
		if msg.TopicPartition.Error != nil {
			return fmt.Errorf("deliver %s: %w", event.ID, msg.TopicPartition.Error)
		}
		p.logger.Debug("event published",
			"event_id", event.ID,
			"topic", p.topic,
			"partition", msg.TopicPartition.Partition,
			"offset", msg.TopicPartition.Offset)
		return nil
	}
}

func (p *Publisher) Close() {
	if remaining := p.producer.Flush(flushTimeoutMs); remaining > 0 {
		p.logger.Warn("kafka producer closed with undelivered messages", "count", remaining)
	}
	p.producer.Close()
}
