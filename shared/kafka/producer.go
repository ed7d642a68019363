package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"lotcheck/logger"
)

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers []string
	Topic   string
}

// Producer publishes JSON messages to a single topic
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	log      logger.Logger
}

// NewProducer connects a synchronous producer to the brokers
func NewProducer(cfg ProducerConfig, log logger.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	p, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return newProducer(p, cfg.Topic, log), nil
}

func newProducer(p sarama.SyncProducer, topic string, log logger.Logger) *Producer {
	return &Producer{producer: p, topic: topic, log: log}
}

// PublishJSON encodes v and sends it keyed by key.
// sarama's sync producer has no per-call context; ctx is only checked up front.
func (p *Producer) PublishJSON(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("send to %s: %w", p.topic, err)
	}

	p.log.Debug("Kafka message sent",
		logger.String("topic", p.topic),
		logger.String("key", key),
		logger.Int("partition", int(partition)),
		logger.Int64("offset", offset),
	)
	return nil
}

// Close flushes and shuts down the producer
func (p *Producer) Close() error {
	p.log.Info("Closing Kafka producer")
	return p.producer.Close()
}
