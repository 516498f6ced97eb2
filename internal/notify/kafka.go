package notify

import (
	"context"       // Cancellation and deadlines
	"encoding/json" // JSON encoding/decoding
	"fmt"           // Error wrapping
	"strconv"       // String conversion
	"time"          // Timestamps

	"github.com/IBM/sarama"      // Kafka client
	"github.com/sirupsen/logrus" // Logging library
)

// KafkaPublisher publishes notifications to a Kafka topic keyed by user id,
// so one user's events stay on one partition.
type KafkaPublisher struct {
	producer sarama.SyncProducer // Sync producer, acks from all replicas
	topic    string              // Destination topic
}

// NewKafkaPublisher connects a synchronous producer, retrying while the
// brokers come up.
func NewKafkaPublisher(brokers []string, topic string, attempts int) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true          // Required by SyncProducer
	config.Producer.RequiredAcks = sarama.WaitForAll // Wait for all in-sync replicas

	var producer sarama.SyncProducer
	var err error
	for i := 1; i <= attempts; i++ {
		producer, err = sarama.NewSyncProducer(brokers, config)
		if err == nil {
			logrus.WithField("topic", topic).Info("Kafka producer initialized")
			return NewKafkaPublisherWithProducer(producer, topic), nil
		}
		logrus.WithError(err).Warnf("Waiting for Kafka... (%d/%d)", i, attempts)
		if i < attempts {
			time.Sleep(2 * time.Second) // Brokers may still be starting
		}
	}
	return nil, fmt.Errorf("kafka producer: %w", err)
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish sends msg and waits for the broker acknowledgement.
func (k *KafkaPublisher) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(uint64(msg.UserID), 10)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(msg.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"topic":     k.topic,
		"partition": partition,
		"offset":    offset,
		"type":      msg.Type,
	}).Debug("Published notification")
	return nil
}

// Close flushes and closes the producer.
func (k *KafkaPublisher) Close() error {
	return k.producer.Close()
}
