package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaPublisherSendsKeyedMessage(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "wallet.notifications" {
			return fmt.Errorf("topic %q", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "42" {
			return fmt.Errorf("key %q", key)
		}
		raw, _ := msg.Value.Encode()
		var decoded Message
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return err
		}
		if decoded.Type != KindLowBalance {
			return fmt.Errorf("type %q", decoded.Type)
		}
		return nil
	})

	pub := NewKafkaPublisherWithProducer(producer, "wallet.notifications")
	err := pub.Publish(context.Background(), Message{ID: 1, UserID: 42, Type: KindLowBalance, Title: "Low Wallet Balance"})
	require.NoError(t, err)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisherReportsBrokerErrors(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	pub := NewKafkaPublisherWithProducer(producer, "wallet.notifications")
	err := pub.Publish(context.Background(), Message{UserID: 1, Type: KindPaymentFailed})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, pub.Close())
}

func TestKafkaPublisherSkipsCancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	pub := NewKafkaPublisherWithProducer(producer, "wallet.notifications")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pub.Publish(ctx, Message{UserID: 1}), context.Canceled)
	require.NoError(t, pub.Close())
}
