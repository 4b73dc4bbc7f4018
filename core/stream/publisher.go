package stream

import (
	"encoding/json"
	"fmt"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/soltrackdao/pump_relay/config"
	"github.com/soltrackdao/pump_relay/core/model"
)

// TradePublisher mirrors every relayed trade onto a kafka topic, keyed by
// transaction signature so re-deliveries land on the same partition.
type TradePublisher struct{}

func NewTradePublisher() *TradePublisher {
	return &TradePublisher{}
}

func (p *TradePublisher) PublishTrade(trade model.PumpTradeData) error {
	data, err := json.Marshal(&trade)
	if err != nil {
		return err
	}

	cfg := config.GetKafkaConfig()
	err = GetKafkaInst().Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &cfg.Topic, Partition: kafka.PartitionAny},
		Key:            []byte(trade.Signature),
		Value:          data,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	GetKafkaInst().Flush(5000)

	return nil
}
