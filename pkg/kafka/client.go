// Package kafka 提供了向 Kafka 发布查询事件的功能。
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"shop-insight-go/internal/config"
	"shop-insight-go/internal/metrics"
	"shop-insight-go/internal/model"
	"shop-insight-go/pkg/log"
)

// EventPublisher 发布每次提问的审计事件。发布失败不影响答案。
type EventPublisher interface {
	Publish(ctx context.Context, event model.QueryEvent) error
	Close() error
}

// NewPublisher 初始化 Kafka 生产者；未配置 brokers 时返回不做任何事的发布者。
func NewPublisher(cfg config.KafkaConfig) EventPublisher {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		log.Info("Kafka brokers 未配置，查询事件不会被发布")
		return NopPublisher{}
	}

	producer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				metrics.EventPublishOutcomes.WithLabelValues("error").Add(float64(len(messages)))
				log.Errorf("发布查询事件到 Kafka 失败: %v", err)
				return
			}
			metrics.EventPublishOutcomes.WithLabelValues("ok").Add(float64(len(messages)))
		},
	}
	log.Infof("Kafka 生产者初始化成功, topic: %s", cfg.Topic)
	return &kafkaPublisher{producer: producer}
}

type kafkaPublisher struct {
	producer *kafka.Writer
}

// messageFor 以店铺 ID 为 key，保证同一店铺的事件进入同一分区。
func messageFor(event model.QueryEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal query event: %w", err)
	}
	return kafka.Message{Key: []byte(event.StoreID), Value: value, Time: event.OccurredAt}, nil
}

// Publish 异步写入事件，投递结果在 Completion 回调中记录。
func (p *kafkaPublisher) Publish(ctx context.Context, event model.QueryEvent) error {
	msg, err := messageFor(event)
	if err != nil {
		return err
	}
	return p.producer.WriteMessages(ctx, msg)
}

// Close 刷新缓冲区并关闭生产者。
func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher 丢弃所有事件。
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.QueryEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
