// Package messaging 订单事件的 Kafka 发布实现
package messaging

import (
	"context"
	"strconv"

	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/mq"
)

type kafkaPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaPublisher 创建订单事件发布器，producer 为 nil 时发布为空操作
func NewKafkaPublisher(producer *mq.KafkaProducer, topic string) domain.EventPublisher {
	return &kafkaPublisher{producer: producer, topic: topic}
}

// Publish 按订单 id 作为分区键发布事件，保证同一订单事件有序
func (p *kafkaPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	if p.producer == nil {
		return nil
	}
	key := strconv.FormatUint(uint64(event.OrderID), 10)
	return p.producer.SendMessage(ctx, p.topic, key, event)
}
