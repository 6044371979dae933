package domain

import (
	"context"
	"time"
)

// 订单生命周期事件类型
const (
	EventOrderCreated   = "order.created"
	EventOrderConfirmed = "order.confirmed"
	EventOrderPaid      = "order.paid"
)

// OrderEvent 订单生命周期事件
type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    uint      `json:"order_id"`
	Status     string    `json:"status"`
	TotalCost  string    `json:"total_cost,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher 订单事件发布端口，发布失败不阻断主流程
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}
