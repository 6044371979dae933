// Package application 支付应用服务：进程内队列加单个工作协程的异步任务
package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wyfcoding/storefront/internal/payment/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// OrderMarker 支付成功后标记订单终态的端口
type OrderMarker interface {
	MarkPaid(ctx context.Context, orderID uint) error
}

// Result 支付任务结果，Err 为空表示支付成功
type Result struct {
	OrderID uint
	Err     error
}

type task struct {
	id      string
	orderID uint
	card    domain.Card
	result  chan Result
}

// PaymentService 支付应用服务
type PaymentService struct {
	orders  OrderMarker
	queue   chan *task
	delay   time.Duration
	metrics *metrics.Metrics
}

// NewPaymentService 创建支付应用服务，queueSize 为任务队列容量，delay 为模拟处理耗时
func NewPaymentService(orders OrderMarker, queueSize int, delay time.Duration, m *metrics.Metrics) *PaymentService {
	return &PaymentService{
		orders:  orders,
		queue:   make(chan *task, queueSize),
		delay:   delay,
		metrics: m,
	}
}

// Start 启动工作协程，ctx 取消后停止消费
func (s *PaymentService) Start(ctx context.Context) {
	go s.worker(ctx)
}

// Enqueue 校验卡信息后入队，返回结果通道；队列满时立即失败，不做重试
func (s *PaymentService) Enqueue(ctx context.Context, orderID uint, card domain.Card) (<-chan Result, error) {
	if err := card.Validate(time.Now()); err != nil {
		return nil, err
	}

	t := &task{
		id:      uuid.NewString(),
		orderID: orderID,
		card:    card,
		result:  make(chan Result, 1),
	}
	select {
	case s.queue <- t:
	default:
		return nil, domain.ErrQueueFull
	}

	if s.metrics != nil {
		s.metrics.PaymentQueueDepth.Set(float64(len(s.queue)))
	}
	logger.Info(ctx, "Payment task enqueued", "task_id", t.id, "order_id", orderID)
	return t.result, nil
}

func (s *PaymentService) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-s.queue:
			s.process(ctx, t)
			if s.metrics != nil {
				s.metrics.PaymentQueueDepth.Set(float64(len(s.queue)))
			}
		}
	}
}

func (s *PaymentService) process(ctx context.Context, t *task) {
	start := time.Now()

	// 模拟外部支付网关耗时
	select {
	case <-ctx.Done():
		return
	case <-time.After(s.delay):
	}

	result := Result{OrderID: t.orderID}
	if t.card.Approved() {
		if err := s.orders.MarkPaid(ctx, t.orderID); err != nil {
			result.Err = err
		}
	} else {
		result.Err = domain.ErrPaymentDeclined
	}

	outcome := "paid"
	if result.Err != nil {
		outcome = "declined"
		logger.Warn(ctx, "Payment task failed",
			"task_id", t.id, "order_id", t.orderID, "error", result.Err)
	} else {
		logger.Info(ctx, "Payment task succeeded", "task_id", t.id, "order_id", t.orderID)
	}
	if s.metrics != nil {
		s.metrics.PaymentTasksTotal.WithLabelValues(outcome).Inc()
		s.metrics.PaymentTaskDuration.Observe(time.Since(start).Seconds())
	}

	t.result <- result
}
