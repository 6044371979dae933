// Package metrics 提供 Prometheus helper，包含服务通用指标与商城业务指标
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/storefront/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 加入购物车的商品件数
	BasketItemsAdded prometheus.Counter
	// 移出购物车的商品件数
	BasketItemsRemoved prometheus.Counter

	// 创建的订单数
	OrdersCreated prometheus.Counter
	// 确认的订单数
	OrdersConfirmed prometheus.Counter
	// 支付成功的订单数
	OrdersPaid prometheus.Counter

	// 支付任务计数，按结果区分
	PaymentTasksTotal *prometheus.CounterVec
	// 支付任务处理耗时
	PaymentTaskDuration prometheus.Histogram
	// 支付队列当前深度
	PaymentQueueDepth prometheus.Gauge
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		BasketItemsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "basket_items_added_total",
			Help:      "Total items added to baskets",
		}),
		BasketItemsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "basket_items_removed_total",
			Help:      "Total items removed from baskets",
		}),

		OrdersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "orders_created_total",
			Help:      "Total orders created",
		}),
		OrdersConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "orders_confirmed_total",
			Help:      "Total orders confirmed",
		}),
		OrdersPaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "orders_paid_total",
			Help:      "Total orders paid",
		}),

		PaymentTasksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "payment_tasks_total",
			Help:      "Total payment tasks processed",
		}, []string{"result"}),
		PaymentTaskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "payment_task_duration_seconds",
			Help:      "Payment task processing duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		PaymentQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: serviceName,
			Name:      "payment_queue_depth",
			Help:      "Current payment task queue depth",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BasketItemsAdded,
		m.BasketItemsRemoved,
		m.OrdersCreated,
		m.OrdersConfirmed,
		m.OrdersPaid,
		m.PaymentTasksTotal,
		m.PaymentTaskDuration,
		m.PaymentQueueDepth,
	}

	for _, collector := range collectors {
		if err := prometheus.DefaultRegisterer.Register(collector); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
