// Package application 订单应用服务
package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// LineInput 下单行输入
type LineInput = domain.LineInput

// ConfirmInput 确认订单输入
type ConfirmInput = domain.ConfirmFields

// OrderView 订单视图
type OrderView struct {
	ID           uint                         `json:"id"`
	CreatedAt    time.Time                    `json:"createdAt"`
	FullName     string                       `json:"fullName"`
	Email        string                       `json:"email"`
	Phone        string                       `json:"phone"`
	DeliveryType string                       `json:"deliveryType"`
	PaymentType  string                       `json:"paymentType"`
	TotalCost    *decimal.Decimal             `json:"totalCost"`
	Status       string                       `json:"status"`
	City         string                       `json:"city"`
	Address      string                       `json:"address"`
	Products     []catalogapp.ProductListItem `json:"products"`
}

// OrderService 订单应用服务
type OrderService struct {
	repo      domain.Repository
	profiles  domain.ProfileProvider
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewOrderService 创建订单应用服务
func NewOrderService(repo domain.Repository, profiles domain.ProfileProvider, publisher domain.EventPublisher, m *metrics.Metrics) *OrderService {
	return &OrderService{repo: repo, profiles: profiles, publisher: publisher, metrics: m}
}

// Create 从购物车快照创建订单，返回订单 id
func (s *OrderService) Create(ctx context.Context, basketID uint, lines []LineInput) (uint, error) {
	order, err := s.repo.Create(ctx, basketID, lines)
	if err != nil {
		return 0, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	logger.Info(ctx, "Order created", "order_id", order.ID, "lines", len(order.Items))
	s.publish(ctx, domain.OrderEvent{
		Type:       domain.EventOrderCreated,
		OrderID:    order.ID,
		Status:     string(domain.StatusCreated),
		OccurredAt: time.Now(),
	})
	return order.ID, nil
}

// Get 返回订单详情；调用方已登录时先用其资料预填联系信息
func (s *OrderService) Get(ctx context.Context, orderID uint, userID *uint) (OrderView, error) {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return OrderView{}, err
	}

	if userID != nil {
		if err := s.prefill(ctx, order, *userID); err != nil {
			return OrderView{}, err
		}
	}
	return s.buildView(ctx, order)
}

// prefill 挂接资料并在联系字段为空时复制，幂等
func (s *OrderService) prefill(ctx context.Context, order *domain.Order, userID uint) error {
	profileID, fullName, email, phone, err := s.profiles.ProfileInfo(ctx, userID)
	if err != nil {
		return err
	}

	changed := false
	if order.ProfileID == nil {
		order.ProfileID = &profileID
		changed = true
	}
	if order.FullName == "" && fullName != "" {
		order.FullName = fullName
		changed = true
	}
	if order.Email == "" && email != "" {
		order.Email = email
		changed = true
	}
	if order.Phone == "" && phone != "" {
		order.Phone = phone
		changed = true
	}
	if !changed {
		return nil
	}
	return s.repo.SavePrefill(ctx, order)
}

// Confirm 确认订单并计算总价；已支付报错，重复确认幂等成功
func (s *OrderService) Confirm(ctx context.Context, orderID uint, input ConfirmInput) error {
	order, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return err
	}
	switch order.Status {
	case domain.StatusPaid:
		return domain.ErrOrderAlreadyPaid
	case domain.StatusConfirmed:
		return nil
	}

	totalCost, err := s.totalCost(ctx, order.Items, input.DeliveryType)
	if err != nil {
		return err
	}
	if err := s.repo.Confirm(ctx, orderID, input, totalCost); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.OrdersConfirmed.Inc()
	}
	logger.Info(ctx, "Order confirmed", "order_id", orderID, "total_cost", totalCost.String())
	s.publish(ctx, domain.OrderEvent{
		Type:       domain.EventOrderConfirmed,
		OrderID:    orderID,
		Status:     string(domain.StatusConfirmed),
		TotalCost:  totalCost.String(),
		OccurredAt: time.Now(),
	})
	return nil
}

// totalCost 商品现价合计，低于免邮门槛加普通配送费，快递配送再加快递费
func (s *OrderService) totalCost(ctx context.Context, items []domain.OrderItem, deliveryType string) (decimal.Decimal, error) {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	prices, err := s.repo.ProductPrices(ctx, ids)
	if err != nil {
		return decimal.Zero, err
	}
	pricing, err := s.repo.GetPricing(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range items {
		price, ok := prices[item.ProductID]
		if !ok {
			return decimal.Zero, domain.ErrProductNotFound
		}
		total = total.Add(price.Mul(decimal.NewFromUint64(uint64(item.Quantity))))
	}

	if total.LessThan(pricing.FreeDeliveryPoint) {
		total = total.Add(pricing.DeliveryPrice)
	}
	if deliveryType == domain.DeliveryExpress {
		total = total.Add(pricing.ExpressPrice)
	}
	return total, nil
}

// MarkPaid 支付完成回调，置终态并发布事件
func (s *OrderService) MarkPaid(ctx context.Context, orderID uint) error {
	if err := s.repo.MarkPaid(ctx, orderID); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.OrdersPaid.Inc()
	}
	logger.Info(ctx, "Order paid", "order_id", orderID)
	s.publish(ctx, domain.OrderEvent{
		Type:       domain.EventOrderPaid,
		OrderID:    orderID,
		Status:     string(domain.StatusPaid),
		OccurredAt: time.Now(),
	})
	return nil
}

// List 返回用户资料名下全部订单
func (s *OrderService) List(ctx context.Context, userID uint) ([]OrderView, error) {
	profileID, _, _, _, err := s.profiles.ProfileInfo(ctx, userID)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for i := range orders {
		view, err := s.buildView(ctx, &orders[i])
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *OrderService) buildView(ctx context.Context, order *domain.Order) (OrderView, error) {
	details, err := s.repo.ListLineDetails(ctx, order.ID)
	if err != nil {
		return OrderView{}, err
	}

	products := make([]catalogapp.ProductListItem, 0, len(details))
	for i := range details {
		item := catalogapp.NewProductListItem(&details[i].Product)
		item.Count = details[i].Quantity
		products = append(products, item)
	}

	return OrderView{
		ID:           order.ID,
		CreatedAt:    order.CreatedAt,
		FullName:     order.FullName,
		Email:        order.Email,
		Phone:        order.Phone,
		DeliveryType: order.DeliveryType,
		PaymentType:  order.PaymentType,
		TotalCost:    order.TotalCost,
		Status:       string(order.Status),
		City:         order.City,
		Address:      order.Address,
		Products:     products,
	}, nil
}

// publish 事件发布失败只记日志，不影响主流程
func (s *OrderService) publish(ctx context.Context, event domain.OrderEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn(ctx, "Failed to publish order event",
			"type", event.Type, "order_id", event.OrderID, "error", err)
	}
}
