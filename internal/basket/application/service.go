// Package application 购物车应用服务
package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/basket/domain"
	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/metrics"
)

// BasketLine 购物车行视图，count 为本车持有数量而非库存
type BasketLine = catalogapp.ProductListItem

// BasketService 购物车应用服务
type BasketService struct {
	repo    domain.Repository
	metrics *metrics.Metrics
}

// NewBasketService 创建购物车应用服务
func NewBasketService(repo domain.Repository, m *metrics.Metrics) *BasketService {
	return &BasketService{repo: repo, metrics: m}
}

// Resolve 解析调用方购物车：已登录按用户，未登录按会话令牌
func (s *BasketService) Resolve(ctx context.Context, userID *uint, sessionToken string) (*domain.Basket, error) {
	if userID != nil {
		return s.repo.GetOrCreateByUser(ctx, *userID)
	}
	return s.repo.GetOrCreateBySession(ctx, sessionToken)
}

// Add 向购物车加入商品并返回最新车内行
func (s *BasketService) Add(ctx context.Context, basket *domain.Basket, productID, quantity uint) ([]BasketLine, error) {
	if quantity == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if err := s.repo.AddItem(ctx, basket.ID, productID, quantity); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BasketItemsAdded.Add(float64(quantity))
	}
	logger.Info(ctx, "Basket item added",
		"basket_id", basket.ID, "product_id", productID, "quantity", quantity)
	return s.List(ctx, basket)
}

// Remove 从购物车移除商品并返回最新车内行
func (s *BasketService) Remove(ctx context.Context, basket *domain.Basket, productID, quantity uint) ([]BasketLine, error) {
	if quantity == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if err := s.repo.RemoveItem(ctx, basket.ID, productID, quantity); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.BasketItemsRemoved.Add(float64(quantity))
	}
	logger.Info(ctx, "Basket item removed",
		"basket_id", basket.ID, "product_id", productID, "quantity", quantity)
	return s.List(ctx, basket)
}

// List 返回购物车内数量大于零的行
func (s *BasketService) List(ctx context.Context, basket *domain.Basket) ([]BasketLine, error) {
	lines, err := s.repo.ListLines(ctx, basket.ID)
	if err != nil {
		return nil, err
	}
	views := make([]BasketLine, 0, len(lines))
	for i := range lines {
		view := catalogapp.NewProductListItem(&lines[i].Product)
		view.Count = lines[i].Quantity
		views = append(views, view)
	}
	return views, nil
}
