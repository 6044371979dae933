package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	basketdomain "github.com/wyfcoding/storefront/internal/basket/domain"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/internal/order/domain"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) domain.Repository {
	return &orderRepository{db: db}
}

// Create 快照下单：创建订单与订单行并清零来源购物车，同一事务内完成
func (r *orderRepository) Create(ctx context.Context, basketID uint, lines []domain.LineInput) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	productIDs := make([]uint, 0, len(lines))
	seen := make(map[uint]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		productIDs = append(productIDs, line.ProductID)
	}

	order := &domain.Order{Status: domain.StatusCreated}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&catalogdomain.Product{}).
			Where("id IN ?", productIDs).
			Count(&count).Error; err != nil {
			return err
		}
		if count != int64(len(productIDs)) {
			return domain.ErrProductNotFound
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		items := make([]domain.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, domain.OrderItem{
				OrderID:   order.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items

		// 购物车本身保留，仅清零数量
		return tx.Model(&basketdomain.BasketItem{}).
			Where("basket_id = ? AND quantity > 0", basketID).
			UpdateColumn("quantity", 0).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Get(ctx context.Context, id uint) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByProfile(ctx context.Context, profileID uint) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) SavePrefill(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Model(order).
		Select("profile_id", "full_name", "email", "phone").
		Updates(map[string]any{
			"profile_id": order.ProfileID,
			"full_name":  order.FullName,
			"email":      order.Email,
			"phone":      order.Phone,
		}).Error
}

// Confirm 确认字段、总价与状态同一语句写入
func (r *orderRepository) Confirm(ctx context.Context, orderID uint, fields domain.ConfirmFields, totalCost decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status <> ?", orderID, domain.StatusPaid).
		Updates(map[string]any{
			"full_name":     fields.FullName,
			"email":         fields.Email,
			"phone":         fields.Phone,
			"delivery_type": fields.DeliveryType,
			"payment_type":  fields.PaymentType,
			"city":          fields.City,
			"address":       fields.Address,
			"total_cost":    totalCost,
			"status":        domain.StatusConfirmed,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, orderID uint) error {
	result := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ?", orderID).
		Update("status", domain.StatusPaid)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) GetPricing(ctx context.Context) (domain.Pricing, error) {
	var delivery domain.DeliveryPrice
	err := r.db.WithContext(ctx).Order("id ASC").First(&delivery).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Pricing{}, domain.ErrPricingNotConfigured
	}
	if err != nil {
		return domain.Pricing{}, err
	}

	var express domain.ExpressDeliveryPrice
	err = r.db.WithContext(ctx).Order("id ASC").First(&express).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Pricing{}, domain.ErrPricingNotConfigured
	}
	if err != nil {
		return domain.Pricing{}, err
	}

	return domain.Pricing{
		FreeDeliveryPoint: delivery.FreeDeliveryPoint,
		DeliveryPrice:     delivery.Price,
		ExpressPrice:      express.Price,
	}, nil
}

func (r *orderRepository) ProductPrices(ctx context.Context, ids []uint) (map[uint]decimal.Decimal, error) {
	type row struct {
		ID    uint
		Price decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&catalogdomain.Product{}).
		Select("id, price").
		Where("id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	prices := make(map[uint]decimal.Decimal, len(rows))
	for _, r := range rows {
		prices[r.ID] = r.Price
	}
	return prices, nil
}

func (r *orderRepository) ListLineDetails(ctx context.Context, orderID uint) ([]domain.LineDetail, error) {
	var items []domain.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []domain.LineDetail{}, nil
	}

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}

	var products []catalogdomain.Product
	err = r.db.WithContext(ctx).
		Preload("Category").Preload("Images").Preload("Tags").Preload("Reviews").
		Where("id IN ?", productIDs).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]catalogdomain.Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	details := make([]domain.LineDetail, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		details = append(details, domain.LineDetail{Product: product, Quantity: item.Quantity})
	}
	return details, nil
}
