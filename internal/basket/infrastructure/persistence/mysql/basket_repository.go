package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wyfcoding/storefront/internal/basket/domain"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
)

type basketRepository struct {
	db *gorm.DB
}

// NewBasketRepository 创建购物车仓储
func NewBasketRepository(db *gorm.DB) domain.Repository {
	return &basketRepository{db: db}
}

func (r *basketRepository) GetOrCreateByUser(ctx context.Context, userID uint) (*domain.Basket, error) {
	basket := domain.Basket{UserID: &userID}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

func (r *basketRepository) GetOrCreateBySession(ctx context.Context, token string) (*domain.Basket, error) {
	basket := domain.Basket{SessionToken: &token}
	err := r.db.WithContext(ctx).
		Where("session_token = ?", token).
		FirstOrCreate(&basket).Error
	if err != nil {
		return nil, err
	}
	return &basket, nil
}

// AddItem 库存扣减与车内数量增加在同一事务内完成，库存不足时整体回滚
func (r *basketRepository) AddItem(ctx context.Context, basketID, productID, quantity uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 条件更新保证库存不会被扣成负数
		result := tx.Model(&catalogdomain.Product{}).
			Where("id = ? AND count >= ?", productID, quantity).
			UpdateColumn("count", gorm.Expr("count - ?", quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&catalogdomain.Product{}).
				Where("id = ?", productID).
				Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return domain.ErrProductNotFound
			}
			return domain.ErrInsufficientStock
		}

		item := domain.BasketItem{
			BasketID:  basketID,
			ProductID: productID,
			Quantity:  quantity,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "basket_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{"quantity": gorm.Expr("quantity + ?", quantity)}),
		}).Create(&item).Error
	})
}

// RemoveItem 车内数量减少与库存归还在同一事务内完成，数量不足时整体回滚
func (r *basketRepository) RemoveItem(ctx context.Context, basketID, productID, quantity uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 条件更新保证车内数量不会被减成负数
		result := tx.Model(&domain.BasketItem{}).
			Where("basket_id = ? AND product_id = ? AND quantity >= ?", basketID, productID, quantity).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", quantity))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&domain.BasketItem{}).
				Where("basket_id = ? AND product_id = ?", basketID, productID).
				Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return domain.ErrItemNotFound
			}
			return domain.ErrInvalidQuantity
		}

		return tx.Model(&catalogdomain.Product{}).
			Where("id = ?", productID).
			UpdateColumn("count", gorm.Expr("count + ?", quantity)).Error
	})
}

func (r *basketRepository) ListLines(ctx context.Context, basketID uint) ([]domain.Line, error) {
	var items []domain.BasketItem
	err := r.db.WithContext(ctx).
		Where("basket_id = ? AND quantity > 0", basketID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []domain.Line{}, nil
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

	lines := make([]domain.Line, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, errors.New("basket references missing product")
		}
		lines = append(lines, domain.Line{Product: product, Quantity: item.Quantity})
	}
	return lines, nil
}
