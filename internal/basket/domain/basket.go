// Package domain 购物车领域模型
package domain

import (
	"context"

	"gorm.io/gorm"

	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
)

// Basket 购物车，归属一个登录用户或一个匿名会话令牌，二者取其一
type Basket struct {
	gorm.Model
	UserID       *uint        `gorm:"uniqueIndex" json:"user_id"`
	SessionToken *string      `gorm:"type:varchar(64);uniqueIndex" json:"session_token"`
	Items        []BasketItem `gorm:"foreignKey:BasketID" json:"items"`
}

// TableName 指定表名
func (Basket) TableName() string {
	return "baskets"
}

// BasketItem 购物车行，同一购物车内每个商品至多一行
type BasketItem struct {
	gorm.Model
	BasketID  uint `gorm:"not null;uniqueIndex:uk_basket_product" json:"basket_id"`
	ProductID uint `gorm:"not null;uniqueIndex:uk_basket_product" json:"product_id"`
	Quantity  uint `gorm:"not null;default:0" json:"quantity"`
}

// TableName 指定表名
func (BasketItem) TableName() string {
	return "basket_items"
}

// Line 购物车行读模型，携带完整商品展示数据与本车持有数量
type Line struct {
	Product  catalogdomain.Product
	Quantity uint
}

// Repository 购物车仓储接口
type Repository interface {
	// GetOrCreateByUser 按用户身份取购物车，不存在则创建
	GetOrCreateByUser(ctx context.Context, userID uint) (*Basket, error)
	// GetOrCreateBySession 按匿名会话令牌取购物车，不存在则创建
	GetOrCreateBySession(ctx context.Context, token string) (*Basket, error)
	// AddItem 扣减商品库存并增加车内数量，单事务内完成
	AddItem(ctx context.Context, basketID, productID, quantity uint) error
	// RemoveItem 归还商品库存并减少车内数量，单事务内完成
	RemoveItem(ctx context.Context, basketID, productID, quantity uint) error
	// ListLines 返回数量大于零的行，附带商品展示数据
	ListLines(ctx context.Context, basketID uint) ([]Line, error)
}
