// Package domain 订单领域模型
package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
)

// OrderStatus 订单状态
type OrderStatus string

const (
	// StatusCreated 已创建，待确认
	StatusCreated OrderStatus = "created"
	// StatusConfirmed 已确认，待支付
	StatusConfirmed OrderStatus = "confirmed"
	// StatusPaid 已支付，终态
	StatusPaid OrderStatus = "paid"
)

// 配送方式
const (
	DeliveryOrdinary = "ordinary"
	DeliveryExpress  = "express"
)

// Order 订单，由购物车快照而来，行内容不随后续购物车变化
type Order struct {
	gorm.Model
	ProfileID    *uint            `gorm:"index" json:"profile_id"`
	FullName     string           `gorm:"type:varchar(255)" json:"full_name"`
	Email        string           `gorm:"type:varchar(255)" json:"email"`
	Phone        string           `gorm:"type:varchar(32)" json:"phone"`
	DeliveryType string           `gorm:"type:varchar(16)" json:"delivery_type"`
	PaymentType  string           `gorm:"type:varchar(16)" json:"payment_type"`
	TotalCost    *decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_cost"`
	Status       OrderStatus      `gorm:"type:varchar(16);not null;default:'created'" json:"status"`
	City         string           `gorm:"type:varchar(255)" json:"city"`
	Address      string           `gorm:"type:varchar(255)" json:"address"`
	Items        []OrderItem      `gorm:"foreignKey:OrderID" json:"items"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OrderItem 订单行，记录下单时刻的数量
type OrderItem struct {
	gorm.Model
	OrderID   uint `gorm:"not null;index" json:"order_id"`
	ProductID uint `gorm:"not null;index" json:"product_id"`
	Quantity  uint `gorm:"not null" json:"quantity"`
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// DeliveryPrice 普通配送计价：订单金额低于免邮门槛时收取
type DeliveryPrice struct {
	gorm.Model
	FreeDeliveryPoint decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"free_delivery_point"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// TableName 指定表名
func (DeliveryPrice) TableName() string {
	return "delivery_prices"
}

// ExpressDeliveryPrice 快递加价：选择快递配送时额外收取
type ExpressDeliveryPrice struct {
	gorm.Model
	Price decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
}

// TableName 指定表名
func (ExpressDeliveryPrice) TableName() string {
	return "express_delivery_prices"
}

// LineInput 下单行输入
type LineInput struct {
	ProductID uint
	Quantity  uint
}

// LineDetail 订单行读模型，附带商品展示数据
type LineDetail struct {
	Product  catalogdomain.Product
	Quantity uint
}

// ConfirmFields 确认订单时提交的字段
type ConfirmFields struct {
	FullName     string
	Email        string
	Phone        string
	DeliveryType string
	PaymentType  string
	City         string
	Address      string
}

// Pricing 确认时刻读取的配送计价
type Pricing struct {
	FreeDeliveryPoint decimal.Decimal
	DeliveryPrice     decimal.Decimal
	ExpressPrice      decimal.Decimal
}

// Repository 订单仓储接口
type Repository interface {
	// Create 校验商品存在后，单事务内创建订单与订单行并清零来源购物车
	Create(ctx context.Context, basketID uint, lines []LineInput) (*Order, error)
	Get(ctx context.Context, id uint) (*Order, error)
	ListByProfile(ctx context.Context, profileID uint) ([]Order, error)
	// SavePrefill 持久化预填的资料关联与联系信息
	SavePrefill(ctx context.Context, order *Order) error
	// Confirm 原子写入确认字段、总价与 confirmed 状态
	Confirm(ctx context.Context, orderID uint, fields ConfirmFields, totalCost decimal.Decimal) error
	// MarkPaid 置为已支付终态
	MarkPaid(ctx context.Context, orderID uint) error
	// GetPricing 读取配送计价
	GetPricing(ctx context.Context) (Pricing, error)
	// ProductPrices 按商品 id 读取现价
	ProductPrices(ctx context.Context, ids []uint) (map[uint]decimal.Decimal, error)
	// ListLineDetails 订单行及商品展示数据
	ListLineDetails(ctx context.Context, orderID uint) ([]LineDetail, error)
}

// ProfileProvider 订单预填所需的用户资料端口
type ProfileProvider interface {
	ProfileInfo(ctx context.Context, userID uint) (profileID uint, fullName, email, phone string, err error)
}
