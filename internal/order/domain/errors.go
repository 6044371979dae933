package domain

import "errors"

var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrProductNotFound 下单行引用的商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderAlreadyPaid 订单已支付，不可再变更
	ErrOrderAlreadyPaid = errors.New("order already paid")
	// ErrEmptyOrder 下单行为空
	ErrEmptyOrder = errors.New("order has no lines")
	// ErrPricingNotConfigured 配送计价未配置
	ErrPricingNotConfigured = errors.New("delivery pricing not configured")
)
