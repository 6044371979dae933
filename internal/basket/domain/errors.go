package domain

import "errors"

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock 商品库存不足
	ErrInsufficientStock = errors.New("insufficient product stock")
	// ErrItemNotFound 购物车内无该商品
	ErrItemNotFound = errors.New("basket item not found")
	// ErrInvalidQuantity 操作数量非法或超过车内持有数量
	ErrInvalidQuantity = errors.New("invalid quantity")
)
