package domain

import "errors"

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidRate 评价分值超出范围
	ErrInvalidRate = errors.New("review rate must be between 1 and 5")
)
