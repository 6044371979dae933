package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
)

// 每个使用场景一个显式视图结构，统一由 Product 实体构建。

// ImageView 图片视图
type ImageView struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// TagView 标签视图
type TagView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ReviewView 评价视图
type ReviewView struct {
	Author string    `json:"author"`
	Email  string    `json:"email"`
	Text   string    `json:"text"`
	Rate   uint8     `json:"rate"`
	Date   time.Time `json:"date"`
}

// SpecificationView 规格参数视图
type SpecificationView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CategoryNode 分类树节点
type CategoryNode struct {
	ID            uint           `json:"id"`
	Title         string         `json:"title"`
	Image         *ImageView     `json:"image,omitempty"`
	Subcategories []CategoryNode `json:"subcategories"`
}

// ProductListItem 商品列表项视图
type ProductListItem struct {
	ID           uint            `json:"id"`
	CategoryID   uint            `json:"category"`
	Price        decimal.Decimal `json:"price"`
	Count        uint            `json:"count"`
	Date         time.Time       `json:"date"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	FreeDelivery bool            `json:"freeDelivery"`
	Images       []ImageView     `json:"images"`
	Tags         []TagView       `json:"tags"`
	Reviews      []ReviewView    `json:"reviews"`
	Rating       decimal.Decimal `json:"rating"`
}

// ProductDetail 商品详情视图
type ProductDetail struct {
	ProductListItem
	FullDescription string              `json:"fullDescription"`
	Specifications  []SpecificationView `json:"specifications"`
}

// SaleItem 折扣商品视图
type SaleItem struct {
	ID        uint            `json:"id"`
	Price     decimal.Decimal `json:"price"`
	SalePrice decimal.Decimal `json:"salePrice"`
	DateFrom  time.Time       `json:"dateFrom"`
	DateTo    time.Time       `json:"dateTo"`
	Title     string          `json:"title"`
	Images    []ImageView     `json:"images"`
}

// BannerItem 首页横幅商品视图
type BannerItem struct {
	ID         uint            `json:"id"`
	CategoryID uint            `json:"category"`
	Price      decimal.Decimal `json:"price"`
	Title      string          `json:"title"`
	Images     []ImageView     `json:"images"`
}

// Page 分页响应
type Page[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
}

// NewImageViews 构建图片视图列表
func NewImageViews(images []domain.Image) []ImageView {
	views := make([]ImageView, 0, len(images))
	for _, img := range images {
		views = append(views, ImageView{Src: img.Src, Alt: img.Alt})
	}
	return views
}

// NewProductListItem 由商品实体构建列表项视图
func NewProductListItem(p *domain.Product) ProductListItem {
	tags := make([]TagView, 0, len(p.Tags))
	for _, tag := range p.Tags {
		tags = append(tags, TagView{ID: tag.ID, Name: tag.Name})
	}
	reviews := make([]ReviewView, 0, len(p.Reviews))
	for _, review := range p.Reviews {
		reviews = append(reviews, NewReviewView(review))
	}
	return ProductListItem{
		ID:           p.ID,
		CategoryID:   p.CategoryID,
		Price:        p.Price,
		Count:        p.Stock,
		Date:         p.CreatedAt,
		Title:        p.Title,
		Description:  p.Description,
		FreeDelivery: p.FreeDelivery,
		Images:       NewImageViews(p.Images),
		Tags:         tags,
		Reviews:      reviews,
		Rating:       p.Rating,
	}
}

// NewProductDetail 由商品实体构建详情视图
func NewProductDetail(p *domain.Product) ProductDetail {
	specs := make([]SpecificationView, 0, len(p.Specifications))
	for _, spec := range p.Specifications {
		specs = append(specs, SpecificationView{Name: spec.Name, Value: spec.Value})
	}
	return ProductDetail{
		ProductListItem: NewProductListItem(p),
		FullDescription: p.FullDescription,
		Specifications:  specs,
	}
}

// NewSaleItem 由带折扣的商品实体构建折扣视图
func NewSaleItem(p *domain.Product) SaleItem {
	item := SaleItem{
		ID:     p.ID,
		Price:  p.Price,
		Title:  p.Title,
		Images: NewImageViews(p.Images),
	}
	if p.Sale != nil {
		item.SalePrice = p.Sale.SalePrice
		item.DateFrom = p.Sale.DateFrom
		item.DateTo = p.Sale.DateTo
	}
	return item
}

// NewBannerItem 由商品实体构建横幅视图
func NewBannerItem(p *domain.Product) BannerItem {
	return BannerItem{
		ID:         p.ID,
		CategoryID: p.CategoryID,
		Price:      p.Price,
		Title:      p.Title,
		Images:     NewImageViews(p.Images),
	}
}

// NewReviewView 由评价实体构建评价视图
func NewReviewView(r domain.Review) ReviewView {
	return ReviewView{
		Author: r.Author,
		Email:  r.Email,
		Text:   r.Text,
		Rate:   r.Rate,
		Date:   r.CreatedAt,
	}
}
