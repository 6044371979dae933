// Package application 商品目录应用服务
package application

import (
	"context"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
)

const (
	// DefaultPageSize 商品列表默认页大小
	DefaultPageSize = 4
	// SalesPageSize 折扣列表页大小
	SalesPageSize = 3
	// TopListLimit 热门/限量/横幅列表长度
	TopListLimit = 5
)

// ReviewInput 新增评价输入
type ReviewInput struct {
	Author string
	Email  string
	Text   string
	Rate   uint8
}

// CatalogService 商品目录应用服务
type CatalogService struct {
	repo domain.Repository
}

// NewCatalogService 创建商品目录应用服务
func NewCatalogService(repo domain.Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

// CategoryTree 返回分类树，仅保留传递性包含至少一个商品的分支
func (s *CatalogService) CategoryTree(ctx context.Context) ([]CategoryNode, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountProductsByCategory(ctx)
	if err != nil {
		return nil, err
	}

	directCounts := make(map[uint]int64, len(counts))
	for _, c := range counts {
		directCounts[c.CategoryID] = c.Count
	}

	children := make(map[uint][]domain.Category)
	var roots []domain.Category
	for _, category := range categories {
		if category.ParentID == nil {
			roots = append(roots, category)
		} else {
			children[*category.ParentID] = append(children[*category.ParentID], category)
		}
	}

	tree := make([]CategoryNode, 0, len(roots))
	for _, root := range roots {
		if node, ok := buildCategoryNode(root, children, directCounts); ok {
			tree = append(tree, node)
		}
	}
	return tree, nil
}

// buildCategoryNode 递归构建节点，分支内无商品时整体剪掉
func buildCategoryNode(category domain.Category, children map[uint][]domain.Category, counts map[uint]int64) (CategoryNode, bool) {
	node := CategoryNode{
		ID:            category.ID,
		Title:         category.Title,
		Subcategories: []CategoryNode{},
	}
	if category.Image != nil {
		node.Image = &ImageView{Src: category.Image.Src, Alt: category.Image.Alt}
	}

	total := counts[category.ID]
	for _, child := range children[category.ID] {
		childNode, ok := buildCategoryNode(child, children, counts)
		if ok {
			node.Subcategories = append(node.Subcategories, childNode)
			total++
		}
	}
	return node, total > 0
}

// ProductQuery 商品列表查询参数（传递给仓储前做默认值处理）
type ProductQuery = domain.ProductQuery

// Products 按条件分页查询商品列表
func (s *CatalogService) Products(ctx context.Context, q ProductQuery) (Page[ProductListItem], error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}

	products, total, err := s.repo.ListProducts(ctx, q)
	if err != nil {
		return Page[ProductListItem]{}, err
	}

	items := make([]ProductListItem, 0, len(products))
	for i := range products {
		items = append(items, NewProductListItem(&products[i]))
	}
	return Page[ProductListItem]{
		Items:       items,
		CurrentPage: q.Page,
		LastPage:    lastPage(total, q.PageSize),
	}, nil
}

// Popular 热门商品
func (s *CatalogService) Popular(ctx context.Context) ([]ProductListItem, error) {
	products, err := s.repo.ListPopular(ctx, TopListLimit)
	if err != nil {
		return nil, err
	}
	return toListItems(products), nil
}

// Limited 限量商品
func (s *CatalogService) Limited(ctx context.Context) ([]ProductListItem, error) {
	products, err := s.repo.ListLimited(ctx, TopListLimit)
	if err != nil {
		return nil, err
	}
	return toListItems(products), nil
}

// Sales 当前生效的折扣商品
func (s *CatalogService) Sales(ctx context.Context, page int) (Page[SaleItem], error) {
	if page <= 0 {
		page = 1
	}
	products, total, err := s.repo.ListSales(ctx, page, SalesPageSize)
	if err != nil {
		return Page[SaleItem]{}, err
	}

	items := make([]SaleItem, 0, len(products))
	for i := range products {
		items = append(items, NewSaleItem(&products[i]))
	}
	return Page[SaleItem]{
		Items:       items,
		CurrentPage: page,
		LastPage:    lastPage(total, SalesPageSize),
	}, nil
}

// Banners 首页横幅商品
func (s *CatalogService) Banners(ctx context.Context) ([]BannerItem, error) {
	products, err := s.repo.ListBanners(ctx, TopListLimit)
	if err != nil {
		return nil, err
	}
	items := make([]BannerItem, 0, len(products))
	for i := range products {
		items = append(items, NewBannerItem(&products[i]))
	}
	return items, nil
}

// Product 商品详情
func (s *CatalogService) Product(ctx context.Context, id uint) (ProductDetail, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return ProductDetail{}, err
	}
	return NewProductDetail(product), nil
}

// Tags 全部标签
func (s *CatalogService) Tags(ctx context.Context) ([]TagView, error) {
	tags, err := s.repo.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]TagView, 0, len(tags))
	for _, tag := range tags {
		views = append(views, TagView{ID: tag.ID, Name: tag.Name})
	}
	return views, nil
}

// AddReview 新增商品评价，返回该商品全部评价
func (s *CatalogService) AddReview(ctx context.Context, productID uint, input ReviewInput) ([]ReviewView, error) {
	if input.Rate < 1 || input.Rate > 5 {
		return nil, domain.ErrInvalidRate
	}

	review := &domain.Review{
		ProductID: productID,
		Author:    input.Author,
		Email:     input.Email,
		Text:      input.Text,
		Rate:      input.Rate,
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	reviews, err := s.repo.ListReviews(ctx, productID)
	if err != nil {
		return nil, err
	}
	views := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, NewReviewView(r))
	}
	return views, nil
}

func toListItems(products []domain.Product) []ProductListItem {
	items := make([]ProductListItem, 0, len(products))
	for i := range products {
		items = append(items, NewProductListItem(&products[i]))
	}
	return items
}

func lastPage(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	last := int((total + int64(pageSize) - 1) / int64(pageSize))
	if last < 1 {
		last = 1
	}
	return last
}
