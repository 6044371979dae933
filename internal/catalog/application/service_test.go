package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
)

// fakeCatalogRepo 内存实现，仅覆盖服务逻辑所需的行为
type fakeCatalogRepo struct {
	categories []domain.Category
	counts     []domain.CategoryProductCount
	products   []domain.Product
	tags       []domain.Tag
	reviews    map[uint][]domain.Review
}

func (f *fakeCatalogRepo) GetProduct(_ context.Context, id uint) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (f *fakeCatalogRepo) ListProducts(_ context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	total := int64(len(f.products))
	start := (q.Page - 1) * q.PageSize
	if start >= len(f.products) {
		return nil, total, nil
	}
	end := start + q.PageSize
	if end > len(f.products) {
		end = len(f.products)
	}
	return f.products[start:end], total, nil
}

func (f *fakeCatalogRepo) ListPopular(_ context.Context, limit int) ([]domain.Product, error) {
	if len(f.products) > limit {
		return f.products[:limit], nil
	}
	return f.products, nil
}

func (f *fakeCatalogRepo) ListLimited(_ context.Context, limit int) ([]domain.Product, error) {
	return f.ListPopular(context.Background(), limit)
}

func (f *fakeCatalogRepo) ListSales(_ context.Context, _, _ int) ([]domain.Product, int64, error) {
	return nil, 0, nil
}

func (f *fakeCatalogRepo) ListBanners(_ context.Context, limit int) ([]domain.Product, error) {
	return f.ListPopular(context.Background(), limit)
}

func (f *fakeCatalogRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	return f.categories, nil
}

func (f *fakeCatalogRepo) CountProductsByCategory(_ context.Context) ([]domain.CategoryProductCount, error) {
	return f.counts, nil
}

func (f *fakeCatalogRepo) ListTags(_ context.Context) ([]domain.Tag, error) {
	return f.tags, nil
}

func (f *fakeCatalogRepo) CreateReview(_ context.Context, review *domain.Review) error {
	found := false
	for i := range f.products {
		if f.products[i].ID == review.ProductID {
			found = true
			break
		}
	}
	if !found {
		return domain.ErrProductNotFound
	}
	if f.reviews == nil {
		f.reviews = make(map[uint][]domain.Review)
	}
	f.reviews[review.ProductID] = append(f.reviews[review.ProductID], *review)
	return nil
}

func (f *fakeCatalogRepo) ListReviews(_ context.Context, productID uint) ([]domain.Review, error) {
	return f.reviews[productID], nil
}

func category(id uint, title string, parentID *uint) domain.Category {
	return domain.Category{
		Model:    gorm.Model{ID: id},
		Title:    title,
		ParentID: parentID,
	}
}

func TestCategoryTreePrunesEmptyBranches(t *testing.T) {
	electronics := uint(1)
	repo := &fakeCatalogRepo{
		categories: []domain.Category{
			category(1, "Electronics", nil),
			category(2, "Phones", &electronics),
			category(3, "Laptops", &electronics),
			category(4, "Furniture", nil),
		},
		// Phones 有商品，Laptops 与 Furniture 没有
		counts: []domain.CategoryProductCount{
			{CategoryID: 2, Count: 3},
		},
	}
	svc := NewCatalogService(repo)

	tree, err := svc.CategoryTree(context.Background())
	require.NoError(t, err)

	require.Len(t, tree, 1)
	assert.Equal(t, "Electronics", tree[0].Title)
	require.Len(t, tree[0].Subcategories, 1)
	assert.Equal(t, "Phones", tree[0].Subcategories[0].Title)
}

func TestCategoryTreeKeepsParentWithDirectProducts(t *testing.T) {
	repo := &fakeCatalogRepo{
		categories: []domain.Category{
			category(1, "Books", nil),
		},
		counts: []domain.CategoryProductCount{
			{CategoryID: 1, Count: 1},
		},
	}
	svc := NewCatalogService(repo)

	tree, err := svc.CategoryTree(context.Background())
	require.NoError(t, err)

	require.Len(t, tree, 1)
	assert.Equal(t, "Books", tree[0].Title)
	assert.Empty(t, tree[0].Subcategories)
}

func TestProductsPagination(t *testing.T) {
	products := make([]domain.Product, 10)
	for i := range products {
		products[i] = domain.Product{Model: gorm.Model{ID: uint(i + 1)}, CategoryID: 1}
	}
	svc := NewCatalogService(&fakeCatalogRepo{products: products})

	page, err := svc.Products(context.Background(), ProductQuery{Page: 3})
	require.NoError(t, err)

	// 10 件商品，页大小 4，共 3 页，末页 2 件
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 3, page.LastPage)
	assert.Len(t, page.Items, 2)
}

func TestProductsDefaultsPage(t *testing.T) {
	svc := NewCatalogService(&fakeCatalogRepo{})

	page, err := svc.Products(context.Background(), ProductQuery{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 1, page.LastPage)
}

func TestAddReviewRejectsInvalidRate(t *testing.T) {
	repo := &fakeCatalogRepo{
		products: []domain.Product{{Model: gorm.Model{ID: 1}, CategoryID: 1}},
	}
	svc := NewCatalogService(repo)

	for _, rate := range []uint8{0, 6} {
		_, err := svc.AddReview(context.Background(), 1, ReviewInput{
			Author: "a", Email: "a@b.c", Text: "t", Rate: rate,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRate)
	}
}

func TestAddReviewReturnsAllReviews(t *testing.T) {
	repo := &fakeCatalogRepo{
		products: []domain.Product{{Model: gorm.Model{ID: 1}, CategoryID: 1}},
	}
	svc := NewCatalogService(repo)

	_, err := svc.AddReview(context.Background(), 1, ReviewInput{
		Author: "first", Email: "f@e.com", Text: "good", Rate: 5,
	})
	require.NoError(t, err)

	reviews, err := svc.AddReview(context.Background(), 1, ReviewInput{
		Author: "second", Email: "s@e.com", Text: "ok", Rate: 3,
	})
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestAddReviewMissingProduct(t *testing.T) {
	svc := NewCatalogService(&fakeCatalogRepo{})

	_, err := svc.AddReview(context.Background(), 42, ReviewInput{
		Author: "a", Email: "a@b.c", Text: "t", Rate: 4,
	})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestLastPage(t *testing.T) {
	assert.Equal(t, 1, lastPage(0, 4))
	assert.Equal(t, 1, lastPage(4, 4))
	assert.Equal(t, 2, lastPage(5, 4))
	assert.Equal(t, 3, lastPage(12, 4))
}
