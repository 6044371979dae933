package mysql

import (
	"context"
	"errors"
	"math/rand"

	"gorm.io/gorm"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
)

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建商品目录仓储
func NewCatalogRepository(db *gorm.DB) domain.Repository {
	return &catalogRepository{db: db}
}

// displayScope 列表展示所需的关联预加载
func displayScope(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Images").Preload("Tags").Preload("Reviews")
}

func (r *catalogRepository) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	err := displayScope(r.db.WithContext(ctx)).
		Preload("Specifications").
		Preload("Sale").
		First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepository) ListProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int64, error) {
	db := r.db.WithContext(ctx).Model(&domain.Product{})

	if q.Name != "" {
		db = db.Where("products.title LIKE ?", "%"+q.Name+"%")
	}
	if q.MinPrice != nil {
		db = db.Where("products.price >= ?", q.MinPrice)
	}
	if q.MaxPrice != nil {
		db = db.Where("products.price <= ?", q.MaxPrice)
	}
	if q.FreeDelivery {
		db = db.Where("products.free_delivery = ?", true)
	}
	if q.Available {
		db = db.Where("products.count > 0")
	}
	for _, tagID := range q.TagIDs {
		db = db.Where("EXISTS (SELECT 1 FROM product_tags pt WHERE pt.product_id = products.id AND pt.tag_id = ?)", tagID)
	}
	if q.CategoryID != nil {
		ids, err := r.categoryScopeIDs(ctx, *q.CategoryID)
		if err != nil {
			return nil, 0, err
		}
		db = db.Where("products.category_id IN ?", ids)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "ASC"
	if q.SortDesc {
		order = "DESC"
	}
	switch q.Sort {
	case domain.SortByRating:
		db = db.Order("products.rating " + order)
	case domain.SortByReviews:
		db = db.Order("(SELECT COUNT(*) FROM reviews WHERE reviews.product_id = products.id) " + order)
	case domain.SortByDate:
		db = db.Order("products.created_at " + order)
	default:
		db = db.Order("products.price " + order)
	}

	if q.PageSize > 0 {
		db = db.Offset((q.Page - 1) * q.PageSize).Limit(q.PageSize)
	}

	var products []domain.Product
	if err := displayScope(db).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// categoryScopeIDs 根分类展开为自身加直接子分类，子分类只取自身
func (r *catalogRepository) categoryScopeIDs(ctx context.Context, categoryID uint) ([]uint, error) {
	var category domain.Category
	err := r.db.WithContext(ctx).First(&category, categoryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}

	ids := []uint{category.ID}
	if category.ParentID == nil {
		var childIDs []uint
		if err := r.db.WithContext(ctx).Model(&domain.Category{}).
			Where("parent_id = ?", category.ID).
			Pluck("id", &childIDs).Error; err != nil {
			return nil, err
		}
		ids = append(ids, childIDs...)
	}
	return ids, nil
}

func (r *catalogRepository) ListPopular(ctx context.Context, limit int) ([]domain.Product, error) {
	purchases := r.db.Table("order_items").
		Select("order_items.product_id AS product_id, SUM(order_items.quantity) AS purchased").
		Joins("JOIN orders ON orders.id = order_items.order_id AND orders.status = ?", "paid").
		Group("order_items.product_id")

	var products []domain.Product
	err := displayScope(r.db.WithContext(ctx).Model(&domain.Product{})).
		Joins("LEFT JOIN (?) AS purchases ON purchases.product_id = products.id", purchases).
		Where("products.count > 0").
		Order("products.rating DESC, purchases.purchased DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *catalogRepository) ListLimited(ctx context.Context, limit int) ([]domain.Product, error) {
	var products []domain.Product
	err := displayScope(r.db.WithContext(ctx)).
		Where("count > 0 AND limited = ?", true).
		Order("rating DESC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (r *catalogRepository) ListSales(ctx context.Context, page, pageSize int) ([]domain.Product, int64, error) {
	db := r.db.WithContext(ctx).Model(&domain.Product{}).
		Joins("JOIN sales ON sales.id = products.sale_id").
		Where("products.count > 0").
		Where("sales.date_from <= CURDATE() AND sales.date_to >= CURDATE()")

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []domain.Product
	err := db.Preload("Sale").Preload("Images").
		Order("sales.sale_price ASC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *catalogRepository) ListBanners(ctx context.Context, limit int) ([]domain.Product, error) {
	var categoryIDs []uint
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("count > 0").
		Distinct().
		Pluck("category_id", &categoryIDs).Error; err != nil {
		return nil, err
	}

	rand.Shuffle(len(categoryIDs), func(i, j int) {
		categoryIDs[i], categoryIDs[j] = categoryIDs[j], categoryIDs[i]
	})
	if len(categoryIDs) > limit {
		categoryIDs = categoryIDs[:limit]
	}

	products := make([]domain.Product, 0, len(categoryIDs))
	for _, categoryID := range categoryIDs {
		var product domain.Product
		err := displayScope(r.db.WithContext(ctx)).
			Where("category_id = ? AND count > 0", categoryID).
			Order("price ASC").
			First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	err := r.db.WithContext(ctx).Preload("Image").Find(&categories).Error
	return categories, err
}

func (r *catalogRepository) CountProductsByCategory(ctx context.Context) ([]domain.CategoryProductCount, error) {
	var counts []domain.CategoryProductCount
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Select("category_id AS category_id, COUNT(*) AS count").
		Group("category_id").
		Scan(&counts).Error
	return counts, err
}

func (r *catalogRepository) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := r.db.WithContext(ctx).Find(&tags).Error
	return tags, err
}

func (r *catalogRepository) CreateReview(ctx context.Context, review *domain.Review) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product domain.Product
		err := tx.First(&product, review.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrProductNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Create(review).Error; err != nil {
			return err
		}

		// 评分跟随评价均值
		return tx.Exec(
			"UPDATE products SET rating = (SELECT ROUND(AVG(rate), 1) FROM reviews WHERE product_id = ?) WHERE id = ?",
			review.ProductID, review.ProductID,
		).Error
	})
}

func (r *catalogRepository) ListReviews(ctx context.Context, productID uint) ([]domain.Review, error) {
	var reviews []domain.Review
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}
