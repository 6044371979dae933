// Package domain 包含商品目录的领域模型
package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Image 商品或分类图片，仅存储路径
type Image struct {
	gorm.Model
	Src       string `gorm:"column:src;type:varchar(255);not null"`
	Alt       string `gorm:"column:alt;type:varchar(100)"`
	ProductID *uint  `gorm:"column:product_id;index"`
}

func (Image) TableName() string { return "images" }

// Category 商品分类，通过 ParentID 组成树
type Category struct {
	gorm.Model
	Title         string     `gorm:"column:title;type:varchar(50);not null"`
	ParentID      *uint      `gorm:"column:parent_id;index"`
	ImageID       *uint      `gorm:"column:image_id"`
	Image         *Image     `gorm:"foreignKey:ImageID"`
	Subcategories []Category `gorm:"foreignKey:ParentID"`
}

func (Category) TableName() string { return "categories" }

// Tag 商品标签
type Tag struct {
	gorm.Model
	Name string `gorm:"column:name;type:varchar(50);not null"`
}

func (Tag) TableName() string { return "tags" }

// Specification 商品规格参数
type Specification struct {
	gorm.Model
	Name  string `gorm:"column:name;type:varchar(100);not null"`
	Value string `gorm:"column:value;type:varchar(50);not null"`
}

func (Specification) TableName() string { return "specifications" }

// Sale 限时折扣
type Sale struct {
	gorm.Model
	SalePrice decimal.Decimal `gorm:"column:sale_price;type:decimal(10,2);not null"`
	DateFrom  time.Time       `gorm:"column:date_from;not null"`
	DateTo    time.Time       `gorm:"column:date_to;not null"`
}

func (Sale) TableName() string { return "sales" }

// Review 商品评价
type Review struct {
	gorm.Model
	ProductID uint   `gorm:"column:product_id;index;not null"`
	Author    string `gorm:"column:author;type:varchar(150);not null"`
	Email     string `gorm:"column:email;type:varchar(254);not null"`
	Text      string `gorm:"column:text;type:text;not null"`
	Rate      uint8  `gorm:"column:rate;not null"`
}

func (Review) TableName() string { return "reviews" }

// Product 商品实体
// 库存 Stock 只能通过购物车操作的条件更新变化，任何时刻不为负
type Product struct {
	gorm.Model
	CategoryID      uint            `gorm:"column:category_id;index;not null"`
	Category        *Category       `gorm:"foreignKey:CategoryID"`
	Price           decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	Stock           uint            `gorm:"column:count;not null"`
	Title           string          `gorm:"column:title;type:varchar(50);not null"`
	Description     string          `gorm:"column:description;type:varchar(200)"`
	FullDescription string          `gorm:"column:full_description;type:text"`
	FreeDelivery    bool            `gorm:"column:free_delivery;not null"`
	Rating          decimal.Decimal `gorm:"column:rating;type:decimal(2,1);not null;default:5"`
	Limited         bool            `gorm:"column:limited;not null"`
	SaleID          *uint           `gorm:"column:sale_id"`
	Sale            *Sale           `gorm:"foreignKey:SaleID"`
	Tags            []Tag           `gorm:"many2many:product_tags"`
	Specifications  []Specification `gorm:"many2many:product_specifications"`
	Images          []Image         `gorm:"foreignKey:ProductID"`
	Reviews         []Review        `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string { return "products" }

// InStock 是否有库存
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// SortField 商品列表排序字段
type SortField string

const (
	SortByRating  SortField = "rating"
	SortByPrice   SortField = "price"
	SortByReviews SortField = "reviews"
	SortByDate    SortField = "date"
)

// ProductQuery 商品列表查询条件
type ProductQuery struct {
	// 名称模糊匹配
	Name string
	// 价格区间
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	// 仅免邮商品
	FreeDelivery bool
	// 仅有库存商品
	Available bool
	// 必须同时带有的标签
	TagIDs []uint
	// 分类（含其子分类）
	CategoryID *uint
	Sort       SortField
	SortDesc   bool
	Page       int
	PageSize   int
}

// CategoryProductCount 分类直属商品数
type CategoryProductCount struct {
	CategoryID uint
	Count      int64
}

// Repository 商品目录仓储接口
type Repository interface {
	// 获取商品详情，预加载展示所需关联
	GetProduct(ctx context.Context, id uint) (*Product, error)
	// 按条件分页查询商品列表，返回总数
	ListProducts(ctx context.Context, q ProductQuery) ([]Product, int64, error)
	// 按评分与已支付订单购买量取前 limit 个有库存商品
	ListPopular(ctx context.Context, limit int) ([]Product, error)
	// 取前 limit 个有库存的限量商品
	ListLimited(ctx context.Context, limit int) ([]Product, error)
	// 分页查询当前生效的折扣商品
	ListSales(ctx context.Context, page, pageSize int) ([]Product, int64, error)
	// 从至多 limit 个随机非空分类中各取最便宜的有库存商品
	ListBanners(ctx context.Context, limit int) ([]Product, error)
	// 获取全部分类（含图片）
	ListCategories(ctx context.Context) ([]Category, error)
	// 每个分类的直属商品数
	CountProductsByCategory(ctx context.Context) ([]CategoryProductCount, error)
	// 获取全部标签
	ListTags(ctx context.Context) ([]Tag, error)
	// 新增评价并重算商品评分
	CreateReview(ctx context.Context, review *Review) error
	// 商品的全部评价
	ListReviews(ctx context.Context, productID uint) ([]Review, error)
}
