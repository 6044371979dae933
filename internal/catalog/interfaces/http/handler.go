package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/storefront/internal/catalog/application"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/response"
)

// CatalogHandler 商品目录 HTTP 处理器
type CatalogHandler struct {
	svc *application.CatalogService
}

// NewCatalogHandler 创建商品目录 HTTP 处理器
func NewCatalogHandler(svc *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// RegisterRoutes 注册路由，requireAuth 用于需要登录的接口
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	router.GET("/categories", h.Categories)
	router.GET("/tags", h.Tags)
	router.GET("/catalog", h.Catalog)
	router.GET("/products/popular", h.Popular)
	router.GET("/products/limited", h.Limited)
	router.GET("/sales", h.Sales)
	router.GET("/banners", h.Banners)
	router.GET("/product/:id", h.Product)
	router.POST("/product/:id/reviews", requireAuth, h.AddReview)
}

// Categories 分类树
func (h *CatalogHandler) Categories(c *gin.Context) {
	tree, err := h.svc.CategoryTree(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to build category tree", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, tree)
}

// Tags 标签列表
func (h *CatalogHandler) Tags(c *gin.Context) {
	tags, err := h.svc.Tags(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list tags", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, tags)
}

// Catalog 商品列表，支持过滤、排序与分页
func (h *CatalogHandler) Catalog(c *gin.Context) {
	query, err := parseProductQuery(c)
	if err != nil {
		response.Error(c, err.Error())
		return
	}

	page, err := h.svc.Products(c.Request.Context(), query)
	if err != nil {
		if err == domain.ErrCategoryNotFound {
			response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
			return
		}
		logger.Error(c.Request.Context(), "Failed to list products", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, page)
}

// Popular 热门商品
func (h *CatalogHandler) Popular(c *gin.Context) {
	items, err := h.svc.Popular(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list popular products", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, items)
}

// Limited 限量商品
func (h *CatalogHandler) Limited(c *gin.Context) {
	items, err := h.svc.Limited(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list limited products", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, items)
}

// Sales 折扣商品
func (h *CatalogHandler) Sales(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("currentPage", "1"))
	items, err := h.svc.Sales(c.Request.Context(), page)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list sales", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, items)
}

// Banners 首页横幅商品
func (h *CatalogHandler) Banners(c *gin.Context) {
	items, err := h.svc.Banners(c.Request.Context())
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list banners", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, items)
}

// Product 商品详情
func (h *CatalogHandler) Product(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, "invalid product id")
		return
	}

	detail, err := h.svc.Product(c.Request.Context(), uint(id))
	if err != nil {
		if err == domain.ErrProductNotFound {
			response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
			return
		}
		logger.Error(c.Request.Context(), "Failed to get product", "id", id, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, detail)
}

// AddReviewRequest 新增评价请求
type AddReviewRequest struct {
	Author string `json:"author" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Text   string `json:"text" binding:"required"`
	Rate   uint8  `json:"rate" binding:"required"`
}

// AddReview 新增商品评价
func (h *CatalogHandler) AddReview(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, "invalid product id")
		return
	}

	var req AddReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	reviews, err := h.svc.AddReview(c.Request.Context(), uint(id), application.ReviewInput{
		Author: req.Author,
		Email:  req.Email,
		Text:   req.Text,
		Rate:   req.Rate,
	})
	if err != nil {
		switch err {
		case domain.ErrProductNotFound:
			response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
		case domain.ErrInvalidRate:
			response.Error(c, err.Error())
		default:
			logger.Error(c.Request.Context(), "Failed to add review", "id", id, "error", err)
			response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}
	response.Success(c, reviews)
}

func parseProductQuery(c *gin.Context) (application.ProductQuery, error) {
	query := application.ProductQuery{
		Name:         c.Query("name"),
		FreeDelivery: c.Query("freeDelivery") == "true",
		Available:    c.DefaultQuery("available", "true") == "true",
	}

	if raw := c.Query("minPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return query, err
		}
		query.MinPrice = &price
	}
	if raw := c.Query("maxPrice"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return query, err
		}
		query.MaxPrice = &price
	}
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return query, err
		}
		categoryID := uint(id)
		query.CategoryID = &categoryID
	}
	for _, raw := range c.QueryArray("tags[]") {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			continue
		}
		query.TagIDs = append(query.TagIDs, uint(id))
	}

	query.Sort = domain.SortField(c.DefaultQuery("sort", string(domain.SortByPrice)))
	query.SortDesc = c.DefaultQuery("sortType", "inc") == "dec"
	query.Page, _ = strconv.Atoi(c.DefaultQuery("currentPage", "1"))
	return query, nil
}
