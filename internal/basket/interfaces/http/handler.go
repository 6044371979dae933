package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/storefront/internal/basket/application"
	"github.com/wyfcoding/storefront/internal/basket/domain"
	usershttp "github.com/wyfcoding/storefront/internal/users/interfaces/http"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/response"
)

// BasketHandler 购物车 HTTP 处理器
type BasketHandler struct {
	svc *application.BasketService
}

// NewBasketHandler 创建购物车 HTTP 处理器
func NewBasketHandler(svc *application.BasketService) *BasketHandler {
	return &BasketHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *BasketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/basket", h.List)
	router.POST("/basket", h.Add)
	router.DELETE("/basket", h.Remove)
}

// MutateRequest 购物车增删请求
type MutateRequest struct {
	ProductID uint `json:"id" binding:"required"`
	Count     uint `json:"count" binding:"required"`
}

// List 查看购物车
func (h *BasketHandler) List(c *gin.Context) {
	basket, ok := h.resolve(c)
	if !ok {
		return
	}
	lines, err := h.svc.List(c.Request.Context(), basket)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list basket", "basket_id", basket.ID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, lines)
}

// Add 加入购物车
func (h *BasketHandler) Add(c *gin.Context) {
	basket, ok := h.resolve(c)
	if !ok {
		return
	}
	var req MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	lines, err := h.svc.Add(c.Request.Context(), basket, req.ProductID, req.Count)
	if err != nil {
		h.writeMutateError(c, basket.ID, req.ProductID, err)
		return
	}
	response.Success(c, lines)
}

// Remove 从购物车移除
func (h *BasketHandler) Remove(c *gin.Context) {
	basket, ok := h.resolve(c)
	if !ok {
		return
	}
	var req MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	lines, err := h.svc.Remove(c.Request.Context(), basket, req.ProductID, req.Count)
	if err != nil {
		h.writeMutateError(c, basket.ID, req.ProductID, err)
		return
	}
	response.Success(c, lines)
}

func (h *BasketHandler) resolve(c *gin.Context) (*domain.Basket, bool) {
	session := usershttp.CurrentSession(c)
	if session == nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, "session not established", "")
		return nil, false
	}
	basket, err := h.svc.Resolve(c.Request.Context(), session.UserID, session.Token)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to resolve basket", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return nil, false
	}
	return basket, true
}

func (h *BasketHandler) writeMutateError(c *gin.Context, basketID, productID uint, err error) {
	switch err {
	case domain.ErrProductNotFound, domain.ErrItemNotFound:
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
	case domain.ErrInsufficientStock, domain.ErrInvalidQuantity:
		response.Error(c, err.Error())
	default:
		logger.Error(c.Request.Context(), "Basket mutation failed",
			"basket_id", basketID, "product_id", productID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
	}
}
