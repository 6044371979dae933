package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	basketapp "github.com/wyfcoding/storefront/internal/basket/application"
	"github.com/wyfcoding/storefront/internal/order/application"
	"github.com/wyfcoding/storefront/internal/order/domain"
	usershttp "github.com/wyfcoding/storefront/internal/users/interfaces/http"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/response"
)

// OrderHandler 订单 HTTP 处理器
type OrderHandler struct {
	svc     *application.OrderService
	baskets *basketapp.BasketService
}

// NewOrderHandler 创建订单 HTTP 处理器
func NewOrderHandler(svc *application.OrderService, baskets *basketapp.BasketService) *OrderHandler {
	return &OrderHandler{svc: svc, baskets: baskets}
}

// RegisterRoutes 注册路由，requireAuth 用于订单列表
func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	router.GET("/orders", requireAuth, h.List)
	router.POST("/orders", h.Create)
	router.GET("/order/:id", h.Get)
	router.POST("/order/:id", h.Confirm)
}

// CreateLineRequest 下单行
type CreateLineRequest struct {
	ProductID uint `json:"id" binding:"required"`
	Count     uint `json:"count" binding:"required"`
}

// Create 从当前购物车快照下单
func (h *OrderHandler) Create(c *gin.Context) {
	var req []CreateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	session := usershttp.CurrentSession(c)
	if session == nil {
		response.ErrorWithStatus(c, http.StatusInternalServerError, "session not established", "")
		return
	}
	basket, err := h.baskets.Resolve(c.Request.Context(), session.UserID, session.Token)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to resolve basket", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}

	lines := make([]application.LineInput, 0, len(req))
	for _, line := range req {
		lines = append(lines, application.LineInput{ProductID: line.ProductID, Quantity: line.Count})
	}

	orderID, err := h.svc.Create(c.Request.Context(), basket.ID, lines)
	if err != nil {
		switch err {
		case domain.ErrProductNotFound:
			response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
		case domain.ErrEmptyOrder:
			response.Error(c, err.Error())
		default:
			logger.Error(c.Request.Context(), "Failed to create order", "error", err)
			response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}
	response.Success(c, gin.H{"orderId": orderID})
}

// List 当前用户的全部订单
func (h *OrderHandler) List(c *gin.Context) {
	session := usershttp.CurrentSession(c)
	views, err := h.svc.List(c.Request.Context(), *session.UserID)
	if err != nil {
		logger.Error(c.Request.Context(), "Failed to list orders", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, views)
}

// Get 订单详情，登录用户首次查看时用资料预填联系信息
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var userID *uint
	if session := usershttp.CurrentSession(c); session.Authenticated() {
		userID = session.UserID
	}

	view, err := h.svc.Get(c.Request.Context(), orderID, userID)
	if err != nil {
		if err == domain.ErrOrderNotFound {
			response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
			return
		}
		logger.Error(c.Request.Context(), "Failed to get order", "order_id", orderID, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, view)
}

// ConfirmRequest 确认订单请求
type ConfirmRequest struct {
	FullName     string `json:"fullName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	DeliveryType string `json:"deliveryType" binding:"required,oneof=ordinary express"`
	PaymentType  string `json:"paymentType" binding:"required"`
	City         string `json:"city" binding:"required"`
	Address      string `json:"address" binding:"required"`
}

// Confirm 确认订单并计算总价
func (h *OrderHandler) Confirm(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	err := h.svc.Confirm(c.Request.Context(), orderID, application.ConfirmInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		DeliveryType: req.DeliveryType,
		PaymentType:  req.PaymentType,
		City:         req.City,
		Address:      req.Address,
	})
	if err != nil {
		switch err {
		case domain.ErrOrderNotFound:
			response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
		case domain.ErrOrderAlreadyPaid, domain.ErrPricingNotConfigured:
			response.Error(c, err.Error())
		default:
			logger.Error(c.Request.Context(), "Failed to confirm order", "order_id", orderID, "error", err)
			response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		}
		return
	}
	response.Success(c, gin.H{"orderId": orderID})
}

func (h *OrderHandler) orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, "invalid order id")
		return 0, false
	}
	return uint(id), true
}
