package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	orderdomain "github.com/wyfcoding/storefront/internal/order/domain"
	"github.com/wyfcoding/storefront/internal/payment/application"
	"github.com/wyfcoding/storefront/internal/payment/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/response"
)

// PaymentHandler 支付 HTTP 处理器
type PaymentHandler struct {
	svc           *application.PaymentService
	resultTimeout time.Duration
}

// NewPaymentHandler 创建支付 HTTP 处理器，resultTimeout 为等待任务结果的上限
func NewPaymentHandler(svc *application.PaymentService, resultTimeout time.Duration) *PaymentHandler {
	return &PaymentHandler{svc: svc, resultTimeout: resultTimeout}
}

// RegisterRoutes 注册路由
func (h *PaymentHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/payment/:id", h.Pay)
}

// PayRequest 支付请求
type PayRequest struct {
	Number string `json:"number" binding:"required"`
	Month  string `json:"month" binding:"required"`
	Year   string `json:"year" binding:"required"`
	Code   string `json:"code" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

// Pay 提交支付并阻塞等待结果
func (h *PaymentHandler) Pay(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.Error(c, "invalid order id")
		return
	}
	orderID := uint(id)

	var req PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	results, err := h.svc.Enqueue(c.Request.Context(), orderID, domain.Card{
		Number: req.Number,
		Month:  req.Month,
		Year:   req.Year,
		Code:   req.Code,
		Name:   req.Name,
	})
	if err != nil {
		if err == domain.ErrQueueFull {
			response.ErrorWithStatus(c, http.StatusServiceUnavailable, err.Error(), "")
			return
		}
		response.Error(c, err.Error())
		return
	}

	select {
	case result := <-results:
		if result.Err != nil {
			switch result.Err {
			case domain.ErrPaymentDeclined:
				response.Error(c, result.Err.Error())
			case orderdomain.ErrOrderNotFound:
				response.ErrorWithStatus(c, http.StatusNotFound, result.Err.Error(), "")
			default:
				logger.Error(c.Request.Context(), "Payment failed", "order_id", orderID, "error", result.Err)
				response.ErrorWithStatus(c, http.StatusInternalServerError, result.Err.Error(), "")
			}
			return
		}
		response.Success(c, gin.H{"orderId": orderID})
	case <-time.After(h.resultTimeout):
		logger.Warn(c.Request.Context(), "Payment result wait timed out", "order_id", orderID)
		response.Error(c, "payment processing timed out")
	}
}
