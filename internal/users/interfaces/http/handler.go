package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/storefront/internal/users/application"
	"github.com/wyfcoding/storefront/internal/users/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/response"
)

// UsersHandler 用户 HTTP 处理器
type UsersHandler struct {
	svc *application.UsersService
}

// NewUsersHandler 创建用户 HTTP 处理器
func NewUsersHandler(svc *application.UsersService) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *UsersHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/sign-in", h.SignIn)
	router.POST("/sign-up", h.SignUp)
	router.POST("/sign-out", h.SignOut)

	profile := router.Group("/profile", RequireAuth())
	profile.GET("", h.Profile)
	profile.POST("", h.UpdateProfile)
	profile.POST("/password", h.ChangePassword)
	profile.POST("/avatar", h.UpdateAvatar)
}

// SignInRequest 登录请求
type SignInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignIn 登录
func (h *UsersHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	session := CurrentSession(c)
	if err := h.svc.Login(c.Request.Context(), session, req.Username, req.Password); err != nil {
		if err == domain.ErrInvalidCredentials {
			response.ErrorWithStatus(c, http.StatusForbidden, err.Error(), "")
			return
		}
		logger.Error(c.Request.Context(), "Sign-in failed", "username", req.Username, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, nil)
}

// SignUpRequest 注册请求
type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// SignUp 注册并登录
func (h *UsersHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	session := CurrentSession(c)
	if err := h.svc.Register(c.Request.Context(), session, req.Name, req.Username, req.Password); err != nil {
		if err == domain.ErrUsernameTaken {
			response.Error(c, err.Error())
			return
		}
		logger.Error(c.Request.Context(), "Sign-up failed", "username", req.Username, "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, nil)
}

// SignOut 退出登录，会话令牌保留
func (h *UsersHandler) SignOut(c *gin.Context) {
	session := CurrentSession(c)
	if session == nil {
		response.Success(c, nil)
		return
	}
	if err := h.svc.Logout(c.Request.Context(), session); err != nil {
		logger.Error(c.Request.Context(), "Sign-out failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
		return
	}
	response.Success(c, nil)
}

// Profile 查看资料
func (h *UsersHandler) Profile(c *gin.Context) {
	session := CurrentSession(c)
	view, err := h.svc.Profile(c.Request.Context(), *session.UserID)
	if err != nil {
		h.writeProfileError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateProfileRequest 资料更新请求
type UpdateProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
}

// UpdateProfile 更新资料
func (h *UsersHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	session := CurrentSession(c)
	view, err := h.svc.UpdateProfile(c.Request.Context(), *session.UserID, application.ProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		h.writeProfileError(c, err)
		return
	}
	response.Success(c, view)
}

// ChangePasswordRequest 改密请求
type ChangePasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// ChangePassword 修改口令
func (h *UsersHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	session := CurrentSession(c)
	if err := h.svc.ChangePassword(c.Request.Context(), *session.UserID, req.Password); err != nil {
		h.writeProfileError(c, err)
		return
	}
	response.Success(c, nil)
}

// UpdateAvatarRequest 头像更新请求，仅记录路径
type UpdateAvatarRequest struct {
	Src string `json:"src" binding:"required"`
	Alt string `json:"alt"`
}

// UpdateAvatar 更换头像
func (h *UsersHandler) UpdateAvatar(c *gin.Context) {
	var req UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err.Error())
		return
	}

	session := CurrentSession(c)
	view, err := h.svc.UpdateAvatar(c.Request.Context(), *session.UserID, req.Src, req.Alt)
	if err != nil {
		h.writeProfileError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *UsersHandler) writeProfileError(c *gin.Context, err error) {
	switch err {
	case domain.ErrUserNotFound, domain.ErrProfileNotFound:
		response.ErrorWithStatus(c, http.StatusNotFound, err.Error(), "")
	default:
		logger.Error(c.Request.Context(), "Profile operation failed", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, err.Error(), "")
	}
}
