package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wyfcoding/storefront/internal/users/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
	"github.com/wyfcoding/storefront/pkg/response"
)

// sessionContextKey 会话在 gin 上下文中的键
const sessionContextKey = "storefront_session"

// SessionMiddleware 首次访问即签发会话令牌，此后按令牌显式查取会话
func SessionMiddleware(sessions domain.SessionRepository, cookieName string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var session *domain.Session

		if token, err := c.Cookie(cookieName); err == nil && token != "" {
			session, err = sessions.Get(c.Request.Context(), token)
			if err != nil && err != domain.ErrSessionNotFound {
				logger.Error(c.Request.Context(), "Failed to load session", "error", err)
				response.ErrorWithStatus(c, http.StatusInternalServerError, "session store unavailable", "")
				c.Abort()
				return
			}
		}

		if session == nil {
			session = &domain.Session{
				Token:     uuid.NewString(),
				CreatedAt: time.Now(),
			}
			if err := sessions.Save(c.Request.Context(), session); err != nil {
				logger.Error(c.Request.Context(), "Failed to create session", "error", err)
				response.ErrorWithStatus(c, http.StatusInternalServerError, "session store unavailable", "")
				c.Abort()
				return
			}
			c.SetCookie(cookieName, session.Token, int(ttl.Seconds()), "/", "", false, true)
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// CurrentSession 取当前请求会话，中间件未建立会话时返回 nil
func CurrentSession(c *gin.Context) *domain.Session {
	value, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, ok := value.(*domain.Session)
	if !ok {
		return nil
	}
	return session
}

// RequireAuth 要求会话已绑定登录用户，否则 403
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).Authenticated() {
			response.ErrorWithStatus(c, http.StatusForbidden, "authentication required", "")
			c.Abort()
			return
		}
		c.Next()
	}
}
