package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/storefront/internal/users/domain"
)

type memorySessionRepo struct {
	sessions map[string]domain.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]domain.Session)}
}

func (m *memorySessionRepo) Save(_ context.Context, session *domain.Session) error {
	m.sessions[session.Token] = *session
	return nil
}

func (m *memorySessionRepo) Get(_ context.Context, token string) (*domain.Session, error) {
	session, ok := m.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (m *memorySessionRepo) Delete(_ context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}

func newTestRouter(repo domain.SessionRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SessionMiddleware(repo, "storefront_session", time.Hour))
	router.GET("/whoami", func(c *gin.Context) {
		session := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{"token": session.Token, "authenticated": session.Authenticated()})
	})
	router.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestSessionIssuedAtFirstContact(t *testing.T) {
	repo := newMemorySessionRepo()
	router := newTestRouter(repo)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "storefront_session", cookies[0].Name)
	assert.Contains(t, repo.sessions, cookies[0].Value)
}

func TestSessionReusedOnReturnVisit(t *testing.T) {
	repo := newMemorySessionRepo()
	router := newTestRouter(repo)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	cookie := first.Result().Cookies()[0]

	second := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(second, req)

	assert.Equal(t, http.StatusOK, second.Code)
	// 回访不签发新令牌
	assert.Empty(t, second.Result().Cookies())
	assert.Len(t, repo.sessions, 1)
}

func TestUnknownTokenGetsFreshSession(t *testing.T) {
	repo := newMemorySessionRepo()
	router := newTestRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "storefront_session", Value: "expired-token"})
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.NotEqual(t, "expired-token", cookies[0].Value)
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	repo := newMemorySessionRepo()
	router := newTestRouter(repo)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAuthAllowsBoundSession(t *testing.T) {
	repo := newMemorySessionRepo()
	router := newTestRouter(repo)

	userID := uint(5)
	repo.sessions["bound"] = domain.Session{Token: "bound", UserID: &userID, CreatedAt: time.Now()}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.AddCookie(&http.Cookie{Name: "storefront_session", Value: "bound"})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
