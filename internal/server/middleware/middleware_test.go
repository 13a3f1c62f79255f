package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"polls-service/internal/server/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTokens struct{}

func (stubTokens) ParseToken(token string) (*service.Claims, error) {
	switch token {
	case "voter":
		return &service.Claims{UserID: 1, Username: "voter"}, nil
	case "staff":
		return &service.Claims{UserID: 2, Username: "admin", IsStaff: true}, nil
	}
	return nil, service.ErrInvalidCredentials
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(stubTokens{}))
	handlers = append(handlers, func(c *gin.Context) {
		name := "anonymous"
		if u, err := GetUserFromContext(c.Request.Context()); err == nil {
			name = u.Username
		}
		c.String(http.StatusOK, name)
	})
	r.GET("/p/:id", handlers...)
	return r
}

func get(r http.Handler, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(req)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func TestAuthenticate(t *testing.T) {
	r := newRouter()

	assert.Equal(t, "anonymous", get(r, "/p/1", nil).Body.String())
	assert.Equal(t, "voter", get(r, "/p/1", bearer("voter")).Body.String())
	assert.Equal(t, "anonymous", get(r, "/p/1", bearer("forged")).Body.String())

	rr := get(r, "/p/1", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "staff"})
	})
	assert.Equal(t, "admin", rr.Body.String())
}

func TestRequireLoginRedirects(t *testing.T) {
	r := newRouter(RequireLogin("/auth/login"))

	rr := get(r, "/p/5?x=1", nil)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/auth/login?next=%2Fp%2F5%3Fx%3D1", rr.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, get(r, "/p/5", bearer("voter")).Code)
}

func TestRequireAuth(t *testing.T) {
	r := newRouter(RequireAuth())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/p/1", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/p/1", bearer("voter")).Code)
}

func TestRequireStaff(t *testing.T) {
	r := newRouter(RequireStaff())

	assert.Equal(t, http.StatusUnauthorized, get(r, "/p/1", nil).Code)
	assert.Equal(t, http.StatusForbidden, get(r, "/p/1", bearer("voter")).Code)
	assert.Equal(t, http.StatusOK, get(r, "/p/1", bearer("staff")).Code)
}

type countingLimiter struct {
	counts map[string]int
	err    error
}

func (l *countingLimiter) Allow(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{counts: map[string]int{}}
	r := newRouter(RateLimit(limiter, 2, time.Minute))

	assert.Equal(t, http.StatusOK, get(r, "/p/1", bearer("voter")).Code)
	assert.Equal(t, http.StatusOK, get(r, "/p/2", bearer("voter")).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/p/3", bearer("voter")).Code)

	// other identities have their own budget
	assert.Equal(t, http.StatusOK, get(r, "/p/1", bearer("staff")).Code)
	assert.Equal(t, http.StatusOK, get(r, "/p/1", nil).Code)
	require.Len(t, limiter.counts, 3)
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := newRouter(RateLimit(&countingLimiter{err: errors.New("redis down")}, 1, time.Minute))
	assert.Equal(t, http.StatusOK, get(r, "/p/1", nil).Code)

	r = newRouter(RateLimit(nil, 1, time.Minute))
	assert.Equal(t, http.StatusOK, get(r, "/p/1", nil).Code)
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"https://polls.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rr := get(r, "/x", func(req *http.Request) { req.Header.Set("Origin", "https://polls.example.com") })
	assert.Equal(t, "https://polls.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	rr = get(r, "/x", func(req *http.Request) { req.Header.Set("Origin", "https://evil.example.com") })
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
