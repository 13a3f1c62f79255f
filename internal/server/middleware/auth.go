package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"polls-service/internal/ports/models"
	"polls-service/internal/server/service"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookie holds the JWT for browser sessions
const AccessTokenCookie = "access_token"

type contextKey string

const userContextKey = contextKey("user")

// AuthUser is the identity attached to an authenticated request
type AuthUser struct {
	ID       uint
	Username string
	IsStaff  bool
}

type TokenParser interface {
	ParseToken(token string) (*service.Claims, error)
}

// Authenticate attaches the user of a valid bearer token or access_token
// cookie to the request. Anonymous requests pass through untouched.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := tokens.ParseToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		user := &AuthUser{ID: claims.UserID, Username: claims.Username, IsStaff: claims.IsStaff}
		c.Set("user_id", user.ID)
		ctx := context.WithValue(c.Request.Context(), userContextKey, user)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAuth rejects anonymous API requests with 401
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := GetUserFromContext(c.Request.Context()); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "Authorization token required",
			})
			return
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous page requests to the login form
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := GetUserFromContext(c.Request.Context()); err != nil {
			target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireStaff rejects authenticated non-staff users with 403
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "Authorization token required",
			})
			return
		}
		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Code:    http.StatusForbidden,
				Message: "Staff access required",
			})
			return
		}
		c.Next()
	}
}

// GetUserFromContext retrieves the authenticated user from context
func GetUserFromContext(ctx context.Context) (*AuthUser, error) {
	user, ok := ctx.Value(userContextKey).(*AuthUser)
	if !ok {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.EqualFold(bearerToken[:7], "Bearer ") {
		return bearerToken[7:]
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}
