package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"polls-service/internal/ports/models"
	"polls-service/internal/server/middleware"
	"polls-service/pkg/response"

	"github.com/gin-gonic/gin"
)

var errInvalidID = errors.New("invalid id")

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

func currentUser(c *gin.Context) *middleware.AuthUser {
	user, err := middleware.GetUserFromContext(c.Request.Context())
	if err != nil {
		return nil
	}
	return user
}

func userID(c *gin.Context) uint {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return 0
}

// writeError sends the standard JSON error body
func writeError(c *gin.Context, status, code int, details string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Code:    code,
		Message: response.Message(code),
		Details: details,
	})
}

func writeInternalError(c *gin.Context, err error) {
	slog.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	writeError(c, http.StatusInternalServerError, response.ErrCodeInternal, "")
}

// page renders an HTML template with the layout fields filled in
func page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["User"]; !ok {
		data["User"] = currentUser(c)
	}
	if _, ok := data["Flash"]; !ok {
		data["Flash"] = popFlash(c)
	}
	c.HTML(status, name, data)
}

func notFoundPage(c *gin.Context) {
	page(c, http.StatusNotFound, "error.tmpl", gin.H{
		"Title":   "Not found",
		"Status":  http.StatusNotFound,
		"Message": response.Message(response.ErrCodeQuestionMissing),
	})
}

func internalErrorPage(c *gin.Context, err error) {
	slog.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	page(c, http.StatusInternalServerError, "error.tmpl", gin.H{
		"Title":   "Server error",
		"Status":  http.StatusInternalServerError,
		"Message": response.Message(response.ErrCodeInternal),
	})
}
