package handlers

import (
	"errors"
	"net/http"
	"strings"

	"polls-service/internal/ports/models"
	"polls-service/internal/server/middleware"
	"polls-service/internal/server/service"
	"polls-service/pkg/response"

	"github.com/gin-gonic/gin"
)

const loginFailedMessage = "Please enter a correct username and password."

type AuthHandler struct {
	authService  *service.AuthService
	cookieMaxAge int
	secureCookie bool
}

func NewAuthHandler(authService *service.AuthService, cookieMaxAge int, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
	}
}

// @Summary Register a new user
// @Description Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register Request"
// @Success 201 {object} models.UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, response.ErrCodeParamInvalid, err.Error())
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, service.ToUserResponse(user))
}

// @Summary User login
// @Description Authenticate user and return JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login Request"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, response.ErrCodeParamInvalid, err.Error())
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// LoginPage renders the login form
func (h *AuthHandler) LoginPage(c *gin.Context) {
	page(c, http.StatusOK, "login.tmpl", gin.H{"Title": "Log in", "Next": safeNext(c.Query("next"))})
}

// LoginForm authenticates the form post and sets the session cookie
func (h *AuthHandler) LoginForm(c *gin.Context) {
	next := safeNext(c.PostForm("next"))

	var req models.LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		page(c, http.StatusOK, "login.tmpl", gin.H{
			"Title": "Log in", "Next": next, "Username": req.Username, "ErrorMessage": loginFailedMessage,
		})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req, c.ClientIP())
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		page(c, http.StatusOK, "login.tmpl", gin.H{
			"Title": "Log in", "Next": next, "Username": req.Username, "ErrorMessage": loginFailedMessage,
		})
		return
	case err != nil:
		internalErrorPage(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, resp.Token, h.cookieMaxAge, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, next)
}

// Logout clears the session cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if user := currentUser(c); user != nil {
		h.authService.Logout(c.Request.Context(), user.Username, c.ClientIP())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, "/")
}

// safeNext keeps redirects on this site
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
