package server

import (
	"net/http"
	"time"

	"polls-service/internal/config"
	"polls-service/internal/server/handlers"
	"polls-service/internal/server/middleware"
	"polls-service/internal/server/service"

	_ "polls-service/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Poll    *handlers.PollHandler
	API     *handlers.APIHandler
	Admin   *handlers.AdminHandler
	Auth    *handlers.AuthHandler
	Results gin.HandlerFunc
}

type RouteOptions struct {
	Limiter     service.RateLimiter
	RateLimit   config.RateLimitConfig
	SlowRequest time.Duration
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(router *gin.Engine, h Handlers, opts RouteOptions) {
	limiter := opts.Limiter
	if !opts.RateLimit.Enabled {
		limiter = nil
	}
	limit := middleware.RateLimit(limiter, opts.RateLimit.Limit, opts.RateLimit.Window)
	login := middleware.RequireLogin("/auth/login")

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check route
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Pages
	router.GET("/", h.Poll.Index)
	router.GET("/:id/", login, h.Poll.Detail)
	router.GET("/:id/results/", h.Poll.Results)
	router.POST("/:id/vote/", login, limit, h.Poll.Vote)

	auth := router.Group("/auth")
	{
		auth.GET("/login", h.Auth.LoginPage)
		auth.POST("/login", limit, h.Auth.LoginForm)
		auth.POST("/logout", h.Auth.Logout)
	}

	router.GET("/ws/questions/:id/results", h.Results)

	// JSON API
	api := router.Group("/api/v1")
	api.Use(middleware.RequestTimer(opts.SlowRequest))
	{
		apiAuth := api.Group("/auth")
		{
			apiAuth.POST("/register", limit, h.Auth.Register)
			apiAuth.POST("/login", limit, h.Auth.Login)
		}

		api.GET("/questions", h.API.ListQuestions)
		api.GET("/questions/:id", middleware.RequireAuth(), h.API.GetQuestion)
		api.GET("/questions/:id/results", h.API.GetResults)
		api.POST("/questions/:id/vote", middleware.RequireAuth(), limit, h.API.Vote)

		admin := api.Group("/admin")
		admin.Use(middleware.RequireStaff())
		{
			admin.GET("/questions", h.Admin.ListQuestions)
			admin.POST("/questions", h.Admin.CreateQuestion)
			admin.PUT("/questions/:id", h.Admin.UpdateQuestion)
			admin.DELETE("/questions/:id", h.Admin.DeleteQuestion)
			admin.POST("/questions/:id/image", h.Admin.UploadImage)
		}
	}
}
