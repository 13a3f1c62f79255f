package server

import (
	"context"
	"fmt"
	"time"

	"polls-service/internal/config"
	"polls-service/internal/ports/models"
	"polls-service/internal/server/handlers"
	"polls-service/internal/server/middleware"
	"polls-service/internal/server/repository"
	"polls-service/internal/server/service"
	"polls-service/internal/server/templates"
	"polls-service/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the external backends of the app. Only DB is required.
type Dependencies struct {
	DB        *gorm.DB
	Limiter   service.RateLimiter
	Publisher service.VotePublisher
	Images    service.ImageStore
	AuthLog   service.AuthEventLogger
	Clock     service.Clock
}

type App struct {
	router *gin.Engine
	hub    *ws.Hub
}

// NewApp wires repositories, services and handlers into a gin engine
func NewApp(cfg *config.Config, deps Dependencies) (*App, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("server: database is required")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}

	tmpl, err := templates.Load()
	if err != nil {
		return nil, fmt.Errorf("server: load templates: %w", err)
	}

	questionRepo := repository.NewQuestionRepository(deps.DB)
	voteRepo := repository.NewVoteRepository(deps.DB)
	userRepo := repository.NewUserRepository(deps.DB)

	hub := ws.NewHub()

	questionService := service.NewQuestionService(questionRepo, voteRepo, deps.Images, deps.Clock)
	voteService := service.NewVoteService(questionRepo, voteRepo, deps.Publisher, hub, deps.Clock)
	authService := service.NewAuthService(userRepo, deps.AuthLog, cfg.JWT.Secret, cfg.JWT.ExpirationTime, deps.Clock)

	h := Handlers{
		Poll:  handlers.NewPollHandler(questionService, voteService),
		API:   handlers.NewAPIHandler(questionService, voteService),
		Admin: handlers.NewAdminHandler(questionService),
		Auth:  handlers.NewAuthHandler(authService, int(cfg.JWT.ExpirationTime.Seconds()), cfg.Server.CookieSecure),
		Results: ws.ServeResults(hub, func(ctx context.Context, id uint) (*models.QuestionResults, error) {
			return questionService.Results(ctx, id)
		}),
	}

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(middleware.Recovery(), middleware.LogApi(), middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.Authenticate(authService))

	SetupRoutes(router, h, RouteOptions{
		Limiter:     deps.Limiter,
		RateLimit:   cfg.RateLimit,
		SlowRequest: time.Second,
	})

	return &App{router: router, hub: hub}, nil
}

// Handler returns the http.Handler serving every route
func (a *App) Handler() *gin.Engine {
	return a.router
}

// Start runs background workers until ctx is done
func (a *App) Start(ctx context.Context) {
	go a.hub.Run(ctx)
}
