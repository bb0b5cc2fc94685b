package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"blog-cms/helper"
	"blog-cms/metrics"
	"blog-cms/middleware"
	"blog-cms/models"
	"blog-cms/services"
)

// RouterDeps carries everything the HTTP layer is built from.
type RouterDeps struct {
	DB             *gorm.DB
	Log            *slog.Logger
	Helper         *helper.HTTPHelper
	Tokens         services.TokenService
	Auth           services.AuthService
	Posts          services.PostService
	Categories     services.CategoryService
	Metrics        metrics.Recorder
	MetricsHandler http.Handler
	AuthLimiter    *middleware.RateLimiter
	CORSOrigins    []string
}

func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	h := deps.Helper
	rec := deps.Metrics
	if rec == nil {
		rec = metrics.Noop{}
	}

	cors, err := middleware.CORS(deps.CORSOrigins)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		middleware.RequestLogger(deps.Log),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			deps.Log.ErrorContext(c.Request.Context(), "panic recovered", "panic", recovered)
			h.SendError(c, "internal server error", h.EmptyJsonMap(), http.StatusInternalServerError, "INTERNAL_ERROR")
		}),
		middleware.Metrics(rec),
		cors,
		middleware.SessionMiddleware(deps.Tokens),
	)

	authHandler := NewAuthHandler(deps.Auth, h)
	postHandler := NewPostHandler(deps.Posts, h)
	categoryHandler := NewCategoryHandler(deps.Categories, h)
	healthHandler := NewHealthHandler(deps.DB, h)

	router.GET("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			limit := func(c *gin.Context) { c.Next() }
			if deps.AuthLimiter != nil {
				limit = deps.AuthLimiter.Middleware()
			}
			auth.POST("/register", limit, authHandler.Register)
			auth.POST("/login", limit, authHandler.Login)
			auth.GET("/me", middleware.Authenticated(h, authHandler.Profile))
		}

		posts := api.Group("/posts", middleware.RequireRole(h, models.RoleUser, models.RoleAdmin))
		{
			posts.GET("", postHandler.GetPosts)
			posts.GET("/:id", postHandler.GetPost)
			posts.POST("", middleware.Authenticated(h, postHandler.CreatePost))
			posts.PUT("/:id", middleware.Authenticated(h, postHandler.UpdatePost))
			posts.DELETE("/:id", middleware.Authenticated(h, postHandler.DeletePost))
		}

		categories := api.Group("/categories", middleware.RequireRole(h, models.RoleUser, models.RoleAdmin))
		{
			categories.GET("", categoryHandler.GetCategories)
			categories.GET("/:id", categoryHandler.GetCategory)

			admin := categories.Group("", middleware.RequireRole(h, models.RoleAdmin))
			admin.POST("", categoryHandler.CreateCategory)
			admin.PUT("/:id", categoryHandler.UpdateCategory)
			admin.DELETE("/:id", categoryHandler.DeleteCategory)
		}
	}

	return router, nil
}
