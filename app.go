package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"blog-cms/config"
	"blog-cms/handlers"
	"blog-cms/helper"
	"blog-cms/metrics"
	"blog-cms/middleware"
	"blog-cms/repositories"
	"blog-cms/services"
)

// application is the fully wired HTTP layer. Close releases background workers.
type application struct {
	Router *gin.Engine
	Auth   services.AuthService
	close  func()
}

func (a *application) Close() {
	if a.close != nil {
		a.close()
	}
}

func newApplication(cfg *config.Config, db *gorm.DB, log *slog.Logger, reg *prometheus.Registry) (*application, error) {
	collector := metrics.NewCollector(reg)
	h := helper.NewHTTPHelper(log)

	tokens := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration(),
		services.WithTokenLogger(log),
		services.WithTokenMetrics(collector),
	)

	userRepo := repositories.NewUserRepository(db)
	postRepo := repositories.NewPostRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)

	auth, err := services.NewAuthService(userRepo, services.NewBcryptHasher(0), tokens, log, collector)
	if err != nil {
		return nil, err
	}

	limiter := middleware.NewRateLimiter(
		middleware.PerMinute(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst), h, log)

	router, err := handlers.NewRouter(handlers.RouterDeps{
		DB:             db,
		Log:            log,
		Helper:         h,
		Tokens:         tokens,
		Auth:           auth,
		Posts:          services.NewPostService(postRepo, categoryRepo, services.NewContentSanitizer(), log),
		Categories:     services.NewCategoryService(categoryRepo, log),
		Metrics:        collector,
		MetricsHandler: metrics.Handler(reg),
		AuthLimiter:    limiter,
		CORSOrigins:    cfg.CORS.AllowedOrigins,
	})
	if err != nil {
		limiter.Stop()
		return nil, err
	}

	return &application{Router: router, Auth: auth, close: limiter.Stop}, nil
}

// newRegistry returns a registry that also exposes Go runtime and process metrics.
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
