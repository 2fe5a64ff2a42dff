package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/semantic-faq/internal/domain/auth"
	"github.com/yanqian/semantic-faq/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
// Corpus mutation routes require a bearer token when auth is enabled.
func NewRouter(cfg *config.Config, handler *Handler, authHandler *AuthHandler, authSvc auth.Service) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", handler.Health)

	api := router.Group("/api/v1")
	if authHandler != nil {
		authGroup := api.Group("/auth")
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		if authSvc != nil {
			authGroup.GET("/me", authMiddleware(authSvc), authHandler.Me)
		}
	}

	faqGroup := api.Group("/faq")
	{
		faqGroup.POST("/ask", handler.Ask)
		faqGroup.POST("/similar", handler.Similar)
		faqGroup.GET("/questions", handler.ListQuestions)
		faqGroup.GET("/categories", handler.Categories)
		faqGroup.GET("/search", handler.Search)
		faqGroup.GET("/trending", handler.Trending)
		faqGroup.GET("/stats", handler.Stats)
	}

	editor := faqGroup.Group("")
	if cfg.Auth.Enabled && authSvc != nil {
		editor.Use(authMiddleware(authSvc))
	}
	editor.POST("/questions", handler.AddQuestion)
	editor.POST("/rebuild", handler.Rebuild)

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds(), "request_id", c.GetString(requestIDKey))
	}
}
