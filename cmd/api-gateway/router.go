package main

import (
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/gpa-transcript-api/api/swagger"
	"github.com/noah-isme/gpa-transcript-api/internal/handler"
	"github.com/noah-isme/gpa-transcript-api/internal/middleware"
	"github.com/noah-isme/gpa-transcript-api/internal/service"
	"github.com/noah-isme/gpa-transcript-api/pkg/config"
	"github.com/noah-isme/gpa-transcript-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/gpa-transcript-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/gpa-transcript-api/pkg/middleware/requestid"
)

type routes struct {
	auth       *handler.AuthHandler
	courses    *handler.CourseHandler
	transcript *handler.TranscriptHandler
	exports    *handler.ExportHandler
	metrics    *handler.MetricsHandler
	tokens     middleware.TokenValidator
	metricsSvc *service.MetricsService
}

func newRouter(cfg *config.Config, logr *zap.Logger, h routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(h.metricsSvc))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/signup", h.auth.Signup)
	auth.POST("/login", h.auth.Login)

	api.GET("/exports/:token", h.exports.Download)

	protected := api.Group("")
	protected.Use(middleware.JWT(h.tokens))
	protected.GET("/auth/me", h.auth.Me)
	protected.GET("/courses", h.courses.List)
	protected.POST("/courses", h.courses.Create)
	protected.DELETE("/courses/:id", h.courses.Delete)
	protected.GET("/transcript", h.transcript.Get)
	protected.POST("/transcript/exports", h.exports.Create)

	return r
}
