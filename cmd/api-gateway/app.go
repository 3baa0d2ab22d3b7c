package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/gpa-transcript-api/internal/handler"
	"github.com/noah-isme/gpa-transcript-api/internal/repository"
	"github.com/noah-isme/gpa-transcript-api/internal/service"
	"github.com/noah-isme/gpa-transcript-api/internal/transcript"
	"github.com/noah-isme/gpa-transcript-api/pkg/config"
	"github.com/noah-isme/gpa-transcript-api/pkg/storage"
)

type app struct {
	routes    routes
	exportSvc *service.ExportService
}

// newApp wires repositories, services and handlers. A nil redis client runs
// without the course list cache.
func newApp(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client, defaults transcript.Options) (*app, error) {
	metrics := service.NewMetricsService()
	validate := service.NewValidator()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.SnapshotTTL, logr, cfg.Cache.Enabled && redisClient != nil)

	authSvc := service.NewAuthService(repository.NewUserRepository(db), validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "gpa-transcript-api",
	})
	courseSvc := service.NewCourseService(repository.NewCourseRepository(db), cacheSvc, metrics, validate, logr, cfg.Cache.SnapshotTTL)
	transcriptSvc := service.NewTranscriptService(courseSvc, metrics, logr, service.TranscriptConfig{
		Policy:    defaults.Policy,
		Direction: defaults.Direction,
	})

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("prepare export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exportSvc := service.NewExportService(transcriptSvc, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, metrics, validate, logr, nil, nil)

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = cacheRepo.Ping
	}

	return &app{
		routes: routes{
			auth:       handler.NewAuthHandler(authSvc),
			courses:    handler.NewCourseHandler(courseSvc),
			transcript: handler.NewTranscriptHandler(transcriptSvc),
			exports:    handler.NewExportHandler(exportSvc),
			metrics:    handler.NewMetricsHandler(metrics, checks),
			tokens:     authSvc,
			metricsSvc: metrics,
		},
		exportSvc: exportSvc,
	}, nil
}
