package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/gpa-transcript-api/internal/transcript"
	"github.com/noah-isme/gpa-transcript-api/pkg/cache"
	"github.com/noah-isme/gpa-transcript-api/pkg/config"
	"github.com/noah-isme/gpa-transcript-api/pkg/database"
	"github.com/noah-isme/gpa-transcript-api/pkg/jobs"
	"github.com/noah-isme/gpa-transcript-api/pkg/logger"
)

// @title GPA Transcript API
// @version 1.0.0
// @description Course attempt records, computed transcripts and transcript exports.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy, err := transcript.ParsePolicy(cfg.Transcript.Policy, transcript.DefaultPolicy)
	if err != nil {
		return fmt.Errorf("CGPA_POLICY: %w", err)
	}
	direction, err := transcript.ParseDirection(cfg.Transcript.CarryOverDirection, transcript.DirectionEarlier)
	if err != nil {
		return fmt.Errorf("CARRY_OVER_DIRECTION: %w", err)
	}

	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logr.Info("record store ready", zap.String("driver", cfg.Database.Driver))

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis, 5*time.Second)
		if err != nil {
			logr.Warn("redis unavailable, course list cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
		}
	}

	application, err := newApp(cfg, logr, db, redisClient, transcript.Options{Policy: policy, Direction: direction})
	if err != nil {
		return err
	}
	exportSvc := application.exportSvc

	cleanup := jobs.NewPeriodic("export-cleanup", func(context.Context) error {
		removed, err := exportSvc.Cleanup(0)
		if err != nil {
			return err
		}
		if len(removed) > 0 {
			logr.Info("expired exports removed", zap.Int("count", len(removed)))
		}
		return nil
	}, jobs.PeriodicConfig{Interval: cfg.Exports.CleanupInterval, RunOnStart: true, Logger: logr})
	cleanup.Start(ctx)
	defer cleanup.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, application.routes)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "policy", policy, "carry_over", direction)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
