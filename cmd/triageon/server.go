package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/triageon/triageon/internal/config"
	"github.com/triageon/triageon/internal/domain/prediction"
	"github.com/triageon/triageon/internal/domain/triage"
	"github.com/triageon/triageon/internal/platform/auth"
	"github.com/triageon/triageon/internal/platform/inference"
	"github.com/triageon/triageon/internal/platform/metrics"
	"github.com/triageon/triageon/internal/platform/middleware"
)

const version = "0.1.0"

// newLogger builds the process logger. Development gets a console writer.
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	if cfg.IsDev() {
		w = zerolog.ConsoleWriter{Out: w}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// newPredictionService loads the configured models.
func newPredictionService(cfg *config.Config, logger zerolog.Logger) (*prediction.Service, error) {
	svc := prediction.NewService(logger)
	if err := svc.Configure(prediction.DiabetesModel, inference.Source{
		Path:    cfg.DiabetesModelPath,
		URL:     cfg.DiabetesModelURL,
		Timeout: cfg.ModelTimeout,
	}); err != nil {
		return nil, err
	}
	if err := svc.Configure(prediction.HeartModel, inference.Source{
		Path:    cfg.HeartModelPath,
		URL:     cfg.HeartModelURL,
		Timeout: cfg.ModelTimeout,
	}); err != nil {
		return nil, err
	}
	return svc, nil
}

// newServer wires middleware and routes around the given services.
func newServer(cfg *config.Config, logger zerolog.Logger, predictionSvc *prediction.Service, triageSvc *triage.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger, "/health", "/metrics"))
	if cfg.MetricsEnabled {
		e.Use(metrics.Middleware())
	}
	e.Use(middleware.SecurityHeaders(cfg.TLSEnabled))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	if cfg.RequestTimeout > 0 {
		e.Use(middleware.RequestTimeout(cfg.RequestTimeout, "/metrics"))
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 || rateLimitCfg.BurstSize <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// API groups
	api := e.Group("/api")
	api.Use(middleware.RateLimit(rateLimitCfg))

	predictionGroup := api.Group("/prediction")
	if cfg.ResolvedAuthMode() == config.AuthModeDevelopment {
		predictionGroup.Use(auth.DevAuthMiddleware())
	} else {
		predictionGroup.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}
	predictionGroup.Use(auth.RequireRole(cfg.AuthRoles...))

	health := e.Group("/health")
	health.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	prediction.NewHandler(predictionSvc).RegisterRoutes(predictionGroup, health)
	triage.NewHandler(triageSvc).RegisterRoutes(api)

	if cfg.MetricsEnabled {
		e.GET("/metrics", metrics.Handler())
	}

	return e
}

func runServer(envFile string) error {
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.ResolvedAuthMode() == config.AuthModeDevelopment {
		logger.Warn().Msg("development auth is active: prediction routes accept requests without a token")
	}

	predictionSvc, err := newPredictionService(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load models")
	}
	e := newServer(cfg, logger, predictionSvc, triage.NewService(logger))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = e.Start(addr)
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
