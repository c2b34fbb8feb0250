package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipehub/internal/config"
	"recipehub/internal/db"
	"recipehub/internal/logging"
	"recipehub/internal/middleware"
	"recipehub/internal/router"
	"recipehub/internal/server"
	"recipehub/internal/services"
	"recipehub/internal/store"
	"recipehub/internal/store/memory"
	"recipehub/internal/store/postgres"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Pretty: cfg.Logging.Pretty})
	if !cfg.Logging.Pretty {
		gin.SetMode(gin.ReleaseMode)
	}
	if !cfg.Auth.BearerEnabled() {
		log.Warn().Msg("JWT_SECRET is empty, bearer authentication is disabled")
	}

	st, closeStore, err := openStore(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer closeStore()

	notifications := services.NewNotificationService(st, cfg.Notifications.Retention)
	engagement := services.NewEngagementService(st, notifications)
	discovery, err := services.NewDiscoveryService(st, cfg.Cache.CategoriesTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create categories cache")
	}
	mail := services.NewMailService(cfg.Mail)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	engine, err := router.New(router.Deps{
		Store:         st,
		Recipes:       services.NewRecipeService(st, engagement, discovery, mail, cfg.Server.SiteURL),
		Engagement:    engagement,
		Discovery:     discovery,
		Comments:      services.NewCommentService(st, notifications),
		Social:        services.NewSocialService(st, notifications),
		Notifications: notifications,
		RateLimiter:   limiter,
		SessionSecret: cfg.Auth.SessionSecret,
		JWTSecret:     cfg.Auth.JWTSecret,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sup := server.NewSupervisor("recipehub", shutdownTimeout)
	sup.Add(server.NewHTTPService(srv, shutdownTimeout))
	sup.Add(services.NewReaper(notifications, cfg.Notifications.ReaperInterval))
	if limiter.Enabled() {
		sup.Add(limiter)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Int("port", cfg.Server.Port).Str("driver", cfg.Database.Driver).Msg("RecipeHub server starting")
	if err := sup.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Supervisor stopped")
	}

	mail.Wait()
	log.Info().Msg("RecipeHub server stopped")
}

func openStore(cfg config.DatabaseConfig) (store.Store, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	gdb, err := db.Open(db.Options{
		DSN:             cfg.URL,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		LogSQL:          cfg.LogSQL,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, nil, err
	}

	closeFn := func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return postgres.New(gdb), closeFn, nil
}
