package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/cppla/gram/auth"
	"github.com/cppla/gram/config"
	"github.com/cppla/gram/middleware"
	"github.com/cppla/gram/models"
	"github.com/cppla/gram/routes"
	"github.com/cppla/gram/store"
	"github.com/cppla/gram/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger early
	log, err := utils.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	db, err := config.InitDatabase(cfg, log, models.All()...)
	if err != nil {
		return err
	}

	var limiter middleware.Limiter = middleware.AllowAll{}
	var closers []func()
	if cfg.RateLimitEnabled {
		switch cfg.RateLimitBackend {
		case "memory":
			limiter = middleware.NewMemoryLimiter()
		default:
			client, err := utils.NewRedisClient(cfg)
			if err != nil {
				log.Warn("redis unreachable at startup, rate limits fail open until it recovers", zap.Error(err))
			}
			limiter = utils.NewRedisLimiter(client)
			closers = append(closers, func() { _ = client.Close() })
		}
	}

	r, err := routes.SetupRouter(routes.Deps{
		Config:  cfg,
		Store:   store.NewGormStore(db),
		Hasher:  auth.NewBcryptHasher(cfg.BcryptCost),
		Tokens:  auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL()),
		Limiter: limiter,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	srv := utils.NewServer(":"+cfg.AppPort, r, log)
	srv.OnShutdown(func() {
		for _, c := range closers {
			c()
		}
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log.Info("starting server", zap.String("port", cfg.AppPort), zap.String("db", cfg.DBDriver))
	return srv.Run(context.Background())
}
