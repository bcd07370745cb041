// Package bootstrap wires up runtime dependencies for the cmd entrypoints.
package bootstrap

import (
	"context"
	"fmt"
	"log"
	"strings"

	"homestead/internal/cache"
	"homestead/internal/config"
	"homestead/internal/database"
	"homestead/internal/observability"
	"homestead/internal/repository"
	"homestead/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SkipDevSuperuser disables the development superuser bootstrap,
	// used by one-shot tools that only need a DB handle.
	SkipDevSuperuser bool
}

// InitRuntime connects to the database and Redis, starts tracing when
// enabled, and provisions the development superuser.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// May yield a nil client when Redis is unreachable; callers degrade.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if cfg.TracingEnabled {
		if _, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:  "homestead-api",
			Environment:  cfg.Env,
			Enabled:      true,
			Exporter:     cfg.TracingExporter,
			OTLPEndpoint: cfg.OTLPEndpoint,
			SamplerRatio: cfg.TraceSampleRate,
		}); err != nil {
			log.Printf("WARNING: tracing init failed: %v", err)
		}
	}

	if !opts.SkipDevSuperuser {
		if err := ensureDevSuperuser(cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to bootstrap development superuser: %w", err)
		}
	}

	return db, r, nil
}

// ensureDevSuperuser creates the configured admin account once, in
// development only, so a fresh checkout has a working login.
func ensureDevSuperuser(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}
	email := strings.TrimSpace(cfg.DevSuperuserEmail)
	if email == "" || cfg.DevSuperuserPassword == "" {
		return nil
	}

	ctx := context.Background()
	accountRepo := repository.NewAccountRepository(db)
	existing, err := accountRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	accounts := service.NewAccountService(accountRepo, nil, nil, nil)
	if _, err := accounts.CreateSuperuser(ctx, email, "Homestead Admin", cfg.DevSuperuserPassword); err != nil {
		return err
	}
	log.Printf("Bootstrapped development superuser %s", strings.ToLower(email))
	return nil
}
