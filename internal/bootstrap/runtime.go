// Package bootstrap wires the process-wide runtime: database, redis and tracing.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ServiceVersion is reported in trace resources.
var ServiceVersion = "dev"

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData fills an empty development database with demo content.
	SeedDemoData bool
	DemoUsers    int
	DemoPosts    int
}

// Runtime holds the shared dependencies a server is built from.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitRuntime connects to DB and Redis, starts tracing and optionally seeds
// demo data. Redis failures are tolerated and leave Runtime.Redis nil.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	shutdown, err := observability.InitTracing(TracingConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		_ = shutdown(context.Background())
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	rt := &Runtime{
		DB:              db,
		Redis:           cache.InitRedis(cfg.RedisURL),
		shutdownTracing: shutdown,
	}

	if opts.SeedDemoData {
		if err := SeedIfEmpty(cfg, db, opts); err != nil {
			_ = rt.Close(context.Background())
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return rt, nil
}

// Close flushes pending spans. The DB and redis client are owned by the server.
func (r *Runtime) Close(ctx context.Context) error {
	if r == nil || r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}

// TracingConfig maps application config onto the tracer settings.
func TracingConfig(cfg *config.Config) observability.TracingConfig {
	return observability.TracingConfig{
		ServiceName:    "chirp-api",
		ServiceVersion: ServiceVersion,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   1.0,
	}
}

// SeedIfEmpty seeds demo data in development when no user exists yet.
func SeedIfEmpty(cfg *config.Config, db *gorm.DB, opts Options) error {
	if cfg == nil || db == nil || cfg.Env != "development" {
		return nil
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.Info("demo seed skipped, database not empty", slog.Int64("users", users))
		return nil
	}

	numUsers, numPosts := opts.DemoUsers, opts.DemoPosts
	if numUsers <= 0 {
		numUsers = seed.Presets["minimal"].Users
	}
	if numPosts <= 0 {
		numPosts = seed.Presets["minimal"].Posts
	}
	return seed.Seed(db, seed.Options{NumUsers: numUsers, NumPosts: numPosts, MaxDays: 30})
}
