// Package server contains the HTTP handlers for the chirp API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chirp/internal/auth"
	"chirp/internal/cache"
	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/repository"
	"chirp/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *auth.JWTManager
	rateLimiter    *middleware.RateLimiter
	assets         *service.AssetService

	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	postRepo    repository.PostRepository
	likeRepo    repository.LikeRepository
	commentRepo repository.CommentRepository

	userService    *service.UserService
	followService  *service.FollowService
	postService    *service.PostService
	likeService    *service.LikeService
	commentService *service.CommentService
	feedService    *service.FeedService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
// redisClient may be nil; logout revocation and rate limits are then disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("server requires config and database")
	}

	var revocations auth.RevocationStore
	if redisClient != nil {
		revocations = auth.NewRedisRevocationStore(redisClient)
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("chirp-api"),
		tokens:         auth.NewJWTManager(cfg, revocations),
		rateLimiter:    middleware.NewRateLimiter(redisClient, cfg.Env, middleware.FailOpen),
		assets:         service.NewAssetService(cfg),
		userRepo:       repository.NewUserRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		postRepo:       repository.NewPostRepository(db),
		likeRepo:       repository.NewLikeRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
	}

	s.userService = service.NewUserService(s.userRepo)
	s.followService = service.NewFollowService(s.followRepo, s.userRepo, cfg.AssetHost)
	s.postService = service.NewPostService(s.postRepo, s.assets, cfg.ImageUploadPolicy)
	s.likeService = service.NewLikeService(s.likeRepo, s.postRepo)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, cfg.AssetHost)
	s.feedService = service.NewFeedService(s.postRepo, s.likeRepo, s.followRepo, s.userRepo, cfg)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing must run before ContextMiddleware so the trace id reaches the logger.
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	perMinute := s.config.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 100
	}
	app.Use(limiter.New(limiter.Config{
		Max:        perMinute,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	uploadDir := s.config.UploadDir
	if uploadDir == "" {
		uploadDir = service.DefaultUploadDir
	}
	app.Static("/"+service.UploadURLPrefix, uploadDir, fiber.Static{
		MaxAge: 3600,
	})

	api := app.Group("/api")
	requireAuth := middleware.AuthRequired(s.tokens)
	optionalAuth := middleware.OptionalAuth(s.tokens)

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/signup", s.rateLimiter.Limit("signup", 3, 10*time.Minute), s.Signup)
	authGroup.Post("/login", s.rateLimiter.Limit("login", 10, 5*time.Minute), s.Login)
	authGroup.Post("/logout", requireAuth, s.Logout)

	// User routes; /me routes are registered before /:id
	users := api.Group("/users")
	users.Get("/me", requireAuth, s.GetMe)
	users.Put("/me", requireAuth, s.UpdateMe)
	users.Post("/me/avatar", requireAuth, s.rateLimiter.Limit("avatar", 10, time.Minute), s.UploadAvatar)
	users.Get("/:id/profile", optionalAuth, s.GetProfile)
	users.Get("/:id/followers", s.GetFollowers)
	users.Get("/:id/following", s.GetFollowing)
	users.Get("/:id/stats", s.GetFollowStats)

	// Feed and post routes
	posts := api.Group("/posts")
	posts.Get("/", optionalAuth, s.GetGlobalFeed)
	posts.Get("/me", requireAuth, s.GetOwnFeed)
	posts.Get("/following", requireAuth, s.GetFollowingFeed)
	posts.Get("/liked", requireAuth, s.GetLikedFeed)
	posts.Post("/", requireAuth, s.rateLimiter.Limit("create_post", 10, time.Minute), s.CreatePost)
	posts.Delete("/:id", requireAuth, s.DeletePost)

	// Engagement routes
	posts.Post("/:id/like", requireAuth, s.LikePost)
	posts.Delete("/:id/like", requireAuth, s.UnlikePost)
	posts.Get("/:id/like", requireAuth, s.CheckLike)
	posts.Get("/:id/likes", s.GetLikeCount)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", requireAuth, s.rateLimiter.Limit("create_comment", 30, time.Minute), s.CreateComment)

	// Subscription routes
	subs := api.Group("/subscriptions", requireAuth)
	subs.Post("/", s.Subscribe)
	subs.Get("/check/:userId", s.CheckSubscription)
	subs.Delete("/:userId", s.Unsubscribe)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only backs rate limits and logout, so its absence degrades but does not fail readiness.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "chirp API",
		BodyLimit: s.bodyLimit(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// bodyLimit allows a multipart post carrying maxImagesPerPost images of the configured size.
func (s *Server) bodyLimit() int {
	perFile := s.config.ImageMaxUploadBytes()
	if perFile <= 0 {
		perFile = int64(service.DefaultImageMaxUploadSizeMB) << 20
	}
	return int(perFile)*maxImagesPerPost + 1<<20
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
