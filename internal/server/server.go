// Package server contains the HTTP handlers for the Homestead API.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"homestead/internal/bootstrap"
	"homestead/internal/config"
	"homestead/internal/mailer"
	"homestead/internal/middleware"
	"homestead/internal/models"
	"homestead/internal/repository"
	"homestead/internal/service"
	"homestead/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "homestead-api"
	tokenAudience = "homestead-client"

	accessTokenTTL  = time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

// photoStore is the blob-store surface the handlers need. Satisfied by
// *storage.PhotoStore and by test stubs.
type photoStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	accountRepo    repository.AccountRepository
	listingRepo    repository.ListingRepository
	photos         photoStore
	notifier       service.Notifier
	accountService *service.AccountService
	listingService *service.ListingService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{})
	if err != nil {
		return nil, err
	}

	server, err := NewServerWithDeps(cfg, db, redisClient)
	if err != nil {
		return nil, err
	}

	photos, err := storage.NewPhotoStore(cfg)
	if err != nil {
		// Photo uploads will be rejected until the blob store is back.
		log.Printf("WARNING: photo store unavailable: %v", err)
	} else {
		server.SetPhotoStore(photos)
	}

	if cfg.SMTPHost != "" {
		server.SetNotifier(mailer.New(cfg))
	}
	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized
// dependencies. Used by NewServer and by tests; photo store and
// notifier are optional and wired afterwards via the setters.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("homestead-api"),
		accountRepo:    repository.NewAccountRepository(db),
		listingRepo:    repository.NewListingRepository(db),
	}
	server.rebuildServices()
	return server, nil
}

// SetPhotoStore wires the blob store into the handlers and services.
func (s *Server) SetPhotoStore(photos photoStore) {
	s.photos = photos
	s.rebuildServices()
}

// SetNotifier wires the welcome-mail sender.
func (s *Server) SetNotifier(notifier service.Notifier) {
	s.notifier = notifier
	s.rebuildServices()
}

func (s *Server) rebuildServices() {
	var blobs service.BlobStore
	if s.photos != nil {
		blobs = s.photos
	}
	s.accountService = service.NewAccountService(s.accountRepo, s.listingRepo, s.notifier, blobs)
	s.listingService = service.NewListingService(s.listingRepo, s.accountRepo, blobs)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and account ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit (e.g. the
	// limiter) so browser clients receive CORS headers on error responses.
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

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
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
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Homestead API Metrics Dashboard",
	}))

	// Token endpoints
	token := api.Group("/token")
	token.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "token_obtain"), s.ObtainToken)
	token.Post("/refresh", middleware.RateLimit(s.redis, 30, time.Minute, "token_refresh"), s.RefreshToken)
	token.Post("/verify", s.VerifyToken)

	// Account endpoints
	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(s.redis, 5, time.Minute, "register"), s.Register)
	users.Post("/register/realtor", middleware.RateLimit(s.redis, 5, time.Minute, "register_realtor"), s.RegisterRealtor)

	me := users.Group("/me", s.AuthRequired())
	me.Get("/", s.GetMe)
	me.Patch("/", s.UpdateMe)
	me.Put("/", s.ChangePassword)
	me.Delete("/", s.DeleteMe)

	// Listing endpoints
	listings := api.Group("/listings")

	manage := listings.Group("/manage", s.AuthRequired(), s.RoleRequired(models.RoleRealtor))
	manage.Get("/", s.GetMyListings)
	manage.Post("/", s.CreateListing)
	manage.Put("/", s.ReplaceListing)
	manage.Patch("/", s.PatchListing)
	manage.Delete("/", s.DeleteListing)

	listings.Get("/detail", s.GetListingDetail)
	listings.Get("/public", s.GetPublishedListings)
	listings.Get("/search", s.SearchListings)
}

// HealthCheck handles GET /api/
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is a soft dependency: cache and rate limits degrade without it.
	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
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

// AuthRequired returns middleware that resolves the bearer token into
// an account identity and role, stored in locals.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.parseToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		if tokenType, _ := claims["token_type"].(string); tokenType != "access" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Access token required"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid subject claim"))
		}
		accountID, err2 := strconv.ParseUint(sub, 10, 32)
		if err2 != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid account ID in token"))
		}

		roleStr, _ := claims["role"].(string)
		role, ok := models.ParseRole(roleStr)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid role claim"))
		}

		// Check JTI for revocation
		if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
			revoked, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
			if err == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("accountID", uint(accountID))
		c.Locals("role", role)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.AccountIDKey, uint(accountID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// RoleRequired returns middleware rejecting accounts whose role does
// not match. Must run after AuthRequired.
func (s *Server) RoleRequired(role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, ok := c.Locals("role").(models.Role)
		if !ok || current != role {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("You do not have permission to access this resource"))
		}
		return c.Next()
	}
}

func (s *Server) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.NewUnauthorizedError("Invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.NewUnauthorizedError("Invalid token claims")
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return nil, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return nil, models.NewUnauthorizedError("Invalid token audience")
	}
	return claims, nil
}

// Start launches the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Homestead API",
		BodyLimit: 20 * 1024 * 1024, // photo uploads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("error closing redis client: %v", err)
		}
	}
	return nil
}
