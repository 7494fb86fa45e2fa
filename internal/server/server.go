// Package server contains the HTTP handlers and route wiring for the
// marketplace API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"fleamart/internal/cache"
	"fleamart/internal/config"
	"fleamart/internal/database"
	"fleamart/internal/middleware"
	"fleamart/internal/models"
	"fleamart/internal/repository"
	"fleamart/internal/service"
	"fleamart/internal/token"

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
	tokens         *token.Service

	userRepo           repository.UserRepository
	articleRepo        repository.ArticleRepository
	productRepo        repository.ProductRepository
	articleCommentRepo repository.ArticleCommentRepository
	productCommentRepo repository.ProductCommentRepository
	imageRepo          repository.ImageRepository
	uploadLogRepo      repository.UploadLogRepository

	authService    *service.AuthService
	articleService *service.ArticleService
	productService *service.ProductService
	commentService *service.CommentService
	userService    *service.UserService
	uploadService  *service.UploadService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	return NewServerWithDeps(cfg, db, redisClient)
}

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// initPrometheus builds the HTTP metrics middleware once; the collectors
// register globally and would panic on re-registration.
func initPrometheus() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("fleamart-api")
	})
	return prom
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with a sqlite in-memory DB and a nil or miniredis client.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	prom := initPrometheus()

	models.SetDetailExposure(!cfg.IsProduction())

	server := &Server{
		config:             cfg,
		db:                 db,
		redis:              redisClient,
		promMiddleware:     prom,
		tokens:             token.NewService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret),
		userRepo:           repository.NewUserRepository(db),
		articleRepo:        repository.NewArticleRepository(db),
		productRepo:        repository.NewProductRepository(db),
		articleCommentRepo: repository.NewArticleCommentRepository(db),
		productCommentRepo: repository.NewProductCommentRepository(db),
		imageRepo:          repository.NewImageRepository(db),
		uploadLogRepo:      repository.NewUploadLogRepository(db),
	}

	server.authService = service.NewAuthService(server.userRepo, server.tokens)
	server.articleService = service.NewArticleService(server.articleRepo)
	server.productService = service.NewProductService(server.productRepo)
	server.commentService = service.NewCommentService(
		server.articleRepo, server.productRepo,
		server.articleCommentRepo, server.productCommentRepo)
	server.userService = service.NewUserService(server.userRepo, server.articleRepo, server.productRepo)
	server.uploadService = service.NewUploadService(
		cfg.UploadDir, cfg.PublicBaseURL, server.imageRepo, server.uploadLogRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS must run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
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
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Stored uploads are served statically.
	app.Static("/images", s.config.UploadDir)

	// Auth routes
	auth := app.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/refresh", s.Refresh)
	auth.Post("/logout", s.Logout)
	auth.Get("/google", s.GoogleLogin)
	auth.Get("/google/callback", s.GoogleCallback)

	optional := middleware.OptionalAuth(s.tokens)
	required := s.AuthRequired()

	// Article routes
	articles := app.Group("/articles")
	articles.Get("/", optional, s.GetArticles)
	articles.Post("/", required, s.CreateArticle)
	articles.Get("/:articleId/comments", s.GetArticleComments)
	articles.Post("/:articleId/comments", required, s.CreateArticleComment)
	articles.Patch("/:articleId/comments/:commentId", required, s.UpdateArticleComment)
	articles.Delete("/:articleId/comments/:commentId", required, s.DeleteArticleComment)
	articles.Post("/:id/like", required, s.ToggleArticleLike)
	articles.Get("/:id", optional, s.GetArticle)
	articles.Patch("/:id", required, s.UpdateArticle)
	articles.Delete("/:id", required, s.DeleteArticle)

	// Product routes
	products := app.Group("/products")
	products.Get("/", optional, s.GetProducts)
	products.Post("/", required, s.CreateProduct)
	products.Get("/:productId/comments", s.GetProductComments)
	products.Post("/:productId/comments", required, s.CreateProductComment)
	products.Patch("/:productId/comments/:commentId", required, s.UpdateProductComment)
	products.Delete("/:productId/comments/:commentId", required, s.DeleteProductComment)
	products.Post("/:id/like", required, s.ToggleProductLike)
	products.Get("/:id", optional, s.GetProduct)
	products.Patch("/:id", required, s.UpdateProduct)
	products.Delete("/:id", required, s.DeleteProduct)

	// User routes
	users := app.Group("/users", required)
	users.Get("/profile", s.GetProfile)
	users.Put("/profile", s.UpdateProfile)
	users.Put("/password", s.ChangePassword)
	users.Delete("/delete", s.DeleteAccount)
	users.Get("/articles", s.GetMyArticles)
	users.Get("/products", s.GetMyProducts)
	users.Get("/uploads", s.GetMyUploads)
	users.Get("/likes/products", s.GetLikedProducts)
	users.Get("/likes/articles", s.GetLikedArticles)

	// Image upload; anonymous uploads are allowed but logged without a user.
	app.Post("/api/images", optional, middleware.RateLimit(
		s.redis, 10, time.Minute, "upload"), s.UploadImages)
}

// AuthRequired verifies the access-token cookie and rejects tokens whose
// account no longer exists (soft-deleted users keep their cookies).
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(middleware.AccessTokenCookie)
		if raw == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authentication required"))
		}

		userID, err := s.tokens.VerifyAccess(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Invalid or expired token"))
		}

		if _, err := s.userRepo.GetByID(c.UserContext(), userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthenticatedError("Account no longer exists"))
			}
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		}

		c.Locals("userID", userID)
		// Sync to UserContext for logging and downstream services.
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
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

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The API degrades without Redis (no cache, fail-open limits) but
		// stays serviceable.
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

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Fleamart API",
		BodyLimit: 6 * service.MaxUploadFiles << 20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				return models.RespondWithError(c, fiberErr.Code, err)
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
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
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
