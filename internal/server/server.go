// Package server contains the HTTP handlers and routing of the blog.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"blogfeed/internal/cache"
	"blogfeed/internal/config"
	"blogfeed/internal/database"
	"blogfeed/internal/featureflags"
	"blogfeed/internal/middleware"
	"blogfeed/internal/models"
	"blogfeed/internal/repository"
	"blogfeed/internal/service"

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
	featureFlags   *featureflags.Manager

	userRepo    repository.UserRepository
	groupRepo   repository.GroupRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository

	feedService    *service.FeedService
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	userService    *service.UserService
}

// NewServer connects to the database and Redis and creates a server on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, fmt.Errorf("server requires a config and a database")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("blogfeed"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		userRepo:       repository.NewUserRepository(db),
		groupRepo:      repository.NewGroupRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		followRepo:     repository.NewFollowRepository(db),
	}

	var homeCache *service.HomePageCache
	if redisClient != nil {
		homeCache = cache.NewPageCache[service.PostPage]("home", cfg.HomeCacheTTL())
	}
	s.feedService = service.NewFeedService(s.postRepo, s.userRepo, s.groupRepo, s.commentRepo, s.followRepo,
		service.FeedConfig{
			PageSize:           cfg.PageSize,
			GroupCap:           cfg.GroupFeedCap,
			MostCommentedLimit: cfg.MostCommentedLimit,
			HomeCache:          homeCache,
			Flags:              s.featureFlags,
		})

	var invalidate service.InvalidateFunc
	if cfg.HomeCacheInvalidateOnWrite {
		invalidate = s.feedService.InvalidateHome
	}
	s.postService = service.NewPostService(s.postRepo, s.groupRepo, invalidate)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, invalidate)
	s.followService = service.NewFollowService(s.followRepo, s.userRepo)
	s.userService = service.NewUserService(s.userRepo)

	return s, nil
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:      "blogfeed",
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Resolve the caller before the context middleware so logs carry user_id.
	app.Use(middleware.Authenticate(s.config.JWTSecret, cache.IsTokenRevoked))
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
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

// SetupRoutes configures all routes for the application.
// Fixed segments are registered before the /:username catch-alls.
func (s *Server) SetupRoutes(app *fiber.App) {
	login := middleware.LoginRequired(s.loginURL())

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth routes
	auth := app.Group("/auth")
	signupLimit := middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup")
	auth.Get("/signup/", s.SignupPage)
	auth.Post("/signup/", signupLimit, s.Signup)
	loginLimit := middleware.RateLimit(s.redis, 10, 5*time.Minute, "login")
	auth.Get("/login/", s.LoginPage)
	auth.Post("/login/", loginLimit, s.Login)
	auth.Post("/logout/", s.Logout)

	about := app.Group("/about")
	about.Get("/author/", s.staticPage("about_author"))
	about.Get("/tech/", s.staticPage("about_tech"))

	app.Get("/", s.Index)
	app.Get("/group/:slug/", s.GroupPosts)
	app.Get("/search/", middleware.RateLimit(s.redis, 30, time.Minute, "search"), s.Search)
	app.Get("/follow/", login, s.FollowIndex)
	app.Get("/new/", login, s.NewPostPage)
	app.Post("/new/", login, middleware.RateLimit(s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)

	// Profile routes
	app.Get("/:username/edit/", login, s.EditProfilePage)
	app.Post("/:username/edit/", login, s.UpdateProfile)
	app.Get("/:username/follow/", login, s.ProfileFollow)
	app.Get("/:username/unfollow/", login, s.ProfileUnfollow)
	app.Get("/:username/", s.Profile)

	// Post routes
	app.Get("/:username/:postId/edit/", login, s.EditPostPage)
	app.Post("/:username/:postId/edit/", login, s.UpdatePost)
	app.Get("/:username/:postId/post_delete/", login, s.DeletePost)
	commentLimit := middleware.RateLimit(s.redis, 10, time.Minute, "create_comment")
	app.Get("/:username/:postId/comment/", login, s.AddComment)
	app.Post("/:username/:postId/comment/", login, commentLimit, s.AddComment)
	app.Get("/:username/:postId/", s.PostView)

	// Comment routes
	app.Get("/:username/:postId/:commentId/edit/", login, s.EditCommentPage)
	app.Post("/:username/:postId/:commentId/edit/", login, s.UpdateComment)
	app.Get("/:username/:postId/:commentId/delete/", login, s.DeleteComment)
	app.Post("/:username/:postId/:commentId/delete/", login, s.DeleteComment)

	app.Use(s.NotFound)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without it the
// home cache and rate limits are off, which degrades but does not fail the service.
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

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
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

// errorHandler renders unhandled faults as the generic server error page.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok && fe.Code == fiber.StatusNotFound {
		return s.NotFound(c)
	}
	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		"path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"view":  "server_error",
		"error": models.NewInternalError(err).Message,
	})
}

// NotFound renders the not-found page carrying the requested path.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusNotFound, "not_found", fiber.Map{"path": c.Path()})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
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
