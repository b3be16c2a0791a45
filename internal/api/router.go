package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/nannyslm/platform-api/docs"
	"github.com/nannyslm/platform-api/internal/api/handler"
	"github.com/nannyslm/platform-api/internal/api/middleware"
	"github.com/nannyslm/platform-api/internal/core/domain"
	"github.com/nannyslm/platform-api/internal/core/service"
	"github.com/nannyslm/platform-api/internal/infrastructure/config"
	mongorepo "github.com/nannyslm/platform-api/internal/infrastructure/db/mongo"
	redisinfra "github.com/nannyslm/platform-api/internal/infrastructure/db/redis"
	"github.com/nannyslm/platform-api/pkg/logger"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client) *echo.Echo {
	log := logger.Get()

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(echoprometheus.NewMiddleware("nannyslm"))

	// --- Dependencies ---
	userRepo := mongorepo.NewUserRepository(db)
	bankRepo := mongorepo.NewBankAccountRepository(db)
	statsCache := redisinfra.NewStatsCache(rdb)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL(), log)
	bankService := service.NewBankAccountService(bankRepo, userRepo, statsCache, log)

	authHandler := handler.NewAuthHandler(authService)
	bankHandler := handler.NewBankDataHandler(bankService)

	authMiddleware := middleware.Auth(cfg.JWTSecret)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/register/nanny", authHandler.RegisterNanny)
	e.POST("/auth/register/client", authHandler.RegisterClient)
	e.POST("/auth/login", authHandler.Login)
	// Logout needs no auth: tokens are stateless and a client holding an
	// already-expired token must still be able to close its session.
	e.POST("/auth/logout", authHandler.Logout)

	// --- Bank data routes (admin only) ---
	bank := e.Group("/bank-data", authMiddleware, adminOnly)
	bank.POST("/", bankHandler.Create)
	bank.GET("/", bankHandler.List)
	bank.GET("/statistics", bankHandler.Statistics)
	bank.GET("/search/bank", bankHandler.SearchByBank)
	bank.GET("/nanny/:nannyId", bankHandler.GetByNanny)
	bank.GET("/:id", bankHandler.GetByID)
	bank.PUT("/:id", bankHandler.Update)
	bank.DELETE("/:id", bankHandler.Delete)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)
	e.Static("/uploads", cfg.UploadDir)

	return e
}
