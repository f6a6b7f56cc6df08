package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SilverPhantom1/zypos-sub000/internal/config"
	"github.com/SilverPhantom1/zypos-sub000/internal/handler"
	"github.com/SilverPhantom1/zypos-sub000/internal/infra"
	"github.com/SilverPhantom1/zypos-sub000/internal/middleware"
	"github.com/SilverPhantom1/zypos-sub000/internal/repository"
	"github.com/SilverPhantom1/zypos-sub000/internal/service"
	"github.com/SilverPhantom1/zypos-sub000/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, gatewayCB *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	gatewayClient := infra.NewGatewayClient(cfg.GatewayURL, cfg.GatewayAPIKey)
	gateway := infra.NewBreakeredGateway(gatewayClient, gatewayCB)

	// ── Repositories ─────────────────────────────────────────────────────────
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	movementRepo := repository.NewStockMovementRepository(db)
	operationRepo := repository.NewOperationRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	ledger := service.NewStockLedger(productRepo, movementRepo)
	sessionSvc := service.NewSessionService(sessionRepo)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	saleSvc := service.NewSaleService(saleRepo, productRepo, sessionSvc, ledger, operationRepo, gateway, dispatcher)
	amendmentSvc := service.NewAmendmentService(saleRepo, productRepo, ledger, operationRepo)
	operationSvc := service.NewOperationService(operationRepo, ledger)
	productSvc := service.NewProductService(productRepo, ledger)

	// ── Handlers ─────────────────────────────────────────────────────────────
	sessionsH := handler.NewSessionsHandler(sessionSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	amendmentsH := handler.NewAmendmentsHandler(amendmentSvc)
	operationsH := handler.NewOperationsHandler(operationSvc)
	productsH := handler.NewProductsHandler(productSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, gatewayCB))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: cashier, supervisor, admin — declared per-endpoint
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", middleware.RequireRole("cashier", "supervisor", "admin"), sessionsH.Open)
			sessions.GET("/active", middleware.RequireRole("cashier", "supervisor", "admin"), sessionsH.GetActive)
			sessions.POST("/sign-out", middleware.RequireRole("cashier", "supervisor", "admin"), sessionsH.SignOut)
			sessions.GET("", middleware.RequireRole("supervisor", "admin"), sessionsH.History)
			sessions.GET("/:id", middleware.RequireRole("cashier", "supervisor", "admin"), sessionsH.GetReport)
			sessions.POST("/:id/close", middleware.RequireRole("cashier", "supervisor", "admin"), sessionsH.Close)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.Record)
			sales.GET("", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.List)
			sales.GET("/:id", middleware.RequireRole("cashier", "supervisor", "admin"), salesH.Get)
			// Amendments touch money and stock — supervisor sign-off required
			sales.POST("/:id/void", middleware.RequireRole("supervisor", "admin"), amendmentsH.Void)
			sales.POST("/:id/amend", middleware.RequireRole("supervisor", "admin"), amendmentsH.Amend)
		}

		v1.POST("/operations/:id/retry", middleware.RequireRole("supervisor", "admin"), operationsH.Retry)

		// Catalog — all roles can read, supervisor+ can adjust stock, admin creates
		v1.GET("/products", middleware.RequireRole("cashier", "supervisor", "admin"), productsH.List)
		v1.GET("/products/:id", middleware.RequireRole("cashier", "supervisor", "admin"), productsH.Get)
		v1.PATCH("/products/:id/stock", middleware.RequireRole("supervisor", "admin"), productsH.AdjustStock)
		v1.POST("/products", middleware.RequireRole("admin"), productsH.Create)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
