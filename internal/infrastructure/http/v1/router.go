// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"tokopos/internal/domain/catalog/customer"
	"tokopos/internal/domain/catalog/stockitem"
	"tokopos/internal/domain/checkout"
	"tokopos/internal/domain/documents/invoice"
	"tokopos/internal/domain/documents/purchase"
	"tokopos/internal/domain/reports"
	"tokopos/internal/feed"
	"tokopos/internal/infrastructure/http/v1/handlers"
	"tokopos/internal/infrastructure/http/v1/middleware"
	"tokopos/internal/infrastructure/storage/postgres"
	"tokopos/pkg/logger"
)

// RouterConfig holds everything the HTTP surface depends on.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	Checkout     *checkout.Service
	StockService *stockitem.Service
	Customers    *customer.Service
	Reports      *reports.Service
	Hub          *feed.Hub

	SalesRepo    invoice.Repository
	DebtorsRepo  invoice.Repository
	PurchaseRepo purchase.Repository
	AuditHistory handlers.HistoryReader

	// JWTValidator guards /api/v1 when set; nil leaves the API open
	JWTValidator middleware.JWTValidator
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	base := handlers.NewBaseHandler()

	// Health endpoints stay outside the auth guard
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	healthHandler.RegisterRoutes(router.Group("/health"))

	api := router.Group("/api/v1")
	if cfg.JWTValidator != nil {
		api.Use(middleware.Auth(cfg.JWTValidator))
	}

	handlers.NewStockHandler(base, cfg.StockService).RegisterRoutes(api)
	handlers.NewCustomersHandler(base, cfg.Customers).RegisterRoutes(api)
	handlers.NewTransactionsHandler(base, cfg.Checkout, cfg.StockService, cfg.SalesRepo, cfg.DebtorsRepo).RegisterRoutes(api)
	handlers.NewPurchasesHandler(base, cfg.Checkout, cfg.StockService, cfg.PurchaseRepo).RegisterRoutes(api)
	handlers.NewReportsHandler(base, cfg.Reports).RegisterRoutes(api)
	handlers.NewAuditHandler(base, cfg.AuditHistory).RegisterRoutes(api)
	handlers.NewFeedHandler(cfg.Hub).RegisterRoutes(api)

	return router
}
