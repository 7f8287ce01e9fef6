// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"dukkan/internal/core/authz"
	"dukkan/internal/domain/catalogs/product"
	"dukkan/internal/domain/catalogs/supplier"
	"dukkan/internal/domain/documents/purchase"
	"dukkan/internal/domain/documents/purchasereturn"
	"dukkan/internal/domain/documents/sale"
	"dukkan/internal/domain/documents/salesreturn"
	"dukkan/internal/domain/registers/treasury"
	"dukkan/internal/domain/settlement"
	"dukkan/internal/domain/shift"
	"dukkan/internal/infrastructure/http/v1/handlers"
	"dukkan/internal/infrastructure/http/v1/middleware"
	"dukkan/internal/infrastructure/storage/postgres"
	"dukkan/internal/infrastructure/storage/postgres/catalog_repo"
	"dukkan/internal/infrastructure/storage/postgres/document_repo"
	"dukkan/internal/infrastructure/storage/postgres/register_repo"
	"dukkan/internal/infrastructure/storage/postgres/shift_repo"
	"dukkan/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (also used by health checks).
	Pool *postgres.Pool

	// TxManager runs ledger transactions.
	TxManager *postgres.TxManager

	// Logger for request logging.
	Logger *logger.Logger

	// TokenValidator for JWT validation.
	TokenValidator middleware.TokenValidator

	// AuthzProvider resolves authorization configuration.
	AuthzProvider authz.Provider
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

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Repositories
	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	supplierRepo := catalog_repo.NewSupplierRepo(cfg.TxManager)
	saleRepo := document_repo.NewSaleRepo(cfg.TxManager)
	purchaseRepo := document_repo.NewPurchaseRepo(cfg.TxManager)
	salesReturnRepo := document_repo.NewSalesReturnRepo(cfg.TxManager)
	purchaseReturnRepo := document_repo.NewPurchaseReturnRepo(cfg.TxManager)
	paymentRepo := document_repo.NewPaymentRepo(cfg.TxManager)
	treasuryRepo := register_repo.NewTreasuryRepo(cfg.TxManager)
	shiftRepo := shift_repo.NewShiftRepo(cfg.TxManager)

	sink, err := postgres.NewArchiveSink(cfg.TxManager)
	if err != nil {
		// zstd encoder construction fails only on invalid options.
		panic(err)
	}

	// Services
	treasuryService := treasury.NewService(treasuryRepo, cfg.AuthzProvider)
	productService := product.NewService(productRepo, cfg.AuthzProvider, cfg.TxManager)
	supplierService := supplier.NewService(supplierRepo, cfg.AuthzProvider, cfg.TxManager)
	shiftService := shift.NewService(shiftRepo, treasuryRepo, cfg.AuthzProvider, cfg.TxManager)
	saleService := sale.NewService(saleRepo, productRepo, shiftRepo, treasuryService, sink, cfg.AuthzProvider, cfg.TxManager)
	purchaseService := purchase.NewService(purchaseRepo, productRepo, supplierRepo, treasuryService, sink, cfg.AuthzProvider, cfg.TxManager)
	salesReturnService := salesreturn.NewService(salesReturnRepo, saleRepo, productRepo, shiftRepo, treasuryService, cfg.AuthzProvider, cfg.TxManager)
	purchaseReturnService := purchasereturn.NewService(purchaseReturnRepo, purchaseRepo, productRepo, treasuryService, cfg.AuthzProvider, cfg.TxManager)
	settlementService := settlement.NewService(paymentRepo, purchaseRepo, supplierRepo, treasuryService, cfg.AuthzProvider, cfg.TxManager)

	// Handlers
	base := handlers.NewBaseHandler()
	saleHandler := handlers.NewSaleHandler(base, saleService)
	purchaseHandler := handlers.NewPurchaseHandler(base, purchaseService)
	returnsHandler := handlers.NewReturnsHandler(base, salesReturnService, purchaseReturnService)
	paymentHandler := handlers.NewPaymentHandler(base, settlementService)
	shiftHandler := handlers.NewShiftHandler(base, shiftService)
	supplierHandler := handlers.NewSupplierHandler(base, supplierService)
	productHandler := handlers.NewProductHandler(base, productService)
	treasuryHandler := handlers.NewTreasuryHandler(base, treasuryService)
	authzHandler := handlers.NewAuthzHandler(base, cfg.AuthzProvider)

	requireAction := func(action authz.Action) gin.HandlerFunc {
		return middleware.RequireAction(cfg.AuthzProvider, action)
	}

	// API v1 (JWT required)
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.TokenValidator))
	{
		sales := api.Group("/sales")
		{
			sales.POST("", requireAction(authz.ActionProcessSale), saleHandler.Process)
			sales.GET("/:id", saleHandler.Get)
			sales.DELETE("/:id", requireAction(authz.ActionDeleteSale), saleHandler.Delete)
			sales.POST("/:id/returns", requireAction(authz.ActionProcessSalesReturn), returnsHandler.ProcessSalesReturn)
		}

		purchases := api.Group("/purchases")
		{
			purchases.POST("", requireAction(authz.ActionProcessPurchase), purchaseHandler.Process)
			purchases.GET("/:id", purchaseHandler.Get)
			purchases.DELETE("/:id", requireAction(authz.ActionDeletePurchase), purchaseHandler.Delete)
			purchases.POST("/:id/returns", requireAction(authz.ActionProcessPurchaseReturn), returnsHandler.ProcessPurchaseReturn)
		}

		payments := api.Group("/supplier-payments")
		{
			payments.POST("", requireAction(authz.ActionRecordSupplierPayment), paymentHandler.Record)
			payments.GET("/:id", paymentHandler.Get)
		}

		shifts := api.Group("/shifts")
		{
			shifts.POST("/open", requireAction(authz.ActionOpenShift), shiftHandler.Open)
			shifts.GET("/current", shiftHandler.Current)
			shifts.POST("/:id/close", requireAction(authz.ActionCloseShift), shiftHandler.Close)
		}

		suppliers := api.Group("/suppliers")
		{
			suppliers.POST("", supplierHandler.Create)
			suppliers.GET("/:id/totals", requireAction(authz.ActionViewSupplierTotals), supplierHandler.Totals)
		}

		products := api.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("/low-stock", requireAction(authz.ActionViewLowStock), productHandler.LowStock)
		}

		api.GET("/treasury/balance", requireAction(authz.ActionViewTreasury), treasuryHandler.Balance)
		api.GET("/authz/check", authzHandler.Check)
	}

	return router
}
