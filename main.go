package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/vnfin/refdata/docs"

	"github.com/vnfin/refdata/config"
	"github.com/vnfin/refdata/internal/database"
	"github.com/vnfin/refdata/internal/handlers"
	"github.com/vnfin/refdata/internal/middleware"
	"github.com/vnfin/refdata/internal/repository"
	"github.com/vnfin/refdata/internal/services"
)

// @title Market Reference Data API
// @version 1.0
// @description Vietnamese-market financial reference data: stocks, EPS/PE/ROA-ROE/financial-ratio time series, currency prices and Q-indices, with bulk CSV/Excel import.
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context for initialization
	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	stockRepo := repository.NewStockRepository(db.Pool)
	epsRepo := repository.NewEpsRepository(db.Pool)
	peRepo := repository.NewPeRepository(db.Pool)
	roaRoeRepo := repository.NewRoaRoeRepository(db.Pool)
	ratioRepo := repository.NewFinancialRatioRepository(db.Pool)
	currencyRepo := repository.NewCurrencyPriceRepository(db.Pool)
	qIndexRepo := repository.NewQIndexRepository(db.Pool)

	// Initialize services
	importSvc := services.NewImportService(
		cfg.ImportBatchSize,
		stockRepo, epsRepo, peRepo, roaRoeRepo, ratioRepo, currencyRepo, qIndexRepo,
	)
	stockSvc := services.NewStockService(stockRepo)
	seriesSvc := services.NewSeriesService(epsRepo, peRepo, roaRoeRepo, ratioRepo, currencyRepo, qIndexRepo)

	// Initialize handlers
	importHandler := handlers.NewImportHandler(importSvc, cfg.ImportMaxBytes, cfg.ImportTimeout)
	stockHandler := handlers.NewStockHandler(stockSvc)
	seriesHandler := handlers.NewSeriesHandler(seriesSvc)

	// Setup Gin router
	router := gin.Default()

	// Apply global middleware
	router.Use(middleware.ValidateUser())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Import routes (authenticated)
	imports := router.Group("/import", middleware.RequireAuth())
	imports.POST("/stocks", importHandler.ImportStocks)
	imports.POST("/eps", importHandler.ImportEps)
	imports.POST("/pe", importHandler.ImportPe)
	imports.POST("/roa-roe", importHandler.ImportRoaRoe)
	imports.POST("/financial-ratios", importHandler.ImportFinancialRatios)
	imports.POST("/currency-prices", importHandler.ImportCurrencyPrices)
	imports.POST("/q-indices", importHandler.ImportQIndexes)

	// Stock routes
	router.GET("/stocks", stockHandler.List)
	router.GET("/stocks/:symbol", stockHandler.Get)
	router.POST("/stocks", middleware.RequireAuth(), stockHandler.Create)
	router.PUT("/stocks/:symbol", middleware.RequireAuth(), stockHandler.Update)
	router.DELETE("/stocks/:symbol", middleware.RequireAuth(), stockHandler.Delete)

	// Series routes
	router.GET("/eps", seriesHandler.ListEps)
	router.GET("/pe", seriesHandler.ListPe)
	router.GET("/roa-roe", seriesHandler.ListRoaRoe)
	router.GET("/financial-ratios", seriesHandler.ListFinancialRatios)
	router.GET("/currency-prices", seriesHandler.ListCurrencyPrices)
	router.GET("/q-indices", seriesHandler.ListQIndexes)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	fmt.Println("Server exited")
}
