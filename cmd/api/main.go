package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/sndev/marketplace-backend/internal/modules/auth"
	"github.com/sndev/marketplace-backend/internal/modules/order"
	"github.com/sndev/marketplace-backend/internal/modules/product"
	"github.com/sndev/marketplace-backend/internal/modules/stats"
	"github.com/sndev/marketplace-backend/internal/modules/suborder"
	"github.com/sndev/marketplace-backend/internal/platform/logging"
	"github.com/sndev/marketplace-backend/internal/platform/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, relying on process environment")
	}

	logger, err := logging.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := sql.Open("postgres", os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal("ping database", zap.Error(err))
	}
	logger.Info("connected to database")

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	// ── Router ──────────────────────────────────────────────
	serverMetrics := metrics.NewServerMetrics("order_api")
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)
	router.Use(serverMetrics.Middleware)
	router.Handle("/metrics", metrics.Handler())

	// ── Collaborators ───────────────────────────────────────
	products := product.NewHTTPClient(os.Getenv("PRODUCT_SERVICE_URL"), logger)

	// ── Order management core ───────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	subOrderRepo := suborder.NewPostgresRepository(db)

	orderService := order.NewService(orderRepo, subOrderRepo, products, logger)
	subOrderService := suborder.NewService(subOrderRepo, logger)
	statsService := stats.NewService(orderRepo, products, logger)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware([]byte(jwtSecret)))
		order.NewHandler(orderService).RegisterRoutes(r)
		suborder.NewHandler(subOrderService).RegisterRoutes(r)
		stats.NewHandler(statsService).RegisterRoutes(r)
	})

	// ── Start Server ─────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("order API server starting", zap.String("port", port))
	log.Fatal(http.ListenAndServe(":"+port, router))
}
