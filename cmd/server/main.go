package main // Entry point package

import (
	"context"   // Context for graceful shutdown and startup deadlines
	"log"       // Logging library
	"net/http"  // http.ErrServerClosed on graceful shutdown
	"os/signal" // Signal handling for shutdown
	"syscall"   // SIGTERM constant
	"time"      // Shutdown timeout

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/alzablotsky/coupon-system/internal/config"     // Internal config loader
	"github.com/alzablotsky/coupon-system/internal/database"   // MySQL connection and schema
	"github.com/alzablotsky/coupon-system/internal/facade"     // Domain entry point
	"github.com/alzablotsky/coupon-system/internal/handler"    // HTTP handlers
	"github.com/alzablotsky/coupon-system/internal/middleware" // Rate limiting
	"github.com/alzablotsky/coupon-system/internal/pool"       // Bounded resource pool
	"github.com/alzablotsky/coupon-system/internal/queue"      // Purchase event consumer
	"github.com/alzablotsky/coupon-system/internal/repository" // DB repositories
	"github.com/alzablotsky/coupon-system/internal/router"     // Internal router setup
	"github.com/alzablotsky/coupon-system/internal/sweeper"    // Expired coupon sweeper
)

func main() {
	_ = godotenv.Load() // Load .env when present; real env wins

	cfg := config.Load() // Load environment config

	// Connect to MySQL and make sure the schema exists before serving.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// The pool bounds how many domain operations run at once; every
	// facade call and the sweeper acquire from it.
	p := pool.New(cfg.PoolCapacity)

	companies := repository.NewCompanyRepo(db)
	customers := repository.NewCustomerRepo(db)
	coupons := repository.NewCouponRepo(db)
	tokens := repository.NewTokenRepo(db)

	sys := facade.NewSystem(p, companies, customers, coupons,
		cfg.AdminName, cfg.AdminPassword, cfg.BcryptCost)

	// Daily sweep of expired coupons, sharing the pool with requests.
	sw := sweeper.New(p, coupons, cfg.SweepInterval)
	sw.Start()

	// Consume purchase events in the background; the consumer runs its
	// own reconnect loop and never brings the server down.
	go func() {
		if err := queue.StartPurchaseConsumer(); err != nil {
			log.Printf("purchase consumer stopped: %v", err)
		}
	}()

	e := echo.New() // Create Echo instance
	e.HideBanner = true

	// Redis-backed token bucket; a nil client disables limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e) // Health check
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, sys, tokens), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(sys), cfg.JWTSecret)
	router.RegisterCompany(e, handler.NewCompanyHandler(sys), cfg.JWTSecret)
	router.RegisterCustomer(e, handler.NewCustomerHandler(sys), cfg.JWTSecret)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	// Serve until interrupted, then drain in order: HTTP first, then the
	// sweeper, then the pool so in-flight operations finish their release.
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-sigCtx.Done()
	log.Printf("shutting down")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	if err := e.Shutdown(shutCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	sw.Stop()
	sys.Shutdown()
}
