package main // Entry point package

import (
    "context"
    "log"
    "os"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/parking-slot-reservation/internal/booking"
    "github.com/iliyamo/parking-slot-reservation/internal/config"
    "github.com/iliyamo/parking-slot-reservation/internal/database"
    "github.com/iliyamo/parking-slot-reservation/internal/handler"
    "github.com/iliyamo/parking-slot-reservation/internal/middleware"
    "github.com/iliyamo/parking-slot-reservation/internal/queue"
    "github.com/iliyamo/parking-slot-reservation/internal/repository"
    "github.com/iliyamo/parking-slot-reservation/internal/router"
    "github.com/iliyamo/parking-slot-reservation/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    if err := godotenv.Load(); err == nil {
        log.Println("loaded configuration from .env")
    }
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database connect failed: %v", err)
    }
    defer db.Close()

    // Schema is applied before the server accepts traffic.
    if err := database.Migrate(context.Background(), db); err != nil {
        log.Fatalf("migrations failed: %v", err)
    }

    // Repositories share the one injected handle.
    userRepo := repository.NewUserRepo(db)
    tokenRepo := repository.NewTokenRepo(db)
    lotRepo := repository.NewLotRepo(db)
    slotRepo := repository.NewSlotRepo(db)
    pricingRepo := repository.NewPricingRepo(db)
    walletRepo := repository.NewWalletRepo(db)
    bookingRepo := repository.NewBookingRepo(db)
    favoriteRepo := repository.NewFavoriteRepo(db)

    // NOTIFIER=log selects the broker-less notifier; the default AMQP
    // notifier logs and drops events while the broker is unreachable,
    // so bookings are never blocked on messaging.
    var notifier service.Notifier = service.AMQPNotifier{}
    if os.Getenv("NOTIFIER") == "log" {
        notifier = service.LogNotifier{}
    } else {
        // Background consumer mirrors booking events into logs/booking.log.
        go func() {
            if err := queue.StartBookingConsumer(); err != nil {
                log.Printf("booking consumer stopped: %v", err)
            }
        }()
    }

    engine := booking.NewEngine(db, slotRepo, pricingRepo, walletRepo, bookingRepo, notifier)

    // Periodic sweep: activates bookings whose window began and
    // completes those whose window elapsed.
    go func() {
        ticker := time.NewTicker(cfg.SweepInterval)
        defer ticker.Stop()
        for range ticker.C {
            ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
            activated, completed, err := engine.CompleteElapsed(ctx)
            cancel()
            if err != nil {
                log.Printf("sweep failed: %v", err)
                continue
            }
            if activated > 0 || completed > 0 {
                log.Printf("sweep: activated=%d completed=%d", activated, completed)
            }
            // Session housekeeping rides the same ticker.
            ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
            purged, err := tokenRepo.PurgeExpired(ctx, 30*24*time.Hour)
            cancel()
            if err != nil {
                log.Printf("refresh token purge failed: %v", err)
            } else if purged > 0 {
                log.Printf("purged %d expired refresh tokens", purged)
            }
        }
    }()

    authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
    adminHandler := handler.NewAdminHandler(lotRepo, slotRepo, pricingRepo, bookingRepo)
    bookingHandler := handler.NewBookingHandler(engine, bookingRepo)
    walletHandler := handler.NewWalletHandler(walletRepo)
    favoriteHandler := handler.NewFavoriteHandler(favoriteRepo, lotRepo)
    publicHandler := &handler.PublicHandler{
        LotRepo:     lotRepo,
        SlotRepo:    slotRepo,
        PricingRepo: pricingRepo,
    }
    sweepHandler := handler.NewSweepHandler(engine)

    e := echo.New()
    e.HideBanner = true

    // Redis is optional: rate limiting and response caching disable
    // themselves when no client could be constructed.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Println("redis unavailable; rate limiting and response cache disabled")
    }
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    var cache echo.MiddlewareFunc
    if rdb != nil {
        cache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
    }

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authHandler, cfg.JWTSecret)
    router.RegisterPublic(e, publicHandler, cache)
    router.RegisterDriver(e, bookingHandler, walletHandler, favoriteHandler, cfg.JWTSecret)
    router.RegisterAdmin(e, adminHandler, cfg.JWTSecret)
    router.RegisterInternal(e, sweepHandler, cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
