package main

import (
    "context"
    "log"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/cinema-booking-core/internal/config"
    "github.com/iliyamo/cinema-booking-core/internal/database"
    "github.com/iliyamo/cinema-booking-core/internal/gateway"
    "github.com/iliyamo/cinema-booking-core/internal/handler"
    "github.com/iliyamo/cinema-booking-core/internal/middleware"
    "github.com/iliyamo/cinema-booking-core/internal/queue"
    "github.com/iliyamo/cinema-booking-core/internal/repository"
    "github.com/iliyamo/cinema-booking-core/internal/router"
    "github.com/iliyamo/cinema-booking-core/internal/service"
)

func main() {
    // .env is a development convenience; in production the variables
    // come from the environment directly.
    if err := godotenv.Load(); err != nil {
        log.Printf("no .env file loaded: %v", err)
    }
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database connect failed: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting and response cache disabled")
    }

    slotRepo := repository.NewSlotRepo(db)
    seatRepo := repository.NewSeatRepo(db)
    holdRepo := repository.NewHoldRepo(db)
    sessionRepo := repository.NewSessionRepo(db)
    productRepo := repository.NewProductRepo(db)
    promoRepo := repository.NewPromotionRepo(db)
    paymentRepo := repository.NewPaymentRepo(db)

    gw := gateway.New(gateway.Config{
        BaseURL:   cfg.GatewayBaseURL,
        TmnCode:   cfg.GatewayTmnCode,
        Secret:    cfg.GatewaySecret,
        Version:   cfg.GatewayVersion,
        Locale:    cfg.GatewayLocale,
        Currency:  cfg.GatewayCurrency,
        OrderType: cfg.GatewayOrderType,
        ReturnURL: cfg.GatewayReturnURL,
    })

    holdMgr := &service.HoldManager{Holds: holdRepo, Seats: seatRepo, Slots: slotRepo}
    checkoutSvc := &service.CheckoutService{
        Slots:    slotRepo,
        Seats:    seatRepo,
        Holds:    holdRepo,
        Sessions: sessionRepo,
        Products: productRepo,
        Promos:   promoRepo,
        Payments: paymentRepo,
        HoldMgr:  holdMgr,
        Gateway:  gw,
    }
    settlementSvc := &service.SettlementService{
        Sessions:  sessionRepo,
        Payments:  paymentRepo,
        Promos:    promoRepo,
        HoldMgr:   holdMgr,
        Publisher: service.AMQPTicketPublisher{},
    }

    // Consumes ticket.issued for the local fulfillment audit trail.
    go func() {
        if err := queue.StartTicketConsumer(); err != nil {
            log.Printf("ticket consumer stopped: %v", err)
        }
    }()

    // Background hold expiry sweep.  The on-access sweep in the
    // browse and hold paths handles hot slots; this loop catches
    // everything nobody is looking at.
    go func() {
        ticker := time.NewTicker(cfg.SweepInterval)
        defer ticker.Stop()
        for range ticker.C {
            ctx, cancel := context.WithTimeout(context.Background(), cfg.SweepInterval)
            n, err := settlementSvc.Sweep(ctx, cfg.SweepBatch)
            cancel()
            if err != nil {
                log.Printf("hold sweep failed: %v", err)
                continue
            }
            if n > 0 {
                log.Printf("hold sweep expired %d holds", n)
            }
        }
    }()

    e := echo.New()
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    browseHandler := &handler.BrowseHandler{SlotRepo: slotRepo, SeatRepo: seatRepo, HoldMgr: holdMgr}
    callbackHandler := &handler.CallbackHandler{Gateway: gw, Settlement: settlementSvc}
    bookingHandler := handler.NewBookingHandler(checkoutSvc)
    checkoutHandler := handler.NewCheckoutHandler(checkoutSvc)

    router.RegisterRoutes(e)
    router.RegisterPublic(e, browseHandler, callbackHandler,
        middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
    router.RegisterBooking(e, bookingHandler, checkoutHandler, cfg.JWTSecret)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
