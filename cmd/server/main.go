package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-table-reservation/internal/cart"
	"github.com/iliyamo/restaurant-table-reservation/internal/clock"
	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	rdb := config.NewRedisClient()
	clk := clock.NewSystem(cfg.Timezone)

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	slots := repository.NewTimeSlotRepo(db)
	tables := repository.NewTableRepo(db)
	bookings := repository.NewBookingRepo(db)
	products := repository.NewProductRepo(db)
	categories := repository.NewCategoryRepo(db)
	combos := repository.NewComboRepo(db)
	ratings := repository.NewRatingRepo(db, products)
	orders := repository.NewOrderRepo(db)

	// Session cart store: Redis when configured, in-memory otherwise.
	var cartStore cart.Store
	if rdb != nil {
		cartStore = cart.NewRedisStore(rdb)
	} else {
		cartStore = cart.NewMemoryStore()
	}

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens)
	staffH := handler.NewStaffHandler(slots, tables, bookings, orders, clk)
	menuH := handler.NewStaffMenuHandler(products, categories, combos)
	publicH := handler.NewPublicMenuHandler(products, categories, combos, ratings)
	customerH := handler.NewCustomerHandler(slots, tables, bookings, clk)
	orderH := handler.NewOrderHandler(bookings, orders, products, combos, cartStore, clk)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, publicH, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterCustomer(e, customerH, orderH, publicH, cfg.JWTSecret)
	router.RegisterStaff(e, staffH, menuH, cfg.JWTSecret)

	// Background consumer appending confirmed orders to logs/orders.log.
	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
