package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/storefront/internal/cart"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/feed"
	"github.com/example/storefront/internal/httpx"
	"github.com/example/storefront/internal/identity"
	kafkax "github.com/example/storefront/internal/kafka"
	"github.com/example/storefront/internal/orders"
	"github.com/example/storefront/internal/postgres"
	"github.com/example/storefront/internal/redisx"
	"github.com/example/storefront/internal/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCreated, 1024)
	prod.Start(ctx)

	// Repos
	catalogRepo := &catalog.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}
	userRepo := &users.Repo{DB: db}

	// Engine
	idp := identity.ContextProvider{}
	cartStore := cart.NewStore(idp, &redisx.CartCache{R: rdb})
	orchestrator := &checkout.Orchestrator{
		Identity: idp,
		Cart:     cartStore,
		Catalog:  catalogRepo,
		Orders:   orderRepo,
		Profiles: userRepo,
		Notify:   &redisx.Notifier{R: rdb},
		Events:   &kafkax.OrderEvents{Created: prod, Service: cfg.ServiceName},
	}
	orderFeed := &feed.Feed{
		Orders:  orderRepo,
		Changes: &redisx.ChangeListener{R: rdb},
	}

	// Handlers
	router := httpx.NewRouter()
	(&httpx.CatalogHandler{Catalog: catalogRepo}).Register(router)
	(&httpx.CartHandler{Cart: cartStore, Catalog: catalogRepo}).Register(router)
	(&httpx.OrdersHandler{
		Checkout: orchestrator,
		Feed:     orderFeed,
		Repo:     orderRepo,
		Redis:    rdb,
	}).Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close()      // close inbox -> flush & close writer
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
