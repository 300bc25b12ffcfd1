package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/maaaahin/drugo-storefront/internal/api"
	"github.com/maaaahin/drugo-storefront/internal/cart"
	"github.com/maaaahin/drugo-storefront/internal/catalog"
	"github.com/maaaahin/drugo-storefront/internal/checkout"
	"github.com/maaaahin/drugo-storefront/internal/domain"
	h "github.com/maaaahin/drugo-storefront/internal/httpapi"
	"github.com/maaaahin/drugo-storefront/internal/localstore"
	"github.com/maaaahin/drugo-storefront/internal/session"
)

type Config struct {
	HTTPPort        string
	StoreAPIURL     string
	LocalStore      string // "bolt" or "redis"
	LocalStorePath  string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    []string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8081"),
		StoreAPIURL:     getEnv("STORE_API_URL", "http://localhost:8080"),
		LocalStore:      getEnv("LOCAL_STORE", "bolt"),
		LocalStorePath:  getEnv("LOCAL_STORE_PATH", "storefront.db"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Durable local storage for the cart and session blobs
	backing, err := openLocalStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer backing.Close()

	sessions := session.NewReader(backing)
	client := api.NewClient(cfg.StoreAPIURL, sessions)

	// One shared cart per session, rehydrated from the persisted value
	cartStore := cart.NewStore(backing)
	if err := cartStore.Hydrate(ctx); err != nil {
		log.Printf("failed to hydrate cart, starting empty: %v", err)
	}
	cartStore.Subscribe(func(items []domain.Product) {
		log.Printf("cart now holds %d item(s)", len(items))
	})

	controller := catalog.NewController(client)
	if err := controller.Mount(ctx); err != nil {
		// the catalog view stays empty until the next interaction retries
		log.Printf("initial catalog load failed: %v", err)
	}

	var publisher checkout.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := checkout.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Printf("publishing order events to %v", cfg.KafkaBrokers)
	}
	coordinator := checkout.NewCoordinator(cartStore, client, sessions, publisher)

	cartHandler := h.NewCartHandler(cartStore)
	catalogHandler := h.NewCatalogHandler(controller)
	productHandler := h.NewProductHandler(client)
	checkoutHandler := h.NewCheckoutHandler(coordinator)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", catalogHandler.GetView)
			r.Post("/load-more", catalogHandler.LoadMore)
			r.Get("/filters", catalogHandler.GetFilters)
			r.Post("/filters/category", catalogHandler.ToggleCategory)
			r.Post("/filters/price", catalogHandler.SetPriceBucket)
			r.Get("/buckets", catalogHandler.GetBuckets)
			r.Post("/reset", catalogHandler.Reset)
		})
		r.Get("/categories", productHandler.GetCategories)
		r.Get("/categories/{slug}/products", productHandler.GetCategoryProducts)
		r.Get("/products/{slug}", productHandler.GetProduct)
		r.Get("/search/{keyword}", productHandler.Search)
		r.Post("/checkout", checkoutHandler.Commit)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront engine starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func openLocalStore(ctx context.Context, cfg *Config) (localstore.Store, error) {
	if cfg.LocalStore == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, err
		}
		log.Printf("using redis local store at %s", cfg.RedisAddr)
		return localstore.NewRedisStore(redisClient), nil
	}

	log.Printf("using bolt local store at %s", cfg.LocalStorePath)
	return localstore.OpenBolt(cfg.LocalStorePath)
}
