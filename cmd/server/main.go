package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/etailor/internal/catalog"
	"github.com/example/etailor/internal/config"
	"github.com/example/etailor/internal/customization"
	"github.com/example/etailor/internal/database"
	"github.com/example/etailor/internal/models"
	"github.com/example/etailor/internal/realtime"
	"github.com/example/etailor/internal/routes"
	"github.com/example/etailor/internal/services"
	"github.com/example/etailor/internal/storage"
	"github.com/example/etailor/internal/store"
	"github.com/example/etailor/internal/utils"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := openStore(ctx, cfg)
	defer st.Close()

	if cfg.SeedDemo {
		if err := store.Seed(ctx, st); err != nil {
			log.Fatalf("failed to seed demo data: %v", err)
		}
	}

	cat, err := catalog.Load(ctx, st)
	if err != nil {
		log.Fatalf("failed to load catalog: %v", err)
	}

	broker := openBroker(ctx, cfg)
	defer broker.Close()

	backend, uploadDir := openStorage(cfg)

	telegram := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	if !telegram.Enabled() {
		log.Println("[Telegram] notifications disabled")
	}

	orders := services.NewOrderService(st, broker, telegram, services.OrderOptions{
		LeadTime: cfg.OrderLeadTime,
		Policy:   services.ParseStatusPolicy(cfg.OrderStatusPolicy),
	})
	stats := services.NewStatsService(st)
	if err := stats.Watch(ctx, broker); err != nil {
		log.Fatalf("failed to watch order changes: %v", err)
	}

	registry := customization.NewRegistry(cat)
	go registry.Run(ctx, time.Minute, cfg.SessionIdleTTL)

	app := routes.NewApp("eTailor Backend", int(cfg.MaxUploadBytes)+1<<20)
	app.Use(recover.New())
	app.Use(logger.New())

	routes.Register(app, routes.Deps{
		Store:        st,
		Catalog:      cat,
		Registry:     registry,
		Orders:       orders,
		Measurements: services.NewMeasurementService(st),
		Designs:      services.NewDesignService(st, backend, cfg.MaxUploadBytes),
		Stats:        stats,
		Receipts:     services.NewReceiptService(cfg.ShopName),
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.TokenExpires,
		UploadDir:    uploadDir,
	})

	hub := realtime.NewHub(broker, func(token string) (models.Identity, error) {
		return utils.ParseToken(cfg.JWTSecret, token)
	}, cfg.AllowedOrigins)
	realtimeServer := &http.Server{
		Addr:              ":" + cfg.RealtimePort,
		Handler:           hub.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting realtime server on :%s", cfg.RealtimePort)
		if err := realtimeServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("realtime server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		log.Println("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := realtimeServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("realtime shutdown error: %v", err)
		}
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Printf("fiber shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on :%s", cfg.AppPort)
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

// openStore picks the durable store once at startup, falling back to the
// in-memory store when the database is unset or unreachable.
func openStore(ctx context.Context, cfg *config.Config) store.Store {
	if cfg.DatabaseURL == "" {
		log.Println("[Store] DATABASE_URL not set, running in demo mode with the in-memory store")
		return store.NewMemoryStore()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	db, err := database.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		if cfg.RequireDatabase {
			log.Fatalf("failed to connect to database: %v", err)
		}
		log.Printf("[Store] database unreachable (%v), running in demo mode with the in-memory store", err)
		return store.NewMemoryStore()
	}
	return store.NewGormStore(db, cfg.DBQueryTimeout)
}

func openBroker(ctx context.Context, cfg *config.Config) realtime.Broker {
	if cfg.RedisURL == "" {
		return realtime.NewLocalBroker()
	}

	broker, err := realtime.NewRedisBroker(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("[Realtime] redis unavailable (%v), using in-process broker", err)
		return realtime.NewLocalBroker()
	}
	log.Println("[Realtime] publishing changes through redis")
	return broker
}

// openStorage returns the design backend and, for local storage, the
// directory to serve under /uploads.
func openStorage(cfg *config.Config) (storage.Backend, string) {
	if cfg.CloudinaryEnabled() {
		backend, err := storage.NewCloudinaryBackend(cfg.CloudinaryName, cfg.CloudinaryKey, cfg.CloudinarySecret, cfg.CloudinaryFolder)
		if err == nil {
			return backend, ""
		}
		log.Printf("[Storage] cloudinary unavailable (%v), storing designs locally", err)
	}

	backend, err := storage.NewLocalBackend(cfg.UploadDir, cfg.PublicURL)
	if err != nil {
		log.Fatalf("failed to prepare upload directory: %v", err)
	}
	return backend, cfg.UploadDir
}
