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

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/AnshRaj112/company-messenger/internal/config"
	"github.com/AnshRaj112/company-messenger/internal/database"
	"github.com/AnshRaj112/company-messenger/internal/handlers"
	"github.com/AnshRaj112/company-messenger/internal/middleware"
	"github.com/AnshRaj112/company-messenger/internal/routes"
	"github.com/AnshRaj112/company-messenger/internal/services"
	"github.com/AnshRaj112/company-messenger/internal/store"
	"github.com/AnshRaj112/company-messenger/pkg/utils"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs sessions and rate limiting when configured, and doubles as the
	// state store when STORAGE_DRIVER=redis.
	var redisKV *database.RedisKV
	if cfg.NeedsRedis() {
		log.Printf("Connecting to Redis...")
		var err error
		redisKV, err = database.ConnectRedis(ctx, cfg.RedisURI, cfg.RedisKeyPrefix)
		if err != nil {
			log.Fatal("Failed to connect to Redis:", err)
		}
	}

	var kv database.KV
	if cfg.StorageDriver == database.DriverRedis {
		kv = redisKV
	} else {
		log.Printf("Opening %s storage...", cfg.StorageDriver)
		var err error
		kv, err = database.Open(ctx, cfg.StorageOptions())
		if err != nil {
			log.Fatal("Failed to open storage:", err)
		}
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Printf("Error closing storage: %v", err)
		}
		if redisKV != nil && kv != database.KV(redisKV) {
			redisKV.Close()
		}
	}()

	hub := services.NewHub()
	st := store.New(kv, store.Options{
		Passwords:        utils.NewPasswordHasher(cfg.PasswordScheme),
		Notifier:         hub,
		DeliveredDelay:   cfg.DeliveredDelay,
		ReadDelay:        cfg.ReadDelay,
		PresenceInterval: cfg.PresenceInterval,
	})
	if err := st.Init(ctx); err != nil {
		log.Fatal("Failed to load application state:", err)
	}
	defer st.Close()
	log.Printf("✅ Application state loaded (%d users, %d groups)", len(st.Users()), len(st.Groups()))

	go st.RunAutoSave(ctx, cfg.AutoSaveInterval)
	log.Printf("✅ Auto-save every %s", cfg.AutoSaveInterval)

	var sessions services.Sessions
	if cfg.SessionDriver == "redis" {
		sessions = services.NewRedisSessions(redisKV.Client)
		log.Println("✅ Redis sessions enabled")
	} else {
		sessions = services.NewMemorySessions()
	}

	// Initialize Cloudinary service
	var uploader services.Uploader
	if cfg.CloudinaryConfigured() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
		} else {
			uploader = cld
			log.Println("✅ Cloudinary service initialized")
		}
	}
	if uploader == nil {
		log.Println("Warning: Cloudinary credentials not found. Logos will be stored inline")
	}

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit when Redis is available
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else if redisKV != nil {
		r.Use(middleware.RedisRateLimit(redisKV.Client))
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, handlers.New(st, sessions, hub, uploader))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("🚀 Messenger backend running on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	if err := st.Save(shutdownCtx); err != nil {
		log.Printf("Final save failed: %v", err)
	} else {
		log.Println("✅ State saved")
	}
}
