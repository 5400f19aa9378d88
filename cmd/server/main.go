package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/veeragonivk/NTCT-gtm-web-app/internal/chat"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/clients"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/config"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/handlers"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/router"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/session"
	"github.com/veeragonivk/NTCT-gtm-web-app/internal/transport"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("🚀 Starting GTM Chat Gateway...")

	cfg := config.Load()
	log.Printf("📋 Service: %s", cfg.ServiceName)
	log.Printf("🤖 AI Hub model: %s", cfg.AIHubModel)
	if cfg.AIHubAPIKey == "" {
		log.Println("⚠️ AIHUB_API_KEY is not set; routing will answer with a configuration error")
	}

	// Pending-turn store: Redis when configured, in-memory otherwise
	var store session.Store
	if cfg.RedisURL != "" {
		log.Println("🔌 Connecting to Redis...")
		redisStore, err := session.NewRedisStore(cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		log.Println("✅ Redis pending-turn store connected")
		store = redisStore
	} else {
		store = session.NewMemoryStore()
		log.Println("💾 Using in-memory pending-turn store")
	}

	intentRouter := router.New(cfg.AIHubBaseURL, cfg.AIHubAPIKey, cfg.AIHubModel, cfg.AIHubTimeout)
	dispatcher := clients.NewDispatcher(cfg)
	coordinator := chat.NewCoordinator(intentRouter, dispatcher, store)
	chatHandler := handlers.NewChatHandler(coordinator, cfg.SessionTTL, "./web/static/index.html")
	log.Println("✅ Turn coordinator initialized")

	r := gin.Default()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
		r.Use(cors.New(corsConfig))
	} else {
		r.Use(cors.Default())
	}

	r.GET("/health", handlers.HealthCheck)
	r.GET("/", chatHandler.Index)
	r.Static("/static", "./web/static")
	r.POST("/chat", chatHandler.Chat)

	// Optional NATS transport over the same coordinator
	if cfg.NatsURL != "" {
		log.Println("📡 Connecting to NATS...")
		natsTransport, err := transport.NewNATSTransport(cfg, coordinator)
		if err != nil {
			log.Fatalf("❌ Failed to initialize NATS transport: %v", err)
		}
		defer natsTransport.Close()

		if err := natsTransport.Start(); err != nil {
			log.Fatalf("❌ Failed to start NATS transport: %v", err)
		}
		log.Printf("👂 Listening on subject: %s", cfg.NatsChatSubject)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("✅ GTM Chat Gateway listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("🛑 Received signal: %v", sig)
	log.Println("🔄 Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️ Error shutting down HTTP server: %v", err)
	}

	log.Println("👋 GTM Chat Gateway stopped")
}
