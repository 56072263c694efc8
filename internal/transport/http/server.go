package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"bloodlagbe_backend/internal/cache"
	"bloodlagbe_backend/internal/clerk"
	"bloodlagbe_backend/internal/config"
	"bloodlagbe_backend/internal/database"
	"bloodlagbe_backend/internal/handler"
	appredis "bloodlagbe_backend/internal/redis"
	"bloodlagbe_backend/internal/repository"
	"bloodlagbe_backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

// Run wires the whole service together and serves until SIGINT/SIGTERM.
// Every dependency is constructed here and injected downward; nothing holds
// process-wide mutable state of its own.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := redisClient.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Repositories
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)

	// Identity boundary + cache
	clerkClient := clerk.NewClient(cfg.ClerkAPIURL, cfg.ClerkSecretKey)
	recentCache := cache.NewRecentPostsCache(redisClient.Client)

	// Services
	profileService := service.NewProfileService(profileRepo)
	directoryService := service.NewDirectoryService(profileRepo, postRepo, clerkClient)
	postService := service.NewPostService(postRepo, recentCache)

	// Handlers
	profileHandler := handler.NewProfileHandler(profileService, directoryService)
	postHandler := handler.NewPostHandler(postService)
	webhookHandler := handler.NewWebhookHandler(profileService, cfg.ClerkWebhookSecret)

	router := NewRouter(RouterConfig{
		ProfileHandler: profileHandler,
		PostHandler:    postHandler,
		WebhookHandler: webhookHandler,
		ClerkJWTKey:    cfg.ClerkJWTKey,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
