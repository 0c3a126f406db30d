package main

import (
	"context"
	"fmt"
	"hackboard/internal/api"
	"hackboard/internal/app/service"
	"hackboard/internal/app/worker"
	"hackboard/internal/common/security"
	"hackboard/internal/domain/lifecycle"
	"hackboard/internal/domain/repository"
	"hackboard/internal/platform/config"
	"hackboard/internal/platform/database"
	"hackboard/internal/platform/lock"
	"hackboard/internal/platform/metrics"
	"hackboard/internal/platform/queue"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// 1. Load Configuration
	config.Load()
	cfg := config.AppConfig
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	database.Migrate(migrateCtx)
	migrateCancel()

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	metrics.Register()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	hackathonRepo := repository.NewPgHackathonRepository(database.DB)
	appRepo := repository.NewPgApplicationRepository(database.DB)

	locker := lock.NewRedisLocker(queue.RDB, cfg.LockPrefix, cfg.LockTTL, cfg.LockWait)
	notificationQueue := queue.New(queue.RDB, cfg.NotificationQueueName)

	// 6. Initialize Services
	clock := lifecycle.SystemClock
	notifier := service.NewNotificationService(notificationQueue, clock)
	authService := service.NewAuthService(userRepo)
	hackathonService := service.NewHackathonService(hackathonRepo, appRepo, clock)
	applicationService := service.NewApplicationService(appRepo, hackathonRepo, locker, notifier, clock)
	reviewService := service.NewReviewService(appRepo, hackathonRepo, locker, notifier, clock)
	rankingService := service.NewRankingService(appRepo, hackathonRepo, locker, clock)

	// 7. Initialize Notification Worker (as a goroutine)
	var sender worker.Sender = worker.LogSender{}
	if cfg.NotifyWebhookURL != "" {
		sender = worker.NewWebhookSender(cfg.NotifyWebhookURL)
	}
	notificationWorker := worker.NewNotificationWorker(notificationQueue, sender)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go notificationWorker.Start(workerCtx)
	fmt.Println("Notification worker started.")

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(api.Services{
		Auth:         authService,
		Hackathons:   hackathonService,
		Applications: applicationService,
		Reviews:      reviewService,
		Rankings:     rankingService,
	}, api.Options{
		AllowedOrigins:       cfg.CORSAllowedOrigins,
		RankingWebhookSecret: cfg.RankingWebhookSecret,
		Health: func(r *http.Request) (map[string]any, error) {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := database.DB.PingContext(ctx); err != nil {
				return nil, fmt.Errorf("database: %w", err)
			}
			if err := queue.RDB.Ping(ctx).Err(); err != nil {
				return nil, fmt.Errorf("redis: %w", err)
			}
			pending, err := notificationQueue.Len(ctx)
			if err != nil {
				return nil, fmt.Errorf("notification queue: %w", err)
			}
			return map[string]any{"pending_notifications": pending}, nil
		},
	})
	if cfg.RankingWebhookSecret == "" {
		log.Println("WARN: RANKING_WEBHOOK_SECRET is not set, the ranking webhook is disabled")
	}

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
