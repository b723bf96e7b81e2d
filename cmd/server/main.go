package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"atcrank/internal/api"
	"atcrank/internal/app/service"
	"atcrank/internal/app/worker"
	"atcrank/internal/common/security"
	"atcrank/internal/domain/repository"
	"atcrank/internal/domain/week"
	"atcrank/internal/platform/atcoder"
	"atcrank/internal/platform/config"
	"atcrank/internal/platform/database"
	"atcrank/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Week anchor and remote client
	anchor, err := week.NewAnchor(config.AppConfig.WeekAnchorWeekday, config.AppConfig.WeekAnchorHour, config.AppConfig.Timezone)
	if err != nil {
		log.Fatalf("Invalid week anchor configuration: %v", err)
	}
	remote := atcoder.NewClient(
		config.AppConfig.AtcoderProblemsBaseURL,
		config.AppConfig.AtcoderBaseURL,
		time.Duration(config.AppConfig.FetchTimeoutSeconds)*time.Second,
		config.AppConfig.FetchMaxRetries,
	)

	// 6. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	accountRepo := repository.NewPgAccountRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	progressRepo := repository.NewPgProgressRepository(database.DB)
	scoreRepo := repository.NewPgScoreRepository(database.DB)
	txRunner := repository.NewSQLTxRunner(database.DB)

	// 7. Initialize Services
	authService := service.NewAuthService(accountRepo)
	userService := service.NewUserService(userRepo, progressRepo, scoreRepo, remote, txRunner, anchor, config.AppConfig.InitialFetchEpoch)
	leaderboardService := service.NewLeaderboardService(scoreRepo, anchor)
	catalogService := service.NewCatalogService(problemRepo, remote)
	ratingService := service.NewRatingService(userRepo, remote)
	ingestService := service.NewIngestService(
		userRepo, problemRepo, progressRepo, scoreRepo, remote, txRunner, anchor,
		service.IngestOptions{
			InitialFetchEpoch: config.AppConfig.InitialFetchEpoch,
			LookbackSeconds:   config.AppConfig.LookbackSeconds,
			Cooldown:          time.Duration(config.AppConfig.CooldownDays) * 24 * time.Hour,
			FlatBaseScore:     config.AppConfig.FlatBaseScore,
		},
	)

	// 8. Initialize Workers
	dispatcher := worker.NewNotifyDispatcher(queue.RDB, config.AppConfig.NotifyQueueName)
	pollWorker := worker.NewPollWorker(
		queue.RDB, userRepo, ingestService, dispatcher,
		config.AppConfig.IngestLockPrefix,
		time.Duration(config.AppConfig.IngestLockTTLSeconds)*time.Second,
	)

	scheduler, err := worker.NewScheduler(pollWorker, catalogService, ratingService, leaderboardService, dispatcher, anchor)
	if err != nil {
		log.Fatalf("Could not create scheduler: %v", err)
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	err = scheduler.Start(workerCtx, worker.SchedulerIntervals{
		Poll:        time.Duration(config.AppConfig.PollIntervalSeconds) * time.Second,
		CatalogSync: time.Duration(config.AppConfig.ProblemsSyncIntervalSeconds) * time.Second,
		RatingSync:  time.Duration(config.AppConfig.RatingsSyncIntervalSeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("Could not start scheduler: %v", err)
	}
	fmt.Println("Scheduler started.")

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(authService, userService, leaderboardService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop

	log.Println("Shutting down server...")
	workerCancel()
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("ERROR: scheduler shutdown: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and workers stopped gracefully.")
}
