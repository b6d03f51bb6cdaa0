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

	"taskdiary/internal/api"
	"taskdiary/internal/app/service"
	"taskdiary/internal/common/security"
	"taskdiary/internal/domain/repository"
	"taskdiary/internal/platform/cache"
	"taskdiary/internal/platform/config"
	"taskdiary/internal/platform/database"
	"taskdiary/internal/platform/session"
	"taskdiary/internal/view"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize session token signing
	security.InitTokenAuth(config.AppConfig.JWTKey)
	fmt.Println("Token auth initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories and stores
	userRepo := repository.NewPgUserRepository(database.DB)
	taskRepo := repository.NewPgTaskRepository(database.DB)
	diaryRepo := repository.NewPgDiaryRepository(database.DB)
	sessionStore := session.NewRedisStore(cache.RDB)
	flashStore := session.NewRedisFlashStore(cache.RDB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo)
	sessionService := service.NewSessionService(sessionStore, userRepo, config.AppConfig.SessionTTL)
	taskService := service.NewTaskService(taskRepo)
	diaryService := service.NewDiaryService(diaryRepo)
	dashboardService := service.NewDashboardService(taskRepo, diaryRepo)
	exportService := service.NewExportService(taskRepo, diaryRepo, userRepo)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(
		authService,
		sessionService,
		taskService,
		diaryService,
		dashboardService,
		exportService,
		view.NewJSONRenderer(),
		flashStore,
	)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
