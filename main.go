// File: tutorhub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	"tutorhub/config"
	"tutorhub/cron"
	"tutorhub/database"
	groupRepo "tutorhub/database/repository/bookinggroup"
	"tutorhub/handlers"
	"tutorhub/middleware"
	"tutorhub/routes"
	"tutorhub/services/booking"
	"tutorhub/services/notification"
	"tutorhub/services/tasks"
	"tutorhub/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories.
	bookingRepo := groupRepo.NewGormBookingGroupRepo(database.DB)

	// Services.
	emailService := notification.NewHTTPEmailService()

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()

	bookingService := &booking.DefaultBookingGroupService{
		Repo:         bookingRepo,
		Email:        emailService,
		Reminders:    &tasks.AsynqReminderScheduler{Client: asynqClient},
		CacheClient:  utils.GetCacheClient(),
		ReminderLead: time.Duration(config.AppConfig.ReminderLeadHours) * time.Hour,
		Logger:       logger,
	}

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	// Background reminder worker and health monitor.
	cron.InitReminderWorker(emailService)
	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient()}, database.DB)

	// Register routes with the assembled handler.
	routes.RegisterRoutes(router, bookingHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
