package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homework_notification_bot/internal/app"
	"homework_notification_bot/internal/infra/config"
	"homework_notification_bot/internal/infra/logger"
	"homework_notification_bot/internal/infra/practicum"
	"homework_notification_bot/internal/infra/scheduler"
	itelegram "homework_notification_bot/internal/infra/telegram"
	"homework_notification_bot/internal/infra/web"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Poll interval: %s",
		cfg.LogLevel, cfg.Environment, cfg.PollInterval)

	// Initialize Telegram Bot. The bot is send-only: no poller is
	// started, so no inbound updates are consumed.
	bot, err := telebot.NewBot(telebot.Settings{Token: cfg.TelegramToken})
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}
	telegramClient := itelegram.NewTelebotAdapter(bot)
	log.Info("Telegram client initialized")

	// Initialize Practicum API client
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	apiClient := practicum.NewClient(httpClient, cfg.Endpoint, cfg.PracticumToken, log)
	log.Info("Practicum API client initialized")

	// Initialize PollerService
	poller := app.NewPollerService(apiClient, telegramClient, cfg.TelegramChatID, cfg.PollInterval, log)
	log.Info("Poller service initialized")

	// Initialize DigestScheduler
	digestScheduler := scheduler.NewDigestScheduler(poller, log, cfg.CronSpecDigest)
	if err := digestScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start digest scheduler: %v", err)
	}

	// Initialize status HTTP server
	handler := web.NewHandler(poller, log)
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler.SetupRoutes(),
	}
	go func() {
		log.Infof("Status HTTP server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: Status HTTP server failed: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go poller.Run(ctx)

	log.Info("Application setup complete. Poller is running...")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	cancel()
	digestScheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Error shutting down status HTTP server: %v", err)
	}
	log.Info("Application shut down gracefully")
}
