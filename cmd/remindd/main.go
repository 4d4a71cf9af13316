package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/noirlang/medremind/internal/ai"
	"github.com/noirlang/medremind/internal/alarm"
	"github.com/noirlang/medremind/internal/bot"
	"github.com/noirlang/medremind/internal/bot/handlers"
	"github.com/noirlang/medremind/internal/clock"
	"github.com/noirlang/medremind/internal/config"
	"github.com/noirlang/medremind/internal/database"
	"github.com/noirlang/medremind/internal/repository"
	"github.com/noirlang/medremind/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Printf("AI client initialized (model: %s)", cfg.AIModel)
	} else {
		log.Println("AI client not configured, natural language input disabled")
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram API: %v", err)
	}

	repo := repository.NewMedicationRepository(db)
	clk := clock.System{}

	// The handlers deliver fired alarms, and the timer needs the fire
	// callback up front, so wire the timer first with a forwarding func.
	var h *handlers.Handlers
	timer := alarm.NewWakeTimer(func(identity int32, payload alarm.Payload) {
		h.DeliverAlarm(identity, payload)
	}, cfg.ExactTimer)
	defer timer.Stop()

	if !cfg.ExactTimer {
		log.Println("Exact timer privilege disabled, reminders fire on a best-effort minute grid")
	}

	sched := scheduler.New(repo, timer, clk)
	h = handlers.New(api, repo, sched, clk, aiClient, cfg.ChatID)

	go sched.Start(ctx)

	b := bot.New(api, h)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Starting bot...")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}
}
