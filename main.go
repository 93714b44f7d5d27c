package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	telego "github.com/mymmrac/telego"

	appBot "brandpost-bot/bot"
	"brandpost-bot/internal/auth"
	"brandpost-bot/internal/brand"
	"brandpost-bot/internal/config"
	"brandpost-bot/internal/database"
	"brandpost-bot/internal/handlers"
	"brandpost-bot/internal/locales"
	"brandpost-bot/internal/pending"
	"brandpost-bot/internal/publisher"
	"brandpost-bot/internal/queue"
	"brandpost-bot/internal/watermark"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize localization bundle
	locales.Init(cfg.DefaultLanguage)

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to MongoDB
	client, db, err := database.ConnectDB(cfg)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer func() {
		if err = client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
			sentry.CaptureException(err)
		} else {
			log.Println("Disconnected from MongoDB.")
		}
	}()

	// Create repository instances
	queueRepo := database.NewMongoQueueRepository(db)
	pendingRepo := database.NewMongoPendingRepository(db)
	postRepo := database.NewMongoPostRepository(db)
	brandRepo := database.NewMongoBrandRepository(db)
	correctionRepo := database.NewMongoCorrectionRepository(db)
	mongoLogger := database.NewMongoLogger(db)

	// Creating context for application lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Bot Initialization ---
	// 1. Create the raw telego bot instance first
	var bot *telego.Bot
	if cfg.Debug {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultDebugLogger())
	} else {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, false))
	}
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create telego bot: %v", err)
	}

	// 2. Create the publishing pipeline
	resolver := brand.NewResolver(brandRepo)
	var transformer publisher.Transformer
	if cfg.AddWatermark {
		transformer = watermark.New(bot, cfg.BotName)
	}
	pub := publisher.New(bot, cfg, resolver, postRepo, brandRepo, correctionRepo, transformer)

	publishQueue := queue.New(queueRepo)
	consumer := queue.NewConsumer(publishQueue, queueRepo, pub)
	go consumer.Run(ctx)

	// 3. Create the admin checker against the primary destination, when the
	// destination directory knows it.
	var adminChecker *auth.AdminChecker
	if cfg.TargetGroup != "" {
		targetChatID, err := brandRepo.GetDestinationChatID(ctx, cfg.TargetGroup)
		if err != nil {
			log.Printf("Target group %q not found in destination directory, admin checks disabled: %v", cfg.TargetGroup, err)
		} else if adminChecker, err = auth.NewAdminChecker(bot, targetChatID); err != nil {
			sentry.CaptureException(err)
			log.Fatalf("Failed to create admin checker: %v", err)
		}
	}

	// 4. Create message handler with dependencies
	messageHandler := handlers.NewMessageHandler(
		cfg,
		bot,
		publishQueue,
		pending.NewStore(pendingRepo),
		mongoLogger,
		mongoLogger,
		adminChecker,
	)

	// 5. Start long polling and create the bot wrapper
	updatesChan, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to start long polling: %v", err)
	}

	wrapper, err := appBot.New(appBot.BotDeps{
		Bot:         bot,
		UpdatesChan: updatesChan,
		Debug:       cfg.Debug,
		Handler:     messageHandler,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}

	// Start the bot wrapper's processing loop in a separate goroutine
	go wrapper.Start(ctx)

	// Wait for context cancellation (e.g., SIGINT, SIGTERM)
	<-ctx.Done()

	log.Println("Shutting down bot...")
	wrapper.Stop()

	log.Println("Bot shutdown complete.")
}
