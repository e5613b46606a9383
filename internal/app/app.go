package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"autoblogger/internal/config"
	"autoblogger/internal/images"
	"autoblogger/internal/infrastructure/llm"
	"autoblogger/internal/infrastructure/media"
	"autoblogger/internal/infrastructure/notify"
	"autoblogger/internal/infrastructure/stock"
	"autoblogger/internal/infrastructure/storage"
	"autoblogger/internal/infrastructure/trigger"
	"autoblogger/internal/logging"
	"autoblogger/internal/ports"
	"autoblogger/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configuration to use cases and owns the run lifecycle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	scheduler *usecase.Scheduler
	generator *usecase.Generator
	topics    *usecase.TopicSynthesizer
	trigger   ports.Trigger
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := storage.NewPostgresStore(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare storage: %w", err)
	}

	providers := llm.NewRegistry()
	providers.Register(llm.NewOpenAIClient("openai", cfg.Providers.OpenAI))
	providers.Register(llm.NewOpenAIClient("deepseek", cfg.Providers.DeepSeek))
	providers.Register(llm.NewGeminiClient(cfg.Providers.Gemini))

	searchers := stock.NewRegistry()
	searchers.Register(stock.NewUnsplashClient(cfg.Images.UnsplashAccessKey, ""))
	searchers.Register(stock.NewPexelsClient(cfg.Images.PexelsAPIKey, ""))
	searchers.Register(stock.NewPixabayClient(cfg.Images.PixabayAPIKey, ""))

	ledger := images.NewLedger(images.DefaultLedgerCap, store)
	if err := ledger.Load(ctx); err != nil {
		baseLogger.Warn("used-image history unavailable, starting empty", "error", err)
	}

	sideloader := media.NewSideloader(cfg.Site.MediaDir, cfg.Site.MediaBaseURL)

	generator := usecase.NewGenerator(usecase.GeneratorDeps{
		Templates:      store,
		Providers:      providers,
		Searchers:      searchers,
		Articles:       store,
		Sideloader:     sideloader,
		Ledger:         ledger,
		Logger:         baseLogger.With("component", "generator"),
		SystemAuthorID: cfg.Site.SystemAuthorID,
	})

	topics := usecase.NewTopicSynthesizer(providers, store)

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
		if err != nil {
			baseLogger.Warn("telegram notifier disabled", "error", err)
		} else {
			notifier = tg
		}
	}

	scheduler := usecase.NewScheduler(usecase.SchedulerDeps{
		Schedules:     store,
		Articles:      store,
		Generator:     generator,
		Topics:        topics,
		Notifier:      notifier,
		Location:      cfg.Scheduler.Location(),
		Logger:        baseLogger.With("component", "scheduler"),
		EditURLFormat: cfg.Site.EditURLFormat,
	})

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		scheduler: scheduler,
		generator: generator,
		topics:    topics,
		trigger:   trigger.NewCronTrigger(cfg.Scheduler.CronExpression, cfg.Scheduler.Location()),
	}, nil
}

// Generator exposes the pipeline for interactive runs.
func (a *Application) Generator() *usecase.Generator {
	return a.generator
}

// Scheduler exposes the recurring-job engine, e.g. for re-anchoring after an
// operator save.
func (a *Application) Scheduler() *usecase.Scheduler {
	return a.scheduler
}

// Topics exposes batch topic synthesis for operator tooling.
func (a *Application) Topics() *usecase.TopicSynthesizer {
	return a.topics
}

// Run starts the trigger and blocks until the context is canceled.
func (a *Application) Run(ctx context.Context) error {
	err := a.trigger.Start(ctx, func(_ time.Time) {
		if scanErr := a.scheduler.RunPendingJobs(ctx); scanErr != nil {
			a.logger.Error("due-job scan failed", "error", scanErr)
		}
	})
	if err != nil {
		return fmt.Errorf("start trigger: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.trigger.Stop(stopCtx); err != nil {
		a.logger.Warn("trigger stop timed out", "error", err)
	}

	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
