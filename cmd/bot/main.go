package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance_exception_bot/internal/app"
	"attendance_exception_bot/internal/infra/config"
	"attendance_exception_bot/internal/infra/httpapi"
	"attendance_exception_bot/internal/infra/logger"
	"attendance_exception_bot/internal/infra/metrics"
	"attendance_exception_bot/internal/infra/scheduler"
	"attendance_exception_bot/internal/infra/storage"
	"attendance_exception_bot/internal/infra/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("Attendance Exception Bot starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":      cfg.LogLevel,
		"environment":    cfg.Environment,
		"storage_driver": cfg.StorageDriver,
		"timezone":       cfg.Location.String(),
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage backend
	backend, closeBackend, err := storage.Open(ctx, cfg)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open storage backend")
	}
	defer func() {
		if err := closeBackend(); err != nil {
			mainLogger.WithError(err).Warn("Closing storage backend failed")
		}
	}()
	mainLogger.WithField("backend", storage.Describe(backend)).Info("Storage backend opened")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store := app.NewRecordStore(backend,
		app.WithStorageKey(cfg.StorageKey),
		app.WithLocation(cfg.Location),
		app.WithObserver(metrics.NewStoreMetrics(reg)),
	)
	if err := store.Load(ctx); err != nil {
		mainLogger.WithError(err).Fatal("Could not load attendance records")
	}
	mainLogger.WithField("records", store.Len()).Info("Attendance records loaded")

	svc := app.NewAttendanceService(store, app.NewQueryEngine(cfg.RosterSize, cfg.Location))

	var (
		bot    *telebot.Bot
		digest *scheduler.WeeklyDigestScheduler
	)
	if cfg.BotEnabled() {
		botLogger := logger.Component("telegram")
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{
						"sender_id": c.Sender().ID,
						"chat_id":   c.Chat().ID,
						"text":      c.Text(),
					})
				}
				entry.Error("Telebot error")
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}

		// Register Handlers
		telegram.RegisterBotCommands(bot, cfg.TeacherTelegramID, botLogger)
		telegram.RegisterStudentHandlers(ctx, bot, svc, botLogger)
		telegram.RegisterTeacherHandlers(ctx, bot, svc, cfg.TeacherTelegramID, botLogger)
		telegram.RegisterConfirmationHandlers(ctx, bot, svc, cfg.TeacherTelegramID, botLogger)
		mainLogger.Info("Telegram command handlers registered")

		digest = scheduler.NewWeeklyDigestScheduler(
			svc,
			telegram.NewTelebotAdapter(bot),
			cfg.TeacherTelegramID,
			logger.Component("scheduler"),
			cfg.CronSpecWeeklyDigest,
		)
		if err := digest.Start(); err != nil {
			mainLogger.WithError(err).Fatal("Could not start weekly digest scheduler")
		}

		// Start bot in a goroutine so it doesn't block graceful shutdown handling
		go bot.Start()
		mainLogger.Info("Telegram bot polling started")
	}

	var server *httpapi.Server
	if cfg.HTTPEnabled() {
		server = httpapi.NewServer(svc, reg, logger.Component("httpapi"))
		go func() {
			if err := server.Listen(cfg.HTTPAddr); err != nil {
				mainLogger.WithError(err).Error("HTTP API stopped")
				stop()
			}
		}()
	}

	mainLogger.Info("Application setup complete")
	<-ctx.Done() // Block until a signal is received

	mainLogger.Info("Shutting down application...")
	if digest != nil {
		digest.Stop()
	}
	if bot != nil {
		bot.Stop()
	}
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(shutdownCtx); err != nil {
			mainLogger.WithError(err).Warn("HTTP API shutdown failed")
		}
		cancel()
	}
	mainLogger.Info("Application shut down gracefully.")
}
