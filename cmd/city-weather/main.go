package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/city-weather/internal/api/http"
	"github.com/i474232898/city-weather/internal/config"
	applog "github.com/i474232898/city-weather/internal/logger"
	"github.com/i474232898/city-weather/internal/scheduler"
	"github.com/i474232898/city-weather/internal/store"
	"github.com/i474232898/city-weather/internal/telegram"
	"github.com/i474232898/city-weather/internal/weather"
	"github.com/i474232898/city-weather/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := applog.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zlog.Sync() //nolint:errcheck

	displayLoc, err := cfg.DisplayLocation()
	if err != nil {
		zlog.Fatal("invalid display timezone", zap.Error(err))
	}
	formatter := weather.NewTimeFormatter(displayLoc)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	geocoder := newGeocoder(cfg, httpClient)
	forecaster := providers.NewOpenMeteoForecaster(httpClient, cfg.ForecastURL)
	zlog.Info("providers configured",
		zap.String("geocoder", geocoder.Name()),
		zap.String("forecaster", forecaster.Name()),
	)

	newOrchestrator := func() *weather.Orchestrator {
		return weather.NewOrchestrator(geocoder, forecaster, store.NewMemoryStore(), weather.Options{
			Cities:       cfg.Cities,
			QueryTimeout: cfg.QueryTimeout,
			Logger:       zlog,
		})
	}
	orch := newOrchestrator()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The page is served while the default city loads; clients see the
	// loading state over the event stream.
	go orch.Initialize(ctx, cfg.DefaultCity)

	sched := scheduler.New(orch, cfg.RefreshInterval, cfg.QueryTimeout, zlog)
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	if cfg.TelegramBotToken != "" {
		api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			zlog.Error("telegram bot disabled", zap.Error(err))
		} else {
			bot := telegram.NewBot(api, cfg.Cities, newOrchestrator, formatter, zlog)
			go bot.Start(ctx)
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               "city-weather",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${locals:requestid} | ${status} | ${latency} | ${method} | ${path}\n",
	}))
	app.Use(recover.New())

	handler := httpapi.NewHandler(orch, formatter, zlog)
	httpapi.RegisterRoutes(app, handler)

	go func() {
		zlog.Info("http server listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	handler.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}

func newGeocoder(cfg *config.AppConfig, client *http.Client) weather.Geocoder {
	if cfg.Geocoder == "google" {
		return providers.NewGoogleGeocoder(cfg.GoogleGeocoderKey)
	}
	return providers.NewOpenMeteoGeocoder(client, cfg.GeocodingURL)
}
