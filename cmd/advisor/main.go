// Package main is the entry point for the SGB advisor.
//
// One run scrapes the live SGB listing from NSE and the reference gold price
// from IBJA, estimates each bond's XIRR assuming redemption at the current
// gold price, ranks the bonds and delivers the result through the configured
// notification channels. By default the process runs once and exits; with
// SGB_SCHEDULE set it stays up and runs on that cron schedule.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/aristath/sgbadvisor/internal/advisor"
	"github.com/aristath/sgbadvisor/internal/config"
	"github.com/aristath/sgbadvisor/internal/notify"
	"github.com/aristath/sgbadvisor/internal/scraper"
	"github.com/aristath/sgbadvisor/internal/scrips"
	"github.com/aristath/sgbadvisor/internal/valuation"
	"github.com/aristath/sgbadvisor/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting SGB advisor")
	if !cfg.Headless() {
		log.Debug().Msg("Running browser in headed mode")
	}

	if cfg.Schedule == "" {
		if err := runOnce(cfg, log); err != nil {
			log.Fatal().Err(err).Msg("Run failed")
		}
		return
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Schedule, func() {
		if err := runOnce(cfg, log); err != nil {
			log.Error().Err(err).Msg("Scheduled run failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Schedule).Msg("Invalid cron schedule")
	}

	scheduler.Start()
	log.Info().Str("schedule", cfg.Schedule).Msg("Scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	<-scheduler.Stop().Done()
	log.Info().Msg("Shutdown complete")
}

// runOnce executes one full pipeline pass with a fresh run-scoped cache.
func runOnce(cfg *config.Config, log zerolog.Logger) error {
	registry, err := scrips.Load(cfg.ScripsPath, log)
	if err != nil {
		return err
	}

	browserCfg := scraper.DefaultBrowserConfig(cfg.Headless())
	cache := scraper.NewCache()

	pipeline := advisor.New(
		scraper.NewNSEClient(browserCfg, registry, cache, log),
		scraper.NewGoldClient(browserCfg, cache, log),
		valuation.New(log),
		log,
	)

	result, err := pipeline.Run()
	if err != nil {
		return err
	}

	ctx := context.Background()

	modes, err := notify.ResolveModes(cfg)
	if err != nil {
		return err
	}

	var email notify.EmailChannel
	if modes[notify.ModeEmail] {
		if email, err = notify.NewEmailSender(ctx, cfg.Email, log); err != nil {
			return err
		}
	}

	telegram := notify.NewTelegramClient(cfg.Telegram, func(url, selector string) ([]byte, error) {
		return scraper.ScreenshotElement(browserCfg, url, selector)
	}, log)

	return notify.New(cfg, email, telegram, log).Notify(ctx, result)
}
