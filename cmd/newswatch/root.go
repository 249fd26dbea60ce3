package main

import (
	"errors"

	"github.com/bassista/newswatch/internal/app"
	"github.com/bassista/newswatch/internal/config"
	"github.com/bassista/newswatch/internal/logger"
	"github.com/bassista/newswatch/internal/report"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "newswatch",
	Short:        "newswatch notifies a webhook when new entries appear on a monthly listing page.",
	SilenceUsage: true,
	// Running without a subcommand performs a single pass.
	RunE: runOnce,
}

// errNotConfigured stops a command early without a failure exit code.
var errNotConfigured = errors.New("webhook not configured")

// setup loads configuration and builds the pipeline shared by all commands.
// It returns errNotConfigured before touching anything else when no webhook
// is set.
func setup() (*config.Config, *app.App, report.Reporter, error) {
	log := logger.WithComponent("main")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Errorf("configuration error: %v", err)
		return nil, nil, nil, err
	}
	if !cfg.Configured() {
		log.Warn("webhook URL not set (DISCORD_WEBHOOK_URL / notify.webhook_url), exiting")
		return cfg, nil, nil, errNotConfigured
	}

	if !logger.ApplyLevel(cfg.Misc.LogLevel) {
		log.Warnf("invalid log level '%s', keeping '%s'", cfg.Misc.LogLevel, logger.Logger.GetLevel())
	}
	log.Debugf("log level set to: %s", logger.Logger.GetLevel())

	reporter := report.New(logger.Logger)
	a, err := app.NewFromConfig(cfg, reporter)
	if err != nil {
		log.Errorf("cannot init app: %v", err)
		return nil, nil, nil, err
	}
	return cfg, a, reporter, nil
}
