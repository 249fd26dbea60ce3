package main

import (
	"errors"

	"github.com/bassista/newswatch/internal/app"
	"github.com/bassista/newswatch/internal/config"
	"github.com/bassista/newswatch/internal/logger"
	"github.com/bassista/newswatch/internal/scheduler"
	"github.com/spf13/cobra"
)

var runImmediately *bool

func init() {
	runImmediately = watchCmd.Flags().Bool("now", true, "Run once immediately before waiting for the first tick.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--now=false]",
	Short: "Stay in the foreground and check the listing on misc.schedule.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, a, reporter, err := setup()
		if errors.Is(err, errNotConfigured) {
			return nil
		}
		if err != nil {
			return err
		}
		defer reporter.Flush()

		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		s, err := scheduler.NewCronScheduler(cfg.Misc.Schedule, loc, a)
		if err != nil {
			return err
		}

		log := logger.WithComponent("main")
		watching := config.WatchConfig(func(next *config.Config) {
			if next.Misc.Schedule != cfg.Misc.Schedule || next.Misc.Timezone != cfg.Misc.Timezone {
				log.Warn("schedule and timezone changes take effect after a restart")
			}
			logger.ApplyLevel(next.Misc.LogLevel)
			nextApp, err := app.NewFromConfig(next, reporter)
			if err != nil {
				log.Errorf("cannot apply reloaded config: %v", err)
				return
			}
			s.SetRunner(nextApp)
		})
		if watching {
			log.Info("watching config file for changes")
		}

		done := s.Start(cmd.Context())
		if *runImmediately {
			s.RunNow()
		}
		<-done
		return nil
	},
}
