package main

import (
	"errors"
	"time"

	"github.com/bassista/newswatch/internal/logger"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Check the listing once, notify new entries and exit.",
	RunE:  runOnce,
}

func runOnce(cmd *cobra.Command, _ []string) error {
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

	log := logger.WithComponent("main")
	now := time.Now().In(loc)
	log.Infof("running at %s", now.Format(time.RFC3339))

	res, err := a.Run(cmd.Context(), now)
	if err != nil {
		return err
	}
	log.Infof("done: %s", res.Outcome)
	return nil
}
