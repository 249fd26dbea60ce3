package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bassista/newswatch/internal/config"
	"github.com/bassista/newswatch/internal/detector"
	"github.com/bassista/newswatch/internal/extractor"
	"github.com/bassista/newswatch/internal/fetcher"
	"github.com/bassista/newswatch/internal/httpclient"
	"github.com/bassista/newswatch/internal/logger"
	"github.com/bassista/newswatch/internal/notifier"
	"github.com/bassista/newswatch/internal/period"
	"github.com/bassista/newswatch/internal/report"
	"github.com/bassista/newswatch/internal/repository"
	"github.com/containerd/errdefs"
)

// Fetcher retrieves the raw listing page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Extractor parses a listing page into entries, newest first.
type Extractor interface {
	Extract(doc []byte, selector string) ([]extractor.Entry, error)
}

// Notifier delivers one message for a delta.
type Notifier interface {
	Notify(ctx context.Context, targetURL string, entries []extractor.Entry) error
}

// App wires the pipeline components. It holds no per-run state, so one App
// can serve many sequential runs.
type App struct {
	Config    *config.Config
	Repo      repository.Repository
	Fetcher   Fetcher
	Extractor Extractor
	Notifier  Notifier
	Reporter  report.Reporter
}

func New(cfg *config.Config, repo repository.Repository, f Fetcher, x Extractor, n Notifier, r report.Reporter) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if repo == nil {
		return nil, errors.New("repo is nil")
	}
	if f == nil {
		return nil, errors.New("fetcher is nil")
	}
	if x == nil {
		return nil, errors.New("extractor is nil")
	}
	if n == nil {
		return nil, errors.New("notifier is nil")
	}
	if r == nil {
		return nil, errors.New("reporter is nil")
	}

	return &App{
		Config:    cfg,
		Repo:      repo,
		Fetcher:   f,
		Extractor: x,
		Notifier:  n,
		Reporter:  r,
	}, nil
}

// NewFromConfig builds the production components described by cfg.
func NewFromConfig(cfg *config.Config, r report.Reporter) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	repo, err := repository.NewJSONRepository(cfg.Data.FilePath)
	if err != nil {
		return nil, fmt.Errorf("cannot init repository: %w", err)
	}

	x, err := extractor.New(cfg.Source.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("cannot init extractor: %w", err)
	}

	client := httpclient.New(httpclient.Options{
		Timeout:   cfg.HTTP.Timeout,
		UserAgent: cfg.HTTP.UserAgent,
	})
	n := notifier.New(client, notifier.Options{
		WebhookURL:  cfg.Notify.WebhookURL,
		Title:       cfg.Notify.Title,
		AuthorName:  cfg.Notify.AuthorName,
		Color:       cfg.Notify.Color,
		RandomColor: cfg.Notify.RandomColor,
	})

	return New(cfg, repo, fetcher.New(client), x, n, r)
}

// Run performs one observation pass at time now.
//
// Benign terminal conditions (no webhook configured, period page missing, no
// change) return a nil error. Transport, persistence and delivery failures are
// reported and returned. The baseline only advances after the notification
// was delivered, so a failed delivery is retried by the next run.
func (a *App) Run(ctx context.Context, now time.Time) (Result, error) {
	log := logger.WithComponent("run")
	res := Result{}

	if !a.Config.Configured() {
		log.Warn("webhook URL not set (DISCORD_WEBHOOK_URL / notify.webhook_url), exiting")
		res.Outcome = NotConfigured
		return res, nil
	}

	baseline, err := a.Repo.Load(ctx)
	if err != nil {
		return res, a.fail(StageLoad, err, nil)
	}

	src := a.Config.Source
	res.PeriodKey = period.Key(now, src.OffsetDays, src.DateFormat)
	res.URL = period.URL(src.URLFormat, src.BaseURL, res.PeriodKey)
	log.Infof("fetching listing from %s", res.URL)

	doc, err := a.Fetcher.Fetch(ctx, res.URL)
	if err != nil {
		if errdefs.IsNotFound(err) {
			log.Infof("period %s has no listing yet, exiting", res.PeriodKey)
			res.Outcome = PeriodMissing
			return res, nil
		}
		return res, a.fail(StageFetch, err, map[string]any{"url": res.URL})
	}

	entries, err := a.Extractor.Extract(doc, src.Selector)
	if err != nil {
		return res, a.fail(StageExtract, err, map[string]any{"url": res.URL, "selector": src.Selector})
	}

	decision := detector.Decide(detector.Listing{PeriodKey: res.PeriodKey, Entries: entries}, baseline)
	res.Decision = decision.Kind
	log.WithField("decision", decision.Kind).Debugf("found %d entries, baseline %s/%d",
		len(entries), baseline.Date, baseline.NewsItemCount)

	switch decision.Kind {
	case detector.NoChange:
		log.Info("no new entries")
	case detector.EntriesRemoved:
		log.Warnf("listing for %s shrank by %d entries (%d -> %d), re-syncing baseline without notifying",
			res.PeriodKey, -decision.DeltaSize, baseline.NewsItemCount, len(entries))
	case detector.NewPeriod:
		log.Infof("new period %s, notifying all %d entries", res.PeriodKey, decision.DeltaSize)
	case detector.EntriesAdded:
		log.Infof("%d new entries, notifying", decision.DeltaSize)
	}

	switch {
	case decision.Notifies():
		delta := Delta{PeriodKey: res.PeriodKey, TargetURL: res.URL, Entries: decision.Delta}
		for i, e := range delta.Entries {
			log.WithField("links", len(e.Links)).Debugf("entry %d: %s", i, e.Text)
		}
		if err := a.Notifier.Notify(ctx, delta.TargetURL, delta.Entries); err != nil {
			return res, a.fail(StageNotify, err, map[string]any{"url": res.URL, "entries": len(delta.Entries)})
		}
		res.Notified = len(delta.Entries)
		res.Outcome = Notified
	case decision.Persists():
		res.Outcome = Resynced
	default:
		res.Outcome = Unchanged
	}

	if !decision.Persists() {
		return res, nil
	}
	if err := a.Repo.Save(ctx, decision.Next); err != nil {
		// The message went out but the baseline did not move: the next run
		// will notify the same delta again.
		res.Outcome = Failed
		return res, a.fail(StageSave, err, map[string]any{"date": decision.Next.Date})
	}
	return res, nil
}

func (a *App) fail(stage Stage, err error, fields map[string]any) error {
	runErr := &RunError{Stage: stage, Err: err}
	log := logger.WithComponent("run").WithField("stage", stage)
	log.Error(runErr)

	tags := []string{"newswatch", string(stage)}
	var te *fetcher.TransportError
	switch {
	case errors.As(err, &te):
		tags = append(tags, "transport")
		if te.Body != "" {
			log.Debugf("response body: %s", te.Body)
		}
	case notifier.IsDelivery(err):
		tags = append(tags, "delivery")
	}

	a.Reporter.Report(runErr, fields, tags...)
	return runErr
}
