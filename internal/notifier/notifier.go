// Package notifier delivers one aggregated webhook message per detected delta.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bassista/newswatch/internal/extractor"
	"github.com/bassista/newswatch/internal/logger"
	"github.com/go-resty/resty/v2"
)

const (
	// Separator goes between two entries in the message body.
	Separator = "\n-----------\n"

	// maxDescription is the embed description limit of Discord webhooks.
	maxDescription = 4096

	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

type Author struct {
	Name string `json:"name"`
}

type Embed struct {
	Title       string `json:"title"`
	Author      Author `json:"author"`
	Color       int    `json:"color"`
	URL         string `json:"url"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

// Payload is the JSON body posted to the webhook.
type Payload struct {
	Embeds []Embed `json:"embeds"`
}

// Options are the static parts of every message.
type Options struct {
	WebhookURL  string
	Title       string
	AuthorName  string
	Color       int
	RandomColor bool
}

// DeliveryError is returned when the webhook rejects the message or cannot be
// reached. It is not retried here.
type DeliveryError struct {
	StatusCode int // 0 on network failure
	Status     string
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("deliver notification: %v", e.Err)
	}
	return fmt.Sprintf("deliver notification: unexpected status %s: %s", e.Status, e.Body)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsDelivery reports whether err is a *DeliveryError.
func IsDelivery(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}

type Notifier struct {
	client *resty.Client
	opts   Options
	now    func() time.Time
	color  func() int
}

func New(client *resty.Client, opts Options) *Notifier {
	n := &Notifier{client: client, opts: opts, now: time.Now}
	n.color = func() int { return opts.Color }
	if opts.RandomColor {
		n.color = func() int { return rand.IntN(0x1000000) }
	}
	return n
}

// WithClock replaces the time source used for the message timestamp.
func (n *Notifier) WithClock(now func() time.Time) *Notifier {
	n.now = now
	return n
}

// Build assembles the payload for targetURL and entries without sending it.
func (n *Notifier) Build(targetURL string, entries []extractor.Entry) Payload {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, strings.TrimSpace(e.Text))
	}

	return Payload{Embeds: []Embed{{
		Title:       n.opts.Title,
		Author:      Author{Name: n.opts.AuthorName},
		Color:       n.color(),
		URL:         targetURL,
		Timestamp:   n.now().Format(timestampLayout),
		Description: truncate(strings.Join(parts, Separator), maxDescription),
	}}}
}

// Notify posts a single message for entries and waits for the webhook to
// confirm delivery.
func (n *Notifier) Notify(ctx context.Context, targetURL string, entries []extractor.Entry) error {
	payload := n.Build(targetURL, entries)
	logger.WithComponent("notify").Infof("sending webhook with %d entries", len(entries))

	res, err := n.client.R().
		SetContext(ctx).
		SetQueryParam("wait", "true").
		SetBody(payload).
		Post(n.opts.WebhookURL)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	if !res.IsSuccess() {
		return &DeliveryError{StatusCode: res.StatusCode(), Status: res.Status(), Body: res.String()}
	}
	return nil
}

// truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
