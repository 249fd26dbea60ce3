// Package httpclient builds the resty client shared by the fetcher and the
// notifier.
package httpclient

import (
	"time"

	"github.com/bassista/newswatch/internal/logger"
	"github.com/go-resty/resty/v2"
)

// Options tunes the client. Zero values keep resty's defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// New returns a resty client that logs every exchange at debug level.
// It never retries: a failed run is retried by the next scheduled invocation.
func New(opts Options) *resty.Client {
	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}
	client.SetRetryCount(0)

	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		logger.WithComponent("http").Debugf("%s %s -> %d (%s)",
			res.Request.Method, res.Request.URL, res.StatusCode(), res.Time())
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		logger.WithComponent("http").Debugf("%s %s failed: %v", req.Method, req.URL, err)
	})
	return client
}
