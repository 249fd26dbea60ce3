// Package fetcher retrieves the remote listing page for a period.
package fetcher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"
	"github.com/go-resty/resty/v2"
)

// maxBodyInError bounds how much of a failed response ends up in logs.
const maxBodyInError = 512

// TransportError is any fetch failure other than a missing page: a non-2xx
// status or a network error. It is worth reporting.
type TransportError struct {
	URL        string
	StatusCode int // 0 on network failure
	Status     string
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %s", e.URL, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Fetcher performs a single GET per call, without retries.
type Fetcher struct {
	client *resty.Client
}

func New(client *resty.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch returns the raw document at url. A 404 yields an error for which
// errdefs.IsNotFound is true; everything else that is not 2xx is a
// *TransportError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	if res.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("fetch %s: %w", url, errdefs.ErrNotFound)
	}
	if !res.IsSuccess() {
		body := res.String()
		if len(body) > maxBodyInError {
			body = body[:maxBodyInError]
		}
		return nil, &TransportError{
			URL:        url,
			StatusCode: res.StatusCode(),
			Status:     res.Status(),
			Body:       body,
		}
	}

	return res.Body(), nil
}
