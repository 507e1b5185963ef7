// Package fetcher retrieves site resources over HTTP.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Fetcher gets remote resources by URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTP implements Fetcher using a shared http.Client.
type HTTP struct {
	client    *http.Client
	userAgent string
	log       *zap.Logger
}

// NewHTTP creates HTTP fetcher with requested timeout.
func NewHTTP(userAgent string, timeout time.Duration, log *zap.Logger) *HTTP {
	return &HTTP{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

// Fetch downloads single resource. Any status but 200 is an error.
func (f *HTTP) Fetch(ctx context.Context, url string) ([]byte, error) {

	start := time.Now()
	f.log.Debug("Fetching - start", zap.String("url", url))
	defer func(start time.Time) {
		f.log.Debug("Fetching - done", zap.String("url", url), zap.Duration("elapsed", time.Since(start)))
	}(start)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare request for %s: %w", url, err)
	}
	if len(f.userAgent) > 0 {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to get %s: %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read body of %s: %w", url, err)
	}
	return data, nil
}
