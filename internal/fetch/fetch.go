// Package fetch downloads remote assets with an abort-after timeout. The
// timeout is the pipeline's only cancellation primitive: a hung fetch becomes
// an explicit failure instead of blocking the operation indefinitely.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"scenepack/internal/services"
)

const maxAssetBytes = 512 << 20 // refuse absurd downloads rather than filling the disk

// Fetcher retrieves asset bytes over HTTP.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// New builds a Fetcher whose every request aborts after the given timeout.
// A non-positive timeout falls back to 60 seconds.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Fetch downloads the URL and returns its bytes. Timeouts are tagged with
// services.ErrTimeout, everything else with services.ErrFetch, so callers can
// classify without string matching.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, "fetch", "build request", url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		marker := services.ErrFetch
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return nil, services.Wrap(marker, "fetch", "get", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrFetch, "fetch", "get", fmt.Sprintf("%s: status %d", url, resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		marker := services.ErrFetch
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return nil, services.Wrap(marker, "fetch", "read body", url, err)
	}
	if len(data) > maxAssetBytes {
		return nil, services.Wrap(services.ErrFetch, "fetch", "read body", fmt.Sprintf("%s exceeds %d bytes", url, maxAssetBytes), nil)
	}
	return data, nil
}
