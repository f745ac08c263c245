package pdf

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const maxImageBytes = 20 << 20

// Fetcher downloads remote images with a bounded number of attempts.
type Fetcher struct {
	Client   *http.Client
	Attempts int
	Delay    time.Duration
	Timeout  time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:   &http.Client{},
		Attempts: 3,
		Delay:    time.Second,
		Timeout:  15 * time.Second,
	}
}

// Fetch returns the body of url, retrying failed attempts after Delay.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= f.Attempts; attempt++ {
		data, err := f.once(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
		log.Printf("[PDF] fetch %s (attempt %d/%d): %v", url, attempt, f.Attempts, err)

		if attempt == f.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.Delay):
		}
	}
	return nil, lastErr
}

func (f *Fetcher) once(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}
