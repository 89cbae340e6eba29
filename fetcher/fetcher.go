package fetcher

import (
	"context"
	"fmt"
	"time"
)

// Fetcher retrieves the HTML of a single search-results page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// New builds the Fetcher named by kind ("http", "colly", or "rod").
// Callers should close fetchers that implement io.Closer when done.
func New(kind string, timeout time.Duration) (Fetcher, error) {
	switch kind {
	case "", "http":
		return NewHTTPFetcher(timeout), nil
	case "colly":
		return NewCollyFetcher(timeout), nil
	case "rod":
		return NewRodFetcher()
	}
	return nil, fmt.Errorf("unknown fetcher kind: %q", kind)
}
