package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher implements the Fetcher interface using colly. Compared to the
// plain HTTP fetcher it brings per-domain rate limiting, which matters when
// the same process serves many chat users.
type CollyFetcher struct {
	timeout time.Duration
}

// NewCollyFetcher creates a new CollyFetcher instance.
func NewCollyFetcher(timeout time.Duration) *CollyFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &CollyFetcher{timeout: timeout}
}

// Fetch implements the Fetcher interface. A fresh collector is created per
// call so concurrent searches do not share visit state.
func (cf *CollyFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := colly.NewCollector(
		colly.UserAgent(defaultUserAgents[0]),
	)
	c.SetRequestTimeout(cf.timeout)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*mercadolivre.*",
		Parallelism: 1,
		Delay:       2 * time.Second,
	})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Referer", defaultReferer)
		r.Headers.Set("Accept-Language", "pt-BR,pt;q=0.9")
	})

	var body string
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("failed to visit URL: %w", err)
	}
	c.Wait()

	if fetchErr != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, fetchErr)
	}
	if body == "" {
		return "", fmt.Errorf("empty response from %s", url)
	}

	return body, nil
}
