package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ofertas-bot/affiliate"
	"ofertas-bot/models"
	"ofertas-bot/parser"
)

// PlaceholderAPIKey is the unset-key sentinel carried over from shipped
// configuration templates; it is treated the same as an empty key.
const PlaceholderAPIKey = "SUA_CHAVE_SERPAPI_AQUI"

const defaultShoppingEndpoint = "https://serpapi.com/search.json"

// ShoppingOptions configures the structured-search adapter.
type ShoppingOptions struct {
	APIKey   string
	Engine   string // defaults to google_shopping
	Country  string // gl, defaults to br
	Language string // hl, defaults to pt
	PageSize int    // num, defaults to 20
	Timeout  time.Duration
	Endpoint string // overridable in tests
}

// Shopping queries a structured shopping-search API and maps its response
// into listings. Without a usable API key it short-circuits to empty results
// with no network call: a missing key is expected configuration, not an
// error.
type Shopping struct {
	opts   ShoppingOptions
	client *http.Client
}

// NewShopping creates the structured-search adapter.
func NewShopping(opts ShoppingOptions) *Shopping {
	if opts.Engine == "" {
		opts.Engine = "google_shopping"
	}
	if opts.Country == "" {
		opts.Country = "br"
	}
	if opts.Language == "" {
		opts.Language = "pt"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	if opts.Endpoint == "" {
		opts.Endpoint = defaultShoppingEndpoint
	}
	return &Shopping{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
	}
}

// Name implements the Source interface.
func (s *Shopping) Name() string { return "Google Shopping" }

// Search implements the Source interface. Any failure is logged and yields
// an empty result set.
func (s *Shopping) Search(ctx context.Context, term string) []models.Listing {
	if s.opts.APIKey == "" || s.opts.APIKey == PlaceholderAPIKey {
		return nil
	}

	items, err := s.query(ctx, term)
	if err != nil {
		log.Printf("Google Shopping: search failed for %q: %v\n", term, err)
		return nil
	}

	now := time.Now().Format(models.TimeLayout)
	listings := make([]models.Listing, 0, len(items))
	for _, item := range items {
		if item.Title == "" || item.Link == "" {
			continue
		}

		current := item.ExtractedPrice
		if current < 0 {
			continue
		}
		original := float64(item.OldPrice)
		if original < current {
			original = current
		}

		rating := item.Rating
		if rating != nil && (*rating < 0 || *rating > 5) {
			rating = nil
		}
		reviews := item.Reviews
		if reviews != nil && *reviews < 0 {
			reviews = nil
		}

		listings = append(listings, models.Listing{
			Title:           item.Title,
			CurrentPrice:    current,
			OriginalPrice:   original,
			DiscountPercent: parser.DiscountPercent(original, current),
			Store:           item.Source,
			ProductURL:      item.Link,
			AffiliateURL:    affiliate.Rewrite(item.Link, item.Source),
			Rating:          rating,
			Reviews:         reviews,
			FetchedAt:       now,
		})
	}

	log.Printf("Google Shopping: %d listings for %q\n", len(listings), term)
	return listings
}

func (s *Shopping) query(ctx context.Context, term string) ([]shoppingItem, error) {
	params := url.Values{}
	params.Set("engine", s.opts.Engine)
	params.Set("q", term)
	params.Set("gl", s.opts.Country)
	params.Set("hl", s.opts.Language)
	params.Set("num", strconv.Itoa(s.opts.PageSize))
	params.Set("api_key", s.opts.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload shoppingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload.ShoppingResults, nil
}

type shoppingResponse struct {
	ShoppingResults []shoppingItem `json:"shopping_results"`
}

type shoppingItem struct {
	Title          string    `json:"title"`
	ExtractedPrice float64   `json:"extracted_price"`
	OldPrice       flexPrice `json:"old_price"`
	Source         string    `json:"source"`
	Link           string    `json:"link"`
	Rating         *float64  `json:"rating"`
	Reviews        *int      `json:"reviews"`
}

// flexPrice accepts the API's old_price field, which arrives either as a
// number or as a localized price string ("R$ 1.299,90").
type flexPrice float64

func (f *flexPrice) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexPrice(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("old_price is neither number nor string: %s", data)
	}
	*f = flexPrice(parser.ParsePrice(s))
	return nil
}
