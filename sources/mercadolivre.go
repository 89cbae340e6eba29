package sources

import (
	"context"
	"log"
	"strings"
	"time"

	"ofertas-bot/affiliate"
	"ofertas-bot/fetcher"
	"ofertas-bot/models"
	"ofertas-bot/parser"
	"ofertas-bot/searchurl"
)

// StoreMercadoLivre is the store label attached to scraped listings.
const StoreMercadoLivre = "Mercado Livre"

// MercadoLivre scrapes the marketplace's search-results page.
type MercadoLivre struct {
	baseURL  string
	fetcher  fetcher.Fetcher
	parser   *parser.Parser
	minPrice float64
	maxPrice float64
}

// NewMercadoLivre creates the marketplace adapter. An empty baseURL uses the
// production endpoint; minPrice/maxPrice (when maxPrice > 0) narrow the
// search server-side via the price-range URL segment.
func NewMercadoLivre(baseURL string, f fetcher.Fetcher, p *parser.Parser, minPrice, maxPrice float64) *MercadoLivre {
	if p == nil {
		p = parser.NewParser(parser.Selectors{})
	}
	return &MercadoLivre{
		baseURL:  baseURL,
		fetcher:  f,
		parser:   p,
		minPrice: minPrice,
		maxPrice: maxPrice,
	}
}

// Name implements the Source interface.
func (m *MercadoLivre) Name() string { return StoreMercadoLivre }

// Search implements the Source interface. Any failure is logged and yields
// an empty result set.
func (m *MercadoLivre) Search(ctx context.Context, term string) []models.Listing {
	url := searchurl.Build(m.baseURL, term, m.minPrice, m.maxPrice)

	html, err := m.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Printf("Mercado Livre: fetch failed for %q: %v\n", term, err)
		return nil
	}

	listings, err := m.parser.ParseHTML(html)
	if err != nil {
		log.Printf("Mercado Livre: parse failed for %q: %v\n", term, err)
		return nil
	}

	now := time.Now().Format(models.TimeLayout)
	for i := range listings {
		if !strings.HasPrefix(listings[i].ProductURL, "http") {
			listings[i].ProductURL = strings.TrimRight(searchurl.DefaultBase, "/") + listings[i].ProductURL
		}
		listings[i].Store = StoreMercadoLivre
		listings[i].AffiliateURL = affiliate.Rewrite(listings[i].ProductURL, StoreMercadoLivre)
		listings[i].FetchedAt = now
	}

	log.Printf("Mercado Livre: %d listings for %q\n", len(listings), term)
	return listings
}
