package scheduler

import (
	"strings"
	"testing"

	"ofertas-bot/models"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "R$ 0,00"},
		{99.9, "R$ 99,90"},
		{1299.9, "R$ 1.299,90"},
		{1234567.89, "R$ 1.234.567,89"},
	}

	for _, tt := range tests {
		got := FormatPrice(tt.value)
		if got != tt.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestFormatTopListingsEmpty(t *testing.T) {
	result := models.SearchResult{
		Metadata: models.Metadata{QueryTerm: "fone bluetooth"},
		Listings: []models.Listing{},
	}

	got := formatTopListings(result)
	if !strings.Contains(got, "Nenhuma oferta encontrada") {
		t.Errorf("expected empty-result message, got %q", got)
	}
	if !strings.Contains(got, "fone bluetooth") {
		t.Errorf("expected search term in message, got %q", got)
	}
}

func TestFormatTopListingsLimitsToFive(t *testing.T) {
	rating := 4.6
	reviews := 1234
	listings := make([]models.Listing, 8)
	for i := range listings {
		listings[i] = models.Listing{
			Title:        "Produto",
			CurrentPrice: 100,
			Store:        "Mercado Livre",
			ProductURL:   "https://example.com",
			Rating:       &rating,
			Reviews:      &reviews,
		}
	}

	result := models.SearchResult{
		Metadata: models.Metadata{QueryTerm: "tv", Total: 8},
		Listings: listings,
	}

	got := formatTopListings(result)
	if strings.Count(got, "💰") != 5 {
		t.Errorf("expected 5 listings in summary, got %d:\n%s", strings.Count(got, "💰"), got)
	}
	if !strings.Contains(got, "(8 encontradas)") {
		t.Errorf("expected total count in header, got %q", got)
	}
	if !strings.Contains(got, "4.6 (1234 avaliações)") {
		t.Errorf("expected rating and reviews line, got %q", got)
	}
}

func TestFormatTopListingsDiscountLine(t *testing.T) {
	result := models.SearchResult{
		Metadata: models.Metadata{QueryTerm: "tv", Total: 1},
		Listings: []models.Listing{
			{
				Title:           "TV 50",
				CurrentPrice:    1999.9,
				OriginalPrice:   2499.9,
				DiscountPercent: 20,
				Store:           "Amazon",
				AffiliateURL:    "https://example.com/af",
			},
		},
	}

	got := formatTopListings(result)
	if !strings.Contains(got, "R$ 1.999,90 (de R$ 2.499,90, -20%)") {
		t.Errorf("expected discount line, got %q", got)
	}
	if !strings.Contains(got, "https://example.com/af") {
		t.Errorf("expected affiliate link preferred over product link, got %q", got)
	}
}
