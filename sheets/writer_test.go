package sheets

import (
	"testing"

	"ofertas-bot/models"
)

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "full edit URL",
			url:  "https://docs.google.com/spreadsheets/d/1AbCdEfGhIjKlMnOpQrStUvWxYz/edit#gid=0",
			want: "1AbCdEfGhIjKlMnOpQrStUvWxYz",
		},
		{
			name: "URL with query string",
			url:  "https://docs.google.com/spreadsheets/d/1AbCdEfGh?usp=sharing",
			want: "1AbCdEfGh",
		},
		{
			name: "bare ID only",
			url:  "1AbCdEfGh",
			want: "",
		},
		{
			name: "empty string",
			url:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractSpreadsheetID(tt.url)
			if got != tt.want {
				t.Errorf("ExtractSpreadsheetID(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain name", "fone bluetooth", "fone bluetooth"},
		{"slashes replaced", "tv 4k 50/55", "tv 4k 50_55"},
		{"brackets replaced", "notebook [usado]", "notebook _usado_"},
		{"empty becomes default", "", "Sheet1"},
		{"only invalid chars", "???", "___"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeSheetName(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeSheetName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResultRows(t *testing.T) {
	rating := 4.5
	reviews := 120
	result := models.SearchResult{
		Metadata: models.Metadata{
			SearchedAt: "2026-09-01 10:00:00",
			Total:      2,
			QueryTerm:  "fone bluetooth",
			Note:       "Ranking gerado via IA Bot",
		},
		Listings: []models.Listing{
			{
				Title:           "Fone A",
				Store:           "Mercado Livre",
				CurrentPrice:    199.90,
				OriginalPrice:   299.90,
				DiscountPercent: 33,
				Rating:          &rating,
				Reviews:         &reviews,
				AffiliateURL:    "https://example.com/af",
				ProductURL:      "https://example.com/p",
			},
			{
				Title:        "Fone B",
				Store:        "Amazon",
				CurrentPrice: 99.90,
				ProductURL:   "https://example.com/b",
			},
		},
	}

	rows := resultRows(result)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows (metadata, header, 2 listings), got %d", len(rows))
	}
	if rows[1][0] != "Título" || rows[1][7] != "Link Afiliado" {
		t.Errorf("unexpected header row: %v", rows[1])
	}
	if rows[2][5] != 4.5 {
		t.Errorf("expected rating 4.5 in first listing row, got %v", rows[2][5])
	}
	if rows[3][5] != nil {
		t.Errorf("expected nil rating cell for listing without rating, got %v", rows[3][5])
	}
	if rows[3][7] != "https://example.com/b" {
		t.Errorf("expected product URL fallback when affiliate link missing, got %v", rows[3][7])
	}
}
