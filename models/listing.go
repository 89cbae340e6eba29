package models

// TimeLayout is the timestamp format used in result metadata and listing
// fetch times. It matches the format consumers of the saved JSON expect.
const TimeLayout = "2006-01-02 15:04:05"

// Listing represents one normalized product offer from one store.
// Rating and Reviews are pointers because "unknown" must stay distinguishable
// from a genuine zero value.
type Listing struct {
	Title           string   `json:"titulo"`
	CurrentPrice    float64  `json:"preco_atual"`
	OriginalPrice   float64  `json:"preco_original"`
	DiscountPercent int      `json:"desconto_percentual"`
	Store           string   `json:"loja"`
	ProductURL      string   `json:"link_produto"`
	AffiliateURL    string   `json:"link_afiliado"`
	Rating          *float64 `json:"rating"`
	Reviews         *int     `json:"reviews"`
	FetchedAt       string   `json:"data_busca"`
}

// Metadata describes one search: when it ran, what was asked, and how many
// offers were merged before truncation.
type Metadata struct {
	SearchedAt string `json:"data"`
	Total      int    `json:"total"`
	QueryTerm  string `json:"termo_pesquisado"`
	Note       string `json:"nota"`
}

// SearchResult is the envelope returned to callers and serialized to the
// JSON artifact. The top-level keys (metadata, produtos) are the interchange
// format for saved output files and must not change.
type SearchResult struct {
	Metadata Metadata  `json:"metadata"`
	Listings []Listing `json:"produtos"`
}
