package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"ofertas-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileName(t *testing.T) {
	assert.Equal(t, "ofertas_fone_bluetooth.json", FileName("fone bluetooth"))
	assert.Equal(t, "ofertas_tv.json", FileName(" tv "))
}

func TestEncodeKeepsInterchangeShape(t *testing.T) {
	rating := 4.5
	result := models.SearchResult{
		Metadata: models.Metadata{
			SearchedAt: "2026-09-01 12:00:00",
			Total:      1,
			QueryTerm:  "tv",
			Note:       "Ranking gerado via IA Bot",
		},
		Listings: []models.Listing{{
			Title:           "TV 50",
			CurrentPrice:    1999.9,
			OriginalPrice:   2499.9,
			DiscountPercent: 20,
			Store:           "Mercado Livre",
			ProductURL:      "https://example.com/tv",
			AffiliateURL:    "https://example.com/af",
			Rating:          &rating,
			FetchedAt:       "2026-09-01 12:00:00",
		}},
	}

	data, err := Encode(result)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "metadata")
	assert.Contains(t, decoded, "produtos")

	var produtos []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decoded["produtos"], &produtos))
	require.Len(t, produtos, 1)
	for _, key := range []string{
		"titulo", "preco_atual", "preco_original", "desconto_percentual",
		"loja", "link_produto", "link_afiliado", "rating", "reviews", "data_busca",
	} {
		assert.Contains(t, produtos[0], key)
	}
	// Unknown review count serializes as null, not zero.
	assert.Equal(t, "null", string(produtos[0]["reviews"]))
}

func TestWriteResult(t *testing.T) {
	dir := t.TempDir()
	result := models.SearchResult{
		Metadata: models.Metadata{QueryTerm: "fone bluetooth"},
		Listings: []models.Listing{},
	}

	path, err := WriteResult(dir, result)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ofertas_fone_bluetooth.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded models.SearchResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "fone bluetooth", decoded.Metadata.QueryTerm)
	assert.NotNil(t, decoded.Listings)
}
