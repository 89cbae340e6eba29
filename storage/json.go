// Package storage writes search results to the JSON artifact format shared
// with existing consumers of saved output files.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ofertas-bot/models"
)

// FileName returns the artifact name for a search term
// ("fone bluetooth" -> "ofertas_fone_bluetooth.json").
func FileName(term string) string {
	return "ofertas_" + strings.ReplaceAll(strings.TrimSpace(term), " ", "_") + ".json"
}

// Encode renders the result envelope as indented JSON with the top-level
// metadata/produtos keys.
func Encode(result models.SearchResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return data, nil
}

// WriteResult writes the result artifact into dir and returns the full path.
func WriteResult(dir string, result models.SearchResult) (string, error) {
	data, err := Encode(result)
	if err != nil {
		return "", err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	path := filepath.Join(dir, FileName(result.Metadata.QueryTerm))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write result file: %w", err)
	}
	return path, nil
}
