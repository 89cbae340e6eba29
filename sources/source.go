// Package sources contains the adapters that retrieve and normalize offers
// from each external origin.
package sources

import (
	"context"

	"ofertas-bot/models"
)

// Source retrieves offers for a search term from one external origin.
//
// Implementations must never fail the caller: network, parsing, and API
// errors are logged at the adapter boundary and surface as an empty result
// set, so one origin's total failure cannot degrade the others.
type Source interface {
	Name() string
	Search(ctx context.Context, term string) []models.Listing
}
