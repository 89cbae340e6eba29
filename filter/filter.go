package filter

import (
	"ofertas-bot/config"
	"ofertas-bot/models"
)

// Filter applies optional threshold criteria to merged listings before
// scoring. Default (zero) thresholds pass every listing through.
type Filter struct {
	cfg config.FilterConfig
}

// NewFilter creates a new Filter instance.
func NewFilter(cfg config.FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Apply filters listings based on the configuration.
func (f *Filter) Apply(listings []models.Listing) []models.Listing {
	filtered := make([]models.Listing, 0, len(listings))
	for _, listing := range listings {
		if f.matches(listing) {
			filtered = append(filtered, listing)
		}
	}
	return filtered
}

func (f *Filter) matches(l models.Listing) bool {
	// Unknown ratings pass: penalizing missing data would bury listings
	// from sources that simply don't report ratings.
	if f.cfg.MinRating > 0 && l.Rating != nil && *l.Rating < f.cfg.MinRating {
		return false
	}

	// Price checks only apply when a price was actually extracted.
	if l.CurrentPrice > 0 {
		if l.CurrentPrice < f.cfg.MinPrice {
			return false
		}
		if f.cfg.MaxPrice > 0 && l.CurrentPrice > f.cfg.MaxPrice {
			return false
		}
	}

	if l.DiscountPercent < f.cfg.MinDiscount {
		return false
	}

	return true
}
