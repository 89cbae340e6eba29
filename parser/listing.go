package parser

import (
	"fmt"
	"strings"

	"ofertas-bot/models"

	"github.com/PuerkitoBio/goquery"
)

// maxCards bounds how many candidate item blocks are extracted per page.
const maxCards = 15

// Selectors holds the CSS selectors used to locate offer cards and their
// fields. The marketplace markup is unstable across deployments, so Card
// strategies are an ordered list: the first strategy that yields any matches
// wins. Selectors are loaded from configuration; DefaultSelectors mirrors the
// markup observed today.
type Selectors struct {
	Cards         []string `yaml:"cards"`
	Title         string   `yaml:"title"`
	Link          string   `yaml:"link"`
	PriceFraction string   `yaml:"price_fraction"`
	PriceCents    string   `yaml:"price_cents"`
	OriginalPrice string   `yaml:"original_price"`
	Rating        string   `yaml:"rating"`
	Reviews       string   `yaml:"reviews"`
}

// DefaultSelectors returns the compiled-in selector set for the marketplace
// search results page.
func DefaultSelectors() Selectors {
	return Selectors{
		Cards: []string{
			"div.poly-card",
			"li.ui-search-layout__item",
			"div.ui-search-result__wrapper",
		},
		Title:         "h2, h3",
		Link:          "a",
		PriceFraction: "span.andes-money-amount__fraction",
		PriceCents:    "span.andes-money-amount__cents",
		OriginalPrice: "s.andes-money-amount",
		Rating:        "span.ui-search-reviews__rating-number, span.poly-reviews__rating",
		Reviews:       "span.ui-search-reviews__amount, span.poly-reviews__total",
	}
}

// Parser extracts offer listings from marketplace search-results HTML.
type Parser struct {
	sel Selectors
}

// NewParser creates a Parser using the given selectors. Zero-value fields
// fall back to the defaults so partial selector configs stay usable.
func NewParser(sel Selectors) *Parser {
	def := DefaultSelectors()
	if len(sel.Cards) == 0 {
		sel.Cards = def.Cards
	}
	if sel.Title == "" {
		sel.Title = def.Title
	}
	if sel.Link == "" {
		sel.Link = def.Link
	}
	if sel.PriceFraction == "" {
		sel.PriceFraction = def.PriceFraction
	}
	if sel.PriceCents == "" {
		sel.PriceCents = def.PriceCents
	}
	if sel.OriginalPrice == "" {
		sel.OriginalPrice = def.OriginalPrice
	}
	if sel.Rating == "" {
		sel.Rating = def.Rating
	}
	if sel.Reviews == "" {
		sel.Reviews = def.Reviews
	}
	return &Parser{sel: sel}
}

// ParseHTML extracts up to maxCards listings from a search-results page.
// Cards missing a title, link, or price are skipped; a malformed card never
// aborts its siblings. Store, affiliate link, and fetch time are filled in
// by the source adapter.
func (p *Parser) ParseHTML(htmlContent string) ([]models.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	cards := p.findCards(doc)

	var listings []models.Listing
	cards.EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxCards {
			return false
		}
		if listing := p.extractListing(s); listing != nil {
			listings = append(listings, *listing)
		}
		return true
	})

	return listings, nil
}

// findCards tries each card selector strategy in order and returns the
// matches of the first one that finds anything.
func (p *Parser) findCards(doc *goquery.Document) *goquery.Selection {
	for _, strategy := range p.sel.Cards {
		if cards := doc.Find(strategy); cards.Length() > 0 {
			return cards
		}
	}
	return doc.Find(p.sel.Cards[len(p.sel.Cards)-1])
}

// extractListing pulls one listing out of a card selection. Returns nil when
// a required field is missing, which discards the card.
func (p *Parser) extractListing(s *goquery.Selection) *models.Listing {
	title := strings.TrimSpace(s.Find(p.sel.Title).First().Text())
	if title == "" {
		return nil
	}

	link := strings.TrimSpace(s.Find(p.sel.Link).First().AttrOr("href", ""))
	if link == "" {
		return nil
	}

	// The struck-through block also contains price spans, so the current
	// price is the first fraction outside of it.
	fraction := p.firstOutsideStruck(s, p.sel.PriceFraction)
	if fraction == nil {
		return nil
	}
	current := ParsePrice(p.assemblePrice(fraction.Text(), p.firstOutsideStruck(s, p.sel.PriceCents)))

	// A struck-through amount, when present, is the pre-discount price.
	original := current
	if struck := s.Find(p.sel.OriginalPrice).First(); struck.Length() > 0 {
		if frac := struck.Find(p.sel.PriceFraction).First(); frac.Length() > 0 {
			parsed := ParsePrice(p.assemblePrice(frac.Text(), struck.Find(p.sel.PriceCents).First()))
			if parsed > current {
				original = parsed
			}
		}
	}

	return &models.Listing{
		Title:           title,
		CurrentPrice:    current,
		OriginalPrice:   original,
		DiscountPercent: DiscountPercent(original, current),
		ProductURL:      link,
		Rating:          ParseRating(s.Find(p.sel.Rating).First().Text()),
		Reviews:         ParseReviewCount(s.Find(p.sel.Reviews).First().Text()),
	}
}

// firstOutsideStruck returns the first match of selector within s that is
// not nested inside the struck-through original-price block, or nil.
func (p *Parser) firstOutsideStruck(s *goquery.Selection, selector string) *goquery.Selection {
	var found *goquery.Selection
	s.Find(selector).EachWithBreak(func(i int, el *goquery.Selection) bool {
		if el.ParentsFiltered(p.sel.OriginalPrice).Length() > 0 {
			return true
		}
		found = el
		return false
	})
	return found
}

// assemblePrice joins the integer and fractional spans the marketplace
// renders separately ("1.299" + "90" -> "1.299,90").
func (p *Parser) assemblePrice(fraction string, cents *goquery.Selection) string {
	price := strings.TrimSpace(fraction)
	if cents == nil {
		return price
	}
	if c := strings.TrimSpace(cents.Text()); c != "" {
		price += "," + c
	}
	return price
}
