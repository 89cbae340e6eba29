package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var nonDigitRe = regexp.MustCompile(`[^\d]`)

// ParsePrice converts a localized price string to a float.
// Brazilian convention is assumed: dots separate thousands, the comma is the
// decimal separator ("1.234,56" -> 1234.56). Already-numeric strings ("99")
// pass through unchanged. A string that yields no parsable number returns 0.
func ParsePrice(text string) float64 {
	if text == "" {
		return 0
	}

	// Drop thousands dots, then convert the decimal comma.
	cleaned := strings.ReplaceAll(text, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	// Keep only digits and the decimal point (strips currency symbols, spaces).
	var b strings.Builder
	for _, r := range cleaned {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	price, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return price
}

// ParseRating parses a rating string with an optional decimal comma ("4,7").
// Returns nil for unparsable or out-of-range input; a rating is only valid
// in [0,5]. Zero is a valid rating and must not be confused with "unknown".
func ParseRating(text string) *float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", "."))
	rating, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || rating < 0 || rating > 5 {
		return nil
	}
	return &rating
}

// ParseReviewCount extracts an integer review count from text such as
// "(1.234)". Returns nil when the text has no digits.
func ParseReviewCount(text string) *int {
	digits := nonDigitRe.ReplaceAllString(text, "")
	if digits == "" {
		return nil
	}
	count, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &count
}

// DiscountPercent computes the discount of current over original as a
// truncated integer percentage. Zero or negative differences yield 0.
func DiscountPercent(original, current float64) int {
	if original <= current || original <= 0 {
		return 0
	}
	discount := int((original - current) / original * 100)
	if discount < 0 {
		return 0
	}
	if discount > 100 {
		return 100
	}
	return discount
}
