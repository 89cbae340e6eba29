// Package affiliate rewrites product URLs into affiliate-tracked ones.
//
// The store table is a closed, hardcoded set: affiliate programs are business
// decisions, so adding a store is a code change, not configuration.
package affiliate

import (
	"net/url"
	"strings"
)

const mercadoLivreWrapper = "https://www.mercadolivre.com.br/social/riparg2000?url="

// Rewrite returns the affiliate version of link for the given store.
// Dispatch is a case-insensitive substring match on the store name;
// unrecognized stores get the input link back unchanged.
func Rewrite(link, store string) string {
	if link == "" {
		return link
	}

	switch s := strings.ToLower(store); {
	case strings.Contains(s, "mercadolivre"), strings.Contains(s, "mercado livre"):
		return mercadoLivreWrapper + url.QueryEscape(link)
	case strings.Contains(s, "amazon"):
		return link + "&tag=seu-tag-amazon"
	}
	return link
}
