package listing

import (
	"sort"
	"time"

	"github.com/fadakar85/bazaar/internal/domain"
)

// IsPromoted reports whether the product's boost window is open at now.
// This predicate is the single definition of "promoted" in the codebase;
// promotion lapses passively when now crosses PromotedUntil, no job ever
// clears the timestamp.
func IsPromoted(p *domain.Product, now time.Time) bool {
	return p.PromotedUntil != nil && p.PromotedUntil.After(now)
}

// RankedProduct is a product annotated with its promotion state as derived
// at the ranking snapshot.
type RankedProduct struct {
	domain.Product
	Promoted bool `json:"promoted"`
}

// Rank orders listings for display: promoted products first, most recently
// extended boost at the top, then the rest newest-first by creation time.
// The partition is evaluated against a single now for every row, so a boost
// expiring mid-request cannot place a product in both groups.
func Rank(products []domain.Product, now time.Time) []RankedProduct {
	promoted := make([]RankedProduct, 0, len(products))
	normal := make([]RankedProduct, 0, len(products))
	for i := range products {
		rp := RankedProduct{Product: products[i]}
		if IsPromoted(&products[i], now) {
			rp.Promoted = true
			promoted = append(promoted, rp)
		} else {
			normal = append(normal, rp)
		}
	}

	sort.SliceStable(promoted, func(i, j int) bool {
		return promoted[i].PromotedUntil.After(*promoted[j].PromotedUntil)
	})
	sort.SliceStable(normal, func(i, j int) bool {
		return normal[i].CreatedAt.After(normal[j].CreatedAt)
	})

	return append(promoted, normal...)
}
