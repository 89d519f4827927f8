package service

import (
	"cmp"
	"slices"

	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Merge concatenates the products of results in the given order and
// collects the error message of every failed vendor.
func Merge(results []domain.SearchResult) (products []domain.Product, errs []string) {
	n := 0
	for _, r := range results {
		n += len(r.Products)
	}

	products = make([]domain.Product, 0, n)
	for _, r := range results {
		products = append(products, r.Products...)
		if r.Failed() {
			errs = append(errs, r.Error)
		}
	}
	return products, errs
}

// Sort orders products in place by policy. Ties keep their merge order.
// Relevance and unknown policies leave the order untouched.
func Sort(products []domain.Product, policy domain.SortPolicy) {
	switch policy {
	case domain.SortPriceLowToHigh:
		sortByPrice(products, false)
	case domain.SortPriceHighToLow:
		sortByPrice(products, true)
	case domain.SortRating:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return cmp.Compare(b.RatingValue(), a.RatingValue())
		})
	}
}

func sortByPrice(products []domain.Product, desc bool) {
	keys := make([]decimal.Decimal, len(products))
	idx := make([]int, len(products))
	for i := range products {
		idx[i] = i
		keys[i] = domain.PriceDecimal(products[i].Price)
	}

	slices.SortStableFunc(idx, func(a, b int) int {
		if desc {
			return keys[b].Cmp(keys[a])
		}
		return keys[a].Cmp(keys[b])
	})

	sorted := make([]domain.Product, len(products))
	for i, j := range idx {
		sorted[i] = products[j]
	}
	copy(products, sorted)
}
