package port

import (
	"context"

	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
)

type closer interface {
	Close()
}

// A Vendor searches one supplier catalog.
//
// SearchProducts never fails: every error is captured into the returned
// [domain.SearchResult]. IsAvailable must not touch the network.
type Vendor interface {
	Name() string
	Logo() string
	SearchProducts(context.Context, domain.SearchParams) domain.SearchResult
	ProductDetails(ctx context.Context, productID string) (domain.Product, error)
	IsAvailable() bool
}

type ProductSearcher interface {
	Search(context.Context, domain.SearchRequest) (domain.SearchResponse, error)
}

type VendorLister interface {
	Vendors() []domain.VendorInfo
}

type ProductDetailer interface {
	ProductDetails(ctx context.Context, vendorID, productID string) (domain.Product, error)
}

type SearchEventsProducer interface {
	ProduceSearchEvent(context.Context, domain.SearchEvent) error
	closer
}
