package service

import (
	"context"
	"errors"
	"sync"

	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type fakeVendor struct {
	name      string
	available bool
	products  []domain.Product
	err       error
	panicMsg  string

	// hang blocks the search until closed, ignoring the context.
	hang chan struct{}
	// before runs at the start of every search.
	before func(ctx context.Context) error

	mu     sync.Mutex
	calls  int
	params []domain.SearchParams
}

func (v *fakeVendor) Name() string { return v.name }

func (v *fakeVendor) Logo() string { return "/vendors/" + v.name + ".png" }

func (v *fakeVendor) IsAvailable() bool { return v.available }

func (v *fakeVendor) SearchProducts(
	ctx context.Context, p domain.SearchParams,
) domain.SearchResult {
	v.mu.Lock()
	v.calls++
	v.params = append(v.params, p)
	v.mu.Unlock()

	if v.before != nil {
		if err := v.before(ctx); err != nil {
			return domain.FailedResult(v.name, err)
		}
	}
	if v.hang != nil {
		<-v.hang
	}
	if v.panicMsg != "" {
		panic(v.panicMsg)
	}
	if v.err != nil {
		return domain.FailedResult(v.name, v.err)
	}

	ps := make([]domain.Product, len(v.products))
	copy(ps, v.products)
	return domain.SearchResult{Products: ps, Vendor: v.name}
}

func (v *fakeVendor) ProductDetails(
	ctx context.Context, productID string,
) (domain.Product, error) {
	for _, p := range v.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

func (v *fakeVendor) callCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

func (v *fakeVendor) lastParams() domain.SearchParams {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.params[len(v.params)-1]
}

func priced(prices ...string) []domain.Product {
	ps := make([]domain.Product, len(prices))
	for i, price := range prices {
		ps[i] = domain.Product{ID: price, Title: "item " + price, Price: price}
	}
	return ps
}

func rated(ratings ...*float64) []domain.Product {
	ps := make([]domain.Product, len(ratings))
	for i, r := range ratings {
		ps[i] = domain.Product{ID: string(rune('a' + i)), Rating: r}
	}
	return ps
}

func ptr[T any](v T) *T {
	return &v
}

var errUpstream = errors.New("upstream returned 503")

type MockEventsProducer struct {
	mock.Mock
}

func (m *MockEventsProducer) ProduceSearchEvent(
	ctx context.Context, evt domain.SearchEvent,
) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockEventsProducer) Close() {
	m.Called()
}
