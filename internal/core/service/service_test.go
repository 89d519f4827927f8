package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService(opts ...Opt) (Service, *fakeVendor, *fakeVendor) {
	hd := &fakeVendor{
		name:      "Home Depot",
		available: true,
		products:  priced("$10.00", "$5.50", "$20"),
	}
	lowes := &fakeVendor{name: "Lowe's", available: true, err: errUpstream}

	r := NewRegistry()
	r.Register("home-depot", hd)
	r.Register("lowes", lowes)
	r.Register("menards", &fakeVendor{name: "Menards"})

	return New(r, NewDispatcher(r), opts...), hd, lowes
}

func TestServiceSearch(t *testing.T) {
	t.Run("SortedSingleVendor", func(t *testing.T) {
		s, hd, _ := newTestService()

		resp, err := s.Search(t.Context(), domain.SearchRequest{
			MaterialType: "concrete",
			VendorIDs:    []string{"home-depot"},
			SortBy:       domain.SortPriceLowToHigh,
		})
		require.NoError(t, err)

		assert.Equal(t, []float64{5.5, 10, 20}, prices(resp.Products))
		assert.Equal(t, 3, resp.TotalResults)
		assert.Equal(t, []string{"Home Depot"}, resp.Vendors)
		assert.Nil(t, resp.Errors)
		assert.Equal(t, "concrete mix", hd.lastParams().Query)
	})

	t.Run("PartialFailure", func(t *testing.T) {
		s, _, lowes := newTestService()

		resp, err := s.Search(t.Context(), domain.SearchRequest{
			MaterialType: "steel",
			VendorIDs:    []string{"home-depot", "lowes", "menards", "nope"},
			SortBy:       domain.SortRelevance,
		})
		require.NoError(t, err)

		assert.Len(t, resp.Products, 3)
		assert.ElementsMatch(t, []string{"Home Depot", "Lowe's"}, resp.Vendors)
		require.Len(t, resp.Errors, 1)
		assert.Contains(t, resp.Errors[0], "Lowe's")
		assert.Equal(t, "steel rebar", lowes.lastParams().Query)
		for _, p := range resp.Products {
			assert.Equal(t, "home-depot", p.Vendor)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		s, hd, lowes := newTestService()

		resp, err := s.Search(t.Context(), domain.SearchRequest{MaterialType: "insulation"})
		require.NoError(t, err)

		assert.Equal(t, []float64{5.5, 10, 20}, prices(resp.Products))
		assert.Equal(t, "insulation", hd.lastParams().Query)
		assert.Equal(t, domain.SortPriceLowToHigh, hd.lastParams().SortBy)
		assert.Zero(t, lowes.callCount())
	})

	t.Run("ConfiguredDefaults", func(t *testing.T) {
		s, hd, lowes := newTestService(
			DefaultVendorsOpt("lowes"),
			DefaultSortOpt(domain.SortRating),
		)

		resp, err := s.Search(t.Context(), domain.SearchRequest{MaterialType: "brick"})
		require.NoError(t, err)

		assert.Equal(t, 1, lowes.callCount())
		assert.Zero(t, hd.callCount())
		assert.Len(t, resp.Errors, 1)
		assert.Empty(t, resp.Products)
	})

	t.Run("ParamsForwarded", func(t *testing.T) {
		s, hd, _ := newTestService()

		_, err := s.Search(t.Context(), domain.SearchRequest{
			MaterialType: "wood",
			Location:     "Austin, TX 78701",
			ZipCode:      "78701",
			MinPrice:     ptr(5.0),
			MaxPrice:     ptr(50.0),
			Page:         2,
		})
		require.NoError(t, err)

		p := hd.lastParams()
		assert.Equal(t, "lumber wood", p.Query)
		assert.Equal(t, "Austin, TX 78701", p.Location)
		assert.Equal(t, "78701", p.ZipCode)
		assert.Equal(t, 5.0, *p.MinPrice)
		assert.Equal(t, 50.0, *p.MaxPrice)
		assert.Equal(t, 2, p.Page)
	})
}

func TestServiceSearchValidation(t *testing.T) {
	tests := []struct {
		name   string
		req    domain.SearchRequest
		reason string
	}{
		{
			name:   "MissingMaterial",
			req:    domain.SearchRequest{},
			reason: "material is required",
		},
		{
			name:   "BadSort",
			req:    domain.SearchRequest{MaterialType: "glass", SortBy: "cheapest"},
			reason: "sortBy must be one of",
		},
		{
			name:   "NegativePrice",
			req:    domain.SearchRequest{MaterialType: "glass", MinPrice: ptr(-1.0)},
			reason: "minPrice is invalid",
		},
		{
			name:   "InvertedBounds",
			req:    domain.SearchRequest{MaterialType: "glass", MinPrice: ptr(10.0), MaxPrice: ptr(5.0)},
			reason: "minPrice must not exceed maxPrice",
		},
		{
			name:   "BadZip",
			req:    domain.SearchRequest{MaterialType: "glass", ZipCode: "1234"},
			reason: "zipCode is invalid",
		},
		{
			name:   "EmptyVendorID",
			req:    domain.SearchRequest{MaterialType: "glass", VendorIDs: []string{""}},
			reason: "is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, hd, _ := newTestService()

			_, err := s.Search(t.Context(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)

			var verr *domain.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Error(), tt.reason)
			assert.Zero(t, hd.callCount())
		})
	}
}

func TestServiceSearchCanceled(t *testing.T) {
	s, hd, _ := newTestService()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := s.Search(ctx, domain.SearchRequest{MaterialType: "cement"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Zero(t, hd.callCount())
}

func TestServiceSearchEvents(t *testing.T) {
	t.Run("Published", func(t *testing.T) {
		events := new(MockEventsProducer)
		events.On("ProduceSearchEvent", mock.Anything, mock.MatchedBy(
			func(evt domain.SearchEvent) bool {
				return evt.MaterialType == "concrete" &&
					evt.Products == 3 &&
					evt.FailedVendors == 1 &&
					evt.Queries["home-depot"] == "concrete mix" &&
					evt.SortBy == domain.SortPriceLowToHigh &&
					evt.EventID != "" &&
					!evt.CreatedAt.IsZero()
			},
		)).Return(nil).Once()

		s, _, _ := newTestService(EventsProducerOpt(events))

		_, err := s.Search(t.Context(), domain.SearchRequest{
			MaterialType: "concrete",
			VendorIDs:    []string{"home-depot", "lowes"},
		})
		require.NoError(t, err)
		s.WaitPublished()
		events.AssertExpectations(t)
	})

	t.Run("FailureIgnored", func(t *testing.T) {
		events := new(MockEventsProducer)
		events.On("ProduceSearchEvent", mock.Anything, mock.Anything).
			Return(errors.New("broker down")).Once()

		s, _, _ := newTestService(EventsProducerOpt(events))

		resp, err := s.Search(t.Context(), domain.SearchRequest{MaterialType: "concrete"})
		require.NoError(t, err)
		assert.Len(t, resp.Products, 3)
		s.WaitPublished()
		events.AssertExpectations(t)
	})

	t.Run("NotPublishedOnValidationError", func(t *testing.T) {
		events := new(MockEventsProducer)
		s, _, _ := newTestService(EventsProducerOpt(events))

		_, err := s.Search(t.Context(), domain.SearchRequest{})
		require.Error(t, err)
		s.WaitPublished()
		events.AssertNotCalled(t, "ProduceSearchEvent", mock.Anything, mock.Anything)
	})

	t.Run("SlowBrokerDoesNotDelayResponse", func(t *testing.T) {
		release := make(chan time.Time)
		events := new(MockEventsProducer)
		events.On("ProduceSearchEvent", mock.Anything, mock.Anything).
			WaitUntil(release).Return(nil).Once()

		s, _, _ := newTestService(EventsProducerOpt(events))

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, err := s.Search(t.Context(), domain.SearchRequest{MaterialType: "concrete"})
			assert.NoError(t, err)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			require.Fail(t, "search blocked on event delivery")
		}

		close(release)
		s.WaitPublished()
		events.AssertExpectations(t)
	})

	t.Run("DetachedFromRequestCancel", func(t *testing.T) {
		events := new(MockEventsProducer)
		events.On("ProduceSearchEvent", mock.MatchedBy(
			func(ctx context.Context) bool { return ctx.Err() == nil },
		), mock.Anything).Return(nil).Once()

		s, _, _ := newTestService(EventsProducerOpt(events))

		ctx, cancel := context.WithCancel(t.Context())
		_, err := s.Search(ctx, domain.SearchRequest{MaterialType: "concrete"})
		require.NoError(t, err)
		cancel()

		s.WaitPublished()
		events.AssertExpectations(t)
	})
}

func TestServiceVendors(t *testing.T) {
	s, _, _ := newTestService()

	infos := s.Vendors()
	require.Len(t, infos, 3)
	assert.Equal(t, "home-depot", infos[0].ID)
	assert.True(t, infos[0].Available)
	assert.Equal(t, "menards", infos[2].ID)
	assert.False(t, infos[2].Available)
}

func TestServiceProductDetails(t *testing.T) {
	s, _, _ := newTestService()

	p, err := s.ProductDetails(t.Context(), "home-depot", "$5.50")
	require.NoError(t, err)
	assert.Equal(t, "$5.50", p.Price)
	assert.Equal(t, "home-depot", p.Vendor)

	_, err = s.ProductDetails(t.Context(), "home-depot", "missing")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = s.ProductDetails(t.Context(), "nope", "x")
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)
}
