package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
	"github.com/pierregarcia1/construction-aggregator/internal/core/port"
)

const publishTimeout = 3 * time.Second

var _ port.ProductSearcher = (*Service)(nil)
var _ port.VendorLister = (*Service)(nil)
var _ port.ProductDetailer = (*Service)(nil)

type Opt func(*Service)

// EventsProducerOpt publishes a [domain.SearchEvent] after every search.
func EventsProducerOpt(p port.SearchEventsProducer) Opt {
	return func(s *Service) {
		s.events = p
	}
}

// DefaultVendorsOpt sets the vendors searched when a request names none.
func DefaultVendorsOpt(ids ...string) Opt {
	return func(s *Service) {
		if len(ids) != 0 {
			s.defaultVendors = ids
		}
	}
}

func DefaultSortOpt(p domain.SortPolicy) Opt {
	return func(s *Service) {
		if p.Valid() {
			s.defaultSort = p
		}
	}
}

type Service struct {
	registry       *Registry
	dispatcher     Dispatcher
	validate       *validator.Validate
	events         port.SearchEventsProducer
	publishing     *sync.WaitGroup
	defaultVendors []string
	defaultSort    domain.SortPolicy
}

func New(registry *Registry, dispatcher Dispatcher, opts ...Opt) Service {
	s := Service{
		registry:       registry,
		dispatcher:     dispatcher,
		validate:       newValidator(),
		publishing:     new(sync.WaitGroup),
		defaultVendors: []string{"home-depot"},
		defaultSort:    domain.SortPriceLowToHigh,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// Search queries the requested vendors, merges their products and sorts
// them. Vendor failures are reported in the response, not as an error.
// The returned error is a [*domain.ValidationError] for a bad request.
func (s Service) Search(
	ctx context.Context, req domain.SearchRequest,
) (domain.SearchResponse, error) {
	const op = "Service.Search"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.SearchResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	req = s.withDefaults(req)
	if err := s.validateRequest(req); err != nil {
		return domain.SearchResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	params := domain.SearchParams{
		Location: req.Location,
		ZipCode:  req.ZipCode,
		SortBy:   req.SortBy,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Page:     req.Page,
		Limit:    req.Limit,
	}

	queries := make(map[string]string, len(req.VendorIDs))
	for _, id := range req.VendorIDs {
		queries[id] = QueryFor(req.MaterialType, id)
	}

	results := s.dispatcher.SearchSpecificFunc(ctx, req.VendorIDs,
		func(id string) domain.SearchParams {
			return params.WithQuery(queries[id])
		},
	)

	products, errs := Merge(results)
	Sort(products, req.SortBy)

	vendors := make([]string, len(results))
	for i, r := range results {
		vendors[i] = r.Vendor
	}

	resp := domain.SearchResponse{
		Products:     products,
		TotalResults: len(products),
		Vendors:      vendors,
		Errors:       errs,
	}

	log.Info("search completed",
		"material", req.MaterialType,
		"vendors", len(results),
		"products", len(products),
		"failed", len(errs),
	)

	s.publish(ctx, domain.SearchEvent{
		EventID:       uuid.NewString(),
		MaterialType:  req.MaterialType,
		Queries:       queries,
		VendorIDs:     req.VendorIDs,
		Vendors:       vendors,
		SortBy:        req.SortBy,
		ZipCode:       req.ZipCode,
		Products:      len(products),
		FailedVendors: len(errs),
		CreatedAt:     time.Now().UTC(),
	})

	return resp, nil
}

func (s Service) Vendors() []domain.VendorInfo {
	return s.registry.Info()
}

func (s Service) ProductDetails(
	ctx context.Context, vendorID, productID string,
) (domain.Product, error) {
	const op = "Service.ProductDetails"

	v, ok := s.registry.Get(vendorID)
	if !ok {
		return domain.Product{}, fmt.Errorf("%s: %w: %q", op, domain.ErrVendorNotFound, vendorID)
	}

	p, err := v.ProductDetails(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	p.Vendor = vendorID
	return p, nil
}

func (s Service) withDefaults(req domain.SearchRequest) domain.SearchRequest {
	if len(req.VendorIDs) == 0 {
		req.VendorIDs = s.defaultVendors
	}
	if req.SortBy == "" {
		req.SortBy = s.defaultSort
	}
	return req
}

func (s Service) validateRequest(req domain.SearchRequest) error {
	var reasons []string

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			reasons = append(reasons, reason(fe))
		}
	}

	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		reasons = append(reasons, "minPrice must not exceed maxPrice")
	}

	if len(reasons) != 0 {
		return &domain.ValidationError{Reasons: reasons}
	}
	return nil
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// publish delivers evt in the background so a slow broker never delays
// the search response.
func (s Service) publish(ctx context.Context, evt domain.SearchEvent) {
	const op = "Service.publish"

	if s.events == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	s.publishing.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		if err := s.events.ProduceSearchEvent(ctx, evt); err != nil {
			slog.Warn("failed to publish search event", "op", op, "err", err)
		}
	})
}

// WaitPublished blocks until every in-flight search event is delivered or
// has timed out.
func (s Service) WaitPublished() {
	s.publishing.Wait()
}
