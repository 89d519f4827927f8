package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
	"golang.org/x/sync/errgroup"
)

const DefaultVendorTimeout = 15 * time.Second

type DispatcherOpt func(*Dispatcher)

// VendorTimeoutOpt bounds every vendor search. Zero disables the bound.
func VendorTimeoutOpt(d time.Duration) DispatcherOpt {
	return func(dp *Dispatcher) {
		if d >= 0 {
			dp.timeout = d
		}
	}
}

// A Dispatcher fans a search out to registered vendors and waits for
// every one of them.
//
// A failing, panicking or stalled vendor is reported in its own
// [domain.SearchResult] and never affects the others.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
}

func NewDispatcher(registry *Registry, opts ...DispatcherOpt) Dispatcher {
	if registry == nil {
		panic("service.NewDispatcher: nil registry") // develop mistake
	}
	d := Dispatcher{registry: registry, timeout: DefaultVendorTimeout}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// SearchAll searches every vendor available at call time.
func (d Dispatcher) SearchAll(
	ctx context.Context, params domain.SearchParams,
) []domain.SearchResult {
	return d.dispatch(ctx, d.registry.ListAvailable(), sameParams(params))
}

// SearchSpecific searches the vendors named by ids. Unknown and unavailable
// ids are skipped without a result.
func (d Dispatcher) SearchSpecific(
	ctx context.Context, ids []string, params domain.SearchParams,
) []domain.SearchResult {
	return d.SearchSpecificFunc(ctx, ids, sameParams(params))
}

// SearchSpecificFunc is [Dispatcher.SearchSpecific] with parameters chosen
// per vendor id.
func (d Dispatcher) SearchSpecificFunc(
	ctx context.Context,
	ids []string,
	paramsFor func(vendorID string) domain.SearchParams,
) []domain.SearchResult {
	return d.dispatch(ctx, d.resolve(ids), paramsFor)
}

func (d Dispatcher) resolve(ids []string) []Registration {
	const op = "Dispatcher.resolve"
	log := slog.With("op", op)

	regs := make([]Registration, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		v, ok := d.registry.Get(id)
		if !ok {
			log.Debug("skip unknown vendor", "vendor", id)
			continue
		}
		if !v.IsAvailable() {
			log.Debug("skip unavailable vendor", "vendor", id)
			continue
		}
		regs = append(regs, Registration{id, v})
	}
	return regs
}

func (d Dispatcher) dispatch(
	ctx context.Context,
	regs []Registration,
	paramsFor func(string) domain.SearchParams,
) []domain.SearchResult {
	results := make([]domain.SearchResult, len(regs))

	var g errgroup.Group
	for i, reg := range regs {
		params := paramsFor(reg.ID)
		g.Go(func() error {
			results[i] = d.searchOne(ctx, reg, params)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d Dispatcher) searchOne(
	ctx context.Context, reg Registration, params domain.SearchParams,
) domain.SearchResult {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	name := reg.Vendor.Name()
	done := make(chan domain.SearchResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- domain.FailedResult(name, fmt.Errorf("search panicked: %v", r))
			}
		}()
		done <- reg.Vendor.SearchProducts(ctx, params)
	}()

	var res domain.SearchResult
	select {
	case res = <-done:
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = domain.ErrVendorTimeout
		}
		res = domain.FailedResult(name, err)
	}

	return d.normalize(reg, res)
}

// normalize enforces the result invariants regardless of how the vendor
// filled the result in.
func (d Dispatcher) normalize(
	reg Registration, res domain.SearchResult,
) domain.SearchResult {
	const op = "Dispatcher.normalize"

	res.VendorID = reg.ID
	if res.Vendor == "" {
		res.Vendor = reg.Vendor.Name()
	}

	if res.Failed() {
		slog.Warn("vendor search failed",
			"op", op, "vendor", reg.ID, "err", res.Error)
		res.Products = []domain.Product{}
		return res
	}

	if res.Products == nil {
		res.Products = []domain.Product{}
	}
	// vendors may hand out a cached slice
	res.Products = slices.Clone(res.Products)
	for i := range res.Products {
		res.Products[i].Vendor = reg.ID
		if res.Products[i].VendorName == "" {
			res.Products[i].VendorName = res.Vendor
		}
	}
	return res
}

func sameParams(p domain.SearchParams) func(string) domain.SearchParams {
	return func(string) domain.SearchParams { return p }
}
