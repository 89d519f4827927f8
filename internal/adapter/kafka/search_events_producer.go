package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
	"github.com/pierregarcia1/construction-aggregator/internal/core/port"
	"github.com/pierregarcia1/construction-aggregator/pkg/schema"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.SearchEventsProducer = (*SearchEventsProducer)(nil)

// A SearchEventsProducer publishes [domain.SearchEvent] keyed by material,
// so searches for one material land on one partition.
type SearchEventsProducer struct {
	cl      ProducerClient
	encoder Encoder
}

func NewSearchEventsProducer(
	opts ...ProducerOpt,
) (SearchEventsProducer, error) {
	const op = "NewSearchEventsProducer"

	if len(opts) != 2 {
		panic(fmt.Errorf("%s: %w", op, ErrTooFewOpts)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return SearchEventsProducer{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return SearchEventsProducer{options.cl, options.encoder}, nil
}

func (p SearchEventsProducer) Close() {
	const op = "SearchEventsProducer.Close"
	log := slog.With("op", op)
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p SearchEventsProducer) ProduceSearchEvent(
	ctx context.Context, evt domain.SearchEvent,
) error {
	const op = "SearchEventsProducer.ProduceSearchEvent"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r, err := p.createRecord(evt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res := p.cl.ProduceSync(ctx, r)
	if err := res.FirstErr(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p SearchEventsProducer) createRecord(
	evt domain.SearchEvent,
) (*kgo.Record, error) {
	const op = "SearchEventsProducer.createRecord"

	s := p.toSchema(evt)
	v, err := p.encoder.Encode(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &kgo.Record{
		Key:       []byte(s.Material),
		Value:     v,
		Timestamp: evt.CreatedAt,
	}, nil
}

func (p SearchEventsProducer) toSchema(
	evt domain.SearchEvent,
) (s schema.SearchEventV1) {
	s.EventID = evt.EventID
	s.Material = evt.MaterialType
	s.Queries = evt.Queries
	s.VendorIDs = evt.VendorIDs
	s.Vendors = evt.Vendors
	s.SortBy = string(evt.SortBy)
	s.ZipCode = evt.ZipCode
	s.Products = int64(evt.Products)
	s.FailedVendors = int64(evt.FailedVendors)
	s.CreatedAt = evt.CreatedAt
	return s
}
