package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/twmb/franz-go/pkg/sr"
)

// A SchemaIdentifier returns the registry id of schemaText under subject,
// registering the schema when it is new.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject string, schemaText string) (int, error)
}

var _ SchemaIdentifier = (*Registry)(nil)

// A Registry is a [SchemaIdentifier] backed by a Confluent compatible
// schema registry.
type Registry struct {
	cl *sr.Client
}

func NewRegistry(urls ...string) (*Registry, error) {
	const op = "NewRegistry"

	if len(urls) == 0 {
		return nil, fmt.Errorf("%s: %w", op, errors.New("no schema registry urls"))
	}

	cl, err := sr.NewClient(sr.URLs(urls...))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Registry{cl}, nil
}

func (r *Registry) DetermineID(
	ctx context.Context, subject string, schemaText string,
) (int, error) {
	const op = "Registry.DetermineID"

	ss, err := r.cl.CreateSchema(ctx, subject, sr.Schema{
		Schema: schemaText,
		Type:   sr.TypeAvro,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return ss.ID, nil
}
