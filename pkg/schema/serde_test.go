package schema_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hamba/avro/v2"
	"github.com/pierregarcia1/construction-aggregator/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSchemaIdentifier struct {
	mock.Mock
}

func (c *MockSchemaIdentifier) DetermineID(
	ctx context.Context, subject string, avroSchemaText string,
) (id int, err error) {
	args := c.Called(ctx, subject, avroSchemaText)
	return args.Int(0), args.Error(1)
}

func testSearchEvent() schema.SearchEventV1 {
	return schema.SearchEventV1{
		EventID:  "5b0c3f0e-7d36-4f51-9d5c-8e1e0b2a9f11",
		Material: "concrete",
		Queries: map[string]string{
			"home-depot": "concrete mix bag",
			"lowes":      "concrete mix",
		},
		VendorIDs:     []string{"home-depot", "lowes"},
		Vendors:       []string{"Home Depot"},
		SortBy:        "price_low_to_high",
		ZipCode:       "78701",
		Products:      24,
		FailedVendors: 0,
		CreatedAt:     time.UnixMilli(1760400000123).UTC(),
	}
}

func TestSearchEventSchemaV1(t *testing.T) {
	s, err := avro.Parse(schema.SearchEventSchemaTextV1)
	require.NoError(t, err)

	t.Run("Regular", func(t *testing.T) {
		want := testSearchEvent()

		data, err := avro.Marshal(s, want)
		require.NoError(t, err)

		var got schema.SearchEventV1
		require.NoError(t, avro.Unmarshal(s, data, &got))
		assert.Equal(t, want, got)
	})

	t.Run("NilArrayAndMap", func(t *testing.T) {
		want := testSearchEvent()
		want.Queries = nil
		want.VendorIDs = nil
		want.Vendors = nil

		data, err := avro.Marshal(s, want)
		require.NoError(t, err)

		var got schema.SearchEventV1
		require.NoError(t, avro.Unmarshal(s, data, &got))
		assert.Empty(t, got.Queries)
		assert.Empty(t, got.VendorIDs)
		assert.Empty(t, got.Vendors)
		assert.Equal(t, want.Material, got.Material)
	})
}

func TestSerdeSearchEventV1(t *testing.T) {
	const subject = "search-events-value"

	t.Run("NoOpts", func(t *testing.T) {
		_, err := schema.NewSerdeSearchEventV1(t.Context())
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("OneOpt", func(t *testing.T) {
		_, err := schema.NewSerdeSearchEventV1(
			t.Context(),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
		assert.ErrorIs(t, err, schema.ErrTooFewOpts)
	})

	t.Run("EmptySubject", func(t *testing.T) {
		_, err := schema.NewSerdeSearchEventV1(
			t.Context(),
			schema.SubjectOpt(""),
			schema.SchemaIdentifierOpt(new(MockSchemaIdentifier)),
		)
		require.Error(t, err)
	})

	t.Run("RegistryError", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		errRegistry := errors.New("registry unavailable")
		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.SearchEventSchemaTextV1,
		).Return(0, errRegistry)

		_, err := schema.NewSerdeSearchEventV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		assert.ErrorIs(t, err, errRegistry)
	})

	t.Run("EncodeDecode", func(t *testing.T) {
		schemaIdentifier := new(MockSchemaIdentifier)
		schemaID := 7
		schemaIdentifier.On(
			"DetermineID", t.Context(), subject, schema.SearchEventSchemaTextV1,
		).Return(schemaID, nil)

		serde, err := schema.NewSerdeSearchEventV1(
			t.Context(),
			schema.SubjectOpt(subject),
			schema.SchemaIdentifierOpt(schemaIdentifier),
		)
		require.NoError(t, err)

		want := testSearchEvent()
		data, err := serde.Encode(want)
		require.NoError(t, err)

		// Confluent wire format: magic byte then big endian schema id.
		require.Greater(t, len(data), 5)
		assert.Equal(t, []byte{0, 0, 0, 0, byte(schemaID)}, data[:5])

		var got schema.SearchEventV1
		require.NoError(t, serde.Decode(data, &got))
		assert.Equal(t, want, got)
		schemaIdentifier.AssertExpectations(t)
	})
}
