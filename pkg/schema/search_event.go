package schema

import "time"

const SearchEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "aggregator",
	"name": "search_event",
	"fields": [
		{"name": "event_id", "type": "string"},
		{"name": "material", "type": "string"},
		{"name": "queries", "type": {"type": "map", "values": "string"}},
		{"name": "vendor_ids", "type": {"type": "array", "items": "string"}},
		{"name": "vendors", "type": {"type": "array", "items": "string"}},
		{"name": "sort_by", "type": "string"},
		{"name": "zip_code", "type": "string", "default": ""},
		{"name": "products", "type": "long"},
		{"name": "failed_vendors", "type": "long"},
		{"name": "created_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

type SearchEventV1 struct {
	EventID       string            `avro:"event_id"`
	Material      string            `avro:"material"`
	Queries       map[string]string `avro:"queries"`
	VendorIDs     []string          `avro:"vendor_ids"`
	Vendors       []string          `avro:"vendors"`
	SortBy        string            `avro:"sort_by"`
	ZipCode       string            `avro:"zip_code"`
	Products      int64             `avro:"products"`
	FailedVendors int64             `avro:"failed_vendors"`
	CreatedAt     time.Time         `avro:"created_at"`
}
