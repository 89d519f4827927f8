package domain

import "time"

// A SearchEvent describes one completed search for analytics consumers.
type SearchEvent struct {
	EventID       string
	MaterialType  string
	Queries       map[string]string
	VendorIDs     []string
	Vendors       []string
	SortBy        SortPolicy
	ZipCode       string
	Products      int
	FailedVendors int
	CreatedAt     time.Time
}
