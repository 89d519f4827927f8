package httphandler

import (
	"regexp"
	"strings"

	"github.com/pierregarcia1/construction-aggregator/internal/core/domain"
)

var zipCodeRe = regexp.MustCompile(`\b\d{5}\b`)

type (
	// searchQuery binds the GET /api/search query string.
	searchQuery struct {
		Material string   `form:"material"`
		Vendors  string   `form:"vendors"`
		SortBy   string   `form:"sortBy"`
		Location string   `form:"location"`
		MinPrice *float64 `form:"minPrice"`
		MaxPrice *float64 `form:"maxPrice"`
		Page     int      `form:"page"`
		Limit    int      `form:"limit"`
	}

	errorResponse struct {
		Error   string `json:"error"`
		Details string `json:"details,omitempty"`
	}

	testResponse struct {
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
)

func (q searchQuery) toDomain() domain.SearchRequest {
	return domain.SearchRequest{
		MaterialType: strings.TrimSpace(q.Material),
		VendorIDs:    splitList(q.Vendors),
		SortBy:       domain.SortPolicy(strings.TrimSpace(q.SortBy)),
		Location:     q.Location,
		ZipCode:      zipCode(q.Location),
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		Page:         q.Page,
		Limit:        q.Limit,
	}
}

// zipCode returns the first standalone five digit group in location.
func zipCode(location string) string {
	return zipCodeRe.FindString(location)
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
