package domain

type SortPolicy string

const (
	SortPriceLowToHigh SortPolicy = "price_low_to_high"
	SortPriceHighToLow SortPolicy = "price_high_to_low"
	SortRating         SortPolicy = "rating"
	SortRelevance      SortPolicy = "relevance"
)

func (p SortPolicy) Valid() bool {
	switch p {
	case SortPriceLowToHigh, SortPriceHighToLow, SortRating, SortRelevance:
		return true
	}
	return false
}

type (
	// A Product is a vendor-normalized catalog item.
	//
	// Price is a display string and is not guaranteed to be numeric,
	// see [ParsePrice].
	Product struct {
		ID                string   `json:"id"`
		Title             string   `json:"title"`
		Price             string   `json:"price"`
		OriginalPrice     string   `json:"originalPrice,omitempty"`
		Brand             string   `json:"brand,omitempty"`
		Rating            *float64 `json:"rating,omitempty"`
		Reviews           int      `json:"reviews,omitempty"`
		Image             string   `json:"image,omitempty"`
		URL               string   `json:"url,omitempty"`
		Vendor            string   `json:"vendor"`
		VendorName        string   `json:"vendorName,omitempty"`
		VendorLogo        string   `json:"vendorLogo,omitempty"`
		DeliveryOptions   []string `json:"deliveryOptions,omitempty"`
		StoreAvailability bool     `json:"storeAvailability,omitempty"`
		StoreLocation     string   `json:"storeLocation,omitempty"`
		InStock           bool     `json:"inStock"`
		Unit              string   `json:"unit,omitempty"`
		Weight            string   `json:"weight,omitempty"`
		Dimensions        string   `json:"dimensions,omitempty"`
	}

	SearchParams struct {
		Query    string
		Location string
		ZipCode  string
		SortBy   SortPolicy
		MinPrice *float64
		MaxPrice *float64
		Page     int
		Limit    int
	}

	// A SearchResult is the outcome of one vendor search.
	//
	// When Error is set Products is empty.
	SearchResult struct {
		Products     []Product
		TotalResults *int
		VendorID     string
		Vendor       string
		Error        string
	}
)

// WithQuery returns a copy of p searching for q.
func (p SearchParams) WithQuery(q string) SearchParams {
	p.Query = q
	return p
}

// RatingValue returns the product rating or 0 when it is absent.
func (p Product) RatingValue() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

func (r SearchResult) Failed() bool {
	return r.Error != ""
}

// FailedResult captures err as the outcome of vendor's search.
// The message keeps the vendor name so it stays meaningful after merge.
func FailedResult(vendor string, err error) SearchResult {
	return SearchResult{
		Products: []Product{},
		Vendor:   vendor,
		Error:    vendor + ": " + err.Error(),
	}
}

type (
	// A SearchRequest is what the inbound adapter hands to the core.
	SearchRequest struct {
		MaterialType string     `label:"material" validate:"required"`
		VendorIDs    []string   `label:"vendors" validate:"dive,required"`
		SortBy       SortPolicy `label:"sortBy" validate:"omitempty,oneof=price_low_to_high price_high_to_low rating relevance"`
		Location     string     `label:"location"`
		ZipCode      string     `label:"zipCode" validate:"omitempty,len=5,numeric"`
		MinPrice     *float64   `label:"minPrice" validate:"omitempty,gte=0"`
		MaxPrice     *float64   `label:"maxPrice" validate:"omitempty,gte=0"`
		Page         int        `label:"page" validate:"gte=0"`
		Limit        int        `label:"limit" validate:"gte=0,lte=100"`
	}

	SearchResponse struct {
		Products     []Product `json:"products"`
		TotalResults int       `json:"totalResults"`
		Vendors      []string  `json:"vendors"`
		Errors       []string  `json:"errors,omitempty"`
	}
)

type VendorInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Logo      string `json:"logo"`
	Available bool   `json:"available"`
}
