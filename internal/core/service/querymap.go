package service

var materialQueries = map[string]map[string]string{
	"concrete": {
		"home-depot": "concrete mix",
		"lowes":      "concrete mix",
		"menards":    "concrete mix",
		"local":      "concrete",
	},
	"steel": {
		"home-depot": "steel rebar",
		"lowes":      "steel rebar",
		"menards":    "steel rebar",
		"local":      "steel",
	},
	"cement": {
		"home-depot": "cement",
		"lowes":      "cement",
		"menards":    "cement",
		"local":      "cement",
	},
	"wood": {
		"home-depot": "lumber wood",
		"lowes":      "lumber wood",
		"menards":    "lumber wood",
		"local":      "lumber",
	},
	"brick": {
		"home-depot": "brick masonry",
		"lowes":      "brick masonry",
		"menards":    "brick masonry",
		"local":      "brick",
	},
	"glass": {
		"home-depot": "glass window",
		"lowes":      "glass window",
		"menards":    "glass window",
		"local":      "glass",
	},
}

// QueryFor returns the search phrase vendorID understands for materialType.
// Unmapped pairs fall back to materialType unchanged.
func QueryFor(materialType, vendorID string) string {
	if q, ok := materialQueries[materialType][vendorID]; ok {
		return q
	}
	return materialType
}
