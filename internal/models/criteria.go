package models

// SearchCriteria is a request-scoped search intent. Fields are nil/empty when
// the searcher expressed no preference. Never persisted.
type SearchCriteria struct {
	Location     string   `json:"location,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	Bedrooms     *int     `json:"bedrooms,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
}

// IsEmpty reports whether no criterion at all was expressed.
func (c *SearchCriteria) IsEmpty() bool {
	return c.Location == "" && c.PropertyType == "" &&
		c.MinPrice == nil && c.MaxPrice == nil && c.Bedrooms == nil &&
		len(c.Amenities) == 0
}

// ScoreBreakdown carries the per-criterion sub-scores behind a match score.
type ScoreBreakdown struct {
	Location       int `json:"location"`
	Price          int `json:"price"`
	Amenities      int `json:"amenities"`
	Condition      int `json:"condition"`
	Responsiveness int `json:"responsiveness"`
	Freshness      int `json:"freshness"`
}

// ScoredListing is a Listing annotated with its derived match score.
// Exists only for the duration of a single ranking response.
type ScoredListing struct {
	Listing    Listing        `json:"listing"`
	MatchScore int            `json:"match_score"` // 0-100
	Breakdown  ScoreBreakdown `json:"breakdown"`
}
