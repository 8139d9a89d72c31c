package match

import (
	"context"
	"log"
	"strings"

	"github.com/mmtukut/propabridge-2/internal/models"
)

// ListingFinder is the coarse-filter read contract of the listing repository.
// Implementations return publicly visible listings only, newest first.
type ListingFinder interface {
	FindByCoarseFilters(ctx context.Context, filters models.SearchCriteria, limit int) ([]models.Listing, error)
}

// Alternatives holds fallback suggestions produced when ranking comes back
// empty or very thin. Each list is capped and independently sourced; a failed
// sub-query leaves its list nil without affecting the others.
type Alternatives struct {
	NearbyAreas     []models.Listing `json:"nearby_areas,omitempty"`
	CheaperOptions  []models.Listing `json:"cheaper_options,omitempty"`
	PremiumOptions  []models.Listing `json:"premium_options,omitempty"`
	RelaxedCriteria []models.Listing `json:"relaxed_criteria,omitempty"`
	// RelaxedBedrooms is the bedroom count used for RelaxedCriteria, when set.
	RelaxedBedrooms int `json:"relaxed_bedrooms,omitempty"`
}

// IsEmpty reports whether no suggestion of any kind was found.
func (a *Alternatives) IsEmpty() bool {
	return len(a.NearbyAreas) == 0 && len(a.CheaperOptions) == 0 &&
		len(a.PremiumOptions) == 0 && len(a.RelaxedCriteria) == 0
}

const alternativesCap = 3

// SuggestAlternatives issues up to four additional coarse queries against the
// listing repository to salvage a near-miss search: same city but different
// area, 80% of the budget, the premium band just above the budget, and one
// bedroom fewer. Sub-query failures are logged and isolated.
func SuggestAlternatives(ctx context.Context, finder ListingFinder, criteria models.SearchCriteria) Alternatives {
	var alt Alternatives

	if criteria.Location != "" {
		nearby, err := findNearbyAreas(ctx, finder, criteria)
		if err != nil {
			log.Printf("suggest: nearby-areas query failed: %v", err)
		} else {
			alt.NearbyAreas = nearby
		}
	}

	if criteria.MaxPrice != nil {
		cheaper := criteria
		reduced := *criteria.MaxPrice * 0.8
		cheaper.MaxPrice = &reduced
		listings, err := finder.FindByCoarseFilters(ctx, cheaper, alternativesCap)
		if err != nil {
			log.Printf("suggest: cheaper-options query failed: %v", err)
		} else {
			alt.CheaperOptions = listings
		}

		premium := criteria
		low := *criteria.MaxPrice
		high := *criteria.MaxPrice * 1.2
		premium.MinPrice = &low
		premium.MaxPrice = &high
		listings, err = finder.FindByCoarseFilters(ctx, premium, alternativesCap)
		if err != nil {
			log.Printf("suggest: premium-options query failed: %v", err)
		} else {
			alt.PremiumOptions = listings
		}
	}

	if criteria.Bedrooms != nil && *criteria.Bedrooms > 1 {
		relaxed := criteria
		fewer := *criteria.Bedrooms - 1
		relaxed.Bedrooms = &fewer
		listings, err := finder.FindByCoarseFilters(ctx, relaxed, alternativesCap)
		if err != nil {
			log.Printf("suggest: relaxed-criteria query failed: %v", err)
		} else {
			alt.RelaxedCriteria = listings
			alt.RelaxedBedrooms = fewer
		}
	}

	return alt
}

// findNearbyAreas queries by the city component of the requested location and
// drops listings that sit in the originally requested area itself.
func findNearbyAreas(ctx context.Context, finder ListingFinder, criteria models.SearchCriteria) ([]models.Listing, error) {
	wanted := strings.ToLower(strings.TrimSpace(criteria.Location))

	citywide := criteria
	citywide.Location = CityOf(criteria.Location)

	// Over-fetch a little so excluding the original area can still fill the cap.
	listings, err := finder.FindByCoarseFilters(ctx, citywide, alternativesCap*4)
	if err != nil {
		return nil, err
	}

	nearby := make([]models.Listing, 0, alternativesCap)
	for _, l := range listings {
		if strings.Contains(strings.ToLower(l.Location), wanted) {
			continue
		}
		nearby = append(nearby, l)
		if len(nearby) == alternativesCap {
			break
		}
	}
	return nearby, nil
}
