package match

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mmtukut/propabridge-2/internal/models"
)

// Weights are the relative importance of each sub-criterion. They must sum
// to 100; the final score is round(sum(subscore_i * weight_i) / 100).
type Weights struct {
	Location       int
	Price          int
	Amenities      int
	Condition      int
	Responsiveness int
	Freshness      int
}

// DefaultWeights returns the standard weight distribution.
func DefaultWeights() Weights {
	return Weights{
		Location:       30,
		Price:          25,
		Amenities:      20,
		Condition:      10,
		Responsiveness: 10,
		Freshness:      5,
	}
}

// Config tunes a Scorer. Zero values fall back to defaults in NewScorer.
type Config struct {
	Weights   Weights
	Gazetteer Gazetteer
	// MinScore is the rank cutoff below which listings are dropped.
	MinScore int
	// ResponsivenessScore is a constant stand-in sub-score. There is no
	// per-listing responsiveness signal yet; this stays a flat value until
	// inquiry-response history is collected.
	ResponsivenessScore int
	// Now supplies the clock used for age-based sub-scores.
	Now func() time.Time
}

const (
	defaultMinScore            = 40
	defaultResponsivenessScore = 80
)

// Scorer assigns 0-100 relevance scores to listings against search criteria.
// It is stateless and safe for concurrent use.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer, filling unset config fields with defaults.
func NewScorer(cfg Config) *Scorer {
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights()
	}
	if cfg.Gazetteer.Aliases == nil && cfg.Gazetteer.Cities == nil {
		cfg.Gazetteer = DefaultGazetteer()
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = defaultMinScore
	}
	if cfg.ResponsivenessScore == 0 {
		cfg.ResponsivenessScore = defaultResponsivenessScore
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Scorer{cfg: cfg}
}

// Score computes the overall 0-100 match score of a listing against criteria.
// It never fails: absent fields degrade to their documented defaults.
func (s *Scorer) Score(listing *models.Listing, criteria *models.SearchCriteria) int {
	b := s.Breakdown(listing, criteria)
	w := s.cfg.Weights
	weighted := float64(b.Location*w.Location+
		b.Price*w.Price+
		b.Amenities*w.Amenities+
		b.Condition*w.Condition+
		b.Responsiveness*w.Responsiveness+
		b.Freshness*w.Freshness) / 100.0
	return int(math.Round(weighted))
}

// Breakdown computes the per-criterion sub-scores of a listing.
func (s *Scorer) Breakdown(listing *models.Listing, criteria *models.SearchCriteria) models.ScoreBreakdown {
	age := listing.Age(s.cfg.Now())
	return models.ScoreBreakdown{
		Location:       s.locationScore(listing.Location, criteria.Location),
		Price:          priceScore(listing.Price, criteria.MinPrice, criteria.MaxPrice),
		Amenities:      amenitiesScore(listing.Amenities, criteria.Amenities),
		Condition:      conditionScore(listing.Verified, age),
		Responsiveness: s.cfg.ResponsivenessScore,
		Freshness:      freshnessScore(age),
	}
}

// Rank scores every listing, sorts descending by score (stable, so listings
// with equal scores keep their original relative order) and drops listings
// below the minimum score cutoff.
func (s *Scorer) Rank(listings []models.Listing, criteria *models.SearchCriteria) []models.ScoredListing {
	scored := make([]models.ScoredListing, 0, len(listings))
	for i := range listings {
		breakdown := s.Breakdown(&listings[i], criteria)
		scored = append(scored, models.ScoredListing{
			Listing:    listings[i],
			MatchScore: s.Score(&listings[i], criteria),
			Breakdown:  breakdown,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchScore > scored[j].MatchScore
	})

	ranked := scored[:0]
	for _, sl := range scored {
		if sl.MatchScore >= s.cfg.MinScore {
			ranked = append(ranked, sl)
		}
	}
	return ranked
}

// locationScore: exact substring containment (either direction) 100, alias
// table hit 90, shared city 50, otherwise 0. An unset criteria location
// contributes 0 rather than a neutral skip.
func (s *Scorer) locationScore(listingLocation, wantedLocation string) int {
	wanted := strings.ToLower(strings.TrimSpace(wantedLocation))
	if wanted == "" {
		return 0
	}
	have := strings.ToLower(strings.TrimSpace(listingLocation))
	if have == "" {
		return 0
	}

	if strings.Contains(have, wanted) || strings.Contains(wanted, have) {
		return 100
	}
	if s.cfg.Gazetteer.aliasMatch(have, wanted) {
		return 90
	}
	if s.cfg.Gazetteer.sharedCity(have, wanted) {
		return 50
	}
	return 0
}

// priceScore bands the listing price against the requested bounds. Prices up
// to 10% over budget are tolerated at 70, up to 20% at 40, beyond that 0.
// No requested bounds means any price is acceptable.
func priceScore(price float64, minPrice, maxPrice *float64) int {
	if price <= 0 {
		return 0
	}
	if minPrice == nil && maxPrice == nil {
		return 100
	}

	if minPrice != nil && maxPrice != nil {
		min, max := *minPrice, *maxPrice
		if price >= min && price <= max {
			// Prices in the middle half of the range are the sweet spot.
			span := max - min
			if price >= min+0.25*span && price <= min+0.75*span {
				return 100
			}
			return 90
		}
		if price < min {
			return 0
		}
		return overBudgetScore(price, max)
	}

	if maxPrice != nil {
		max := *maxPrice
		if price <= max {
			switch {
			case price <= 0.8*max:
				return 100
			case price <= 0.9*max:
				return 95
			default:
				return 90
			}
		}
		return overBudgetScore(price, max)
	}

	// Only a minimum given.
	if price >= *minPrice {
		return 100
	}
	return 0
}

func overBudgetScore(price, max float64) int {
	switch {
	case price <= 1.1*max:
		return 70
	case price <= 1.2*max:
		return 40
	default:
		return 0
	}
}

// amenitiesScore: percentage of requested amenity tags found among the
// listing's tags, matched case-insensitively by substring either direction.
// No requested amenities is a vacuous match.
func amenitiesScore(have, wanted []string) int {
	if len(wanted) == 0 {
		return 100
	}
	if len(have) == 0 {
		return 0
	}

	matched := 0
	for _, w := range wanted {
		wl := strings.ToLower(strings.TrimSpace(w))
		for _, h := range have {
			hl := strings.ToLower(strings.TrimSpace(h))
			if strings.Contains(hl, wl) || strings.Contains(wl, hl) {
				matched++
				break
			}
		}
	}
	return int(math.Round(float64(matched) / float64(len(wanted)) * 100))
}

// conditionScore: verified listings start at 100, unverified at 60, with age
// penalties past 30 and 60 days. Floored at 0.
func conditionScore(verified bool, age time.Duration) int {
	score := 60
	if verified {
		score = 100
	}
	switch {
	case age > 60*24*time.Hour:
		score -= 20
	case age > 30*24*time.Hour:
		score -= 10
	}
	if score < 0 {
		score = 0
	}
	return score
}

// freshnessScore steps down with listing age.
func freshnessScore(age time.Duration) int {
	day := 24 * time.Hour
	switch {
	case age <= 7*day:
		return 100
	case age <= 14*day:
		return 90
	case age <= 30*day:
		return 70
	case age <= 60*day:
		return 50
	default:
		return 30
	}
}
