package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mmtukut/propabridge-2/internal/models"
)

// Deterministic fallback parsing of search text. Used whenever the AI
// extractor is unavailable or fails; the rules below are fixed and cheap.

var (
	// "in Wuse 2", "at Lekki Phase 1" - capture until a clause boundary.
	locationRe = regexp.MustCompile(`(?i)\b(?:in|at)\s+([a-z][a-z0-9 .]*(?:,\s*[a-z][a-z ]*)?)`)
	// "Gwarinpa area"
	areaRe = regexp.MustCompile(`(?i)\b([a-z][a-z0-9 .]*?)\s+area\b`)
	// "3 bedroom", "3-bed", "3br"
	bedroomsRe = regexp.MustCompile(`(?i)\b(\d+)\s*[- ]?(?:bed(?:room)?s?|br)\b`)
	// "2.5m", "800k", "1b" - magnitude-suffixed amounts.
	amountRe = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(k|m|b)\b`)
	// "between 1m and 3m"
	betweenRe = regexp.MustCompile(`(?i)\bbetween\s+(\d+(?:\.\d+)?)\s*(k|m|b)\s+and\s+(\d+(?:\.\d+)?)\s*(k|m|b)\b`)

	maxCues = []string{"under", "below", "less than", "not more than", "at most", "max", "budget of", "budget is", "budget"}
	minCues = []string{"above", "over", "more than", "at least", "from", "min"}

	propertyTypeKeywords = []string{
		"self-contain", "self contain", "apartment", "bungalow", "duplex",
		"terrace", "detached", "studio", "flat", "shop", "office", "land",
	}

	amenityKeywords = []string{
		"parking", "pool", "security", "power", "borehole", "water",
		"furnished", "serviced", "gym", "garden", "balcony", "bq",
	}

	// Words a location capture should never start with; avoids "in between",
	// "in a good area" style captures.
	locationStopWords = map[string]bool{
		"a": true, "an": true, "the": true, "between": true, "my": true,
		"good": true, "nice": true, "any": true,
	}
)

// ParseCriteria extracts a partial SearchCriteria from free text using fixed
// pattern rules. Fields stay unset when the text gives no signal.
func ParseCriteria(text string) *models.SearchCriteria {
	criteria := &models.SearchCriteria{}
	lower := strings.ToLower(text)

	criteria.Location = parseLocation(text)
	criteria.PropertyType = parsePropertyType(lower)
	criteria.MinPrice, criteria.MaxPrice = parsePriceBounds(lower)
	criteria.Bedrooms = parseBedrooms(lower)
	criteria.Amenities = parseAmenities(lower)

	return criteria
}

func parseLocation(text string) string {
	if m := locationRe.FindStringSubmatch(text); m != nil {
		loc := cleanLocation(m[1])
		if loc != "" {
			return loc
		}
	}
	if m := areaRe.FindStringSubmatch(text); m != nil {
		return cleanLocation(m[1])
	}
	return ""
}

// cleanLocation trims trailing clause words the loose regex may have
// swallowed ("wuse 2 for rent" -> "wuse 2") and rejects stop-word captures.
func cleanLocation(raw string) string {
	words := strings.Fields(strings.TrimSpace(raw))
	if len(words) == 0 || locationStopWords[strings.ToLower(words[0])] {
		return ""
	}
	cut := len(words)
	for i, w := range words {
		switch strings.ToLower(strings.Trim(w, ".,")) {
		case "for", "under", "below", "with", "from", "and", "that", "around", "about":
			cut = i
		}
		if cut == i {
			break
		}
	}
	return strings.TrimRight(strings.Join(words[:cut], " "), ".,")
}

func parsePropertyType(lower string) string {
	for _, kw := range propertyTypeKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

func parseBedrooms(lower string) *int {
	m := bedroomsRe.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func parsePriceBounds(lower string) (minPrice, maxPrice *float64) {
	if m := betweenRe.FindStringSubmatch(lower); m != nil {
		lo := applyMagnitude(m[1], m[2])
		hi := applyMagnitude(m[3], m[4])
		if lo > hi {
			lo, hi = hi, lo
		}
		return &lo, &hi
	}

	matches := amountRe.FindAllStringSubmatchIndex(lower, -1)
	for _, idx := range matches {
		amount := applyMagnitude(lower[idx[2]:idx[3]], lower[idx[4]:idx[5]])
		prefix := lower[:idx[0]]
		v := amount
		if hasCueNear(prefix, minCues) && !hasCueNear(prefix, maxCues) {
			minPrice = &v
		} else {
			// Bare amounts read as a budget ceiling, which is how renters
			// phrase them ("2 bed flat in Wuse, 3m").
			maxPrice = &v
		}
	}
	return minPrice, maxPrice
}

// hasCueNear checks whether one of the cue phrases appears within the last
// few words before an amount.
func hasCueNear(prefix string, cues []string) bool {
	tail := prefix
	if len(tail) > 24 {
		tail = tail[len(tail)-24:]
	}
	for _, cue := range cues {
		if strings.Contains(tail, cue) {
			return true
		}
	}
	return false
}

func applyMagnitude(number, suffix string) float64 {
	n, _ := strconv.ParseFloat(number, 64)
	switch suffix {
	case "k":
		return n * 1_000
	case "m":
		return n * 1_000_000
	case "b":
		return n * 1_000_000_000
	}
	return n
}

func parseAmenities(lower string) []string {
	var found []string
	for _, kw := range amenityKeywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}
