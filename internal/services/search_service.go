package services

import (
	"context"
	"fmt"
	"log"

	"github.com/mmtukut/propabridge-2/internal/match"
	"github.com/mmtukut/propabridge-2/internal/models"
	"github.com/mmtukut/propabridge-2/internal/nlp"
)

// minResultsBeforeSuggesting is the result-count threshold below which the
// alternative-suggestion queries kick in.
const minResultsBeforeSuggesting = 3

// SearchResult bundles the ranked matches with the criteria that produced
// them and, when the match set is thin, fallback suggestions.
type SearchResult struct {
	Criteria     models.SearchCriteria  `json:"criteria"`
	Matches      []models.ScoredListing `json:"matches"`
	Alternatives *match.Alternatives    `json:"alternatives,omitempty"`
}

// ISearchService defines the interface for search operations.
type ISearchService interface {
	Search(ctx context.Context, criteria models.SearchCriteria, limit int) (*SearchResult, error)
	SearchText(ctx context.Context, text string, history []models.Exchange, limit int) (*SearchResult, error)
}

// searchService implements ISearchService. The repository fetch, the scoring
// pass and the suggestion queries are distinct steps; scoring itself does no
// I/O.
type searchService struct {
	finder           match.ListingFinder
	scorer           *match.Scorer
	extractor        nlp.IExtractor
	coarseFetchLimit int
}

// NewSearchService creates a new SearchService.
func NewSearchService(finder match.ListingFinder, scorer *match.Scorer, extractor nlp.IExtractor, coarseFetchLimit int) ISearchService {
	if coarseFetchLimit <= 0 {
		coarseFetchLimit = 200
	}
	return &searchService{
		finder:           finder,
		scorer:           scorer,
		extractor:        extractor,
		coarseFetchLimit: coarseFetchLimit,
	}
}

// Search fetches candidates by coarse filters, ranks them and, when the
// ranked set is empty or very small, gathers alternative suggestions.
// Repository failures propagate unchanged.
func (s *searchService) Search(ctx context.Context, criteria models.SearchCriteria, limit int) (*SearchResult, error) {
	candidates, err := s.finder.FindByCoarseFilters(ctx, criteria, s.coarseFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("listing fetch failed: %w", err)
	}

	ranked := s.scorer.Rank(candidates, &criteria)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	result := &SearchResult{
		Criteria: criteria,
		Matches:  ranked,
	}

	if len(ranked) < minResultsBeforeSuggesting {
		alternatives := match.SuggestAlternatives(ctx, s.finder, criteria)
		if !alternatives.IsEmpty() {
			result.Alternatives = &alternatives
		}
	}

	return result, nil
}

// SearchText extracts criteria from free text (AI first, deterministic
// parsing as the fallback) and runs Search with them.
func (s *searchService) SearchText(ctx context.Context, text string, history []models.Exchange, limit int) (*SearchResult, error) {
	criteria, err := s.extractor.Extract(ctx, text, history)
	if err != nil {
		log.Printf("criteria extraction unavailable (%v); falling back to pattern parsing", err)
		criteria = nlp.ParseCriteria(text)
	}
	return s.Search(ctx, *criteria, limit)
}
