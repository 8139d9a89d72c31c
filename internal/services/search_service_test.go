package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmtukut/propabridge-2/internal/match"
	"github.com/mmtukut/propabridge-2/internal/models"
	"github.com/mmtukut/propabridge-2/internal/nlp"
)

// stubFinder returns its canned listings for every coarse query.
type stubFinder struct {
	listings []models.Listing
	err      error
	calls    int
}

func (f *stubFinder) FindByCoarseFilters(ctx context.Context, filters models.SearchCriteria, limit int) ([]models.Listing, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if len(f.listings) > limit {
		return f.listings[:limit], nil
	}
	return f.listings, nil
}

// stubExtractor returns fixed criteria or an error.
type stubExtractor struct {
	criteria *models.SearchCriteria
	err      error
}

func (e *stubExtractor) Extract(ctx context.Context, text string, history []models.Exchange) (*models.SearchCriteria, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.criteria, nil
}

func testScorer() *match.Scorer {
	return match.NewScorer(match.Config{
		Now: func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func activeListing(id int64, location string, price float64) models.Listing {
	created := time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC)
	return models.Listing{
		ID:        id,
		Type:      "flat",
		Location:  location,
		Price:     price,
		Bedrooms:  2,
		Amenities: []string{"parking"},
		Verified:  true,
		Status:    models.ListingStatusActive,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestSearchService_Search(t *testing.T) {
	finder := &stubFinder{listings: []models.Listing{
		activeListing(1, "Wuse 2, Abuja", 2_000_000),
		activeListing(2, "Wuse 2, Abuja", 2_500_000),
		activeListing(3, "Wuse 2, Abuja", 2_200_000),
		activeListing(4, "Wuse 2, Abuja", 1_800_000),
	}}
	svc := NewSearchService(finder, testScorer(), &stubExtractor{}, 200)

	maxPrice := 4_000_000.0
	result, err := svc.Search(context.Background(), models.SearchCriteria{
		Location: "Wuse 2",
		MaxPrice: &maxPrice,
	}, 20)
	require.NoError(t, err)

	require.Len(t, result.Matches, 4)
	for i := 1; i < len(result.Matches); i++ {
		assert.GreaterOrEqual(t, result.Matches[i-1].MatchScore, result.Matches[i].MatchScore)
	}
	// Enough matches: no alternatives round.
	assert.Nil(t, result.Alternatives)
	assert.Equal(t, 1, finder.calls)
}

func TestSearchService_SearchAppliesLimit(t *testing.T) {
	var many []models.Listing
	for i := int64(1); i <= 10; i++ {
		many = append(many, activeListing(i, "Wuse 2, Abuja", 2_000_000))
	}
	finder := &stubFinder{listings: many}
	svc := NewSearchService(finder, testScorer(), &stubExtractor{}, 200)

	result, err := svc.Search(context.Background(), models.SearchCriteria{Location: "Wuse 2"}, 5)
	require.NoError(t, err)
	assert.Len(t, result.Matches, 5)
}

func TestSearchService_ThinResultsTriggerAlternatives(t *testing.T) {
	// One strong match plus off-target stock for the fallback queries.
	finder := &stubFinder{listings: []models.Listing{
		activeListing(1, "Wuse 2, Abuja", 2_000_000),
	}}
	svc := NewSearchService(finder, testScorer(), &stubExtractor{}, 200)

	maxPrice := 3_000_000.0
	result, err := svc.Search(context.Background(), models.SearchCriteria{
		Location: "Wuse 2, Abuja",
		MaxPrice: &maxPrice,
	}, 20)
	require.NoError(t, err)

	assert.Len(t, result.Matches, 1)
	// The suggestion round ran: nearby + cheaper + premium queries on top of
	// the primary fetch.
	assert.Greater(t, finder.calls, 1)
	require.NotNil(t, result.Alternatives)
	assert.False(t, result.Alternatives.IsEmpty())
}

func TestSearchService_FinderErrorPropagates(t *testing.T) {
	finder := &stubFinder{err: errors.New("mongo down")}
	svc := NewSearchService(finder, testScorer(), &stubExtractor{}, 200)

	_, err := svc.Search(context.Background(), models.SearchCriteria{Location: "Wuse"}, 20)
	assert.Error(t, err)
}

func TestSearchService_SearchTextUsesExtractor(t *testing.T) {
	finder := &stubFinder{listings: []models.Listing{
		activeListing(1, "Lekki Phase 1, Lagos", 2_000_000),
	}}
	extractor := &stubExtractor{criteria: &models.SearchCriteria{Location: "Lekki Phase 1"}}
	svc := NewSearchService(finder, testScorer(), extractor, 200)

	result, err := svc.SearchText(context.Background(), "2 bed in lekki", nil, 20)
	require.NoError(t, err)
	assert.Equal(t, "Lekki Phase 1", result.Criteria.Location)
}

func TestSearchService_SearchTextFallsBackToParser(t *testing.T) {
	finder := &stubFinder{listings: []models.Listing{
		activeListing(1, "Wuse 2, Abuja", 2_000_000),
	}}
	extractor := &stubExtractor{err: nlp.ErrExtractorUnavailable}
	svc := NewSearchService(finder, testScorer(), extractor, 200)

	result, err := svc.SearchText(context.Background(), "2 bedroom flat in Wuse 2 under 3m", nil, 20)
	require.NoError(t, err)

	// The deterministic parser supplied the criteria.
	assert.Equal(t, "Wuse 2", result.Criteria.Location)
	require.NotNil(t, result.Criteria.MaxPrice)
	assert.Equal(t, 3_000_000.0, *result.Criteria.MaxPrice)
	require.NotNil(t, result.Criteria.Bedrooms)
	assert.Equal(t, 2, *result.Criteria.Bedrooms)
}
