package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmtukut/propabridge-2/internal/match"
	"github.com/mmtukut/propabridge-2/internal/models"
)

// memoryConversationStore keeps conversations in a map.
type memoryConversationStore struct {
	data    map[string][]models.Exchange
	loadErr error
	saveErr error
}

func newMemoryConversationStore() *memoryConversationStore {
	return &memoryConversationStore{data: make(map[string][]models.Exchange)}
}

func (s *memoryConversationStore) Load(ctx context.Context, phone string) ([]models.Exchange, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.data[phone], nil
}

func (s *memoryConversationStore) Save(ctx context.Context, phone string, exchanges []models.Exchange) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[phone] = exchanges
	return nil
}

// stubWaClient records outbound messages.
type stubWaClient struct {
	sent    []string
	sendErr error
}

func (c *stubWaClient) SendText(ctx context.Context, phone, text string) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, text)
	return nil
}

// stubSearchService returns a fixed result and records the history it got.
type stubSearchService struct {
	result      *SearchResult
	err         error
	lastHistory []models.Exchange
}

func (s *stubSearchService) Search(ctx context.Context, criteria models.SearchCriteria, limit int) (*SearchResult, error) {
	return s.result, s.err
}

func (s *stubSearchService) SearchText(ctx context.Context, text string, history []models.Exchange, limit int) (*SearchResult, error) {
	s.lastHistory = history
	return s.result, s.err
}

func matchResult() *SearchResult {
	return &SearchResult{
		Criteria: models.SearchCriteria{Location: "Wuse 2"},
		Matches: []models.ScoredListing{
			{
				Listing:    models.Listing{ID: 1, Type: "2 Bed Flat", Location: "Wuse 2, Abuja", Price: 2_500_000},
				MatchScore: 92,
			},
		},
	}
}

func TestChatService_HandleMessage(t *testing.T) {
	store := newMemoryConversationStore()
	waClient := &stubWaClient{}
	search := &stubSearchService{result: matchResult()}
	svc := NewChatService(search, store, waClient, 5)

	reply, err := svc.HandleMessage(context.Background(), "+2348012345678", "2 bed in wuse")
	require.NoError(t, err)

	assert.Contains(t, reply, "2 Bed Flat")
	assert.Contains(t, reply, "92% match")
	assert.Contains(t, reply, "₦2.5M")

	// The reply went out over WhatsApp and the exchange was persisted.
	require.Len(t, waClient.sent, 1)
	assert.Equal(t, reply, waClient.sent[0])

	saved := store.data["+2348012345678"]
	require.Len(t, saved, 1)
	assert.Equal(t, "2 bed in wuse", saved[0].Query)
	assert.Equal(t, reply, saved[0].Reply)
}

func TestChatService_EmptyCriteriaGetsHelpText(t *testing.T) {
	search := &stubSearchService{result: &SearchResult{}}
	svc := NewChatService(search, newMemoryConversationStore(), &stubWaClient{}, 5)

	reply, err := svc.HandleMessage(context.Background(), "+2348012345678", "hi")
	require.NoError(t, err)
	assert.Contains(t, reply, "Tell me what you're looking for")
}

func TestChatService_AlternativesOnlyReply(t *testing.T) {
	search := &stubSearchService{result: &SearchResult{
		Criteria: models.SearchCriteria{Location: "Wuse 2"},
		Alternatives: &match.Alternatives{
			CheaperOptions: []models.Listing{
				{Type: "flat", Location: "Gwarinpa, Abuja", Price: 1_500_000},
			},
		},
	}}
	svc := NewChatService(search, newMemoryConversationStore(), &stubWaClient{}, 5)

	reply, err := svc.HandleMessage(context.Background(), "+2348012345678", "3 bed in wuse")
	require.NoError(t, err)
	assert.Contains(t, reply, "alternatives")
	assert.Contains(t, reply, "Cheaper options")
	assert.Contains(t, reply, "Gwarinpa")
}

func TestChatService_HistoryFlowsToSearch(t *testing.T) {
	store := newMemoryConversationStore()
	store.data["+2348012345678"] = []models.Exchange{
		{Query: "earlier question", Reply: "earlier answer"},
	}
	search := &stubSearchService{result: matchResult()}
	svc := NewChatService(search, store, &stubWaClient{}, 5)

	_, err := svc.HandleMessage(context.Background(), "+2348012345678", "follow-up")
	require.NoError(t, err)

	require.Len(t, search.lastHistory, 1)
	assert.Equal(t, "earlier question", search.lastHistory[0].Query)

	// The new exchange was appended to the stored window.
	assert.Len(t, store.data["+2348012345678"], 2)
}

func TestChatService_SendFailureIsNotFatal(t *testing.T) {
	search := &stubSearchService{result: matchResult()}
	svc := NewChatService(search, newMemoryConversationStore(), &stubWaClient{sendErr: errors.New("graph api 500")}, 5)

	reply, err := svc.HandleMessage(context.Background(), "+2348012345678", "2 bed in wuse")
	require.NoError(t, err)
	assert.NotEmpty(t, reply)
}

func TestChatService_SearchFailureIsFatal(t *testing.T) {
	search := &stubSearchService{err: errors.New("mongo down")}
	svc := NewChatService(search, newMemoryConversationStore(), &stubWaClient{}, 5)

	_, err := svc.HandleMessage(context.Background(), "+2348012345678", "2 bed in wuse")
	assert.Error(t, err)
}

func TestFormatNaira(t *testing.T) {
	assert.Equal(t, "₦2.5M", formatNaira(2_500_000))
	assert.Equal(t, "₦3M", formatNaira(3_000_000))
	assert.Equal(t, "₦800K", formatNaira(800_000))
	assert.Equal(t, "₦1.2B", formatNaira(1_200_000_000))
	assert.Equal(t, "₦500", formatNaira(500))
}
