package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mmtukut/propabridge-2/internal/models"
	"github.com/mmtukut/propabridge-2/internal/nlp"
	"github.com/mmtukut/propabridge-2/internal/wa"
)

// IChatService defines the interface for the conversational search flow.
type IChatService interface {
	HandleMessage(ctx context.Context, phone, text string) (string, error)
}

// chatService implements IChatService: one inbound WhatsApp message in, one
// composed reply out, with the rolling conversation context in between.
type chatService struct {
	searchService ISearchService
	conversations IConversationStore
	waClient      wa.IClient
	replyLimit    int
}

// NewChatService creates a new ChatService.
func NewChatService(searchService ISearchService, conversations IConversationStore, waClient wa.IClient, replyLimit int) IChatService {
	if replyLimit <= 0 {
		replyLimit = 5
	}
	return &chatService{
		searchService: searchService,
		conversations: conversations,
		waClient:      waClient,
		replyLimit:    replyLimit,
	}
}

// HandleMessage runs a text query through extraction, search and ranking,
// composes a reply, updates the conversation window and sends the reply.
// A send failure is logged, not fatal - the reply is still returned so the
// webhook can acknowledge.
func (s *chatService) HandleMessage(ctx context.Context, phone, text string) (string, error) {
	stored, err := s.conversations.Load(ctx, phone)
	if err != nil {
		log.Printf("WARN: could not load conversation for %s: %v", phone, err)
	}
	history := nlp.NewHistory(nlp.MaxHistoryExchanges)
	for _, ex := range stored {
		history.Push(ex)
	}

	result, err := s.searchService.SearchText(ctx, text, history.Items(), s.replyLimit)
	if err != nil {
		return "", fmt.Errorf("chat search for %s failed: %w", phone, err)
	}

	reply := s.composeReply(result)

	history.Push(models.Exchange{
		Query: text,
		Reply: reply,
		At:    time.Now().UTC(),
	})
	if err := s.conversations.Save(ctx, phone, history.Items()); err != nil {
		log.Printf("WARN: could not save conversation for %s: %v", phone, err)
	}

	if err := s.waClient.SendText(ctx, phone, reply); err != nil {
		log.Printf("WARN: failed to send WhatsApp reply to %s: %v", phone, err)
	}

	return reply, nil
}

// composeReply renders a search result as chat text.
func (s *chatService) composeReply(result *SearchResult) string {
	if result.Criteria.IsEmpty() {
		return "Hi! Tell me what you're looking for, e.g. \"2 bedroom flat in Wuse 2 under 3M with parking\"."
	}

	if len(result.Matches) > 0 {
		var b strings.Builder
		fmt.Fprintf(&b, "I found %d match(es) for you:\n", len(result.Matches))
		for i, m := range result.Matches {
			fmt.Fprintf(&b, "%d. %s - %s - %s/yr (%d%% match)\n",
				i+1, m.Listing.Type, m.Listing.Location, formatNaira(m.Listing.Price), m.MatchScore)
		}
		if result.Alternatives != nil {
			b.WriteString("\nA few more options you might consider:\n")
			b.WriteString(s.composeAlternatives(result))
		}
		return strings.TrimRight(b.String(), "\n")
	}

	if result.Alternatives != nil {
		var b strings.Builder
		b.WriteString("I couldn't find an exact match, but here are some alternatives:\n")
		b.WriteString(s.composeAlternatives(result))
		return strings.TrimRight(b.String(), "\n")
	}

	return "Sorry, nothing matches that yet. Try widening the location or budget and I'll keep looking."
}

func (s *chatService) composeAlternatives(result *SearchResult) string {
	alt := result.Alternatives
	var b strings.Builder
	writeGroup := func(title string, listings []models.Listing) {
		if len(listings) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", title)
		for _, l := range listings {
			fmt.Fprintf(&b, "- %s - %s - %s/yr\n", l.Type, l.Location, formatNaira(l.Price))
		}
	}

	writeGroup("Nearby areas", alt.NearbyAreas)
	writeGroup("Cheaper options", alt.CheaperOptions)
	writeGroup("Slightly above budget", alt.PremiumOptions)
	if len(alt.RelaxedCriteria) > 0 {
		writeGroup(fmt.Sprintf("With %d bedroom(s) instead", alt.RelaxedBedrooms), alt.RelaxedCriteria)
	}
	return b.String()
}

// formatNaira renders an amount compactly: 2500000 -> "N2.5M".
func formatNaira(amount float64) string {
	switch {
	case amount >= 1_000_000_000:
		return trimZero(fmt.Sprintf("\u20a6%.1fB", amount/1_000_000_000))
	case amount >= 1_000_000:
		return trimZero(fmt.Sprintf("\u20a6%.1fM", amount/1_000_000))
	case amount >= 1_000:
		return trimZero(fmt.Sprintf("\u20a6%.1fK", amount/1_000))
	default:
		return fmt.Sprintf("\u20a6%.0f", amount)
	}
}

func trimZero(s string) string {
	return strings.Replace(s, ".0", "", 1)
}
