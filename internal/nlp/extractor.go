package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mmtukut/propabridge-2/internal/models"
)

// ErrExtractorUnavailable is returned when no AI client is configured.
// Callers must treat any Extract error as "no extraction possible" and fall
// back to ParseCriteria.
var ErrExtractorUnavailable = errors.New("entity extractor not configured")

// IExtractor turns free text (plus a short rolling window of prior
// exchanges) into a partial SearchCriteria.
type IExtractor interface {
	Extract(ctx context.Context, text string, history []models.Exchange) (*models.SearchCriteria, error)
}

const extractionSystemPrompt = `You extract property search criteria from rental enquiries in Nigeria.
Respond with a single JSON object and nothing else, using only these keys when mentioned:
location (string), property_type (string), min_price (number, Naira), max_price (number, Naira), bedrooms (integer), amenities (array of strings).
Interpret K as thousands, M as millions, B as billions. Omit keys the message does not mention.`

// openAIExtractor implements IExtractor over the OpenAI chat completion API.
type openAIExtractor struct {
	client *openai.Client
	model  string
}

// NewOpenAIExtractor creates an extractor. An empty API key yields an
// extractor whose Extract always fails with ErrExtractorUnavailable, so the
// regex fallback carries the whole load in keyless deployments.
func NewOpenAIExtractor(apiKey, model string) IExtractor {
	if apiKey == "" {
		return &openAIExtractor{client: nil, model: model}
	}
	return &openAIExtractor{client: openai.NewClient(apiKey), model: model}
}

// Extract sends the message and up to MaxHistoryExchanges prior exchanges to
// the model and parses the JSON reply into criteria.
func (e *openAIExtractor) Extract(ctx context.Context, text string, history []models.Exchange) (*models.SearchCriteria, error) {
	if e.client == nil {
		return nil, ErrExtractorUnavailable
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
	}
	if len(history) > MaxHistoryExchanges {
		history = history[len(history)-MaxHistoryExchanges:]
	}
	for _, ex := range history {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: ex.Query},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: ex.Reply},
		)
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     e.model,
		Messages:  messages,
		MaxTokens: 200,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("extraction returned no choices")
	}

	criteria, err := parseExtractionReply(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return criteria, nil
}

// parseExtractionReply decodes the model's JSON, tolerating markdown fences.
func parseExtractionReply(content string) (*models.SearchCriteria, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var criteria models.SearchCriteria
	if err := json.Unmarshal([]byte(content), &criteria); err != nil {
		return nil, fmt.Errorf("unparseable extraction reply: %w", err)
	}
	return &criteria, nil
}
