package wa

// Webhook payload shapes for inbound WhatsApp Cloud API notifications.
// Only the fields this application reads are modeled.

// WebhookPayload is the top-level notification envelope.
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string           `json:"messaging_product"`
	Messages         []WebhookMessage `json:"messages"`
}

type WebhookMessage struct {
	From string `json:"from"` // Sender phone, digits only
	ID   string `json:"id"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
}

// InboundMessage is a flattened inbound text message.
type InboundMessage struct {
	From string
	Body string
}

// ExtractMessages flattens a webhook payload into the text messages it
// carries. Non-text message types are skipped.
func ExtractMessages(payload *WebhookPayload) []InboundMessage {
	var messages []InboundMessage
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" || msg.Text == nil {
					continue
				}
				messages = append(messages, InboundMessage{
					From: msg.From,
					Body: msg.Text.Body,
				})
			}
		}
	}
	return messages
}
