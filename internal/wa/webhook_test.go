package wa

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWebhook = `{
  "object": "whatsapp_business_account",
  "entry": [{
    "id": "123",
    "changes": [{
      "field": "messages",
      "value": {
        "messaging_product": "whatsapp",
        "messages": [
          {"from": "2348012345678", "id": "wamid.1", "type": "text", "text": {"body": "2 bed in wuse"}},
          {"from": "2348012345678", "id": "wamid.2", "type": "image"},
          {"from": "2348099998888", "id": "wamid.3", "type": "text", "text": {"body": "anything in lekki?"}}
        ]
      }
    }]
  }]
}`

func TestExtractMessages(t *testing.T) {
	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(sampleWebhook), &payload))

	messages := ExtractMessages(&payload)

	require.Len(t, messages, 2)
	assert.Equal(t, "2348012345678", messages[0].From)
	assert.Equal(t, "2 bed in wuse", messages[0].Body)
	assert.Equal(t, "anything in lekki?", messages[1].Body)
}

func TestExtractMessages_Empty(t *testing.T) {
	assert.Empty(t, ExtractMessages(&WebhookPayload{}))

	// Status-only notifications carry no messages.
	payload := WebhookPayload{Entry: []WebhookEntry{{Changes: []WebhookChange{{Field: "messages"}}}}}
	assert.Empty(t, ExtractMessages(&payload))
}
