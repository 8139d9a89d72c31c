package wa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mmtukut/propabridge-2/internal/config"
)

// IClient defines the interface for sending outbound WhatsApp messages.
type IClient interface {
	SendText(ctx context.Context, to, body string) error
}

// client implements IClient against the WhatsApp Cloud API.
type client struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewClient creates a WhatsApp Cloud API client. When no token is configured
// the client degrades to logging outbound messages, which keeps local
// development and tests off the network.
func NewClient(cfg *config.Config) IClient {
	return &client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type outboundTextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// SendText posts a text message to the Cloud API messages endpoint.
func (c *client) SendText(ctx context.Context, to, body string) error {
	if c.cfg.WhatsAppToken == "" || c.cfg.WhatsAppPhoneID == "" {
		log.Printf("WARN: WhatsApp credentials not configured. Would send to %s: %s", to, body)
		return nil
	}

	msg := outboundTextMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	msg.Text.Body = body

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal WhatsApp message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.WhatsAppAPIBaseURL, c.cfg.WhatsAppPhoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create WhatsApp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.WhatsAppToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("WhatsApp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("WhatsApp API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}
