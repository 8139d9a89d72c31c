package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmtukut/propabridge-2/internal/config"
	"github.com/mmtukut/propabridge-2/internal/services"
	"github.com/mmtukut/propabridge-2/internal/utils"
	"github.com/mmtukut/propabridge-2/internal/wa"
)

// WebhookHandler handles WhatsApp Cloud API webhook traffic.
type WebhookHandler struct {
	chatService services.IChatService
	cfg         *config.Config
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(chatService services.IChatService, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{
		chatService: chatService,
		cfg:         cfg,
	}
}

// Verify handles GET /v1/webhook/whatsapp, the subscription handshake. Meta
// sends hub.mode, hub.verify_token and hub.challenge; the challenge must be
// echoed back verbatim on a token match.
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.cfg.WhatsAppVerifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.AbortWithStatus(http.StatusForbidden)
}

// Receive handles POST /v1/webhook/whatsapp. Each inbound text message runs
// through the chat flow. The endpoint always acknowledges with 200 once the
// payload parses; per-message failures are logged, not surfaced, so Meta does
// not redeliver the whole batch.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload wa.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	for _, msg := range wa.ExtractMessages(&payload) {
		phone, err := utils.NormalizePhone(msg.From)
		if err != nil {
			log.Printf("WARN: skipping webhook message with bad sender %q: %v", msg.From, err)
			continue
		}
		if _, err := h.chatService.HandleMessage(c.Request.Context(), phone, msg.Body); err != nil {
			log.Printf("WARN: chat handling failed for %s: %v", phone, err)
		}
	}

	c.Status(http.StatusOK)
}
