package nlp

import (
	"github.com/mmtukut/propabridge-2/internal/models"
)

// MaxHistoryExchanges is the rolling context window fed to the extractor.
const MaxHistoryExchanges = 5

// History is a caller-owned bounded ring of conversation exchanges. Pushing
// past capacity evicts the oldest entry. It carries no synchronization; each
// conversation owns its ring.
type History struct {
	max   int
	items []models.Exchange
}

// NewHistory creates a History bounded at max exchanges. A max of zero or
// less falls back to MaxHistoryExchanges.
func NewHistory(max int) *History {
	if max <= 0 {
		max = MaxHistoryExchanges
	}
	return &History{max: max}
}

// Push appends an exchange, evicting the oldest when full.
func (h *History) Push(e models.Exchange) {
	h.items = append(h.items, e)
	if len(h.items) > h.max {
		h.items = h.items[len(h.items)-h.max:]
	}
}

// Items returns a copy of the exchanges, oldest first.
func (h *History) Items() []models.Exchange {
	out := make([]models.Exchange, len(h.items))
	copy(out, h.items)
	return out
}

// Len returns the number of stored exchanges.
func (h *History) Len() int {
	return len(h.items)
}
