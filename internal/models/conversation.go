package models

import (
	"time"
)

// Exchange is one query/reply turn of a chat conversation. A short rolling
// window of exchanges is fed back to the entity extractor for context.
type Exchange struct {
	Query string    `json:"query"`
	Reply string    `json:"reply"`
	At    time.Time `json:"at"`
}
