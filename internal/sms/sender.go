package sms

import (
	"context"
	"log"
)

// Sender defines the interface for delivering an SMS message.
// The phone number is expected in E.164 form.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// LoggingSender implements Sender by logging the message instead of handing
// it to a gateway. It is the stand-in until a real SMS provider is wired up.
type LoggingSender struct{}

// NewLoggingSender creates a LoggingSender.
func NewLoggingSender() Sender {
	return &LoggingSender{}
}

// Send logs the would-be SMS.
func (s *LoggingSender) Send(ctx context.Context, phone, message string) error {
	log.Printf("SMS to %s: %s", phone, message)
	return nil
}
