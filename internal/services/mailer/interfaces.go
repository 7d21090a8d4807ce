package mailer

import "context"

// Email is one outbound message
type Email struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers email through a provider. Send returns the provider's
// delivery ID.
type Sender interface {
	Send(ctx context.Context, email Email) (string, error)
}
