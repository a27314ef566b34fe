package email

import "context"

// Provider sends customer-facing mail. Delivery failures are surfaced to the
// caller, which decides whether they are fatal; permit notifications are not.
type Provider interface {
	Send(ctx context.Context, to []string, subject string, htmlBody string) error
}

// NoOpProvider drops every message. Used when SMTP is not configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}
