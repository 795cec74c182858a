// Package notify contains the delivery-boundary adapters. Real delivery
// (email, SMS) is owned by an external notification service; the core only
// hands tokens across this seam.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier records deliveries in the log instead of sending them. It is
// the development stand-in for the platform notification service. Raw tokens
// are deliberately not logged; only their presence is.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendPasswordReset(_ context.Context, email, token string) error {
	n.log.Info().
		Str("email", email).
		Int("token_len", len(token)).
		Msg("password reset token issued")
	return nil
}

func (n *LogNotifier) SendEmailVerification(_ context.Context, email, token string) error {
	n.log.Info().
		Str("email", email).
		Int("token_len", len(token)).
		Msg("email verification token issued")
	return nil
}
