package ports

import "context"

// Notifier is the delivery collaborator. The core computes tokens and state
// transitions; getting them to an inbox is someone else's job.
type Notifier interface {
	SendPasswordReset(ctx context.Context, email, token string) error
	SendEmailVerification(ctx context.Context, email, token string) error
}
