package ports

import "context"

// ApprovalVerifier validates guardian approval codes. The check itself lives
// outside the core; the core only records the Approved state a valid code
// unlocks. An invalid code returns domain.ErrForbidden.
type ApprovalVerifier interface {
	Verify(ctx context.Context, teenUserID, approvalCode string) error
}
