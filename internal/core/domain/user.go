package domain

import "time"

// Role is the closed set of account roles. Authorization decisions match on
// these values exhaustively; adding a role is a compile-time-visible change.
type Role string

const (
	RoleTeen     Role = "teen"
	RoleGuardian Role = "guardian"
	RoleMentor   Role = "mentor"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleTeen, RoleGuardian, RoleMentor, RoleAdmin:
		return Role(s), nil
	}
	return "", ErrInvalidRole
}

// ConsentStatus is the guardian-consent state attached to a Teen account.
type ConsentStatus string

const (
	ConsentPending  ConsentStatus = "pending"
	ConsentApproved ConsentStatus = "approved"
	ConsentRevoked  ConsentStatus = "revoked"
)

// User models an account. PasswordHash is never serialized.
type User struct {
	ID                    string        `json:"id"`
	Email                 string        `json:"email"`
	PasswordHash          string        `json:"-"`
	Role                  Role          `json:"role"`
	FirstName             string        `json:"firstName"`
	LastName              string        `json:"lastName"`
	AvatarURL             string        `json:"avatarUrl,omitempty"`
	EmailVerified         bool          `json:"emailVerified"`
	GuardianEmail         string        `json:"guardianEmail,omitempty"`
	GuardianConsentStatus ConsentStatus `json:"guardianConsentStatus,omitempty"`
	CreatedAt             time.Time     `json:"createdAt"`
	UpdatedAt             time.Time     `json:"updatedAt"`
}

// GuardianConsent is the one-to-one approval record for a Teen account.
// Upserts are keyed by UserID, so re-approving refreshes SignedAt without
// creating duplicates.
type GuardianConsent struct {
	UserID        string        `json:"userId"`
	GuardianName  string        `json:"guardianName"`
	GuardianEmail string        `json:"guardianEmail"`
	Status        ConsentStatus `json:"status"`
	SignedAt      time.Time     `json:"signedAt"`
}

// Identity is the resolved caller of an authenticated request. It is always
// derived from a verified access token plus a live user lookup, never from
// storage scans.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}
