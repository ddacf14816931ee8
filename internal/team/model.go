// Package team manages store staff invitations and memberships.
package team

import (
	"strings"
	"time"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
)

// Role of a team member within a store.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Status of a membership. Only accepted members can see the store.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

// Member is an invited or accepted store collaborator.
type Member struct {
	ID         string     `json:"id"`
	StoreID    string     `json:"storeId"`
	MerchantID *string    `json:"merchantId"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	Status     Status     `json:"status"`
	InvitedBy  string     `json:"invitedBy"`
	InvitedAt  time.Time  `json:"invitedAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
	TokenHash  string     `json:"-"`
}

// InviteRequest is the body of POST /api/store/team/invites.
type InviteRequest struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// AcceptRequest is the body of POST /api/team/invites/accept.
type AcceptRequest struct {
	Token string `json:"token"`
}

// Invitation is returned once when an invite is created; the token is not stored.
type Invitation struct {
	Member    *Member `json:"member"`
	Token     string  `json:"token"`
	AcceptURL string  `json:"acceptUrl"`
}

var (
	ErrInviteNotFound = apperrors.NotFound("invite_not_found", "invite not found or expired")
	ErrMemberNotFound = apperrors.NotFound("member_not_found", "team member not found")
	ErrAlreadyMember  = apperrors.Conflict("already_member", "already a member of this store")
	ErrInvalidRole    = apperrors.Validation("invalid_role", "role must be admin or staff")
	ErrNotPermitted   = apperrors.Forbidden("team_forbidden", "only the owner or an admin can manage the team")
	ErrMissingToken   = apperrors.Validation("missing_token", "invite token is required")
)

// ParseRole validates a role, defaulting to staff.
func ParseRole(raw Role) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(string(raw)))) {
	case "", RoleStaff:
		return RoleStaff, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrInvalidRole
	}
}
