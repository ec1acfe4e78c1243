package models

import (
	"time"

	"github.com/google/uuid"
)

type InvitationStatus string

const (
	InvitationStatusPending   InvitationStatus = "pending"
	InvitationStatusAccepted  InvitationStatus = "accepted"
	InvitationStatusDeclined  InvitationStatus = "declined"
	InvitationStatusCancelled InvitationStatus = "cancelled"
	InvitationStatusExpired   InvitationStatus = "expired"
)

// Terminal reports whether no further transition is allowed from s.
func (s InvitationStatus) Terminal() bool {
	return s != InvitationStatusPending
}

type Invitation struct {
	ID           uuid.UUID        `json:"id"`
	WorkspaceID  uuid.UUID        `json:"workspace_id"`
	InviterID    uuid.UUID        `json:"inviter_id"`
	InviteeEmail string           `json:"email"`
	Role         Role             `json:"role"`
	Token        string           `json:"-"`
	Status       InvitationStatus `json:"status"`
	ExpiresAt    time.Time        `json:"expires_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	Inviter *InviterInfo `json:"inviter,omitempty"`
}

// IsExpired reports whether a pending invitation has passed its deadline at now.
func (i *Invitation) IsExpired(now time.Time) bool {
	return i.ExpiresAt.Before(now)
}

// InviterInfo is the public projection of the inviting user.
type InviterInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// WorkspaceInfo is the public projection of the target workspace.
type WorkspaceInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
}

// InvitationDetails is an invitation joined with its workspace and inviter.
type InvitationDetails struct {
	Invitation Invitation    `json:"invitation"`
	Workspace  WorkspaceInfo `json:"workspace"`
	Inviter    InviterInfo   `json:"inviter"`
}
