// Package apperr is the error taxonomy shared by every service operation.
// Each failure carries a Kind (how a caller should react) and a single
// human-readable message. Storage faults are wrapped as Upstream so their
// text never reaches the caller.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUpstream Kind = iota
	KindValidation
	KindNotFound
	KindNotAuthorized
	KindConflict
	KindExpired
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindNotAuthorized:
		return "not_authorized"
	case KindConflict:
		return "conflict"
	case KindExpired:
		return "expired"
	default:
		return "upstream"
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same Code, so sentinels survive
// per-call message variations such as "already been declined".
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newSentinel(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrInternal = newSentinel(KindUpstream, "internal", "internal error")

	ErrEmailRequired      = newSentinel(KindValidation, "email_required", "email is required to invite a member")
	ErrInvalidEmail       = newSentinel(KindValidation, "invalid_email", "email address is not valid")
	ErrInvalidRole        = newSentinel(KindValidation, "invalid_role", "role must be one of owner, admin, member")
	ErrNameRequired       = newSentinel(KindValidation, "name_required", "workspace name is required")
	ErrNameTooLong        = newSentinel(KindValidation, "name_too_long", "workspace name must be at most 100 characters")
	ErrDescriptionTooLong = newSentinel(KindValidation, "description_too_long", "workspace description must be at most 500 characters")
	ErrTokenRequired      = newSentinel(KindValidation, "token_required", "invitation token is required")
	ErrNotAuthenticated   = newSentinel(KindValidation, "not_authenticated", "user must be logged in to accept invitation")
	ErrInvalidInvitation  = newSentinel(KindValidation, "invalid_invitation", "invitation id is required")

	ErrWorkspaceNotFound  = newSentinel(KindNotFound, "workspace_not_found", "workspace not found")
	ErrInvitationNotFound = newSentinel(KindNotFound, "invitation_not_found", "invitation not found")
	ErrUserNotFound       = newSentinel(KindNotFound, "user_not_found", "user not found, they must create an account before being invited to a workspace")
	ErrMemberNotFound     = newSentinel(KindNotFound, "member_not_found", "member not found in this workspace")

	ErrNotAuthorized = newSentinel(KindNotAuthorized, "not_authorized", "you do not have permission to perform this action")
	ErrEmailMismatch = newSentinel(KindNotAuthorized, "email_mismatch", "this invitation was sent to a different email address")

	ErrAlreadyMember   = newSentinel(KindConflict, "already_member", "user is already a member of this workspace")
	ErrAlreadyResolved = newSentinel(KindConflict, "already_resolved", "this invitation has already been resolved")
	ErrLastOwner       = newSentinel(KindConflict, "last_owner", "a workspace must keep at least one owner")

	ErrInvitationExpired = newSentinel(KindExpired, "invitation_expired", "this invitation has expired")
)

// NotAuthorized returns ErrNotAuthorized with an action specific message.
func NotAuthorized(message string) *Error {
	return &Error{Kind: KindNotAuthorized, Code: ErrNotAuthorized.Code, Message: message}
}

// AlreadyResolved is ErrAlreadyResolved naming the status the invitation ended in.
func AlreadyResolved(status string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    ErrAlreadyResolved.Code,
		Message: fmt.Sprintf("this invitation has already been %s", status),
	}
}

// Upstream hides an infrastructure failure behind a generic message.
func Upstream(err error) *Error {
	return &Error{Kind: KindUpstream, Code: ErrInternal.Code, Message: ErrInternal.Message, Err: err}
}

// KindOf classifies any error; errors outside the taxonomy are Upstream.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUpstream
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrInternal.Message
}

// Code returns the machine-readable code for err.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrInternal.Code
}

// Translate passes taxonomy errors through and wraps anything else as Upstream.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Upstream(err)
}
