package repository

import (
	"context"
	"time"

	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/google/uuid"
)

type InvitationRepository struct {
	q DBTX
}

type NewInvitation struct {
	WorkspaceID  uuid.UUID
	InviterID    uuid.UUID
	InviteeEmail string
	Role         models.Role
	Token        string
	ExpiresAt    time.Time
}

const invitationColumns = `id, workspace_id, inviter_id, invitee_email, role, token, status, expires_at, created_at, updated_at`

func invitationDest(inv *models.Invitation) []any {
	return []any{
		&inv.ID, &inv.WorkspaceID, &inv.InviterID, &inv.InviteeEmail, &inv.Role,
		&inv.Token, &inv.Status, &inv.ExpiresAt, &inv.CreatedAt, &inv.UpdatedAt,
	}
}

func scanInvitation(row interface{ Scan(...any) error }) (*models.Invitation, error) {
	var inv models.Invitation
	if err := row.Scan(invitationDest(&inv)...); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create inserts a pending invitation. A second pending row for the same
// (workspace, email) fails with a DuplicateError on
// database.ConstraintPendingInvitation.
func (r *InvitationRepository) Create(ctx context.Context, in NewInvitation) (*models.Invitation, error) {
	inv, err := scanInvitation(r.q.QueryRow(ctx, `
		INSERT INTO workspace_invitations (workspace_id, inviter_id, invitee_email, role, token, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+invitationColumns,
		in.WorkspaceID, in.InviterID, in.InviteeEmail, string(in.Role), in.Token,
		string(models.InvitationStatusPending), in.ExpiresAt))
	if err != nil {
		return nil, translate(err, "create invitation")
	}
	return inv, nil
}

func (r *InvitationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invitation, error) {
	inv, err := scanInvitation(r.q.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM workspace_invitations WHERE id = $1
	`, id))
	if err != nil {
		return nil, translate(err, "get invitation")
	}
	return inv, nil
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	inv, err := scanInvitation(r.q.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM workspace_invitations WHERE token = $1
	`, token))
	if err != nil {
		return nil, translate(err, "get invitation by token")
	}
	return inv, nil
}

// LockByToken reads the invitation and holds a row lock until the
// surrounding transaction ends. Use it only inside Store.WithTx.
func (r *InvitationRepository) LockByToken(ctx context.Context, token string) (*models.Invitation, error) {
	inv, err := scanInvitation(r.q.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM workspace_invitations WHERE token = $1 FOR UPDATE
	`, token))
	if err != nil {
		return nil, translate(err, "lock invitation")
	}
	return inv, nil
}

func (r *InvitationRepository) FindPending(ctx context.Context, workspaceID uuid.UUID, email string) (*models.Invitation, error) {
	inv, err := scanInvitation(r.q.QueryRow(ctx, `
		SELECT `+invitationColumns+` FROM workspace_invitations
		WHERE workspace_id = $1 AND invitee_email = $2 AND status = $3
		LIMIT 1
	`, workspaceID, email, string(models.InvitationStatusPending)))
	if err != nil {
		return nil, translate(err, "find pending invitation")
	}
	return inv, nil
}

const detailsSelect = `
		SELECT wi.id, wi.workspace_id, wi.inviter_id, wi.invitee_email, wi.role, wi.token,
		       wi.status, wi.expires_at, wi.created_at, wi.updated_at,
		       w.id, w.name, w.description,
		       u.name, u.email
		FROM workspace_invitations wi
		JOIN workspaces w ON wi.workspace_id = w.id
		JOIN users u ON wi.inviter_id = u.id`

func scanDetails(row interface{ Scan(...any) error }) (*models.InvitationDetails, error) {
	var d models.InvitationDetails
	dest := append(invitationDest(&d.Invitation),
		&d.Workspace.ID, &d.Workspace.Name, &d.Workspace.Description,
		&d.Inviter.Name, &d.Inviter.Email,
	)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	d.Invitation.Inviter = &d.Inviter
	return &d, nil
}

// GetDetailsByToken returns the invitation with its workspace and inviter.
func (r *InvitationRepository) GetDetailsByToken(ctx context.Context, token string) (*models.InvitationDetails, error) {
	d, err := scanDetails(r.q.QueryRow(ctx, detailsSelect+`
		WHERE wi.token = $1
	`, token))
	if err != nil {
		return nil, translate(err, "get invitation details")
	}
	return d, nil
}

// ListPendingByEmail returns unexpired pending invitations addressed to
// email, newest first.
func (r *InvitationRepository) ListPendingByEmail(ctx context.Context, email string, now time.Time) ([]models.InvitationDetails, error) {
	rows, err := r.q.Query(ctx, detailsSelect+`
		WHERE wi.invitee_email = $1 AND wi.status = $2 AND wi.expires_at > $3
		ORDER BY wi.created_at DESC
	`, email, string(models.InvitationStatusPending), now)
	if err != nil {
		return nil, translate(err, "list pending invitations")
	}
	defer rows.Close()

	list := []models.InvitationDetails{}
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, translate(err, "scan invitation")
		}
		list = append(list, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list pending invitations")
	}
	return list, nil
}

// ListByWorkspace returns every invitation of a workspace in any status,
// newest first, with the inviter projection filled in.
func (r *InvitationRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.Invitation, error) {
	rows, err := r.q.Query(ctx, `
		SELECT wi.id, wi.workspace_id, wi.inviter_id, wi.invitee_email, wi.role, wi.token,
		       wi.status, wi.expires_at, wi.created_at, wi.updated_at,
		       u.name, u.email
		FROM workspace_invitations wi
		JOIN users u ON wi.inviter_id = u.id
		WHERE wi.workspace_id = $1
		ORDER BY wi.created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, translate(err, "list workspace invitations")
	}
	defer rows.Close()

	list := []models.Invitation{}
	for rows.Next() {
		var inv models.Invitation
		var inviter models.InviterInfo
		dest := append(invitationDest(&inv), &inviter.Name, &inviter.Email)
		if err := rows.Scan(dest...); err != nil {
			return nil, translate(err, "scan invitation")
		}
		inv.Inviter = &inviter
		list = append(list, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list workspace invitations")
	}
	return list, nil
}

// Transition moves an invitation from one status to another. It only
// touches the row while it is still in from, so it reports false instead of
// overwriting a status some other request already set.
func (r *InvitationRepository) Transition(ctx context.Context, id uuid.UUID, from, to models.InvitationStatus) (bool, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE workspace_invitations SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, string(to), id, string(from))
	if err != nil {
		return false, translate(err, "update invitation status")
	}
	return tag.RowsAffected() == 1, nil
}
