package repository

import (
	"context"

	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/google/uuid"
)

type MembershipRepository struct {
	q DBTX
}

const memberColumns = `id, workspace_id, user_id, role, created_at`

func scanMember(row interface{ Scan(...any) error }) (*models.WorkspaceMember, error) {
	var m models.WorkspaceMember
	if err := row.Scan(&m.ID, &m.WorkspaceID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a membership. A second membership for the same
// (workspace, user) fails with a DuplicateError.
func (r *MembershipRepository) Create(ctx context.Context, workspaceID, userID uuid.UUID, role models.Role) (*models.WorkspaceMember, error) {
	m, err := scanMember(r.q.QueryRow(ctx, `
		INSERT INTO workspace_members (workspace_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING `+memberColumns,
		workspaceID, userID, string(role)))
	if err != nil {
		return nil, translate(err, "create membership")
	}
	return m, nil
}

func (r *MembershipRepository) Get(ctx context.Context, workspaceID, userID uuid.UUID) (*models.WorkspaceMember, error) {
	m, err := scanMember(r.q.QueryRow(ctx, `
		SELECT `+memberColumns+` FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID))
	if err != nil {
		return nil, translate(err, "get membership")
	}
	return m, nil
}

func (r *MembershipRepository) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]models.WorkspaceMember, error) {
	rows, err := r.q.Query(ctx, `
		SELECT wm.id, wm.workspace_id, wm.user_id, wm.role, wm.created_at,
		       u.id, u.email, u.name, u.created_at, u.updated_at
		FROM workspace_members wm
		JOIN users u ON wm.user_id = u.id
		WHERE wm.workspace_id = $1
		ORDER BY wm.created_at
	`, workspaceID)
	if err != nil {
		return nil, translate(err, "list members")
	}
	defer rows.Close()

	members := []models.WorkspaceMember{}
	for rows.Next() {
		var member models.WorkspaceMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.WorkspaceID, &member.UserID, &member.Role, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, translate(err, "scan member")
		}
		member.User = &user
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list members")
	}
	return members, nil
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, workspaceID, userID uuid.UUID, role models.Role) (*models.WorkspaceMember, error) {
	m, err := scanMember(r.q.QueryRow(ctx, `
		UPDATE workspace_members SET role = $1
		WHERE workspace_id = $2 AND user_id = $3
		RETURNING `+memberColumns,
		string(role), workspaceID, userID))
	if err != nil {
		return nil, translate(err, "update member role")
	}
	return m, nil
}

func (r *MembershipRepository) Delete(ctx context.Context, workspaceID, userID uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `
		DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID)
	if err != nil {
		return translate(err, "delete membership")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MembershipRepository) DeleteByWorkspace(ctx context.Context, workspaceID uuid.UUID) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM workspace_members WHERE workspace_id = $1`, workspaceID)
	if err != nil {
		return 0, translate(err, "delete memberships")
	}
	return tag.RowsAffected(), nil
}

// LockByRole locks every membership of workspaceID holding role until the
// surrounding transaction ends and returns how many there are. Rows are
// locked in id order so concurrent callers queue instead of deadlocking.
// Use it only inside Store.WithTx.
func (r *MembershipRepository) LockByRole(ctx context.Context, workspaceID uuid.UUID, role models.Role) (int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id FROM workspace_members
		WHERE workspace_id = $1 AND role = $2
		ORDER BY id
		FOR UPDATE
	`, workspaceID, string(role))
	if err != nil {
		return 0, translate(err, "lock members")
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		n++
	}
	if err := rows.Err(); err != nil {
		return 0, translate(err, "lock members")
	}
	return n, nil
}

func (r *MembershipRepository) Count(ctx context.Context, workspaceID uuid.UUID) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM workspace_members WHERE workspace_id = $1`, workspaceID).Scan(&n)
	if err != nil {
		return 0, translate(err, "count members")
	}
	return n, nil
}
