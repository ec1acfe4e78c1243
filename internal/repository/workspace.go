package repository

import (
	"context"

	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/google/uuid"
)

type WorkspaceRepository struct {
	q DBTX
}

const workspaceColumns = `id, name, description, owner_id, created_at, updated_at`

func scanWorkspace(row interface{ Scan(...any) error }) (*models.Workspace, error) {
	var w models.Workspace
	if err := row.Scan(&w.ID, &w.Name, &w.Description, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorkspaceRepository) Create(ctx context.Context, name string, description *string, ownerID uuid.UUID) (*models.Workspace, error) {
	w, err := scanWorkspace(r.q.QueryRow(ctx, `
		INSERT INTO workspaces (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING `+workspaceColumns,
		name, description, ownerID))
	if err != nil {
		return nil, translate(err, "create workspace")
	}
	return w, nil
}

func (r *WorkspaceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Workspace, error) {
	w, err := scanWorkspace(r.q.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "get workspace")
	}
	return w, nil
}

func (r *WorkspaceRepository) Update(ctx context.Context, id uuid.UUID, name string, description *string) (*models.Workspace, error) {
	w, err := scanWorkspace(r.q.QueryRow(ctx, `
		UPDATE workspaces SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+workspaceColumns,
		name, description, id))
	if err != nil {
		return nil, translate(err, "update workspace")
	}
	return w, nil
}

func (r *WorkspaceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return translate(err, "delete workspace")
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForUser returns every workspace userID belongs to, newest first,
// with the user's role and the member count.
func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.WorkspaceSummary, error) {
	rows, err := r.q.Query(ctx, `
		SELECT w.id, w.name, w.description, w.owner_id, w.created_at, w.updated_at, wm.role,
		       (SELECT COUNT(*) FROM workspace_members c WHERE c.workspace_id = w.id)
		FROM workspaces w
		JOIN workspace_members wm ON w.id = wm.workspace_id
		WHERE wm.user_id = $1
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, translate(err, "list workspaces")
	}
	defer rows.Close()

	summaries := []models.WorkspaceSummary{}
	for rows.Next() {
		var s models.WorkspaceSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt,
			&s.Role, &s.MemberCount,
		); err != nil {
			return nil, translate(err, "scan workspace")
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "list workspaces")
	}
	return summaries, nil
}
