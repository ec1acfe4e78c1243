package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/workspace-invites/internal/database"
	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/dimitrije/workspace-invites/internal/repository"
)

// Fixtures inserts rows straight through the repositories.
type Fixtures struct {
	store   *repository.Store
	counter int
}

func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{store: repository.New(db)}
}

type UserOption func(*models.User)

func WithEmail(email string) UserOption {
	return func(u *models.User) { u.Email = email }
}

func WithName(name string) UserOption {
	return func(u *models.User) { u.Name = name }
}

func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Name:  fmt.Sprintf("Test User %d", f.counter),
	}
	for _, opt := range opts {
		opt(user)
	}

	created, err := f.store.Users.Create(context.Background(), user.Email, user.Name)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return created
}

// CreateWorkspace creates a workspace owned by owner, with owner as its
// first member.
func (f *Fixtures) CreateWorkspace(t *testing.T, owner *models.User) *models.Workspace {
	t.Helper()
	f.counter++
	ctx := context.Background()

	var ws *models.Workspace
	err := f.store.WithTx(ctx, func(tx *repository.Store) error {
		var err error
		ws, err = tx.Workspaces.Create(ctx, fmt.Sprintf("Test Workspace %d", f.counter), nil, owner.ID)
		if err != nil {
			return err
		}
		_, err = tx.Memberships.Create(ctx, ws.ID, owner.ID, models.RoleOwner)
		return err
	})
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}
	return ws
}

func (f *Fixtures) AddMember(t *testing.T, ws *models.Workspace, user *models.User, role models.Role) {
	t.Helper()
	if _, err := f.store.Memberships.Create(context.Background(), ws.ID, user.ID, role); err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
}
