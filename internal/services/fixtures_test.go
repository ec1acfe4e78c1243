package services

import (
	"sync"
	"testing"
	"time"

	"github.com/dimitrije/workspace-invites/internal/database"
	"github.com/dimitrije/workspace-invites/internal/logging"
	"github.com/dimitrije/workspace-invites/internal/models"
	"github.com/dimitrije/workspace-invites/internal/notify"
	"github.com/dimitrije/workspace-invites/internal/repository"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var (
	invitationCols = []string{
		"id", "workspace_id", "inviter_id", "invitee_email", "role", "token",
		"status", "expires_at", "created_at", "updated_at",
	}
	memberCols    = []string{"id", "workspace_id", "user_id", "role", "created_at"}
	userCols      = []string{"id", "email", "name", "created_at", "updated_at"}
	workspaceCols = []string{"id", "name", "description", "owner_id", "created_at", "updated_at"}
	detailsCols   = append(append([]string{}, invitationCols...),
		"w_id", "w_name", "w_description", "inviter_name", "inviter_email")
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Invitation
}

func (n *recordingNotifier) Dispatch(msg notify.Invitation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
}

func (n *recordingNotifier) Sent() []notify.Invitation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Invitation(nil), n.sent...)
}

// fixture wires the services to a pgxmock pool with a pinned clock and a
// predictable token sequence.
type fixture struct {
	t          *testing.T
	mock       pgxmock.PgxPoolIface
	notifier   *recordingNotifier
	now        time.Time
	tokens     []string
	invites    *InvitationService
	workspaces *WorkspaceService
	users      *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	f := &fixture{
		t:        t,
		mock:     mock,
		notifier: &recordingNotifier{},
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	store := repository.New(&database.DB{Pool: mock})
	logger := logging.Discard()
	f.invites = NewInvitationService(store, f.notifier, InvitationConfig{
		AppURL: "http://app.test/",
		Clock:  func() time.Time { return f.now },
		Tokens: f.nextToken,
	}, logger)
	f.workspaces = NewWorkspaceService(store, f.invites, logger)
	f.users = NewUserService(store, logger)
	return f
}

func (f *fixture) nextToken() (string, error) {
	if len(f.tokens) == 0 {
		return "token-default", nil
	}
	tok := f.tokens[0]
	f.tokens = f.tokens[1:]
	return tok, nil
}

func (f *fixture) done() {
	f.t.Helper()
	require.NoError(f.t, f.mock.ExpectationsWereMet())
}

func pendingInvitation(workspaceID, inviterID uuid.UUID, email string, role models.Role, expiresAt time.Time) models.Invitation {
	return models.Invitation{
		ID:           uuid.New(),
		WorkspaceID:  workspaceID,
		InviterID:    inviterID,
		InviteeEmail: email,
		Role:         role,
		Token:        "tok-" + uuid.NewString()[:8],
		Status:       models.InvitationStatusPending,
		ExpiresAt:    expiresAt,
		CreatedAt:    expiresAt.Add(-DefaultInvitationTTL),
		UpdatedAt:    expiresAt.Add(-DefaultInvitationTTL),
	}
}

func invitationRow(inv models.Invitation) []any {
	return []any{
		inv.ID, inv.WorkspaceID, inv.InviterID, inv.InviteeEmail, string(inv.Role), inv.Token,
		string(inv.Status), inv.ExpiresAt, inv.CreatedAt, inv.UpdatedAt,
	}
}

func (f *fixture) expectMember(workspaceID, userID uuid.UUID, role models.Role) {
	f.mock.ExpectQuery(`SELECT (.+) FROM workspace_members WHERE workspace_id = \$1 AND user_id = \$2`).
		WithArgs(workspaceID, userID).
		WillReturnRows(pgxmock.NewRows(memberCols).AddRow(uuid.New(), workspaceID, userID, string(role), f.now))
}

func (f *fixture) expectNoMember(workspaceID, userID uuid.UUID) {
	f.mock.ExpectQuery(`SELECT (.+) FROM workspace_members WHERE workspace_id = \$1 AND user_id = \$2`).
		WithArgs(workspaceID, userID).
		WillReturnRows(pgxmock.NewRows(memberCols))
}

func (f *fixture) expectWorkspace(ws *models.Workspace) {
	f.mock.ExpectQuery(`SELECT (.+) FROM workspaces WHERE id = \$1`).
		WithArgs(ws.ID).
		WillReturnRows(pgxmock.NewRows(workspaceCols).
			AddRow(ws.ID, ws.Name, ws.Description, ws.OwnerID, ws.CreatedAt, ws.UpdatedAt))
}

func (f *fixture) expectNoWorkspace(id uuid.UUID) {
	f.mock.ExpectQuery(`SELECT (.+) FROM workspaces WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(workspaceCols))
}

func (f *fixture) expectUserByEmail(email string, user *models.User) {
	q := f.mock.ExpectQuery(`FROM users WHERE LOWER\(email\) = LOWER\(\$1\)`).WithArgs(email)
	rows := pgxmock.NewRows(userCols)
	if user != nil {
		rows.AddRow(user.ID, user.Email, user.Name, user.CreatedAt, user.UpdatedAt)
	}
	q.WillReturnRows(rows)
}

func (f *fixture) expectUserByID(id uuid.UUID, user *models.User) {
	q := f.mock.ExpectQuery(`FROM users WHERE id = \$1`).WithArgs(id)
	rows := pgxmock.NewRows(userCols)
	if user != nil {
		rows.AddRow(user.ID, user.Email, user.Name, user.CreatedAt, user.UpdatedAt)
	}
	q.WillReturnRows(rows)
}

func (f *fixture) expectFindPending(workspaceID uuid.UUID, email string, inv *models.Invitation) {
	rows := pgxmock.NewRows(invitationCols)
	if inv != nil {
		rows.AddRow(invitationRow(*inv)...)
	}
	f.mock.ExpectQuery(`FROM workspace_invitations WHERE workspace_id = \$1 AND invitee_email = \$2 AND status = \$3`).
		WithArgs(workspaceID, email, "pending").
		WillReturnRows(rows)
}

func (f *fixture) expectInsertInvitation(inv models.Invitation) {
	f.mock.ExpectQuery(`INSERT INTO workspace_invitations`).
		WithArgs(inv.WorkspaceID, inv.InviterID, inv.InviteeEmail, string(inv.Role), inv.Token, "pending", inv.ExpiresAt).
		WillReturnRows(pgxmock.NewRows(invitationCols).AddRow(invitationRow(inv)...))
}

func (f *fixture) expectLock(tok string, inv *models.Invitation) {
	rows := pgxmock.NewRows(invitationCols)
	if inv != nil {
		rows.AddRow(invitationRow(*inv)...)
	}
	f.mock.ExpectQuery(`WHERE token = \$1 FOR UPDATE`).
		WithArgs(tok).
		WillReturnRows(rows)
}

func (f *fixture) expectInvitationByID(inv *models.Invitation, id uuid.UUID) {
	rows := pgxmock.NewRows(invitationCols)
	if inv != nil {
		rows.AddRow(invitationRow(*inv)...)
	}
	f.mock.ExpectQuery(`FROM workspace_invitations WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(rows)
}

func (f *fixture) expectDetails(tok string, inv *models.Invitation, ws *models.Workspace, inviter *models.User) {
	rows := pgxmock.NewRows(detailsCols)
	if inv != nil {
		row := append(invitationRow(*inv), ws.ID, ws.Name, ws.Description, inviter.Name, inviter.Email)
		rows.AddRow(row...)
	}
	f.mock.ExpectQuery(`JOIN workspaces w ON wi.workspace_id = w.id (.+) WHERE wi.token = \$1`).
		WithArgs(tok).
		WillReturnRows(rows)
}

func (f *fixture) expectTransition(id uuid.UUID, from, to models.InvitationStatus, affected int64) {
	f.mock.ExpectExec(`UPDATE workspace_invitations SET status = \$1`).
		WithArgs(string(to), id, string(from)).
		WillReturnResult(pgxmock.NewResult("UPDATE", affected))
}

func (f *fixture) expectInsertMember(workspaceID, userID uuid.UUID, role models.Role) {
	f.mock.ExpectQuery(`INSERT INTO workspace_members`).
		WithArgs(workspaceID, userID, string(role)).
		WillReturnRows(pgxmock.NewRows(memberCols).AddRow(uuid.New(), workspaceID, userID, string(role), f.now))
}

func newUser(email, name string) *models.User {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.User{ID: uuid.New(), Email: email, Name: name, CreatedAt: now, UpdatedAt: now}
}

func newWorkspace(name string, ownerID uuid.UUID) *models.Workspace {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &models.Workspace{ID: uuid.New(), Name: name, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
}
