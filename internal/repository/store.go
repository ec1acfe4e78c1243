// Package repository is the persistence layer: one repository per table,
// all sharing a pgx connection or transaction through Store.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/workspace-invites/internal/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// DuplicateError is returned when an insert trips a unique constraint.
type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate on %s: %v", e.Constraint, e.Err)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// IsDuplicateOn reports whether err is a DuplicateError on constraint.
func IsDuplicateOn(err error, constraint string) bool {
	var dup *DuplicateError
	return errors.As(err, &dup) && dup.Constraint == constraint
}

func translate(err error, action string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if name, ok := database.UniqueViolation(err); ok {
		return &DuplicateError{Constraint: name, Err: err}
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// DBTX is satisfied by both the pool and a pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool database.Pool

	Users       *UserRepository
	Workspaces  *WorkspaceRepository
	Memberships *MembershipRepository
	Invitations *InvitationRepository
}

func New(db *database.DB) *Store {
	return newStore(db.Pool, db.Pool)
}

func newStore(pool database.Pool, q DBTX) *Store {
	return &Store{
		pool:        pool,
		Users:       &UserRepository{q: q},
		Workspaces:  &WorkspaceRepository{q: q},
		Memberships: &MembershipRepository{q: q},
		Invitations: &InvitationRepository{q: q},
	}
}

// WithTx runs fn against a Store bound to a single transaction. The
// transaction commits only when fn returns nil; any error or panic rolls it
// back. Calling WithTx on a transactional Store runs fn inline.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(newStore(nil, tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
