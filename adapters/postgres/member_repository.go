package postgres

import (
	"context"

	"prodflow/ports"

	"github.com/jmoiron/sqlx"
)

// MemberRepositoryImpl reads the owner roster from the members table
type MemberRepositoryImpl struct {
	db *sqlx.DB
}

var _ ports.MemberRoster = (*MemberRepositoryImpl)(nil)

// NewMemberRepository creates a new PostgreSQL member roster
func NewMemberRepository(db *sqlx.DB) *MemberRepositoryImpl {
	return &MemberRepositoryImpl{db: db}
}

// List returns every member ordered by display name
func (r *MemberRepositoryImpl) List(ctx context.Context) ([]ports.Member, error) {
	var members []ports.Member
	err := r.db.SelectContext(ctx, &members, `
		SELECT id, display_name
		FROM members
		ORDER BY display_name ASC, id ASC
	`)
	return members, err
}

// Upsert inserts or renames a member
func (r *MemberRepositoryImpl) Upsert(ctx context.Context, m ports.Member) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO members (id, display_name, created_at)
		VALUES (:id, :display_name, NOW())
		ON CONFLICT (id) DO UPDATE SET display_name = EXCLUDED.display_name
	`, m)
	return err
}
