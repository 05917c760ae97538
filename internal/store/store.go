// Package store persists applicants, documents, and admins. Interfaces are
// defined here so handlers and services take a store they can swap for the
// in-memory implementations in tests; the postgres implementations are the
// production ones.
package store

import (
	"context"
	"errors"
	"time"

	"crewport/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
)

// CrewFilter narrows admin list queries. Zero value matches everything.
type CrewFilter struct {
	Status *types.ReviewStatus
	Search string
}

type StaffFilter struct {
	Status *types.ReviewStatus
	Search string
}

type CrewStore interface {
	CreateCrew(ctx context.Context, m *types.CrewMember) error
	CrewByID(ctx context.Context, id int64) (*types.CrewMember, error)
	CrewByPassport(ctx context.Context, passport string) (*types.CrewMember, error)
	SearchCrew(ctx context.Context, filter CrewFilter) ([]*types.CrewMember, error)
	RecentCrew(ctx context.Context, limit uint64) ([]*types.CrewMember, error)
	CountCrew(ctx context.Context) (int, error)
	CountCrewByStatus(ctx context.Context, status types.ReviewStatus) (int, error)

	// SetProfileToken persists a token exactly once per crew member. A
	// member that already holds a token keeps it and the call returns
	// ErrProfileTokenSet; the unique constraint on the column is the
	// authoritative cross-member duplicate guard.
	SetProfileToken(ctx context.Context, crewID int64, token string) error

	UpdateCrewReview(ctx context.Context, crewID int64, status types.ReviewStatus, notes string, updatedAt time.Time) error

	// UpdateCrewScreening is the screen action's variant of UpdateCrewReview:
	// the notes land in the screening_notes column and admin notes are left
	// alone.
	UpdateCrewScreening(ctx context.Context, crewID int64, status types.ReviewStatus, notes string, updatedAt time.Time) error

	TouchCrew(ctx context.Context, crewID int64, updatedAt time.Time) error
	DeleteCrew(ctx context.Context, crewID int64) error
}

type StaffStore interface {
	CreateStaff(ctx context.Context, m *types.StaffMember) error
	StaffByID(ctx context.Context, id int64) (*types.StaffMember, error)
	SearchStaff(ctx context.Context, filter StaffFilter) ([]*types.StaffMember, error)
	RecentStaff(ctx context.Context, limit uint64) ([]*types.StaffMember, error)
	CountStaff(ctx context.Context) (int, error)
	CountStaffByStatus(ctx context.Context, status types.ReviewStatus) (int, error)
	UpdateStaffReview(ctx context.Context, staffID int64, status types.ReviewStatus, notes string, updatedAt time.Time) error
}

// DocumentStore is the append-only upload log. There is deliberately no
// update or replace operation.
type DocumentStore interface {
	CreateDocument(ctx context.Context, d *types.CrewDocument) error
	DocumentByID(ctx context.Context, id int64) (*types.CrewDocument, error)
	DocumentsByCrew(ctx context.Context, crewID int64) ([]*types.CrewDocument, error)
	DocumentsByCrewAndType(ctx context.Context, crewID int64, docType types.DocumentType) ([]*types.CrewDocument, error)
	DocumentsByCrewAndCategory(ctx context.Context, crewID int64, category types.DocumentCategory) ([]*types.CrewDocument, error)
}

type AdminStore interface {
	CreateAdmin(ctx context.Context, a *types.Admin) error
	AdminByID(ctx context.Context, id int64) (*types.Admin, error)
	AdminByUsername(ctx context.Context, username string) (*types.Admin, error)
}

var (
	_ CrewStore     = (*CrewRepository)(nil)
	_ StaffStore    = (*StaffRepository)(nil)
	_ DocumentStore = (*DocumentRepository)(nil)
	_ AdminStore    = (*AdminRepository)(nil)
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// isUniqueViolation reports whether err is a postgres unique-constraint
// violation, optionally on a specific constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
