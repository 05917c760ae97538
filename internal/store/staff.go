package store

import (
	"context"
	"fmt"
	"time"

	"crewport/internal/utils"
	"crewport/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const staffTableName = "crewport.staff_members"

var staffColumns = utils.StructTagValues(types.StaffMember{})

type StaffRepository struct {
	pool *pgxpool.Pool
}

func NewStaffRepository(pool *pgxpool.Pool) *StaffRepository {
	return &StaffRepository{pool: pool}
}

func (r *StaffRepository) CreateStaff(ctx context.Context, m *types.StaffMember) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	staffMap := utils.StructToMap(m)
	delete(staffMap, "id") // bigserial

	query, args, err := psql().
		Insert(staffTableName).
		SetMap(staffMap).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create staff query: %w", err)
	}

	err = pgxscan.Get(ctx, r.pool, &m.ID, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create staff member: %w", err)
	}

	return nil
}

func (r *StaffRepository) StaffByID(ctx context.Context, id int64) (*types.StaffMember, error) {
	query, args, err := psql().
		Select(staffColumns...).
		From(staffTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate staff query: %w", err)
	}

	var m types.StaffMember
	err = pgxscan.Get(ctx, r.pool, &m, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to fetch staff member: %w", err)
	}

	return &m, nil
}

func (r *StaffRepository) SearchStaff(ctx context.Context, filter StaffFilter) ([]*types.StaffMember, error) {
	builder := psql().
		Select(staffColumns...).
		From(staffTableName).
		OrderBy("created_at DESC")

	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": *filter.Status})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"full_name": pattern},
			sq.ILike{"position_applying": pattern},
			sq.ILike{"department": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate staff search query: %w", err)
	}

	staff := make([]*types.StaffMember, 0)
	err = pgxscan.Select(ctx, r.pool, &staff, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search staff members: %w", err)
	}

	return staff, nil
}

func (r *StaffRepository) RecentStaff(ctx context.Context, limit uint64) ([]*types.StaffMember, error) {
	query, args, err := psql().
		Select(staffColumns...).
		From(staffTableName).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recent staff query: %w", err)
	}

	staff := make([]*types.StaffMember, 0)
	err = pgxscan.Select(ctx, r.pool, &staff, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent staff members: %w", err)
	}

	return staff, nil
}

func (r *StaffRepository) CountStaff(ctx context.Context) (int, error) {
	return r.countWhere(ctx, nil)
}

func (r *StaffRepository) CountStaffByStatus(ctx context.Context, status types.ReviewStatus) (int, error) {
	return r.countWhere(ctx, sq.Eq{"status": status})
}

func (r *StaffRepository) countWhere(ctx context.Context, where any) (int, error) {
	builder := psql().Select("COUNT(*)").From(staffTableName)
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate staff count query: %w", err)
	}

	var count int
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count staff members: %w", err)
	}

	return count, nil
}

func (r *StaffRepository) UpdateStaffReview(ctx context.Context, staffID int64, status types.ReviewStatus, notes string, updatedAt time.Time) error {
	query, args, err := psql().
		Update(staffTableName).
		Set("status", status).
		Set("admin_notes", nullable(notes)).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": staffID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate staff review update query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update staff review: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrStaffNotFound
	}

	return nil
}
