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

const crewTableName = "crewport.crew_members"

const (
	crewPassportConstraint = "crew_members_passport_key"
	crewTokenConstraint    = "crew_members_profile_token_key"
)

var crewColumns = utils.StructTagValues(types.CrewMember{})

type CrewRepository struct {
	pool *pgxpool.Pool
}

func NewCrewRepository(pool *pgxpool.Pool) *CrewRepository {
	return &CrewRepository{pool: pool}
}

func (r *CrewRepository) CreateCrew(ctx context.Context, m *types.CrewMember) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	crewMap := utils.StructToMap(m)
	delete(crewMap, "id") // bigserial

	query, args, err := psql().
		Insert(crewTableName).
		SetMap(crewMap).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create crew query: %w", err)
	}

	err = pgxscan.Get(ctx, r.pool, &m.ID, query, args...)
	if err != nil {
		if isUniqueViolation(err, crewPassportConstraint) {
			return types.ErrPassportInUse
		}
		return fmt.Errorf("failed to create crew member: %w", err)
	}

	return nil
}

func (r *CrewRepository) CrewByID(ctx context.Context, id int64) (*types.CrewMember, error) {
	query, args, err := psql().
		Select(crewColumns...).
		From(crewTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate crew query: %w", err)
	}

	var m types.CrewMember
	err = pgxscan.Get(ctx, r.pool, &m, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCrewNotFound
		}
		return nil, fmt.Errorf("failed to fetch crew member: %w", err)
	}

	return &m, nil
}

func (r *CrewRepository) CrewByPassport(ctx context.Context, passport string) (*types.CrewMember, error) {
	query, args, err := psql().
		Select(crewColumns...).
		From(crewTableName).
		Where(sq.Eq{"passport": passport}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate crew-by-passport query: %w", err)
	}

	var m types.CrewMember
	err = pgxscan.Get(ctx, r.pool, &m, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrCrewNotFound
		}
		return nil, fmt.Errorf("failed to fetch crew member by passport: %w", err)
	}

	return &m, nil
}

func (r *CrewRepository) SearchCrew(ctx context.Context, filter CrewFilter) ([]*types.CrewMember, error) {
	builder := psql().
		Select(crewColumns...).
		From(crewTableName).
		OrderBy("created_at DESC")

	if filter.Status != nil {
		builder = builder.Where(sq.Eq{"status": *filter.Status})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"passport": pattern},
			sq.ILike{"rank": pattern},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate crew search query: %w", err)
	}

	crew := make([]*types.CrewMember, 0)
	err = pgxscan.Select(ctx, r.pool, &crew, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search crew members: %w", err)
	}

	return crew, nil
}

func (r *CrewRepository) RecentCrew(ctx context.Context, limit uint64) ([]*types.CrewMember, error) {
	query, args, err := psql().
		Select(crewColumns...).
		From(crewTableName).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate recent crew query: %w", err)
	}

	crew := make([]*types.CrewMember, 0)
	err = pgxscan.Select(ctx, r.pool, &crew, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent crew members: %w", err)
	}

	return crew, nil
}

func (r *CrewRepository) CountCrew(ctx context.Context) (int, error) {
	return r.countWhere(ctx, nil)
}

func (r *CrewRepository) CountCrewByStatus(ctx context.Context, status types.ReviewStatus) (int, error) {
	return r.countWhere(ctx, sq.Eq{"status": status})
}

func (r *CrewRepository) countWhere(ctx context.Context, where any) (int, error) {
	builder := psql().Select("COUNT(*)").From(crewTableName)
	if where != nil {
		builder = builder.Where(where)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate crew count query: %w", err)
	}

	var count int
	err = pgxscan.Get(ctx, r.pool, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count crew members: %w", err)
	}

	return count, nil
}

func (r *CrewRepository) SetProfileToken(ctx context.Context, crewID int64, token string) error {
	query, args, err := psql().
		Update(crewTableName).
		Set("profile_token", token).
		Where(sq.Eq{"id": crewID}).
		Where("profile_token IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate set profile token query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, crewTokenConstraint) {
			return types.ErrProfileTokenInUse
		}
		return fmt.Errorf("failed to set profile token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the member is gone or a concurrent writer got there
		// first; re-read to tell the two apart.
		member, err := r.CrewByID(ctx, crewID)
		if err != nil {
			return err
		}
		if member.HasProfileToken() {
			return types.ErrProfileTokenSet
		}
		return types.ErrCrewNotFound
	}

	return nil
}

func (r *CrewRepository) UpdateCrewReview(ctx context.Context, crewID int64, status types.ReviewStatus, notes string, updatedAt time.Time) error {
	query, args, err := psql().
		Update(crewTableName).
		Set("status", status).
		Set("admin_notes", nullable(notes)).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": crewID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate crew review update query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update crew review: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrCrewNotFound
	}

	return nil
}

func (r *CrewRepository) UpdateCrewScreening(ctx context.Context, crewID int64, status types.ReviewStatus, notes string, updatedAt time.Time) error {
	query, args, err := psql().
		Update(crewTableName).
		Set("status", status).
		Set("screening_notes", nullable(notes)).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": crewID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate crew screening update query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update crew screening: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return types.ErrCrewNotFound
	}

	return nil
}

func (r *CrewRepository) TouchCrew(ctx context.Context, crewID int64, updatedAt time.Time) error {
	query, args, err := psql().
		Update(crewTableName).
		Set("updated_at", updatedAt).
		Where(sq.Eq{"id": crewID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate crew touch query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.WrapError(err, "failed to touch crew member")
}

// DeleteCrew removes a crew member; the documents foreign key cascades.
func (r *CrewRepository) DeleteCrew(ctx context.Context, crewID int64) error {
	query, args, err := psql().
		Delete(crewTableName).
		Where(sq.Eq{"id": crewID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate crew delete query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.WrapError(err, "failed to delete crew member")
}
