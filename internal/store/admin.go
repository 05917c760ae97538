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

const adminTableName = "crewport.admins"

var adminColumns = utils.StructTagValues(types.Admin{})

type AdminRepository struct {
	pool *pgxpool.Pool
}

func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

func (r *AdminRepository) CreateAdmin(ctx context.Context, a *types.Admin) error {
	a.CreatedAt = time.Now().UTC()

	adminMap := utils.StructToMap(a)
	delete(adminMap, "id") // bigserial

	query, args, err := psql().
		Insert(adminTableName).
		SetMap(adminMap).
		Suffix("ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash").
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create admin query: %w", err)
	}

	err = pgxscan.Get(ctx, r.pool, &a.ID, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

func (r *AdminRepository) AdminByID(ctx context.Context, id int64) (*types.Admin, error) {
	return r.adminWhere(ctx, sq.Eq{"id": id})
}

func (r *AdminRepository) AdminByUsername(ctx context.Context, username string) (*types.Admin, error) {
	return r.adminWhere(ctx, sq.Eq{"username": username})
}

func (r *AdminRepository) adminWhere(ctx context.Context, where sq.Eq) (*types.Admin, error) {
	query, args, err := psql().
		Select(adminColumns...).
		From(adminTableName).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate admin query: %w", err)
	}

	var a types.Admin
	err = pgxscan.Get(ctx, r.pool, &a, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to fetch admin: %w", err)
	}

	return &a, nil
}
