package store

import (
	"context"
	"fmt"

	"crewport/internal/utils"
	"crewport/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentTableName = "crewport.crew_documents"

var documentColumns = utils.StructTagValues(types.CrewDocument{})

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// CreateDocument appends one upload record. Records are never updated or
// replaced afterwards.
func (r *DocumentRepository) CreateDocument(ctx context.Context, d *types.CrewDocument) error {
	docMap := utils.StructToMap(d)
	delete(docMap, "id") // bigserial

	query, args, err := psql().
		Insert(documentTableName).
		SetMap(docMap).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create document query: %w", err)
	}

	err = pgxscan.Get(ctx, r.pool, &d.ID, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create document record: %w", err)
	}

	return nil
}

func (r *DocumentRepository) DocumentByID(ctx context.Context, id int64) (*types.CrewDocument, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate document query: %w", err)
	}

	var d types.CrewDocument
	err = pgxscan.Get(ctx, r.pool, &d, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	return &d, nil
}

func (r *DocumentRepository) DocumentsByCrew(ctx context.Context, crewID int64) ([]*types.CrewDocument, error) {
	return r.selectWhere(ctx, sq.Eq{"crew_id": crewID})
}

func (r *DocumentRepository) DocumentsByCrewAndType(ctx context.Context, crewID int64, docType types.DocumentType) ([]*types.CrewDocument, error) {
	return r.selectWhere(ctx, sq.Eq{"crew_id": crewID, "document_type": docType})
}

func (r *DocumentRepository) DocumentsByCrewAndCategory(ctx context.Context, crewID int64, category types.DocumentCategory) ([]*types.CrewDocument, error) {
	return r.selectWhere(ctx, sq.Eq{"crew_id": crewID, "document_category": category})
}

func (r *DocumentRepository) selectWhere(ctx context.Context, where sq.Eq) ([]*types.CrewDocument, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(where).
		OrderBy("uploaded_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents query: %w", err)
	}

	docs := make([]*types.CrewDocument, 0)
	err = pgxscan.Select(ctx, r.pool, &docs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	return docs, nil
}
