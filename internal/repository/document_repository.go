package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"visa-processing/internal/domain"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Document, int64, error)
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]domain.Document, error)
	UpdateReview(ctx context.Context, doc *domain.Document) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	CountPending(ctx context.Context) (int64, error)
}

type documentRepository struct {
	db DBTX
}

func NewDocumentRepository(db DBTX) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, user_id, application_id, type, file_name, file_size, mime_type, storage_path, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	return r.db.QueryRowxContext(ctx, query,
		doc.ID, doc.UserID, doc.ApplicationID, doc.Type, doc.FileName,
		doc.FileSize, doc.MimeType, doc.StoragePath, doc.Status,
	).Scan(&doc.CreatedAt)
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	query := `SELECT * FROM documents WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &doc, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Document, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM documents WHERE user_id = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM documents
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs, query, userID, params.PageSize, params.Offset())
	return docs, total, err
}

func (r *documentRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]domain.Document, error) {
	var docs []domain.Document
	query := `
		SELECT * FROM documents
		WHERE application_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &docs, query, applicationID)
	return docs, err
}

func (r *documentRepository) UpdateReview(ctx context.Context, doc *domain.Document) error {
	query := `
		UPDATE documents
		SET status = $2, rejection_reason = $3, reviewed_by = $4, reviewed_at = $5
		WHERE id = $1 AND deleted_at IS NULL`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Status, doc.RejectionReason, doc.ReviewedBy, doc.ReviewedAt,
	)
	return err
}

func (r *documentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE documents SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *documentRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM documents WHERE status = 'pending' AND deleted_at IS NULL`
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}
