package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"visa-processing/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Payment, int64, error)
	ListAll(ctx context.Context, status string, params domain.PaginationParams) ([]domain.Payment, int64, error)
	UpdateStatus(ctx context.Context, payment *domain.Payment) error
	CountPending(ctx context.Context) (int64, error)
}

type paymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, application_id, user_id, reference, amount, currency, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		payment.ID, payment.ApplicationID, payment.UserID, payment.Reference,
		payment.Amount, payment.Currency, payment.Method, payment.Status,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	query := `SELECT * FROM payments WHERE id = $1`

	err := r.db.GetContext(ctx, &payment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	query := `SELECT * FROM payments WHERE application_id = $1 ORDER BY created_at DESC LIMIT 1`

	err := r.db.GetContext(ctx, &payment, query, applicationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Payment, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM payments WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var payments []domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, userID, params.PageSize, params.Offset())
	return payments, total, err
}

func (r *paymentRepository) ListAll(ctx context.Context, status string, params domain.PaginationParams) ([]domain.Payment, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM payments WHERE ($1 = '' OR status = $1)`
	if err := r.db.GetContext(ctx, &total, countQuery, status); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM payments
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var payments []domain.Payment
	err := r.db.SelectContext(ctx, &payments, query, status, params.PageSize, params.Offset())
	return payments, total, err
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, payment *domain.Payment) error {
	query := `
		UPDATE payments
		SET status = $2, transaction_id = $3, processed_by = $4, processed_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query,
		payment.ID, payment.Status, payment.TransactionID,
		payment.ProcessedBy, payment.ProcessedAt,
	).Scan(&payment.UpdatedAt)
}

func (r *paymentRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM payments WHERE status = 'pending'`
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}
