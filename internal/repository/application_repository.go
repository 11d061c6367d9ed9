package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"visa-processing/internal/domain"
)

type StatusCount struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Application, int64, error)
	ListAll(ctx context.Context, filter domain.ApplicationFilter, params domain.PaginationParams) ([]domain.Application, int64, error)
	Update(ctx context.Context, app *domain.Application) error
	UpdateStatusGuarded(ctx context.Context, app *domain.Application, expected domain.ApplicationStatus) (bool, error)
	UpdateAssignment(ctx context.Context, app *domain.Application) error
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	ListForExport(ctx context.Context, status string, from, to *time.Time) ([]domain.Application, error)
}

type applicationRepository struct {
	db DBTX
}

func NewApplicationRepository(db DBTX) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (id, user_id, application_number, visa_type, status, purpose, destination_city, passport_number, nationality, travel_date, return_date, duration_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		app.ID, app.UserID, app.ApplicationNumber, app.VisaType, app.Status,
		app.Purpose, app.DestinationCity, app.PassportNumber, app.Nationality,
		app.TravelDate, app.ReturnDate, app.DurationDays,
	).Scan(&app.CreatedAt, &app.UpdatedAt)
}

func (r *applicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	query := `SELECT * FROM applications WHERE id = $1`

	err := r.db.GetContext(ctx, &app, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepository) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Application, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM applications WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM applications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var apps []domain.Application
	err := r.db.SelectContext(ctx, &apps, query, userID, params.PageSize, params.Offset())
	return apps, total, err
}

func (r *applicationRepository) ListAll(ctx context.Context, filter domain.ApplicationFilter, params domain.PaginationParams) ([]domain.Application, int64, error) {
	params.Validate()

	status := ""
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	visaType := ""
	if filter.VisaType != nil {
		visaType = string(*filter.VisaType)
	}

	var total int64
	countQuery := `
		SELECT COUNT(*) FROM applications
		WHERE ($1 = '' OR status = $1)
			AND ($2 = '' OR visa_type = $2)
			AND ($3 = '' OR application_number ILIKE '%' || $3 || '%' OR COALESCE(destination_city, '') ILIKE '%' || $3 || '%')
			AND ($4::timestamptz IS NULL OR created_at >= $4)
			AND ($5::timestamptz IS NULL OR created_at <= $5)`
	if err := r.db.GetContext(ctx, &total, countQuery, status, visaType, filter.Search, filter.From, filter.To); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM applications
		WHERE ($1 = '' OR status = $1)
			AND ($2 = '' OR visa_type = $2)
			AND ($3 = '' OR application_number ILIKE '%' || $3 || '%' OR COALESCE(destination_city, '') ILIKE '%' || $3 || '%')
			AND ($4::timestamptz IS NULL OR created_at >= $4)
			AND ($5::timestamptz IS NULL OR created_at <= $5)
		ORDER BY created_at DESC
		LIMIT $6 OFFSET $7`

	var apps []domain.Application
	err := r.db.SelectContext(ctx, &apps, query, status, visaType, filter.Search, filter.From, filter.To, params.PageSize, params.Offset())
	return apps, total, err
}

// Update writes the editable (non-workflow) fields. Status and its stamped
// companions only move through UpdateStatusGuarded.
func (r *applicationRepository) Update(ctx context.Context, app *domain.Application) error {
	query := `
		UPDATE applications
		SET purpose = :purpose, destination_city = :destination_city,
			passport_number = :passport_number, nationality = :nationality,
			travel_date = :travel_date, return_date = :return_date,
			duration_days = :duration_days, updated_at = NOW()
		WHERE id = :id`

	_, err := r.db.NamedExecContext(ctx, query, app)
	return err
}

// UpdateStatusGuarded persists a workflow transition. The WHERE clause pins
// the row to the status the transition was evaluated against; false means
// another transition won the race and nothing was written.
func (r *applicationRepository) UpdateStatusGuarded(ctx context.Context, app *domain.Application, expected domain.ApplicationStatus) (bool, error) {
	query := `
		UPDATE applications
		SET status = $2, submitted_at = $3, reviewed_at = $4, approved_at = $5,
			rejected_at = $6, biometrics_date = $7, processing_fee = $8,
			biometrics_fee = $9, service_fee = $10, courier_fee = $11,
			total_cost = $12, cost_provided_at = $13, payment_deadline = $14,
			rejection_reason = $15, processing_notes = $16,
			assigned_officer_id = $17, assigned_at = $18, updated_at = NOW()
		WHERE id = $1 AND status = $19
		RETURNING updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		app.ID, app.Status, app.SubmittedAt, app.ReviewedAt, app.ApprovedAt,
		app.RejectedAt, app.BiometricsDate, app.ProcessingFee, app.BiometricsFee,
		app.ServiceFee, app.CourierFee, app.TotalCost, app.CostProvidedAt,
		app.PaymentDeadline, app.RejectionReason, app.ProcessingNotes,
		app.AssignedOfficerID, app.AssignedAt, expected,
	).Scan(&app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *applicationRepository) UpdateAssignment(ctx context.Context, app *domain.Application) error {
	query := `
		UPDATE applications
		SET assigned_officer_id = $2, assigned_at = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query, app.ID, app.AssignedOfficerID, app.AssignedAt).Scan(&app.UpdatedAt)
}

func (r *applicationRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	query := `SELECT status, COUNT(*) AS count FROM applications GROUP BY status ORDER BY status`

	err := r.db.SelectContext(ctx, &counts, query)
	return counts, err
}

func (r *applicationRepository) ListForExport(ctx context.Context, status string, from, to *time.Time) ([]domain.Application, error) {
	query := `
		SELECT * FROM applications
		WHERE ($1 = '' OR status = $1)
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at`

	var apps []domain.Application
	err := r.db.SelectContext(ctx, &apps, query, status, from, to)
	return apps, err
}
