package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"visa-processing/internal/domain"
)

type BiometricRepository interface {
	Create(ctx context.Context, appt *domain.BiometricAppointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BiometricAppointment, error)
	GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.BiometricAppointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BiometricAppointment, error)
	ListAll(ctx context.Context, status string, params domain.PaginationParams) ([]domain.BiometricAppointment, int64, error)
	Update(ctx context.Context, appt *domain.BiometricAppointment) error
	CountScheduled(ctx context.Context) (int64, error)
}

type biometricRepository struct {
	db DBTX
}

func NewBiometricRepository(db DBTX) BiometricRepository {
	return &biometricRepository{db: db}
}

func (r *biometricRepository) Create(ctx context.Context, appt *domain.BiometricAppointment) error {
	query := `
		INSERT INTO biometric_appointments (id, application_id, user_id, location, appointment_date, status, notes, scheduled_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		appt.ID, appt.ApplicationID, appt.UserID, appt.Location,
		appt.AppointmentDate, appt.Status, appt.Notes, appt.ScheduledBy,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
}

func (r *biometricRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BiometricAppointment, error) {
	var appt domain.BiometricAppointment
	query := `SELECT * FROM biometric_appointments WHERE id = $1`

	err := r.db.GetContext(ctx, &appt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// GetByApplication backs the one-appointment-per-application check. Only
// cancelled appointments free the slot for a new one.
func (r *biometricRepository) GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.BiometricAppointment, error) {
	var appt domain.BiometricAppointment
	query := `
		SELECT * FROM biometric_appointments
		WHERE application_id = $1 AND status != 'cancelled'
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &appt, query, applicationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *biometricRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BiometricAppointment, error) {
	var appts []domain.BiometricAppointment
	query := `
		SELECT * FROM biometric_appointments
		WHERE user_id = $1
		ORDER BY appointment_date DESC`

	err := r.db.SelectContext(ctx, &appts, query, userID)
	return appts, err
}

func (r *biometricRepository) ListAll(ctx context.Context, status string, params domain.PaginationParams) ([]domain.BiometricAppointment, int64, error) {
	params.Validate()

	var total int64
	countQuery := `SELECT COUNT(*) FROM biometric_appointments WHERE ($1 = '' OR status = $1)`
	if err := r.db.GetContext(ctx, &total, countQuery, status); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT * FROM biometric_appointments
		WHERE ($1 = '' OR status = $1)
		ORDER BY appointment_date DESC
		LIMIT $2 OFFSET $3`

	var appts []domain.BiometricAppointment
	err := r.db.SelectContext(ctx, &appts, query, status, params.PageSize, params.Offset())
	return appts, total, err
}

func (r *biometricRepository) Update(ctx context.Context, appt *domain.BiometricAppointment) error {
	query := `
		UPDATE biometric_appointments
		SET location = $2, appointment_date = $3, status = $4, notes = $5,
			completed_by = $6, completed_at = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	return r.db.QueryRowxContext(ctx, query,
		appt.ID, appt.Location, appt.AppointmentDate, appt.Status,
		appt.Notes, appt.CompletedBy, appt.CompletedAt,
	).Scan(&appt.UpdatedAt)
}

func (r *biometricRepository) CountScheduled(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM biometric_appointments WHERE status IN ('scheduled', 'confirmed', 'rescheduled')`
	err := r.db.GetContext(ctx, &count, query)
	return count, err
}
