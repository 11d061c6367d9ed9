package biometrics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"visa-processing/internal/domain"
	"visa-processing/internal/repository"
	"visa-processing/internal/service/application"
	"visa-processing/internal/workflow"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentExists   = errors.New("application already has an active appointment")
	ErrInvalidAppointment  = errors.New("invalid appointment status")
	ErrAppointmentClosed   = errors.New("appointment is already completed or cancelled")
)

type Service interface {
	Schedule(ctx context.Context, actor domain.Actor, input domain.ScheduleBiometricsInput, meta *application.RequestMeta) (*domain.BiometricAppointment, error)
	GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.BiometricAppointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BiometricAppointment, error)
	ListAll(ctx context.Context, status string, params domain.PaginationParams) (domain.PaginatedResponse[domain.BiometricAppointment], error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateAppointmentStatusInput, meta *application.RequestMeta) (*domain.BiometricAppointment, error)
	Reschedule(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.RescheduleAppointmentInput, meta *application.RequestMeta) (*domain.BiometricAppointment, error)
}

type service struct {
	store  *repository.Store
	appSvc application.Service
}

func NewService(store *repository.Store, appSvc application.Service) Service {
	return &service{
		store:  store,
		appSvc: appSvc,
	}
}

// Schedule creates the appointment and moves the application to
// biometrics_scheduled in one transaction. The duplicate check runs inside
// that transaction, under the application lock, so two concurrent schedules
// cannot both pass it.
func (s *service) Schedule(ctx context.Context, actor domain.Actor, input domain.ScheduleBiometricsInput, meta *application.RequestMeta) (*domain.BiometricAppointment, error) {
	app, err := s.store.Application.GetByID(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, application.ErrApplicationNotFound
	}

	appt := &domain.BiometricAppointment{
		ID:              uuid.New(),
		ApplicationID:   input.ApplicationID,
		UserID:          app.UserID,
		Location:        input.Location,
		AppointmentDate: input.AppointmentDate,
		Status:          domain.AppointmentScheduled,
		Notes:           input.Notes,
		ScheduledBy:     actor.ID,
	}

	data := application.TransitionData{
		BiometricsDate: &input.AppointmentDate,
		Location:       input.Location,
	}
	req := workflow.Request{Action: workflow.ActionScheduleBiometrics}

	_, err = s.appSvc.Transition(ctx, actor, input.ApplicationID, req, data, func(r *repository.Repositories) error {
		existing, err := r.Biometric.GetByApplication(ctx, input.ApplicationID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAppointmentExists
		}
		return r.Biometric.Create(ctx, appt)
	}, meta)
	if err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "CREATE",
		EntityType: "BIOMETRIC_APPOINTMENT",
		EntityID:   appt.ID,
		NewValue:   appt,
	})

	return appt, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.BiometricAppointment, error) {
	appt, err := s.store.Biometric.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.UserID != actor.ID && !actor.IsStaff() {
		return nil, workflow.ErrNotAllowed
	}
	return appt, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BiometricAppointment, error) {
	return s.store.Biometric.ListByUser(ctx, userID)
}

func (s *service) ListAll(ctx context.Context, status string, params domain.PaginationParams) (domain.PaginatedResponse[domain.BiometricAppointment], error) {
	appts, total, err := s.store.Biometric.ListAll(ctx, status, params)
	if err != nil {
		return domain.PaginatedResponse[domain.BiometricAppointment]{}, err
	}

	return domain.NewPaginatedResponse(appts, params.Page, params.PageSize, total), nil
}

// UpdateStatus moves the appointment and, for completed and cancelled,
// cascades the application in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateAppointmentStatusInput, meta *application.RequestMeta) (*domain.BiometricAppointment, error) {
	if !actor.IsStaff() {
		return nil, workflow.ErrNotAllowed
	}

	status := domain.AppointmentStatus(input.Status)
	if !status.IsValid() {
		return nil, ErrInvalidAppointment
	}

	appt, err := s.store.Biometric.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}

	oldStatus := appt.Status
	appt.Status = status
	if input.Notes != nil {
		appt.Notes = input.Notes
	}

	now := time.Now()
	switch status {
	case domain.AppointmentCompleted:
		appt.CompletedBy = &actor.ID
		appt.CompletedAt = &now
		err = s.cascade(ctx, actor, appt, workflow.ActionCompleteBiometrics, meta)
	case domain.AppointmentCancelled:
		err = s.cascade(ctx, actor, appt, workflow.ActionCancelBiometrics, meta)
	default:
		err = s.store.Biometric.Update(ctx, appt)
	}
	if err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "UPDATE_STATUS",
		EntityType: "BIOMETRIC_APPOINTMENT",
		EntityID:   appt.ID,
		OldValue:   map[string]string{"status": string(oldStatus)},
		NewValue:   map[string]string{"status": string(appt.Status)},
	})

	return appt, nil
}

func (s *service) cascade(ctx context.Context, actor domain.Actor, appt *domain.BiometricAppointment, action workflow.Action, meta *application.RequestMeta) error {
	data := application.TransitionData{AppointmentStatus: appt.Status}
	req := workflow.Request{Action: action}

	_, err := s.appSvc.Transition(ctx, actor, appt.ApplicationID, req, data, func(r *repository.Repositories) error {
		return r.Biometric.Update(ctx, appt)
	}, meta)
	return err
}

// Reschedule re-runs the scheduling transition so the application's
// biometrics date is re-stamped and the owner notified of the new slot.
func (s *service) Reschedule(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.RescheduleAppointmentInput, meta *application.RequestMeta) (*domain.BiometricAppointment, error) {
	if !actor.IsStaff() {
		return nil, workflow.ErrNotAllowed
	}

	appt, err := s.store.Biometric.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.Status == domain.AppointmentCompleted || appt.Status == domain.AppointmentCancelled {
		return nil, ErrAppointmentClosed
	}

	appt.AppointmentDate = input.AppointmentDate
	if input.Location != nil {
		appt.Location = *input.Location
	}
	if input.Notes != nil {
		appt.Notes = input.Notes
	}
	appt.Status = domain.AppointmentRescheduled

	data := application.TransitionData{
		BiometricsDate: &input.AppointmentDate,
		Location:       appt.Location,
	}
	req := workflow.Request{Action: workflow.ActionScheduleBiometrics}

	_, err = s.appSvc.Transition(ctx, actor, appt.ApplicationID, req, data, func(r *repository.Repositories) error {
		return r.Biometric.Update(ctx, appt)
	}, meta)
	if err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "RESCHEDULE",
		EntityType: "BIOMETRIC_APPOINTMENT",
		EntityID:   appt.ID,
		NewValue:   appt,
	})

	return appt, nil
}
