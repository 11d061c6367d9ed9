package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"visa-processing/internal/domain"
	"visa-processing/internal/repository"
	"visa-processing/internal/service/notification"
	"visa-processing/internal/workflow"
)

// TransitionData carries the per-operation values that stamp and notification
// effects consume. Only the fields relevant to the action need to be set.
type TransitionData struct {
	Notes             *string
	Fees              *domain.CostEstimationInput
	PaymentDeadline   *time.Time
	BiometricsDate    *time.Time
	Location          string
	AppointmentStatus domain.AppointmentStatus
	PaymentAmount     decimal.Decimal
	PaymentCurrency   string
	Officer           *domain.User
}

func (s *service) Submit(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *RequestMeta) (*domain.Application, error) {
	return s.Transition(ctx, actor, id, workflow.Request{Action: workflow.ActionSubmit}, TransitionData{}, nil, meta)
}

func (s *service) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *RequestMeta) (*domain.Application, error) {
	return s.Transition(ctx, actor, id, workflow.Request{Action: workflow.ActionCancel}, TransitionData{}, nil, meta)
}

func (s *service) SetStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.SetStatusInput, meta *RequestMeta) (*domain.Application, error) {
	target, ok := domain.NormalizeStatus(input.Status)
	if !ok {
		return nil, fmt.Errorf("%w: %s (valid: %s)", ErrInvalidStatus, input.Status, strings.Join(domain.ValidApplicationStatuses(), ", "))
	}

	data := TransitionData{Notes: input.Notes}
	if input.AssignedOfficer != nil && *input.AssignedOfficer != "" {
		officerID, err := uuid.Parse(*input.AssignedOfficer)
		if err != nil {
			return nil, ErrOfficerNotFound
		}
		officer, err := s.store.User.GetByID(ctx, officerID)
		if err != nil {
			return nil, err
		}
		if officer == nil {
			return nil, ErrOfficerNotFound
		}
		if !officer.IsStaff() || !officer.IsActive {
			return nil, ErrNotAnOfficer
		}
		data.Officer = officer
	}

	return s.Transition(ctx, actor, id, workflow.Request{Action: workflow.ActionSetStatus, Target: target}, data, nil, meta)
}

func (s *service) SendCostEstimation(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.CostEstimationInput, meta *RequestMeta) (*domain.Application, error) {
	deadline := input.PaymentDeadline
	if deadline == nil {
		d := time.Now().AddDate(0, 0, s.cfg.PaymentDeadlineDays)
		deadline = &d
	}

	data := TransitionData{Fees: &input, PaymentDeadline: deadline}
	return s.Transition(ctx, actor, id, workflow.Request{Action: workflow.ActionProvideCost}, data, nil, meta)
}

// Transition is the only path a status change takes: evaluate the rule, then
// commit the guarded status write, its stamps and the fan-out notification
// rows as one transaction. The per-application lock serializes writers in
// this process; the status guard catches writers in others.
func (s *service) Transition(ctx context.Context, actor domain.Actor, id uuid.UUID, req workflow.Request, data TransitionData, extra func(r *repository.Repositories) error, meta *RequestMeta) (*domain.Application, error) {
	key := id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	app, err := s.store.Application.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}

	caller := workflow.Caller{Role: actor.Role, IsOwner: app.UserID == actor.ID}
	outcome, err := workflow.Evaluate(app.Status, req, caller)
	if err != nil {
		return nil, err
	}

	owner, err := s.store.User.GetByID(ctx, app.UserID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, fmt.Errorf("owner %s of application %s not found", app.UserID, app.ID)
	}

	expected := app.Status
	now := time.Now()
	app.Status = outcome.Next
	applyStamps(app, outcome.Effects, data, now)

	if data.Notes != nil {
		if app.Status == domain.StatusRejected {
			app.RejectionReason = data.Notes
		} else {
			app.ProcessingNotes = data.Notes
		}
	}
	if data.Officer != nil {
		app.AssignedOfficerID = &data.Officer.ID
		app.AssignedAt = &now
	}

	// Rescheduling biometrics keeps the status but re-stamps the date, so
	// stamp effects force a write even without a status change.
	needsWrite := app.Status != expected || hasStampEffect(outcome.Effects)

	err = s.store.InTx(ctx, func(r *repository.Repositories) error {
		if needsWrite {
			ok, err := r.Application.UpdateStatusGuarded(ctx, app, expected)
			if err != nil {
				return err
			}
			if !ok {
				return ErrConcurrentUpdate
			}
		}
		if err := s.createNotifications(ctx, r, actor, app, owner, outcome.Effects, data); err != nil {
			return err
		}
		if extra != nil {
			return extra(r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if app.Status != expected {
		s.audit(ctx, actor, app, string(req.Action), expected, meta)
	}
	s.sendEmails(app, owner, outcome.Effects, data)

	return app, nil
}

func hasStampEffect(effects []workflow.Effect) bool {
	for _, effect := range effects {
		switch effect {
		case workflow.EffectStampSubmitted, workflow.EffectStampReviewed,
			workflow.EffectStampApproved, workflow.EffectStampRejected,
			workflow.EffectStampBiometricsDate, workflow.EffectStampCostFields:
			return true
		}
	}
	return false
}

func applyStamps(app *domain.Application, effects []workflow.Effect, data TransitionData, now time.Time) {
	for _, effect := range effects {
		switch effect {
		case workflow.EffectStampSubmitted:
			app.SubmittedAt = &now
		case workflow.EffectStampReviewed:
			app.ReviewedAt = &now
		case workflow.EffectStampApproved:
			app.ApprovedAt = &now
		case workflow.EffectStampRejected:
			app.RejectedAt = &now
		case workflow.EffectStampBiometricsDate:
			if data.BiometricsDate != nil {
				app.BiometricsDate = data.BiometricsDate
			} else {
				app.BiometricsDate = &now
			}
		case workflow.EffectStampCostFields:
			if data.Fees == nil {
				continue
			}
			app.ProcessingFee = decimal.NewNullDecimal(data.Fees.ProcessingFee)
			app.BiometricsFee = decimal.NewNullDecimal(data.Fees.BiometricsFee)
			app.ServiceFee = decimal.NewNullDecimal(data.Fees.ServiceFee)
			app.CourierFee = decimal.NewNullDecimal(data.Fees.CourierFee)
			// The total is stored as supplied, not recomputed from the
			// components.
			app.TotalCost = decimal.NewNullDecimal(data.Fees.Total)
			app.CostProvidedAt = &now
			if data.PaymentDeadline != nil {
				app.PaymentDeadline = data.PaymentDeadline
			}
		}
	}
}

func (s *service) createNotifications(ctx context.Context, r *repository.Repositories, actor domain.Actor, app *domain.Application, owner *domain.User, effects []workflow.Effect, data TransitionData) error {
	for _, effect := range effects {
		switch effect {
		case workflow.EffectNotifyAdminsSubmitted:
			admins, err := r.User.GetActiveByRoles(ctx, []domain.UserRole{domain.RoleAdmin})
			if err != nil {
				return fmt.Errorf("failed to get admin recipients: %w", err)
			}
			for _, admin := range admins {
				if admin.ID == actor.ID {
					continue
				}
				if err := r.Notification.Create(ctx, notification.SubmittedForReview(admin.ID, app, owner.FullName())); err != nil {
					return err
				}
			}
		case workflow.EffectNotifyOwnerStatus:
			if err := r.Notification.Create(ctx, notification.StatusUpdate(app, data.Notes)); err != nil {
				return err
			}
		case workflow.EffectNotifyOwnerFarewell:
			if err := r.Notification.Create(ctx, notification.Farewell(app)); err != nil {
				return err
			}
		case workflow.EffectNotifyOwnerCost:
			if err := r.Notification.Create(ctx, notification.CostEstimation(app)); err != nil {
				return err
			}
		case workflow.EffectNotifyOwnerBiometrics:
			if app.BiometricsDate == nil {
				continue
			}
			if err := r.Notification.Create(ctx, notification.BiometricsScheduled(app, *app.BiometricsDate, data.Location)); err != nil {
				return err
			}
		case workflow.EffectNotifyOwnerBiometricsUpd:
			if err := r.Notification.Create(ctx, notification.BiometricsUpdate(app, data.AppointmentStatus)); err != nil {
				return err
			}
		case workflow.EffectNotifyOwnerPayment:
			if err := r.Notification.Create(ctx, notification.PaymentConfirmation(app, data.PaymentAmount, data.PaymentCurrency)); err != nil {
				return err
			}
		}
	}

	if data.Officer != nil {
		if err := r.Notification.Create(ctx, notification.OfficerAssigned(data.Officer.ID, app, owner.FullName())); err != nil {
			return err
		}
	}

	return nil
}

// Emails go out after the transaction commits. The notification rows are the
// durable record; delivery is best effort.
func (s *service) sendEmails(app *domain.Application, owner *domain.User, effects []workflow.Effect, data TransitionData) {
	if s.emailSvc == nil || owner.Email == "" {
		return
	}

	for _, effect := range effects {
		switch effect {
		case workflow.EffectNotifyOwnerStatus:
			go func(toEmail, name, number, status string) {
				ctx := context.Background()
				_ = s.emailSvc.SendStatusUpdateEmail(ctx, toEmail, name, number, status)
			}(owner.Email, owner.FullName(), app.ApplicationNumber, string(app.Status))
		case workflow.EffectNotifyOwnerCost:
			total := ""
			if app.TotalCost.Valid {
				total = app.TotalCost.Decimal.StringFixed(2)
			}
			go func(toEmail, name, number, total string, deadline *time.Time) {
				ctx := context.Background()
				_ = s.emailSvc.SendCostEstimationEmail(ctx, toEmail, name, number, total, deadline)
			}(owner.Email, owner.FullName(), app.ApplicationNumber, total, app.PaymentDeadline)
		case workflow.EffectNotifyOwnerBiometrics:
			if app.BiometricsDate == nil {
				continue
			}
			go func(toEmail, name, number string, date time.Time, location string) {
				ctx := context.Background()
				_ = s.emailSvc.SendBiometricsEmail(ctx, toEmail, name, number, date, location)
			}(owner.Email, owner.FullName(), app.ApplicationNumber, *app.BiometricsDate, data.Location)
		case workflow.EffectNotifyOwnerPayment:
			go func(toEmail, name, number, amount string) {
				ctx := context.Background()
				_ = s.emailSvc.SendPaymentConfirmationEmail(ctx, toEmail, name, number, amount)
			}(owner.Email, owner.FullName(), app.ApplicationNumber, fmt.Sprintf("%s %s", data.PaymentAmount.StringFixed(2), data.PaymentCurrency))
		}
	}
}
