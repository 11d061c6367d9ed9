package payment

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"visa-processing/internal/domain"
	"visa-processing/internal/repository"
	"visa-processing/internal/service/application"
	"visa-processing/internal/workflow"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentExists   = errors.New("application already has a payment")
	ErrInvalidPayment  = errors.New("invalid payment status")
	ErrInvalidAmount   = errors.New("payment amount must be positive")
)

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreatePaymentInput) (*domain.Payment, error)
	GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Payment], error)
	ListAll(ctx context.Context, status string, params domain.PaginationParams) (domain.PaginatedResponse[domain.Payment], error)
	UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdatePaymentStatusInput, meta *application.RequestMeta) (*domain.Payment, error)
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

// Create records a pending payment. Payment rows are bookkeeping; no gateway
// is involved, so the amount is taken as supplied.
func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreatePaymentInput) (*domain.Payment, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	app, err := s.store.Application.GetByID(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, application.ErrApplicationNotFound
	}
	if app.UserID != actor.ID && !actor.IsStaff() {
		return nil, application.ErrNotOwner
	}

	existing, err := s.store.Payment.GetByApplication(ctx, input.ApplicationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPaymentExists
	}

	payment := &domain.Payment{
		ID:            uuid.New(),
		ApplicationID: input.ApplicationID,
		UserID:        app.UserID,
		Reference:     generatePaymentReference(),
		Amount:        input.Amount,
		Currency:      strings.ToUpper(input.Currency),
		Method:        domain.PaymentMethod(input.Method),
		Status:        domain.PaymentPendingStatus,
	}

	if err := s.store.Payment.Create(ctx, payment); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "CREATE",
		EntityType: "PAYMENT",
		EntityID:   payment.ID,
		NewValue:   payment,
	})

	return payment, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Payment, error) {
	payment, err := s.store.Payment.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.UserID != actor.ID && !actor.IsStaff() {
		return nil, workflow.ErrNotAllowed
	}
	return payment, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Payment], error) {
	payments, total, err := s.store.Payment.ListByUser(ctx, userID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Payment]{}, err
	}

	return domain.NewPaginatedResponse(payments, params.Page, params.PageSize, total), nil
}

func (s *service) ListAll(ctx context.Context, status string, params domain.PaginationParams) (domain.PaginatedResponse[domain.Payment], error) {
	payments, total, err := s.store.Payment.ListAll(ctx, status, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Payment]{}, err
	}

	return domain.NewPaginatedResponse(payments, params.Page, params.PageSize, total), nil
}

// UpdateStatus moves the payment. Completing it stamps the processor and, when
// the application is waiting on payment, cascades it to payment_completed in
// the same transaction as the payment write.
func (s *service) UpdateStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdatePaymentStatusInput, meta *application.RequestMeta) (*domain.Payment, error) {
	if !actor.IsStaff() {
		return nil, workflow.ErrNotAllowed
	}

	status := domain.PaymentStatus(input.Status)
	if !status.IsValid() {
		return nil, ErrInvalidPayment
	}

	payment, err := s.store.Payment.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	oldStatus := payment.Status
	payment.Status = status
	if input.TransactionID != nil {
		payment.TransactionID = input.TransactionID
	}

	if status == domain.PaymentCompletedStatus {
		now := time.Now()
		payment.ProcessedBy = &actor.ID
		payment.ProcessedAt = &now

		data := application.TransitionData{
			PaymentAmount:   payment.Amount,
			PaymentCurrency: payment.Currency,
		}
		req := workflow.Request{Action: workflow.ActionCompletePayment}

		_, err = s.appSvc.Transition(ctx, actor, payment.ApplicationID, req, data, func(r *repository.Repositories) error {
			return r.Payment.UpdateStatus(ctx, payment)
		}, meta)
	} else {
		err = s.store.Payment.UpdateStatus(ctx, payment)
	}
	if err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "UPDATE_STATUS",
		EntityType: "PAYMENT",
		EntityID:   payment.ID,
		OldValue:   map[string]string{"status": string(oldStatus)},
		NewValue:   map[string]string{"status": string(payment.Status)},
	})

	return payment, nil
}

func generatePaymentReference() string {
	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("PAY-%d-%03d", time.Now().UnixMilli(), time.Now().Nanosecond()%1000)
	}
	n := (int(b[0])<<8 | int(b[1])) % 1000
	return fmt.Sprintf("PAY-%d-%03d", time.Now().UnixMilli(), n)
}
