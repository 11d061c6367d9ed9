package payment_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"visa-processing/internal/config"
	"visa-processing/internal/domain"
	"visa-processing/internal/mocks"
	"visa-processing/internal/repository"
	"visa-processing/internal/service/application"
	"visa-processing/internal/service/payment"
	"visa-processing/internal/workflow"
)

type env struct {
	svc      payment.Service
	dbMock   sqlmock.Sqlmock
	appRepo  *mocks.ApplicationRepository
	userRepo *mocks.UserRepository
	payRepo  *mocks.PaymentRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()

	rawDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	store := repository.NewStore(sqlx.NewDb(rawDB, "sqlmock"))
	appRepo := new(mocks.ApplicationRepository)
	userRepo := new(mocks.UserRepository)
	payRepo := new(mocks.PaymentRepository)
	auditRepo := new(mocks.AuditLogRepository)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	store.Repositories = &repository.Repositories{
		User:         userRepo,
		Application:  appRepo,
		Document:     new(mocks.DocumentRepository),
		Payment:      payRepo,
		Biometric:    new(mocks.BiometricRepository),
		Notification: new(mocks.NotificationRepository),
		AuditLog:     auditRepo,
		Session:      new(mocks.SessionRepository),
	}

	appSvc := application.NewService(store, nil, &config.Config{PaymentDeadlineDays: 3})
	return &env{
		svc:      payment.NewService(store, appSvc),
		dbMock:   dbMock,
		appRepo:  appRepo,
		userRepo: userRepo,
		payRepo:  payRepo,
	}
}

func pendingApp(ownerID uuid.UUID) *domain.Application {
	return &domain.Application{
		ID:                uuid.New(),
		UserID:            ownerID,
		ApplicationNumber: "VISA-1700000000000-042",
		VisaType:          domain.VisaStudent,
		Status:            domain.StatusPaymentPending,
	}
}

func owner() *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Email:     "payer@example.com",
		FirstName: "Budi",
		LastName:  "Santoso",
		Role:      "user",
		IsActive:  true,
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("records a pending payment", func(t *testing.T) {
		e := newEnv(t)
		u := owner()
		app := pendingApp(u.ID)

		e.appRepo.On("GetByID", ctx, app.ID).Return(app, nil).Once()
		e.payRepo.On("GetByApplication", ctx, app.ID).Return(nil, nil).Once()
		e.payRepo.On("Create", ctx, mock.AnythingOfType("*domain.Payment")).Return(nil).Once()

		got, err := e.svc.Create(ctx, domain.Actor{ID: u.ID, Role: "user"}, domain.CreatePaymentInput{
			ApplicationID: app.ID,
			Amount:        decimal.NewFromFloat(214.50),
			Currency:      "usd",
			Method:        "card",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.PaymentPendingStatus, got.Status)
		assert.Equal(t, "USD", got.Currency)
		assert.Equal(t, u.ID, got.UserID)
		assert.Regexp(t, regexp.MustCompile(`^PAY-\d+-\d{3}$`), got.Reference)
		e.payRepo.AssertExpectations(t)
	})

	t.Run("one payment per application", func(t *testing.T) {
		e := newEnv(t)
		u := owner()
		app := pendingApp(u.ID)

		e.appRepo.On("GetByID", ctx, app.ID).Return(app, nil).Once()
		e.payRepo.On("GetByApplication", ctx, app.ID).Return(&domain.Payment{ID: uuid.New()}, nil).Once()

		_, err := e.svc.Create(ctx, domain.Actor{ID: u.ID, Role: "user"}, domain.CreatePaymentInput{
			ApplicationID: app.ID,
			Amount:        decimal.NewFromInt(100),
			Currency:      "USD",
			Method:        "card",
		})
		assert.ErrorIs(t, err, payment.ErrPaymentExists)
	})

	t.Run("amount must be positive", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.svc.Create(ctx, domain.Actor{ID: uuid.New(), Role: "user"}, domain.CreatePaymentInput{
			ApplicationID: uuid.New(),
			Amount:        decimal.Zero,
			Currency:      "USD",
			Method:        "card",
		})
		assert.ErrorIs(t, err, payment.ErrInvalidAmount)
	})

	t.Run("stranger cannot pay for someone else's application", func(t *testing.T) {
		e := newEnv(t)
		app := pendingApp(uuid.New())

		e.appRepo.On("GetByID", ctx, app.ID).Return(app, nil).Once()

		_, err := e.svc.Create(ctx, domain.Actor{ID: uuid.New(), Role: "user"}, domain.CreatePaymentInput{
			ApplicationID: app.ID,
			Amount:        decimal.NewFromInt(100),
			Currency:      "USD",
			Method:        "cash",
		})
		assert.ErrorIs(t, err, application.ErrNotOwner)
	})

	t.Run("unknown application", func(t *testing.T) {
		e := newEnv(t)

		e.appRepo.On("GetByID", ctx, mock.Anything).Return(nil, nil).Once()

		_, err := e.svc.Create(ctx, domain.Actor{ID: uuid.New(), Role: "user"}, domain.CreatePaymentInput{
			ApplicationID: uuid.New(),
			Amount:        decimal.NewFromInt(100),
			Currency:      "USD",
			Method:        "card",
		})
		assert.ErrorIs(t, err, application.ErrApplicationNotFound)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	officer := domain.Actor{ID: uuid.New(), Role: "officer"}

	pendingPayment := func(app *domain.Application) *domain.Payment {
		return &domain.Payment{
			ID:            uuid.New(),
			ApplicationID: app.ID,
			UserID:        app.UserID,
			Reference:     "PAY-1700000000000-042",
			Amount:        decimal.NewFromFloat(214.50),
			Currency:      "USD",
			Method:        domain.PaymentCard,
			Status:        domain.PaymentPendingStatus,
		}
	}

	t.Run("completing cascades a waiting application", func(t *testing.T) {
		e := newEnv(t)
		u := owner()
		app := pendingApp(u.ID)
		pay := pendingPayment(app)

		e.payRepo.On("GetByID", ctx, pay.ID).Return(pay, nil).Once()
		e.appRepo.On("GetByID", ctx, app.ID).Return(app, nil)
		e.userRepo.On("GetByID", ctx, u.ID).Return(u, nil)

		txID := "TXN-889"
		e.dbMock.ExpectBegin()
		e.dbMock.ExpectQuery(`UPDATE applications`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
		e.dbMock.ExpectQuery(`INSERT INTO notifications`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		e.dbMock.ExpectQuery(`UPDATE payments`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
		e.dbMock.ExpectCommit()

		got, err := e.svc.UpdateStatus(ctx, officer, pay.ID, domain.UpdatePaymentStatusInput{
			Status:        "completed",
			TransactionID: &txID,
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, domain.PaymentCompletedStatus, got.Status)
		require.NotNil(t, got.ProcessedBy)
		assert.Equal(t, officer.ID, *got.ProcessedBy)
		assert.NotNil(t, got.ProcessedAt)
		assert.Equal(t, &txID, got.TransactionID)
		assert.Equal(t, domain.StatusPaymentCompleted, app.Status)
		assert.NoError(t, e.dbMock.ExpectationsWereMet())
	})

	t.Run("completing leaves a non-waiting application alone", func(t *testing.T) {
		e := newEnv(t)
		u := owner()
		app := pendingApp(u.ID)
		app.Status = domain.StatusUnderReview
		pay := pendingPayment(app)

		e.payRepo.On("GetByID", ctx, pay.ID).Return(pay, nil).Once()
		e.appRepo.On("GetByID", ctx, app.ID).Return(app, nil)
		e.userRepo.On("GetByID", ctx, u.ID).Return(u, nil)

		// No status write and no notification, just the payment row.
		e.dbMock.ExpectBegin()
		e.dbMock.ExpectQuery(`UPDATE payments`).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
		e.dbMock.ExpectCommit()

		got, err := e.svc.UpdateStatus(ctx, officer, pay.ID, domain.UpdatePaymentStatusInput{Status: "completed"}, nil)
		require.NoError(t, err)

		assert.Equal(t, domain.PaymentCompletedStatus, got.Status)
		assert.Equal(t, domain.StatusUnderReview, app.Status)
		assert.NoError(t, e.dbMock.ExpectationsWereMet())
	})

	t.Run("failed touches only the payment", func(t *testing.T) {
		e := newEnv(t)
		u := owner()
		app := pendingApp(u.ID)
		pay := pendingPayment(app)

		e.payRepo.On("GetByID", ctx, pay.ID).Return(pay, nil).Once()
		e.payRepo.On("UpdateStatus", ctx, pay).Return(nil).Once()

		got, err := e.svc.UpdateStatus(ctx, officer, pay.ID, domain.UpdatePaymentStatusInput{Status: "failed"}, nil)
		require.NoError(t, err)

		assert.Equal(t, domain.PaymentFailed, got.Status)
		assert.Nil(t, got.ProcessedBy)
		e.payRepo.AssertExpectations(t)
		assert.NoError(t, e.dbMock.ExpectationsWereMet())
	})

	t.Run("invalid status", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.svc.UpdateStatus(ctx, officer, uuid.New(), domain.UpdatePaymentStatusInput{Status: "wired"}, nil)
		assert.ErrorIs(t, err, payment.ErrInvalidPayment)
	})

	t.Run("applicant cannot update", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.svc.UpdateStatus(ctx, domain.Actor{ID: uuid.New(), Role: "user"}, uuid.New(), domain.UpdatePaymentStatusInput{Status: "completed"}, nil)
		assert.ErrorIs(t, err, workflow.ErrNotAllowed)
	})

	t.Run("unknown payment", func(t *testing.T) {
		e := newEnv(t)

		e.payRepo.On("GetByID", ctx, mock.Anything).Return(nil, nil).Once()

		_, err := e.svc.UpdateStatus(ctx, officer, uuid.New(), domain.UpdatePaymentStatusInput{Status: "completed"}, nil)
		assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	pay := &domain.Payment{ID: uuid.New(), UserID: ownerID, Status: domain.PaymentPendingStatus}

	t.Run("owner reads own payment", func(t *testing.T) {
		e := newEnv(t)
		e.payRepo.On("GetByID", ctx, pay.ID).Return(pay, nil).Once()

		got, err := e.svc.GetByID(ctx, domain.Actor{ID: ownerID, Role: "user"}, pay.ID)
		require.NoError(t, err)
		assert.Equal(t, pay.ID, got.ID)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		e := newEnv(t)
		e.payRepo.On("GetByID", ctx, pay.ID).Return(pay, nil).Once()

		_, err := e.svc.GetByID(ctx, domain.Actor{ID: uuid.New(), Role: "user"}, pay.ID)
		assert.ErrorIs(t, err, workflow.ErrNotAllowed)
	})

	t.Run("admin reads any payment", func(t *testing.T) {
		e := newEnv(t)
		e.payRepo.On("GetByID", ctx, pay.ID).Return(pay, nil).Once()

		_, err := e.svc.GetByID(ctx, domain.Actor{ID: uuid.New(), Role: "admin"}, pay.ID)
		require.NoError(t, err)
	})
}
