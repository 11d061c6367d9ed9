package document_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"visa-processing/internal/config"
	"visa-processing/internal/domain"
	"visa-processing/internal/mocks"
	"visa-processing/internal/repository"
	"visa-processing/internal/service/application"
	"visa-processing/internal/service/document"
	"visa-processing/internal/workflow"
)

// The service is built without a MinIO client here: reads and reviews work
// against the database alone, and presigned URLs simply stay empty.
type env struct {
	svc     document.Service
	dbMock  sqlmock.Sqlmock
	appRepo *mocks.ApplicationRepository
	docRepo *mocks.DocumentRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()

	rawDB, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	store := repository.NewStore(sqlx.NewDb(rawDB, "sqlmock"))
	appRepo := new(mocks.ApplicationRepository)
	docRepo := new(mocks.DocumentRepository)
	auditRepo := new(mocks.AuditLogRepository)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	store.Repositories = &repository.Repositories{
		User:         new(mocks.UserRepository),
		Application:  appRepo,
		Document:     docRepo,
		Payment:      new(mocks.PaymentRepository),
		Biometric:    new(mocks.BiometricRepository),
		Notification: new(mocks.NotificationRepository),
		AuditLog:     auditRepo,
		Session:      new(mocks.SessionRepository),
	}

	cfg := &config.Config{MinIOBucket: "visa-documents"}
	return &env{
		svc:     document.NewService(store, nil, cfg),
		dbMock:  dbMock,
		appRepo: appRepo,
		docRepo: docRepo,
	}
}

func pendingDoc(ownerID uuid.UUID) *domain.Document {
	return &domain.Document{
		ID:          uuid.New(),
		UserID:      ownerID,
		Type:        domain.DocPassport,
		FileName:    "passport.pdf",
		FileSize:    200_000,
		MimeType:    "application/pdf",
		StoragePath: "documents/2025/08/abc",
		Status:      domain.DocPending,
	}
}

func TestUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("storage not configured", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.svc.Upload(ctx, domain.Actor{ID: uuid.New(), Role: "user"}, domain.UploadDocumentInput{Type: "passport"},
			"passport.pdf", 1024, "application/pdf", strings.NewReader("pdf bytes"))
		assert.ErrorIs(t, err, document.ErrStorageDisabled)
	})
}

func TestReview(t *testing.T) {
	ctx := context.Background()
	officer := domain.Actor{ID: uuid.New(), Role: "officer"}

	expectReviewTx := func(e *env) {
		e.dbMock.ExpectBegin()
		e.dbMock.ExpectExec(`UPDATE documents`).WillReturnResult(sqlmock.NewResult(0, 1))
		e.dbMock.ExpectQuery(`INSERT INTO notifications`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		e.dbMock.ExpectCommit()
	}

	t.Run("approval stamps the reviewer", func(t *testing.T) {
		e := newEnv(t)
		doc := pendingDoc(uuid.New())

		e.docRepo.On("GetByID", ctx, doc.ID).Return(doc, nil).Once()
		expectReviewTx(e)

		got, err := e.svc.Review(ctx, officer, doc.ID, domain.ReviewDocumentInput{Status: "approved"})
		require.NoError(t, err)

		assert.Equal(t, domain.DocApproved, got.Status)
		require.NotNil(t, got.ReviewedBy)
		assert.Equal(t, officer.ID, *got.ReviewedBy)
		assert.NotNil(t, got.ReviewedAt)
		assert.Nil(t, got.RejectionReason)
		assert.NoError(t, e.dbMock.ExpectationsWereMet())
	})

	t.Run("rejection keeps the reason", func(t *testing.T) {
		e := newEnv(t)
		doc := pendingDoc(uuid.New())
		reason := "Photo page is blurred"

		e.docRepo.On("GetByID", ctx, doc.ID).Return(doc, nil).Once()
		expectReviewTx(e)

		got, err := e.svc.Review(ctx, officer, doc.ID, domain.ReviewDocumentInput{Status: "rejected", RejectionReason: &reason})
		require.NoError(t, err)

		assert.Equal(t, domain.DocRejected, got.Status)
		require.NotNil(t, got.RejectionReason)
		assert.Equal(t, reason, *got.RejectionReason)
	})

	t.Run("re-approval clears a stale reason", func(t *testing.T) {
		e := newEnv(t)
		doc := pendingDoc(uuid.New())
		stale := "Wrong file"
		doc.Status = domain.DocRejected
		doc.RejectionReason = &stale

		e.docRepo.On("GetByID", ctx, doc.ID).Return(doc, nil).Once()
		expectReviewTx(e)

		got, err := e.svc.Review(ctx, officer, doc.ID, domain.ReviewDocumentInput{Status: "approved"})
		require.NoError(t, err)
		assert.Nil(t, got.RejectionReason)
	})

	t.Run("applicant cannot review", func(t *testing.T) {
		e := newEnv(t)

		_, err := e.svc.Review(ctx, domain.Actor{ID: uuid.New(), Role: "user"}, uuid.New(), domain.ReviewDocumentInput{Status: "approved"})
		assert.ErrorIs(t, err, workflow.ErrNotAllowed)
	})

	t.Run("unknown document", func(t *testing.T) {
		e := newEnv(t)

		e.docRepo.On("GetByID", ctx, mock.Anything).Return(nil, nil).Once()

		_, err := e.svc.Review(ctx, officer, uuid.New(), domain.ReviewDocumentInput{Status: "approved"})
		assert.ErrorIs(t, err, document.ErrDocumentNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes own document", func(t *testing.T) {
		e := newEnv(t)
		ownerID := uuid.New()
		doc := pendingDoc(ownerID)

		e.docRepo.On("GetByID", ctx, doc.ID).Return(doc, nil).Once()
		e.docRepo.On("SoftDelete", ctx, doc.ID).Return(nil).Once()

		require.NoError(t, e.svc.Delete(ctx, domain.Actor{ID: ownerID, Role: "user"}, doc.ID))
		e.docRepo.AssertExpectations(t)
	})

	t.Run("officers cannot delete other people's documents", func(t *testing.T) {
		e := newEnv(t)
		doc := pendingDoc(uuid.New())

		e.docRepo.On("GetByID", ctx, doc.ID).Return(doc, nil).Once()

		err := e.svc.Delete(ctx, domain.Actor{ID: uuid.New(), Role: "officer"}, doc.ID)
		assert.ErrorIs(t, err, workflow.ErrNotAllowed)
		e.docRepo.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
	})

	t.Run("admin deletes anyone's document", func(t *testing.T) {
		e := newEnv(t)
		doc := pendingDoc(uuid.New())

		e.docRepo.On("GetByID", ctx, doc.ID).Return(doc, nil).Once()
		e.docRepo.On("SoftDelete", ctx, doc.ID).Return(nil).Once()

		require.NoError(t, e.svc.Delete(ctx, domain.Actor{ID: uuid.New(), Role: "admin"}, doc.ID))
	})
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()

	t.Run("owner reads own document", func(t *testing.T) {
		e := newEnv(t)
		doc := pendingDoc(ownerID)

		e.docRepo.On("GetByID", ctx, doc.ID).Return(doc, nil).Once()

		got, err := e.svc.GetByID(ctx, domain.Actor{ID: ownerID, Role: "user"}, doc.ID)
		require.NoError(t, err)
		assert.Equal(t, doc.ID, got.ID)
		assert.Empty(t, got.URL, "no storage client, no presigned link")
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		e := newEnv(t)
		doc := pendingDoc(ownerID)

		e.docRepo.On("GetByID", ctx, doc.ID).Return(doc, nil).Once()

		_, err := e.svc.GetByID(ctx, domain.Actor{ID: uuid.New(), Role: "user"}, doc.ID)
		assert.ErrorIs(t, err, workflow.ErrNotAllowed)
	})

	t.Run("officer reads any document", func(t *testing.T) {
		e := newEnv(t)
		doc := pendingDoc(ownerID)

		e.docRepo.On("GetByID", ctx, doc.ID).Return(doc, nil).Once()

		_, err := e.svc.GetByID(ctx, domain.Actor{ID: uuid.New(), Role: "officer"}, doc.ID)
		require.NoError(t, err)
	})
}

func TestListByApplication(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	app := &domain.Application{ID: uuid.New(), UserID: ownerID, Status: domain.StatusSubmitted}

	t.Run("owner lists application documents", func(t *testing.T) {
		e := newEnv(t)

		e.appRepo.On("GetByID", ctx, app.ID).Return(app, nil).Once()
		e.docRepo.On("ListByApplication", ctx, app.ID).
			Return([]domain.Document{*pendingDoc(ownerID)}, nil).Once()

		docs, err := e.svc.ListByApplication(ctx, domain.Actor{ID: ownerID, Role: "user"}, app.ID)
		require.NoError(t, err)
		assert.Len(t, docs, 1)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		e := newEnv(t)

		e.appRepo.On("GetByID", ctx, app.ID).Return(app, nil).Once()

		_, err := e.svc.ListByApplication(ctx, domain.Actor{ID: uuid.New(), Role: "user"}, app.ID)
		assert.ErrorIs(t, err, application.ErrNotOwner)
	})

	t.Run("unknown application", func(t *testing.T) {
		e := newEnv(t)

		e.appRepo.On("GetByID", ctx, mock.Anything).Return(nil, nil).Once()

		_, err := e.svc.ListByApplication(ctx, domain.Actor{ID: ownerID, Role: "user"}, uuid.New())
		assert.ErrorIs(t, err, application.ErrApplicationNotFound)
	})
}
