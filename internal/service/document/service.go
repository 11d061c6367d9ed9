package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"visa-processing/internal/config"
	"visa-processing/internal/domain"
	"visa-processing/internal/repository"
	"visa-processing/internal/service/application"
	"visa-processing/internal/service/notification"
	"visa-processing/internal/workflow"
)

// MaxFileSize bounds uploads; larger files are rejected before any write.
const MaxFileSize = 10 * 1024 * 1024

// presignExpiry is how long a download link stays valid. The bucket itself is
// private; documents are only reachable through these links.
const presignExpiry = 15 * time.Minute

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrFileTooLarge     = fmt.Errorf("file exceeds the %dMB limit", MaxFileSize/(1024*1024))
	ErrInvalidDocType   = errors.New("invalid document type")
	ErrStorageDisabled  = errors.New("document storage is not configured")
)

type Service interface {
	Upload(ctx context.Context, actor domain.Actor, input domain.UploadDocumentInput, fileName string, fileSize int64, mimeType string, reader io.Reader) (*domain.Document, error)
	GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Document, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Document], error)
	ListByApplication(ctx context.Context, actor domain.Actor, applicationID uuid.UUID) ([]domain.Document, error)
	Review(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.ReviewDocumentInput) (*domain.Document, error)
	Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error
}

type service struct {
	store       *repository.Store
	minioClient *minio.Client
	cfg         *config.Config
}

func NewService(store *repository.Store, minioClient *minio.Client, cfg *config.Config) Service {
	return &service{
		store:       store,
		minioClient: minioClient,
		cfg:         cfg,
	}
}

func (s *service) Upload(ctx context.Context, actor domain.Actor, input domain.UploadDocumentInput, fileName string, fileSize int64, mimeType string, reader io.Reader) (*domain.Document, error) {
	if s.minioClient == nil {
		return nil, ErrStorageDisabled
	}
	if fileSize > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	docType := domain.DocumentType(input.Type)
	if !docType.IsValid() {
		return nil, fmt.Errorf("%w: %s (valid: %s)", ErrInvalidDocType, input.Type, strings.Join(domain.ValidDocumentTypes(), ", "))
	}

	if input.ApplicationID != nil {
		app, err := s.store.Application.GetByID(ctx, *input.ApplicationID)
		if err != nil {
			return nil, err
		}
		if app == nil {
			return nil, application.ErrApplicationNotFound
		}
		if app.UserID != actor.ID && !actor.IsStaff() {
			return nil, application.ErrNotOwner
		}
	}

	docID := uuid.New()
	storagePath := fmt.Sprintf("documents/%s/%s", time.Now().Format("2006/01"), docID.String())

	_, err := s.minioClient.PutObject(ctx, s.cfg.MinIOBucket, storagePath, reader, fileSize, minio.PutObjectOptions{
		ContentType: mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to MinIO: %w", err)
	}

	doc := &domain.Document{
		ID:            docID,
		UserID:        actor.ID,
		ApplicationID: input.ApplicationID,
		Type:          docType,
		FileName:      fileName,
		FileSize:      fileSize,
		MimeType:      mimeType,
		StoragePath:   storagePath,
		Status:        domain.DocPending,
	}

	if err := s.store.Document.Create(ctx, doc); err != nil {
		_ = s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, storagePath, minio.RemoveObjectOptions{})
		return nil, err
	}

	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "CREATE",
		EntityType: "DOCUMENT",
		EntityID:   doc.ID,
		NewValue:   doc,
	})

	s.attachURL(ctx, doc)
	return doc, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.store.Document.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	if doc.UserID != actor.ID && !actor.IsStaff() {
		return nil, workflow.ErrNotAllowed
	}

	s.attachURL(ctx, doc)
	return doc, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Document], error) {
	docs, total, err := s.store.Document.ListByUser(ctx, userID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Document]{}, err
	}

	for i := range docs {
		s.attachURL(ctx, &docs[i])
	}

	return domain.NewPaginatedResponse(docs, params.Page, params.PageSize, total), nil
}

func (s *service) ListByApplication(ctx context.Context, actor domain.Actor, applicationID uuid.UUID) ([]domain.Document, error) {
	app, err := s.store.Application.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, application.ErrApplicationNotFound
	}
	if app.UserID != actor.ID && !actor.IsStaff() {
		return nil, application.ErrNotOwner
	}

	docs, err := s.store.Document.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	for i := range docs {
		s.attachURL(ctx, &docs[i])
	}

	return docs, nil
}

// Review sets the verdict and notifies the owner in one transaction.
func (s *service) Review(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.ReviewDocumentInput) (*domain.Document, error) {
	if !actor.IsStaff() {
		return nil, workflow.ErrNotAllowed
	}

	doc, err := s.store.Document.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}

	now := time.Now()
	doc.Status = domain.DocumentStatus(input.Status)
	doc.ReviewedBy = &actor.ID
	doc.ReviewedAt = &now
	doc.RejectionReason = nil
	if doc.Status == domain.DocRejected {
		doc.RejectionReason = input.RejectionReason
	}

	err = s.store.InTx(ctx, func(r *repository.Repositories) error {
		if err := r.Document.UpdateReview(ctx, doc); err != nil {
			return err
		}
		return r.Notification.Create(ctx, notification.DocumentReviewed(doc))
	})
	if err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "REVIEW",
		EntityType: "DOCUMENT",
		EntityID:   doc.ID,
		NewValue:   map[string]string{"status": string(doc.Status)},
	})

	s.attachURL(ctx, doc)
	return doc, nil
}

func (s *service) Delete(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	doc, err := s.store.Document.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if doc.UserID != actor.ID && !actor.IsAdmin() {
		return workflow.ErrNotAllowed
	}

	if err := s.store.Document.SoftDelete(ctx, id); err != nil {
		return err
	}

	if s.minioClient != nil {
		_ = s.minioClient.RemoveObject(ctx, s.cfg.MinIOBucket, doc.StoragePath, minio.RemoveObjectOptions{})
	}

	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "DELETE",
		EntityType: "DOCUMENT",
		EntityID:   doc.ID,
	})

	return nil
}

// attachURL fills in a short-lived presigned download link. Failures leave
// the URL empty rather than failing the read.
func (s *service) attachURL(ctx context.Context, doc *domain.Document) {
	if s.minioClient == nil || doc.StoragePath == "" {
		return
	}

	reqParams := make(url.Values)
	reqParams.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))

	presigned, err := s.minioClient.PresignedGetObject(ctx, s.cfg.MinIOBucket, doc.StoragePath, presignExpiry, reqParams)
	if err != nil {
		return
	}
	doc.URL = presigned.String()
}
