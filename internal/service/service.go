package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"visa-processing/internal/config"
	"visa-processing/internal/repository"
	"visa-processing/internal/service/application"
	"visa-processing/internal/service/audit"
	"visa-processing/internal/service/auth"
	"visa-processing/internal/service/biometrics"
	"visa-processing/internal/service/costestimate"
	"visa-processing/internal/service/dashboard"
	"visa-processing/internal/service/document"
	"visa-processing/internal/service/email"
	"visa-processing/internal/service/export"
	"visa-processing/internal/service/notification"
	"visa-processing/internal/service/payment"
	"visa-processing/internal/service/user"
)

type Services struct {
	Auth         auth.Service
	User         user.Service
	Application  application.Service
	Biometrics   biometrics.Service
	Payment      payment.Service
	Document     document.Service
	Notification notification.Service
	CostEstimate costestimate.Service
	Email        email.Service
	Audit        audit.Service
	Dashboard    dashboard.Service
	Export       export.Service
}

func NewServices(store *repository.Store, redis *redis.Client, minioClient *minio.Client, cfg *config.Config) *Services {
	emailService := email.NewService(cfg)
	authService := auth.NewService(store.User, store.Session, store.Notification, emailService, cfg)

	applicationService := application.NewService(store, emailService, cfg)
	biometricsService := biometrics.NewService(store, applicationService)
	paymentService := payment.NewService(store, applicationService)
	documentService := document.NewService(store, minioClient, cfg)

	notificationService := notification.NewService(store.Notification, store.User)
	costEstimateService := costestimate.NewService(cfg)
	userService := user.NewService(store.User, store.Session, store.AuditLog)
	auditService := audit.NewService(store.AuditLog)
	dashboardService := dashboard.NewService(store.Application, store.Document, store.Payment, store.Biometric, store.User, redis)
	exportService := export.NewService(store.Application, store.User)

	return &Services{
		Auth:         authService,
		User:         userService,
		Application:  applicationService,
		Biometrics:   biometricsService,
		Payment:      paymentService,
		Document:     documentService,
		Notification: notificationService,
		CostEstimate: costEstimateService,
		Email:        emailService,
		Audit:        auditService,
		Dashboard:    dashboardService,
		Export:       exportService,
	}
}
