package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"visa-processing/internal/repository"

	"github.com/redis/go-redis/v9"
)

type Stats struct {
	TotalApplications     int64            `json:"total_applications"`
	ApplicationsByStatus  map[string]int64 `json:"applications_by_status"`
	PendingDocuments      int64            `json:"pending_documents"`
	PendingPayments       int64            `json:"pending_payments"`
	ScheduledAppointments int64            `json:"scheduled_appointments"`
	TotalUsers            int64            `json:"total_users"`
}

type Service interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type service struct {
	appRepo       repository.ApplicationRepository
	docRepo       repository.DocumentRepository
	paymentRepo   repository.PaymentRepository
	biometricRepo repository.BiometricRepository
	userRepo      repository.UserRepository
	redis         *redis.Client
}

func NewService(appRepo repository.ApplicationRepository, docRepo repository.DocumentRepository, paymentRepo repository.PaymentRepository, biometricRepo repository.BiometricRepository, userRepo repository.UserRepository, redis *redis.Client) Service {
	return &service{
		appRepo:       appRepo,
		docRepo:       docRepo,
		paymentRepo:   paymentRepo,
		biometricRepo: biometricRepo,
		userRepo:      userRepo,
		redis:         redis,
	}
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	cacheKey := "dashboard:stats"

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var stats Stats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				return &stats, nil
			}
		}
	}

	statusCounts, err := s.appRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64, len(statusCounts))
	var total int64
	for _, sc := range statusCounts {
		byStatus[sc.Status] = sc.Count
		total += sc.Count
	}

	pendingDocs, err := s.docRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}

	pendingPayments, err := s.paymentRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}

	scheduled, err := s.biometricRepo.CountScheduled(ctx)
	if err != nil {
		return nil, err
	}

	totalUsers, err := s.userRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalApplications:     total,
		ApplicationsByStatus:  byStatus,
		PendingDocuments:      pendingDocs,
		PendingPayments:       pendingPayments,
		ScheduledAppointments: scheduled,
		TotalUsers:            totalUsers,
	}

	if s.redis != nil {
		if statsJSON, err := json.Marshal(stats); err == nil {
			_ = s.redis.Set(ctx, cacheKey, statsJSON, 5*time.Minute).Err()
		}
	}

	return stats, nil
}
