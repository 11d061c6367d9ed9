package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visa-processing/internal/mocks"
	"visa-processing/internal/repository"
	"visa-processing/internal/service/dashboard"
)

func TestGetStats(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates the counters", func(t *testing.T) {
		appRepo := new(mocks.ApplicationRepository)
		docRepo := new(mocks.DocumentRepository)
		payRepo := new(mocks.PaymentRepository)
		bioRepo := new(mocks.BiometricRepository)
		userRepo := new(mocks.UserRepository)
		svc := dashboard.NewService(appRepo, docRepo, payRepo, bioRepo, userRepo, nil)

		appRepo.On("CountByStatus", ctx).Return([]repository.StatusCount{
			{Status: "draft", Count: 4},
			{Status: "submitted", Count: 2},
			{Status: "approved", Count: 1},
		}, nil).Once()
		docRepo.On("CountPending", ctx).Return(int64(5), nil).Once()
		payRepo.On("CountPending", ctx).Return(int64(3), nil).Once()
		bioRepo.On("CountScheduled", ctx).Return(int64(2), nil).Once()
		userRepo.On("CountAll", ctx).Return(int64(40), nil).Once()

		stats, err := svc.GetStats(ctx)
		require.NoError(t, err)

		assert.Equal(t, int64(7), stats.TotalApplications)
		assert.Equal(t, int64(2), stats.ApplicationsByStatus["submitted"])
		assert.Equal(t, int64(5), stats.PendingDocuments)
		assert.Equal(t, int64(3), stats.PendingPayments)
		assert.Equal(t, int64(2), stats.ScheduledAppointments)
		assert.Equal(t, int64(40), stats.TotalUsers)
	})

	t.Run("a failing counter fails the whole read", func(t *testing.T) {
		appRepo := new(mocks.ApplicationRepository)
		docRepo := new(mocks.DocumentRepository)
		svc := dashboard.NewService(appRepo, docRepo, new(mocks.PaymentRepository), new(mocks.BiometricRepository), new(mocks.UserRepository), nil)

		appRepo.On("CountByStatus", ctx).Return([]repository.StatusCount{}, nil).Once()
		docRepo.On("CountPending", ctx).Return(int64(0), errors.New("connection reset")).Once()

		_, err := svc.GetStats(ctx)
		assert.Error(t, err)
	})
}
