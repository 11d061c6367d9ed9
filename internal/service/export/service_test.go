package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visa-processing/internal/domain"
	"visa-processing/internal/mocks"
	"visa-processing/internal/service/export"
	"visa-processing/internal/workflow"
)

func TestApplicationsCSV(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: "admin"}

	t.Run("writes header and rows", func(t *testing.T) {
		appRepo := new(mocks.ApplicationRepository)
		userRepo := new(mocks.UserRepository)
		svc := export.NewService(appRepo, userRepo)

		applicant := domain.User{
			ID:        uuid.New(),
			Email:     "ana@example.com",
			FirstName: "Ana",
			LastName:  "Putri",
		}
		city := "Berlin"
		travel := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
		submitted := time.Date(2025, 8, 2, 10, 30, 0, 0, time.UTC)

		apps := []domain.Application{
			{
				ID:                uuid.New(),
				UserID:            applicant.ID,
				ApplicationNumber: "VISA-1700000000000-001",
				VisaType:          domain.VisaWork,
				Status:            domain.StatusCostProvided,
				DestinationCity:   &city,
				TravelDate:        &travel,
				DurationDays:      90,
				TotalCost:         decimal.NewNullDecimal(decimal.NewFromFloat(350)),
				SubmittedAt:       &submitted,
				CreatedAt:         time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC),
			},
			{
				ID:                uuid.New(),
				UserID:            applicant.ID,
				ApplicationNumber: "VISA-1700000000000-002",
				VisaType:          domain.VisaTourist,
				Status:            domain.StatusDraft,
				DurationDays:      14,
				CreatedAt:         time.Date(2025, 8, 3, 9, 0, 0, 0, time.UTC),
			},
		}

		appRepo.On("ListForExport", ctx, "", (*time.Time)(nil), (*time.Time)(nil)).Return(apps, nil).Once()
		// Both rows share one applicant; the lookup is deduplicated.
		userRepo.On("GetByIDs", ctx, []uuid.UUID{applicant.ID}).Return([]domain.User{applicant}, nil).Once()

		var buf bytes.Buffer
		require.NoError(t, svc.ApplicationsCSV(ctx, admin, "", nil, nil, &buf))

		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)

		assert.Equal(t, "application_number", records[0][0])
		assert.Equal(t, "created_at", records[0][13])

		first := records[1]
		assert.Equal(t, "VISA-1700000000000-001", first[0])
		assert.Equal(t, "cost_provided", first[1])
		assert.Equal(t, "work", first[2])
		assert.Equal(t, "Ana Putri", first[3])
		assert.Equal(t, "ana@example.com", first[4])
		assert.Equal(t, "Berlin", first[5])
		assert.Equal(t, "2025-09-01", first[6])
		assert.Equal(t, "90", first[7])
		assert.Equal(t, "350.00", first[8])
		assert.Equal(t, "2025-08-02T10:30:00Z", first[10])

		second := records[2]
		assert.Equal(t, "draft", second[1])
		assert.Equal(t, "", second[5], "nil city stays empty")
		assert.Equal(t, "", second[8], "no cost estimation yet")
		assert.Equal(t, "", second[10], "never submitted")

		appRepo.AssertExpectations(t)
		userRepo.AssertExpectations(t)
	})

	t.Run("status filter is normalized before the query", func(t *testing.T) {
		appRepo := new(mocks.ApplicationRepository)
		userRepo := new(mocks.UserRepository)
		svc := export.NewService(appRepo, userRepo)

		appRepo.On("ListForExport", ctx, "documents_required", (*time.Time)(nil), (*time.Time)(nil)).
			Return([]domain.Application{}, nil).Once()
		userRepo.On("GetByIDs", ctx, []uuid.UUID{}).Return([]domain.User{}, nil).Once()

		var buf bytes.Buffer
		require.NoError(t, svc.ApplicationsCSV(ctx, admin, "documents_requested", nil, nil, &buf))
		appRepo.AssertExpectations(t)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		svc := export.NewService(new(mocks.ApplicationRepository), new(mocks.UserRepository))

		var buf bytes.Buffer
		err := svc.ApplicationsCSV(ctx, admin, "lost_in_the_mail", nil, nil, &buf)
		require.ErrorIs(t, err, export.ErrInvalidStatus)
		assert.Contains(t, err.Error(), "valid:")
		assert.Zero(t, buf.Len())
	})

	t.Run("officers cannot export", func(t *testing.T) {
		svc := export.NewService(new(mocks.ApplicationRepository), new(mocks.UserRepository))

		var buf bytes.Buffer
		err := svc.ApplicationsCSV(ctx, domain.Actor{ID: uuid.New(), Role: "officer"}, "", nil, nil, &buf)
		assert.ErrorIs(t, err, workflow.ErrNotAllowed)
		assert.Zero(t, buf.Len())
	})
}
