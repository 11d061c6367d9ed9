package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"visa-processing/internal/domain"
	"visa-processing/internal/repository"
)

type ApplicationRepository struct {
	mock.Mock
}

func (m *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *ApplicationRepository) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) ([]domain.Application, int64, error) {
	args := m.Called(ctx, userID, params)
	return args.Get(0).([]domain.Application), args.Get(1).(int64), args.Error(2)
}

func (m *ApplicationRepository) ListAll(ctx context.Context, filter domain.ApplicationFilter, params domain.PaginationParams) ([]domain.Application, int64, error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).([]domain.Application), args.Get(1).(int64), args.Error(2)
}

func (m *ApplicationRepository) Update(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *ApplicationRepository) UpdateStatusGuarded(ctx context.Context, app *domain.Application, expected domain.ApplicationStatus) (bool, error) {
	args := m.Called(ctx, app, expected)
	return args.Bool(0), args.Error(1)
}

func (m *ApplicationRepository) UpdateAssignment(ctx context.Context, app *domain.Application) error {
	args := m.Called(ctx, app)
	return args.Error(0)
}

func (m *ApplicationRepository) CountByStatus(ctx context.Context) ([]repository.StatusCount, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repository.StatusCount), args.Error(1)
}

func (m *ApplicationRepository) ListForExport(ctx context.Context, status string, from, to *time.Time) ([]domain.Application, error) {
	args := m.Called(ctx, status, from, to)
	return args.Get(0).([]domain.Application), args.Error(1)
}
