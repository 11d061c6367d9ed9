package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"visa-processing/internal/domain"
)

type BiometricRepository struct {
	mock.Mock
}

func (m *BiometricRepository) Create(ctx context.Context, appt *domain.BiometricAppointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *BiometricRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BiometricAppointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BiometricAppointment), args.Error(1)
}

func (m *BiometricRepository) GetByApplication(ctx context.Context, applicationID uuid.UUID) (*domain.BiometricAppointment, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BiometricAppointment), args.Error(1)
}

func (m *BiometricRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.BiometricAppointment, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.BiometricAppointment), args.Error(1)
}

func (m *BiometricRepository) ListAll(ctx context.Context, status string, params domain.PaginationParams) ([]domain.BiometricAppointment, int64, error) {
	args := m.Called(ctx, status, params)
	return args.Get(0).([]domain.BiometricAppointment), args.Get(1).(int64), args.Error(2)
}

func (m *BiometricRepository) Update(ctx context.Context, appt *domain.BiometricAppointment) error {
	args := m.Called(ctx, appt)
	return args.Error(0)
}

func (m *BiometricRepository) CountScheduled(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
