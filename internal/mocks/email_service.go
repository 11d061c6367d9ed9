package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, fullName string) error {
	args := m.Called(ctx, toEmail, fullName)
	return args.Error(0)
}

func (m *EmailService) SendStatusUpdateEmail(ctx context.Context, toEmail, fullName, applicationNumber, status string) error {
	args := m.Called(ctx, toEmail, fullName, applicationNumber, status)
	return args.Error(0)
}

func (m *EmailService) SendCostEstimationEmail(ctx context.Context, toEmail, fullName, applicationNumber, total string, deadline *time.Time) error {
	args := m.Called(ctx, toEmail, fullName, applicationNumber, total, deadline)
	return args.Error(0)
}

func (m *EmailService) SendBiometricsEmail(ctx context.Context, toEmail, fullName, applicationNumber string, date time.Time, location string) error {
	args := m.Called(ctx, toEmail, fullName, applicationNumber, date, location)
	return args.Error(0)
}

func (m *EmailService) SendPaymentConfirmationEmail(ctx context.Context, toEmail, fullName, applicationNumber, amount string) error {
	args := m.Called(ctx, toEmail, fullName, applicationNumber, amount)
	return args.Error(0)
}
