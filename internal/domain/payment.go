package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Payment struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	ApplicationID uuid.UUID       `json:"application_id" db:"application_id"`
	UserID        uuid.UUID       `json:"user_id" db:"user_id"`
	Reference     string          `json:"reference" db:"reference"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Currency      string          `json:"currency" db:"currency"`
	Method        PaymentMethod   `json:"payment_method" db:"payment_method"`
	Status        PaymentStatus   `json:"status" db:"status"`
	TransactionID *string         `json:"transaction_id,omitempty" db:"transaction_id"`
	ProcessedBy   *uuid.UUID      `json:"processed_by,omitempty" db:"processed_by"`
	ProcessedAt   *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}

type PaymentMethod string

const (
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "bank_transfer"
	PaymentCash     PaymentMethod = "cash"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCard, PaymentTransfer, PaymentCash:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPendingStatus   PaymentStatus = "pending"
	PaymentProcessing      PaymentStatus = "processing"
	PaymentCompletedStatus PaymentStatus = "completed"
	PaymentFailed          PaymentStatus = "failed"
	PaymentRefunded        PaymentStatus = "refunded"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPendingStatus, PaymentProcessing, PaymentCompletedStatus,
		PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type CreatePaymentInput struct {
	ApplicationID uuid.UUID       `json:"applicationId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	Currency      string          `json:"currency" validate:"required,len=3"`
	Method        string          `json:"paymentMethod" validate:"required,oneof=card bank_transfer cash"`
}

type UpdatePaymentStatusInput struct {
	Status        string  `json:"status" validate:"required"`
	TransactionID *string `json:"transactionId,omitempty" validate:"omitempty,max=100"`
}
