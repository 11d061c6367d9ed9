package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Application struct {
	ID                uuid.UUID           `json:"id" db:"id"`
	UserID            uuid.UUID           `json:"user_id" db:"user_id"`
	ApplicationNumber string              `json:"application_number" db:"application_number"`
	VisaType          VisaType            `json:"visa_type" db:"visa_type"`
	Status            ApplicationStatus   `json:"status" db:"status"`
	Purpose           *string             `json:"purpose,omitempty" db:"purpose"`
	DestinationCity   *string             `json:"destination_city,omitempty" db:"destination_city"`
	PassportNumber    *string             `json:"passport_number,omitempty" db:"passport_number"`
	Nationality       *string             `json:"nationality,omitempty" db:"nationality"`
	TravelDate        *time.Time          `json:"travel_date,omitempty" db:"travel_date"`
	ReturnDate        *time.Time          `json:"return_date,omitempty" db:"return_date"`
	DurationDays      int                 `json:"duration_days" db:"duration_days"`
	ProcessingFee     decimal.NullDecimal `json:"processing_fee" db:"processing_fee"`
	BiometricsFee     decimal.NullDecimal `json:"biometrics_fee" db:"biometrics_fee"`
	ServiceFee        decimal.NullDecimal `json:"service_fee" db:"service_fee"`
	CourierFee        decimal.NullDecimal `json:"courier_fee" db:"courier_fee"`
	TotalCost         decimal.NullDecimal `json:"total_cost" db:"total_cost"`
	CostProvidedAt    *time.Time          `json:"cost_provided_at,omitempty" db:"cost_provided_at"`
	PaymentDeadline   *time.Time          `json:"payment_deadline,omitempty" db:"payment_deadline"`
	AssignedOfficerID *uuid.UUID          `json:"assigned_officer_id,omitempty" db:"assigned_officer_id"`
	AssignedAt        *time.Time          `json:"assigned_at,omitempty" db:"assigned_at"`
	SubmittedAt       *time.Time          `json:"submitted_at,omitempty" db:"submitted_at"`
	ReviewedAt        *time.Time          `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ApprovedAt        *time.Time          `json:"approved_at,omitempty" db:"approved_at"`
	RejectedAt        *time.Time          `json:"rejected_at,omitempty" db:"rejected_at"`
	BiometricsDate    *time.Time          `json:"biometrics_date,omitempty" db:"biometrics_date"`
	RejectionReason   *string             `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ProcessingNotes   *string             `json:"processing_notes,omitempty" db:"processing_notes"`
	CreatedAt         time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" db:"updated_at"`

	Applicant *User `json:"applicant,omitempty" db:"-"`
	Officer   *User `json:"officer,omitempty" db:"-"`
}

type VisaType string

const (
	VisaTourist     VisaType = "tourist"
	VisaBusiness    VisaType = "business"
	VisaStudent     VisaType = "student"
	VisaWork        VisaType = "work"
	VisaFamilyVisit VisaType = "family_visit"
	VisaTransit     VisaType = "transit"
	VisaMedical     VisaType = "medical"
)

func (v VisaType) IsValid() bool {
	switch v {
	case VisaTourist, VisaBusiness, VisaStudent, VisaWork, VisaFamilyVisit, VisaTransit, VisaMedical:
		return true
	default:
		return false
	}
}

func ValidVisaTypes() []string {
	return []string{
		string(VisaTourist), string(VisaBusiness), string(VisaStudent), string(VisaWork),
		string(VisaFamilyVisit), string(VisaTransit), string(VisaMedical),
	}
}

// ApplicationStatus is the canonical status enum. The legacy route layer also
// produced "documents_requested"; NormalizeStatus folds it into
// StatusDocumentsRequired so only one spelling ever reaches storage.
type ApplicationStatus string

const (
	StatusDraft               ApplicationStatus = "draft"
	StatusSubmitted           ApplicationStatus = "submitted"
	StatusUnderReview         ApplicationStatus = "under_review"
	StatusDocumentsRequired   ApplicationStatus = "documents_required"
	StatusCostProvided        ApplicationStatus = "cost_provided"
	StatusPaymentPending      ApplicationStatus = "payment_pending"
	StatusPaymentCompleted    ApplicationStatus = "payment_completed"
	StatusBiometricsScheduled ApplicationStatus = "biometrics_scheduled"
	StatusBiometricsCompleted ApplicationStatus = "biometrics_completed"
	StatusProcessing          ApplicationStatus = "processing"
	StatusEmbassySubmitted    ApplicationStatus = "embassy_submitted"
	StatusApproved            ApplicationStatus = "approved"
	StatusRejected            ApplicationStatus = "rejected"
	StatusCompleted           ApplicationStatus = "completed"
	StatusIssued              ApplicationStatus = "issued"
	StatusCancelled           ApplicationStatus = "cancelled"
)

const statusAliasDocumentsRequested = "documents_requested"

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusDocumentsRequired,
		StatusCostProvided, StatusPaymentPending, StatusPaymentCompleted,
		StatusBiometricsScheduled, StatusBiometricsCompleted, StatusProcessing,
		StatusEmbassySubmitted, StatusApproved, StatusRejected, StatusCompleted,
		StatusIssued, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status has no outgoing transitions.
// Approved is deliberately not terminal: approved applications still move to
// completed or issued.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCompleted, StatusIssued, StatusCancelled:
		return true
	default:
		return false
	}
}

// NormalizeStatus parses a caller-supplied status string, folding the
// documents_requested alias into the canonical spelling. The second return
// is false for anything outside the canonical enum.
func NormalizeStatus(raw string) (ApplicationStatus, bool) {
	if raw == statusAliasDocumentsRequested {
		return StatusDocumentsRequired, true
	}
	s := ApplicationStatus(raw)
	if s.IsValid() {
		return s, true
	}
	return "", false
}

func ValidApplicationStatuses() []string {
	return []string{
		string(StatusDraft), string(StatusSubmitted), string(StatusUnderReview),
		string(StatusDocumentsRequired), string(StatusCostProvided), string(StatusPaymentPending),
		string(StatusPaymentCompleted), string(StatusBiometricsScheduled), string(StatusBiometricsCompleted),
		string(StatusProcessing), string(StatusEmbassySubmitted), string(StatusApproved),
		string(StatusRejected), string(StatusCompleted), string(StatusIssued), string(StatusCancelled),
	}
}

type CreateApplicationInput struct {
	VisaType        string     `json:"visa_type" validate:"required"`
	Purpose         *string    `json:"purpose,omitempty" validate:"omitempty,max=1000"`
	DestinationCity *string    `json:"destination_city,omitempty" validate:"omitempty,max=120"`
	PassportNumber  *string    `json:"passport_number,omitempty" validate:"omitempty,min=5,max=20"`
	Nationality     *string    `json:"nationality,omitempty" validate:"omitempty,max=60"`
	TravelDate      *time.Time `json:"travel_date,omitempty"`
	ReturnDate      *time.Time `json:"return_date,omitempty"`
	DurationDays    int        `json:"duration_days" validate:"omitempty,min=1,max=3650"`
}

// UpdateApplicationInput is the allow-listed field set for draft updates.
// Unknown fields in the request body are discarded, never merged.
type UpdateApplicationInput struct {
	Purpose         NullableString `json:"purpose,omitempty"`
	DestinationCity NullableString `json:"destination_city,omitempty"`
	PassportNumber  NullableString `json:"passport_number,omitempty"`
	Nationality     NullableString `json:"nationality,omitempty"`
	TravelDate      NullableTime   `json:"travel_date,omitempty"`
	ReturnDate      NullableTime   `json:"return_date,omitempty"`
	DurationDays    *int           `json:"duration_days,omitempty" validate:"omitempty,min=1,max=3650"`
}

type SetStatusInput struct {
	Status          string  `json:"status" validate:"required"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
	AssignedOfficer *string `json:"assignedOfficer,omitempty"`
}

type AssignOfficerInput struct {
	OfficerID uuid.UUID `json:"officerId" validate:"required"`
}

// CostEstimationInput carries the fee components as supplied by the admin.
// The total is taken as given rather than recomputed; see the engine notes.
type CostEstimationInput struct {
	ProcessingFee   decimal.Decimal `json:"processingFee" validate:"required"`
	BiometricsFee   decimal.Decimal `json:"biometricsFee" validate:"required"`
	ServiceFee      decimal.Decimal `json:"serviceFee" validate:"required"`
	CourierFee      decimal.Decimal `json:"courierFee" validate:"required"`
	Total           decimal.Decimal `json:"total" validate:"required"`
	PaymentDeadline *time.Time      `json:"paymentDeadline,omitempty"`
}

type ApplicationFilter struct {
	Status   *ApplicationStatus
	VisaType *VisaType
	Search   string
	From     *time.Time
	To       *time.Time
}
