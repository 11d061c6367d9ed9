package domain

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	UserID          uuid.UUID      `json:"user_id" db:"user_id"`
	ApplicationID   *uuid.UUID     `json:"application_id,omitempty" db:"application_id"`
	Type            DocumentType   `json:"type" db:"type"`
	FileName        string         `json:"file_name" db:"file_name"`
	FileSize        int64          `json:"file_size" db:"file_size"`
	MimeType        string         `json:"mime_type" db:"mime_type"`
	StoragePath     string         `json:"-" db:"storage_path"`
	URL             string         `json:"url,omitempty" db:"-"`
	Status          DocumentStatus `json:"status" db:"status"`
	RejectionReason *string        `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ReviewedBy      *uuid.UUID     `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	DeletedAt       *time.Time     `json:"-" db:"deleted_at"`
}

type DocumentType string

const (
	DocPassport        DocumentType = "passport"
	DocPhoto           DocumentType = "photo"
	DocBankStatement   DocumentType = "bank_statement"
	DocInvitation      DocumentType = "invitation_letter"
	DocTravelItinerary DocumentType = "travel_itinerary"
	DocInsurance       DocumentType = "insurance"
	DocEmployment      DocumentType = "employment_letter"
	DocOther           DocumentType = "other"
)

func (d DocumentType) IsValid() bool {
	switch d {
	case DocPassport, DocPhoto, DocBankStatement, DocInvitation,
		DocTravelItinerary, DocInsurance, DocEmployment, DocOther:
		return true
	}
	return false
}

func ValidDocumentTypes() []string {
	return []string{
		string(DocPassport), string(DocPhoto), string(DocBankStatement),
		string(DocInvitation), string(DocTravelItinerary), string(DocInsurance),
		string(DocEmployment), string(DocOther),
	}
}

type DocumentStatus string

const (
	DocPending  DocumentStatus = "pending"
	DocApproved DocumentStatus = "approved"
	DocRejected DocumentStatus = "rejected"
)

type UploadDocumentInput struct {
	ApplicationID *uuid.UUID `json:"application_id,omitempty"`
	Type          string     `json:"type" validate:"required"`
}

type ReviewDocumentInput struct {
	Status          string  `json:"status" validate:"required,oneof=approved rejected"`
	RejectionReason *string `json:"rejection_reason,omitempty" validate:"omitempty,max=1000"`
}
