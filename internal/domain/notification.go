package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID            uuid.UUID            `json:"id" db:"id"`
	UserID        uuid.UUID            `json:"user_id" db:"user_id"`
	ApplicationID *uuid.UUID           `json:"application_id,omitempty" db:"application_id"`
	Type          NotificationType     `json:"type" db:"type"`
	Priority      NotificationPriority `json:"priority" db:"priority"`
	Title         string               `json:"title" db:"title"`
	Message       string               `json:"message" db:"message"`
	Data          json.RawMessage      `json:"data,omitempty" db:"data"`
	Status        NotificationStatus   `json:"status" db:"status"`
	ReadAt        *time.Time           `json:"read_at,omitempty" db:"read_at"`
	CreatedAt     time.Time            `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifWelcome              NotificationType = "welcome"
	NotifApplicationSubmitted NotificationType = "application_submitted"
	NotifStatusUpdate         NotificationType = "application_status_update"
	NotifFarewell             NotificationType = "farewell_message"
	NotifOfficerAssigned      NotificationType = "officer_assigned"
	NotifCostEstimation       NotificationType = "cost_estimation"
	NotifPaymentConfirmation  NotificationType = "payment_confirmation"
	NotifBiometricsScheduled  NotificationType = "biometrics_scheduled"
	NotifBiometricsUpdate     NotificationType = "biometrics_update"
	NotifDocumentApproved     NotificationType = "document_approved"
	NotifDocumentRejected     NotificationType = "document_rejected"
	NotifSystemAnnouncement   NotificationType = "system_announcement"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

func (p NotificationPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type NotificationStatus string

const (
	NotifUnread   NotificationStatus = "unread"
	NotifRead     NotificationStatus = "read"
	NotifArchived NotificationStatus = "archived"
)

type CreateNotificationInput struct {
	UserID        uuid.UUID
	ApplicationID *uuid.UUID
	Type          NotificationType
	Priority      NotificationPriority
	Title         string
	Message       string
	Data          any
}

// BroadcastInput targets an explicit list of users, or every active user
// when UserIDs is empty.
type BroadcastInput struct {
	Title    string      `json:"title" validate:"required,max=200"`
	Message  string      `json:"message" validate:"required,max=2000"`
	Priority *string     `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
	UserIDs  []uuid.UUID `json:"user_ids,omitempty"`
}

type NotificationCounts struct {
	Total  int64 `json:"total" db:"total"`
	Unread int64 `json:"unread" db:"unread"`
}
