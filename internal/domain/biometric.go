package domain

import (
	"time"

	"github.com/google/uuid"
)

type BiometricAppointment struct {
	ID              uuid.UUID         `json:"id" db:"id"`
	ApplicationID   uuid.UUID         `json:"application_id" db:"application_id"`
	UserID          uuid.UUID         `json:"user_id" db:"user_id"`
	Location        string            `json:"location" db:"location"`
	AppointmentDate time.Time         `json:"appointment_date" db:"appointment_date"`
	Status          AppointmentStatus `json:"status" db:"status"`
	Notes           *string           `json:"notes,omitempty" db:"notes"`
	ScheduledBy     uuid.UUID         `json:"scheduled_by" db:"scheduled_by"`
	CompletedBy     *uuid.UUID        `json:"completed_by,omitempty" db:"completed_by"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
}

type AppointmentStatus string

const (
	AppointmentScheduled   AppointmentStatus = "scheduled"
	AppointmentConfirmed   AppointmentStatus = "confirmed"
	AppointmentCompleted   AppointmentStatus = "completed"
	AppointmentCancelled   AppointmentStatus = "cancelled"
	AppointmentNoShow      AppointmentStatus = "no_show"
	AppointmentRescheduled AppointmentStatus = "rescheduled"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentScheduled, AppointmentConfirmed, AppointmentCompleted,
		AppointmentCancelled, AppointmentNoShow, AppointmentRescheduled:
		return true
	}
	return false
}

type ScheduleBiometricsInput struct {
	ApplicationID   uuid.UUID `json:"applicationId" validate:"required"`
	AppointmentDate time.Time `json:"appointmentDate" validate:"required"`
	Location        string    `json:"location" validate:"required,max=200"`
	Notes           *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type UpdateAppointmentStatusInput struct {
	Status string  `json:"status" validate:"required"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type RescheduleAppointmentInput struct {
	AppointmentDate time.Time `json:"appointmentDate" validate:"required"`
	Location        *string   `json:"location,omitempty" validate:"omitempty,max=200"`
	Notes           *string   `json:"notes,omitempty" validate:"omitempty,max=1000"`
}
