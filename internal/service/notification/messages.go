package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"visa-processing/internal/domain"
)

// Composers build notification rows without touching storage, so callers can
// insert them inside the same transaction as the status change they announce.

func Welcome(userID uuid.UUID, firstName string) *domain.Notification {
	return &domain.Notification{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     domain.NotifWelcome,
		Priority: domain.PriorityLow,
		Status:   domain.NotifUnread,
		Title:    "Welcome to the Visa Processing Center",
		Message:  fmt.Sprintf("Hello %s, your account is ready. Start an application whenever you like.", firstName),
	}
}

func SubmittedForReview(adminID uuid.UUID, app *domain.Application, applicantName string) *domain.Notification {
	data, _ := json.Marshal(map[string]string{
		"application_id":     app.ID.String(),
		"application_number": app.ApplicationNumber,
		"visa_type":          string(app.VisaType),
	})

	return &domain.Notification{
		ID:            uuid.New(),
		UserID:        adminID,
		ApplicationID: &app.ID,
		Type:          domain.NotifStatusUpdate,
		Priority:      domain.PriorityMedium,
		Status:        domain.NotifUnread,
		Title:         "New Application Submitted",
		Message:       fmt.Sprintf("%s submitted application %s for review", applicantName, app.ApplicationNumber),
		Data:          json.RawMessage(data),
	}
}

func StatusUpdate(app *domain.Application, notes *string) *domain.Notification {
	dataMap := map[string]string{
		"application_id":     app.ID.String(),
		"application_number": app.ApplicationNumber,
		"status":             string(app.Status),
	}
	if notes != nil && *notes != "" {
		dataMap["notes"] = *notes
	}
	data, _ := json.Marshal(dataMap)

	return &domain.Notification{
		ID:            uuid.New(),
		UserID:        app.UserID,
		ApplicationID: &app.ID,
		Type:          domain.NotifStatusUpdate,
		Priority:      domain.PriorityMedium,
		Status:        domain.NotifUnread,
		Title:         "Application Status Update",
		Message:       fmt.Sprintf("Your application %s is now %s", app.ApplicationNumber, app.Status),
		Data:          json.RawMessage(data),
	}
}

func Farewell(app *domain.Application) *domain.Notification {
	message := fmt.Sprintf("Your visa application %s has been completed. Thank you for choosing the Visa Processing Center.", app.ApplicationNumber)
	if app.Status == domain.StatusIssued {
		message = fmt.Sprintf("Your visa for application %s has been issued. Thank you for choosing the Visa Processing Center.", app.ApplicationNumber)
	}

	data, _ := json.Marshal(map[string]string{
		"application_id":     app.ID.String(),
		"application_number": app.ApplicationNumber,
		"status":             string(app.Status),
	})

	return &domain.Notification{
		ID:            uuid.New(),
		UserID:        app.UserID,
		ApplicationID: &app.ID,
		Type:          domain.NotifFarewell,
		Priority:      domain.PriorityHigh,
		Status:        domain.NotifUnread,
		Title:         "Thank You",
		Message:       message,
		Data:          json.RawMessage(data),
	}
}

func CostEstimation(app *domain.Application) *domain.Notification {
	total := "0"
	if app.TotalCost.Valid {
		total = app.TotalCost.Decimal.StringFixed(2)
	}

	dataMap := map[string]string{
		"application_id":     app.ID.String(),
		"application_number": app.ApplicationNumber,
		"total_cost":         total,
	}
	if app.PaymentDeadline != nil {
		dataMap["payment_deadline"] = app.PaymentDeadline.Format(time.RFC3339)
	}
	data, _ := json.Marshal(dataMap)

	message := fmt.Sprintf("The cost estimation for application %s is ready. Total: %s", app.ApplicationNumber, total)
	if app.PaymentDeadline != nil {
		message = fmt.Sprintf("%s. Please pay before %s", message, app.PaymentDeadline.Format("2 January 2006"))
	}

	return &domain.Notification{
		ID:            uuid.New(),
		UserID:        app.UserID,
		ApplicationID: &app.ID,
		Type:          domain.NotifCostEstimation,
		Priority:      domain.PriorityHigh,
		Status:        domain.NotifUnread,
		Title:         "Cost Estimation Ready",
		Message:       message,
		Data:          json.RawMessage(data),
	}
}

func OfficerAssigned(officerID uuid.UUID, app *domain.Application, applicantName string) *domain.Notification {
	data, _ := json.Marshal(map[string]string{
		"application_id":     app.ID.String(),
		"application_number": app.ApplicationNumber,
		"visa_type":          string(app.VisaType),
	})

	return &domain.Notification{
		ID:            uuid.New(),
		UserID:        officerID,
		ApplicationID: &app.ID,
		Type:          domain.NotifOfficerAssigned,
		Priority:      domain.PriorityMedium,
		Status:        domain.NotifUnread,
		Title:         "Application Assigned",
		Message:       fmt.Sprintf("Application %s from %s has been assigned to you", app.ApplicationNumber, applicantName),
		Data:          json.RawMessage(data),
	}
}

func BiometricsScheduled(app *domain.Application, date time.Time, location string) *domain.Notification {
	data, _ := json.Marshal(map[string]string{
		"application_id":     app.ID.String(),
		"application_number": app.ApplicationNumber,
		"appointment_date":   date.Format(time.RFC3339),
		"location":           location,
	})

	return &domain.Notification{
		ID:            uuid.New(),
		UserID:        app.UserID,
		ApplicationID: &app.ID,
		Type:          domain.NotifBiometricsScheduled,
		Priority:      domain.PriorityHigh,
		Status:        domain.NotifUnread,
		Title:         "Biometrics Appointment Scheduled",
		Message:       fmt.Sprintf("Your biometrics appointment for application %s is on %s at %s", app.ApplicationNumber, date.Format("2 January 2006 15:04"), location),
		Data:          json.RawMessage(data),
	}
}

func BiometricsUpdate(app *domain.Application, appointmentStatus domain.AppointmentStatus) *domain.Notification {
	data, _ := json.Marshal(map[string]string{
		"application_id":     app.ID.String(),
		"application_number": app.ApplicationNumber,
		"appointment_status": string(appointmentStatus),
	})

	return &domain.Notification{
		ID:            uuid.New(),
		UserID:        app.UserID,
		ApplicationID: &app.ID,
		Type:          domain.NotifBiometricsUpdate,
		Priority:      domain.PriorityMedium,
		Status:        domain.NotifUnread,
		Title:         "Biometrics Appointment Update",
		Message:       fmt.Sprintf("Your biometrics appointment for application %s is now %s", app.ApplicationNumber, appointmentStatus),
		Data:          json.RawMessage(data),
	}
}

func PaymentConfirmation(app *domain.Application, amount decimal.Decimal, currency string) *domain.Notification {
	data, _ := json.Marshal(map[string]string{
		"application_id":     app.ID.String(),
		"application_number": app.ApplicationNumber,
		"amount":             amount.StringFixed(2),
		"currency":           currency,
	})

	return &domain.Notification{
		ID:            uuid.New(),
		UserID:        app.UserID,
		ApplicationID: &app.ID,
		Type:          domain.NotifPaymentConfirmation,
		Priority:      domain.PriorityMedium,
		Status:        domain.NotifUnread,
		Title:         "Payment Received",
		Message:       fmt.Sprintf("Your payment of %s %s for application %s has been confirmed", amount.StringFixed(2), currency, app.ApplicationNumber),
		Data:          json.RawMessage(data),
	}
}

func DocumentReviewed(doc *domain.Document) *domain.Notification {
	notifType := domain.NotifDocumentApproved
	priority := domain.PriorityMedium
	title := "Document Approved"
	message := fmt.Sprintf("Your document %s has been approved", doc.FileName)

	if doc.Status == domain.DocRejected {
		notifType = domain.NotifDocumentRejected
		priority = domain.PriorityHigh
		title = "Document Rejected"
		message = fmt.Sprintf("Your document %s has been rejected", doc.FileName)
		if doc.RejectionReason != nil && *doc.RejectionReason != "" {
			message = fmt.Sprintf("%s: %s", message, *doc.RejectionReason)
		}
	}

	dataMap := map[string]string{
		"document_id":   doc.ID.String(),
		"document_type": string(doc.Type),
		"status":        string(doc.Status),
	}
	if doc.ApplicationID != nil {
		dataMap["application_id"] = doc.ApplicationID.String()
	}
	data, _ := json.Marshal(dataMap)

	return &domain.Notification{
		ID:            uuid.New(),
		UserID:        doc.UserID,
		ApplicationID: doc.ApplicationID,
		Type:          notifType,
		Priority:      priority,
		Status:        domain.NotifUnread,
		Title:         title,
		Message:       message,
		Data:          json.RawMessage(data),
	}
}

func Announcement(userID uuid.UUID, title, message string, priority domain.NotificationPriority) *domain.Notification {
	return &domain.Notification{
		ID:       uuid.New(),
		UserID:   userID,
		Type:     domain.NotifSystemAnnouncement,
		Priority: priority,
		Status:   domain.NotifUnread,
		Title:    title,
		Message:  message,
	}
}
