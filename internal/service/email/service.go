package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"github.com/resend/resend-go/v3"

	"visa-processing/internal/config"
)

type Service interface {
	SendWelcomeEmail(ctx context.Context, toEmail, fullName string) error
	SendStatusUpdateEmail(ctx context.Context, toEmail, fullName, applicationNumber, status string) error
	SendCostEstimationEmail(ctx context.Context, toEmail, fullName, applicationNumber, total string, deadline *time.Time) error
	SendBiometricsEmail(ctx context.Context, toEmail, fullName, applicationNumber string, date time.Time, location string) error
	SendPaymentConfirmationEmail(ctx context.Context, toEmail, fullName, applicationNumber, amount string) error
}

type service struct {
	client       *resend.Client
	config       *config.Config
	templatePath string
}

func NewService(cfg *config.Config) Service {
	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	} else {
		log.Println("RESEND_API_KEY not set, outgoing emails will be logged only")
	}
	templatePath := "internal/service/templates/email"
	return &service{
		client:       client,
		config:       cfg,
		templatePath: templatePath,
	}
}

func (s *service) sendEmail(toEmail, subject, templateName string, data interface{}) error {
	if s.client == nil {
		log.Printf("email to=%s subject=%q template=%s (delivery disabled)", toEmail, subject, templateName)
		return nil
	}

	tmpl, err := template.ParseFiles(
		filepath.Join(s.templatePath, "layout.html"),
		filepath.Join(s.templatePath, templateName),
	)
	if err != nil {
		return fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Visa Processing Center <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	_, err = s.client.Emails.Send(params)
	return err
}

func (s *service) SendWelcomeEmail(ctx context.Context, toEmail, fullName string) error {
	data := struct {
		Title string
		Name  string
		Link  string
	}{
		Title: "Welcome to the Visa Processing Center",
		Name:  fullName,
		Link:  fmt.Sprintf("https://%s/login", s.config.Domain),
	}
	return s.sendEmail(toEmail, "Welcome to the Visa Processing Center", "welcome.html", data)
}

func (s *service) SendStatusUpdateEmail(ctx context.Context, toEmail, fullName, applicationNumber, status string) error {
	color := "#10b981"
	if status == "rejected" || status == "cancelled" {
		color = "#ef4444"
	}

	data := struct {
		Title             string
		Name              string
		ApplicationNumber string
		Status            string
		Color             string
		Link              string
	}{
		Title:             "Application Status Update",
		Name:              fullName,
		ApplicationNumber: applicationNumber,
		Status:            status,
		Color:             color,
		Link:              fmt.Sprintf("https://%s/applications", s.config.Domain),
	}
	return s.sendEmail(toEmail, fmt.Sprintf("Application %s Status Update", applicationNumber), "status_update.html", data)
}

func (s *service) SendCostEstimationEmail(ctx context.Context, toEmail, fullName, applicationNumber, total string, deadline *time.Time) error {
	deadlineText := ""
	if deadline != nil {
		deadlineText = deadline.Format("2 January 2006")
	}

	data := struct {
		Title             string
		Name              string
		ApplicationNumber string
		Total             string
		Deadline          string
	}{
		Title:             "Cost Estimation Ready",
		Name:              fullName,
		ApplicationNumber: applicationNumber,
		Total:             total,
		Deadline:          deadlineText,
	}
	return s.sendEmail(toEmail, fmt.Sprintf("Cost Estimation for Application %s", applicationNumber), "cost_estimation.html", data)
}

func (s *service) SendBiometricsEmail(ctx context.Context, toEmail, fullName, applicationNumber string, date time.Time, location string) error {
	data := struct {
		Title             string
		Name              string
		ApplicationNumber string
		Date              string
		Location          string
	}{
		Title:             "Biometrics Appointment Scheduled",
		Name:              fullName,
		ApplicationNumber: applicationNumber,
		Date:              date.Format("2 January 2006 15:04"),
		Location:          location,
	}
	return s.sendEmail(toEmail, fmt.Sprintf("Biometrics Appointment for Application %s", applicationNumber), "biometrics.html", data)
}

func (s *service) SendPaymentConfirmationEmail(ctx context.Context, toEmail, fullName, applicationNumber, amount string) error {
	data := struct {
		Title             string
		Name              string
		ApplicationNumber string
		Amount            string
	}{
		Title:             "Payment Received",
		Name:              fullName,
		ApplicationNumber: applicationNumber,
		Amount:            amount,
	}
	return s.sendEmail(toEmail, fmt.Sprintf("Payment Confirmation for Application %s", applicationNumber), "payment_confirmation.html", data)
}
