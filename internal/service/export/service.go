package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"visa-processing/internal/domain"
	"visa-processing/internal/repository"
	"visa-processing/internal/workflow"
)

var ErrInvalidStatus = errors.New("invalid application status filter")

type Service interface {
	// ApplicationsCSV streams a report of applications matching the filter.
	// Rows are written as they are produced; a failure partway leaves a
	// truncated file, which is acceptable for an operator download.
	ApplicationsCSV(ctx context.Context, actor domain.Actor, status string, from, to *time.Time, w io.Writer) error
}

type service struct {
	appRepo  repository.ApplicationRepository
	userRepo repository.UserRepository
}

func NewService(appRepo repository.ApplicationRepository, userRepo repository.UserRepository) Service {
	return &service{appRepo: appRepo, userRepo: userRepo}
}

func (s *service) ApplicationsCSV(ctx context.Context, actor domain.Actor, status string, from, to *time.Time, w io.Writer) error {
	if !actor.IsAdmin() {
		return workflow.ErrNotAllowed
	}

	if status != "" {
		normalized, ok := domain.NormalizeStatus(status)
		if !ok {
			return fmt.Errorf("%w: %s (valid: %s)", ErrInvalidStatus, status, strings.Join(domain.ValidApplicationStatuses(), ", "))
		}
		status = string(normalized)
	}

	apps, err := s.appRepo.ListForExport(ctx, status, from, to)
	if err != nil {
		return err
	}

	applicants, err := s.loadApplicants(ctx, apps)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"application_number", "status", "visa_type",
		"applicant_name", "applicant_email",
		"destination_city", "travel_date", "duration_days",
		"total_cost", "payment_deadline",
		"submitted_at", "approved_at", "rejected_at", "created_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, app := range apps {
		var name, email string
		if applicant, ok := applicants[app.UserID]; ok {
			name = applicant.FullName()
			email = applicant.Email
		}

		row := []string{
			app.ApplicationNumber,
			string(app.Status),
			string(app.VisaType),
			name,
			email,
			strPtr(app.DestinationCity),
			datePtr(app.TravelDate),
			fmt.Sprintf("%d", app.DurationDays),
			money(app.TotalCost),
			datePtr(app.PaymentDeadline),
			timePtr(app.SubmittedAt),
			timePtr(app.ApprovedAt),
			timePtr(app.RejectedAt),
			app.CreatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (s *service) loadApplicants(ctx context.Context, apps []domain.Application) (map[uuid.UUID]domain.User, error) {
	seen := make(map[uuid.UUID]struct{}, len(apps))
	ids := make([]uuid.UUID, 0, len(apps))
	for _, app := range apps {
		if _, ok := seen[app.UserID]; ok {
			continue
		}
		seen[app.UserID] = struct{}{}
		ids = append(ids, app.UserID)
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func strPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func datePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func timePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func money(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}
