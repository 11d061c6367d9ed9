package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"visa-processing/internal/config"
	"visa-processing/internal/domain"
	"visa-processing/internal/pkg/keymutex"
	"visa-processing/internal/repository"
	"visa-processing/internal/service/email"
	"visa-processing/internal/service/notification"
	"visa-processing/internal/workflow"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrNotOwner            = errors.New("application does not belong to this user")
	ErrInvalidVisaType     = errors.New("invalid visa type")
	ErrInvalidStatus       = errors.New("invalid application status")
	ErrConcurrentUpdate    = errors.New("application was modified by another request, please retry")
	ErrOfficerNotFound     = errors.New("officer not found")
	ErrNotAnOfficer        = errors.New("assigned user is not an active officer or admin")
)

type RequestMeta struct {
	IPAddress string
	UserAgent string
}

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateApplicationInput) (*domain.Application, error)
	GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Application, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Application], error)
	ListAll(ctx context.Context, filter domain.ApplicationFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Application], error)
	Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateApplicationInput) (*domain.Application, error)

	Submit(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *RequestMeta) (*domain.Application, error)
	Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, meta *RequestMeta) (*domain.Application, error)
	SetStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.SetStatusInput, meta *RequestMeta) (*domain.Application, error)
	AssignOfficer(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.AssignOfficerInput, meta *RequestMeta) (*domain.Application, error)
	SendCostEstimation(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.CostEstimationInput, meta *RequestMeta) (*domain.Application, error)

	// Transition runs one workflow action as a single transaction. extra, when
	// non-nil, executes inside that same transaction after the status write,
	// so cross-entity updates (appointments, payments) commit with the
	// application row or not at all.
	Transition(ctx context.Context, actor domain.Actor, id uuid.UUID, req workflow.Request, data TransitionData, extra func(r *repository.Repositories) error, meta *RequestMeta) (*domain.Application, error)
}

type service struct {
	store    *repository.Store
	locks    *keymutex.KeyMutex
	emailSvc email.Service
	cfg      *config.Config
}

func NewService(store *repository.Store, emailSvc email.Service, cfg *config.Config) Service {
	return &service{
		store:    store,
		locks:    keymutex.New(),
		emailSvc: emailSvc,
		cfg:      cfg,
	}
}

func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateApplicationInput) (*domain.Application, error) {
	visaType := domain.VisaType(input.VisaType)
	if !visaType.IsValid() {
		return nil, fmt.Errorf("%w: %s (valid: %s)", ErrInvalidVisaType, input.VisaType, strings.Join(domain.ValidVisaTypes(), ", "))
	}

	app := &domain.Application{
		ID:                uuid.New(),
		UserID:            actor.ID,
		ApplicationNumber: generateApplicationNumber(),
		VisaType:          visaType,
		Status:            domain.StatusDraft,
		Purpose:           input.Purpose,
		DestinationCity:   input.DestinationCity,
		PassportNumber:    input.PassportNumber,
		Nationality:       input.Nationality,
		TravelDate:        input.TravelDate,
		ReturnDate:        input.ReturnDate,
		DurationDays:      input.DurationDays,
	}

	if err := s.store.Application.Create(ctx, app); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "CREATE",
		EntityType: "APPLICATION",
		EntityID:   app.ID,
		NewValue:   app,
	})

	return app, nil
}

func (s *service) GetByID(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Application, error) {
	app, err := s.store.Application.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	if app.UserID != actor.ID && !actor.IsStaff() {
		return nil, ErrNotOwner
	}

	if applicant, err := s.store.User.GetByID(ctx, app.UserID); err == nil && applicant != nil {
		app.Applicant = applicant
	}
	if app.AssignedOfficerID != nil {
		if officer, err := s.store.User.GetByID(ctx, *app.AssignedOfficerID); err == nil && officer != nil {
			app.Officer = officer
		}
	}

	return app, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Application], error) {
	apps, total, err := s.store.Application.ListByUser(ctx, userID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Application]{}, err
	}

	return domain.NewPaginatedResponse(apps, params.Page, params.PageSize, total), nil
}

func (s *service) ListAll(ctx context.Context, filter domain.ApplicationFilter, params domain.PaginationParams) (domain.PaginatedResponse[domain.Application], error) {
	apps, total, err := s.store.Application.ListAll(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Application]{}, err
	}

	if err := s.attachUsers(ctx, apps); err != nil {
		return domain.PaginatedResponse[domain.Application]{}, err
	}

	return domain.NewPaginatedResponse(apps, params.Page, params.PageSize, total), nil
}

// attachUsers resolves applicant and officer references in one batched lookup.
func (s *service) attachUsers(ctx context.Context, apps []domain.Application) error {
	if len(apps) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0, len(apps))
	for i := range apps {
		if _, ok := seen[apps[i].UserID]; !ok {
			seen[apps[i].UserID] = struct{}{}
			ids = append(ids, apps[i].UserID)
		}
		if apps[i].AssignedOfficerID != nil {
			if _, ok := seen[*apps[i].AssignedOfficerID]; !ok {
				seen[*apps[i].AssignedOfficerID] = struct{}{}
				ids = append(ids, *apps[i].AssignedOfficerID)
			}
		}
	}

	users, err := s.store.User.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	for i := range apps {
		if u, ok := byID[apps[i].UserID]; ok {
			applicant := u
			apps[i].Applicant = &applicant
		}
		if apps[i].AssignedOfficerID != nil {
			if u, ok := byID[*apps[i].AssignedOfficerID]; ok {
				officer := u
				apps[i].Officer = &officer
			}
		}
	}

	return nil
}

func (s *service) Update(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.UpdateApplicationInput) (*domain.Application, error) {
	app, err := s.store.Application.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}

	caller := workflow.Caller{Role: actor.Role, IsOwner: app.UserID == actor.ID}
	if err := workflow.AllowsFieldUpdate(app.Status, caller); err != nil {
		return nil, err
	}

	if input.Purpose.Set {
		app.Purpose = input.Purpose.Value
	}
	if input.DestinationCity.Set {
		app.DestinationCity = input.DestinationCity.Value
	}
	if input.PassportNumber.Set {
		app.PassportNumber = input.PassportNumber.Value
	}
	if input.Nationality.Set {
		app.Nationality = input.Nationality.Value
	}
	if input.TravelDate.Set {
		app.TravelDate = input.TravelDate.Value
	}
	if input.ReturnDate.Set {
		app.ReturnDate = input.ReturnDate.Value
	}
	if input.DurationDays != nil {
		app.DurationDays = *input.DurationDays
	}

	if err := s.store.Application.Update(ctx, app); err != nil {
		return nil, err
	}

	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     "UPDATE",
		EntityType: "APPLICATION",
		EntityID:   app.ID,
		NewValue:   app,
	})

	return app, nil
}

// AssignOfficer is not a status transition, but it still races with guarded
// status writes over assigned_officer_id, so it takes the same per-application
// lock.
func (s *service) AssignOfficer(ctx context.Context, actor domain.Actor, id uuid.UUID, input domain.AssignOfficerInput, meta *RequestMeta) (*domain.Application, error) {
	if !actor.IsAdmin() {
		return nil, workflow.ErrNotAllowed
	}

	officer, err := s.store.User.GetByID(ctx, input.OfficerID)
	if err != nil {
		return nil, err
	}
	if officer == nil {
		return nil, ErrOfficerNotFound
	}
	if !officer.IsStaff() || !officer.IsActive {
		return nil, ErrNotAnOfficer
	}

	key := id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	app, err := s.store.Application.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}

	owner, err := s.store.User.GetByID(ctx, app.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	app.AssignedOfficerID = &officer.ID
	app.AssignedAt = &now

	applicantName := ""
	if owner != nil {
		applicantName = owner.FullName()
	}

	err = s.store.InTx(ctx, func(r *repository.Repositories) error {
		if err := r.Application.UpdateAssignment(ctx, app); err != nil {
			return err
		}
		return r.Notification.Create(ctx, notification.OfficerAssigned(officer.ID, app, applicantName))
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, actor, app, "ASSIGN_OFFICER", app.Status, meta)

	app.Officer = officer
	return app, nil
}

func (s *service) audit(ctx context.Context, actor domain.Actor, app *domain.Application, action string, from domain.ApplicationStatus, meta *RequestMeta) {
	input := domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     strings.ToUpper(action),
		EntityType: "APPLICATION",
		EntityID:   app.ID,
		OldValue:   map[string]string{"status": string(from)},
		NewValue:   map[string]string{"status": string(app.Status)},
	}
	if meta != nil {
		if meta.IPAddress != "" {
			input.IPAddress = &meta.IPAddress
		}
		if meta.UserAgent != "" {
			input.UserAgent = &meta.UserAgent
		}
	}
	_ = repository.CreateAuditLog(s.store.AuditLog, ctx, input)
}

// generateApplicationNumber builds VISA-<unix-millis>-<3 digits>. Uniqueness
// is enforced by the application_number constraint; a same-millisecond
// collision surfaces as an insert error rather than being retried.
func generateApplicationNumber() string {
	b := make([]byte, 2)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("VISA-%d-%03d", time.Now().UnixMilli(), time.Now().Nanosecond()%1000)
	}
	n := (int(b[0])<<8 | int(b[1])) % 1000
	return fmt.Sprintf("VISA-%d-%03d", time.Now().UnixMilli(), n)
}
