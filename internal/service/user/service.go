package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"visa-processing/internal/domain"
	"visa-processing/internal/repository"
	"visa-processing/internal/service/application"
	"visa-processing/internal/workflow"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrCannotModifySelf = errors.New("cannot modify your own account")
	ErrInvalidRole      = errors.New("invalid role")
)

type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input domain.UpdateProfileInput) (*domain.User, error)

	List(ctx context.Context, actor domain.Actor, search, role string, params domain.PaginationParams) ([]domain.User, int64, error)
	UpdateRole(ctx context.Context, actor domain.Actor, id uuid.UUID, role string, meta *application.RequestMeta) (*domain.User, error)
	SetActive(ctx context.Context, actor domain.Actor, id uuid.UUID, active bool, meta *application.RequestMeta) (*domain.User, error)
	BulkDelete(ctx context.Context, actor domain.Actor, ids []uuid.UUID, meta *application.RequestMeta) (int64, error)
}

type service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	auditRepo   repository.AuditLogRepository
}

func NewService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, auditRepo repository.AuditLogRepository) Service {
	return &service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		auditRepo:   auditRepo,
	}
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies the self-service editable fields. Email, role and
// active flag never pass through here; those have their own endpoints.
func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input domain.UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone.Set {
		user.Phone = input.Phone.Value
	}
	if input.Nationality.Set {
		user.Nationality = input.Nationality.Value
	}
	if input.PassportNo.Set {
		user.PassportNo = input.PassportNo.Value
	}
	if input.DateOfBirth.Set {
		user.DateOfBirth = input.DateOfBirth.Value
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) List(ctx context.Context, actor domain.Actor, search, role string, params domain.PaginationParams) ([]domain.User, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, workflow.ErrNotAllowed
	}
	return s.userRepo.List(ctx, search, role, params)
}

func (s *service) UpdateRole(ctx context.Context, actor domain.Actor, id uuid.UUID, role string, meta *application.RequestMeta) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, workflow.ErrNotAllowed
	}
	if actor.ID == id {
		return nil, ErrCannotModifySelf
	}
	if !domain.UserRole(role).IsValid() {
		return nil, ErrInvalidRole
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	oldRole := user.Role
	if err := s.userRepo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}
	user.Role = role

	s.audit(ctx, actor, "UPDATE_ROLE", id, map[string]string{"role": oldRole}, map[string]string{"role": role}, meta)

	return user, nil
}

func (s *service) SetActive(ctx context.Context, actor domain.Actor, id uuid.UUID, active bool, meta *application.RequestMeta) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, workflow.ErrNotAllowed
	}
	if actor.ID == id {
		return nil, ErrCannotModifySelf
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	wasActive := user.IsActive
	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	user.IsActive = active

	// A deactivated account keeps no live refresh tokens. Access tokens
	// age out on their own; the auth guard rejects them in the meantime.
	if wasActive && !active {
		if err := s.sessionRepo.RevokeAllForUser(ctx, id); err != nil {
			return nil, err
		}
	}

	s.audit(ctx, actor, "SET_ACTIVE", id, map[string]bool{"is_active": wasActive}, map[string]bool{"is_active": active}, meta)

	return user, nil
}

// BulkDelete hard-deletes the listed accounts. The caller is never allowed
// to include itself; everything else is fair game for an admin.
func (s *service) BulkDelete(ctx context.Context, actor domain.Actor, ids []uuid.UUID, meta *application.RequestMeta) (int64, error) {
	if !actor.IsAdmin() {
		return 0, workflow.ErrNotAllowed
	}
	for _, id := range ids {
		if id == actor.ID {
			return 0, ErrCannotModifySelf
		}
	}

	deleted, err := s.userRepo.BulkDelete(ctx, ids)
	if err != nil {
		return 0, err
	}

	idStrings := make([]string, len(ids))
	for i, id := range ids {
		idStrings[i] = id.String()
	}
	s.audit(ctx, actor, "BULK_DELETE", actor.ID, nil, map[string]string{
		"requested": strings.Join(idStrings, ","),
	}, meta)

	return deleted, nil
}

func (s *service) audit(ctx context.Context, actor domain.Actor, action string, entityID uuid.UUID, oldValue, newValue any, meta *application.RequestMeta) {
	input := domain.CreateAuditLogInput{
		UserID:     actor.ID,
		Action:     action,
		EntityType: "USER",
		EntityID:   entityID,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	if meta != nil {
		if meta.IPAddress != "" {
			input.IPAddress = &meta.IPAddress
		}
		if meta.UserAgent != "" {
			input.UserAgent = &meta.UserAgent
		}
	}
	_ = repository.CreateAuditLog(s.auditRepo, ctx, input)
}
