package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"visa-processing/internal/domain"
	"visa-processing/internal/repository"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("notification does not belong to this user")
)

type Service interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	Archive(ctx context.Context, userID, id uuid.UUID) error
	GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	Broadcast(ctx context.Context, input domain.BroadcastInput) (int, error)
}

type service struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
}

func NewService(notifRepo repository.NotificationRepository, userRepo repository.UserRepository) Service {
	return &service{
		notifRepo: notifRepo,
		userRepo:  userRepo,
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

// MarkAsRead requires the caller to be the recipient.
func (s *service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notif == nil {
		return ErrNotificationNotFound
	}
	if notif.UserID != userID {
		return ErrNotRecipient
	}

	return s.notifRepo.MarkAsRead(ctx, id)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) Archive(ctx context.Context, userID, id uuid.UUID) error {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notif == nil {
		return ErrNotificationNotFound
	}
	if notif.UserID != userID {
		return ErrNotRecipient
	}

	return s.notifRepo.Archive(ctx, id)
}

func (s *service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

// Broadcast creates one announcement per recipient and reports how many rows
// were written. A failed insert for one recipient does not abort the rest.
func (s *service) Broadcast(ctx context.Context, input domain.BroadcastInput) (int, error) {
	priority := domain.PriorityMedium
	if input.Priority != nil {
		priority = domain.NotificationPriority(*input.Priority)
	}

	var (
		recipients []domain.User
		err        error
	)
	if len(input.UserIDs) > 0 {
		recipients, err = s.userRepo.GetByIDs(ctx, input.UserIDs)
	} else {
		recipients, err = s.userRepo.GetAllActive(ctx)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve broadcast recipients: %w", err)
	}

	created := 0
	for _, user := range recipients {
		notif := Announcement(user.ID, input.Title, input.Message, priority)
		if err := s.notifRepo.Create(ctx, notif); err != nil {
			fmt.Printf("Failed to create notification for user %s: %v\n", user.ID, err)
			continue
		}
		created++
	}

	return created, nil
}
