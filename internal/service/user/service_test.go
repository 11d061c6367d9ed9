package user_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"visa-processing/internal/domain"
	"visa-processing/internal/mocks"
	"visa-processing/internal/service/user"
	"visa-processing/internal/workflow"
)

func newService() (user.Service, *mocks.UserRepository, *mocks.SessionRepository) {
	userRepo := new(mocks.UserRepository)
	sessionRepo := new(mocks.SessionRepository)
	auditRepo := new(mocks.AuditLogRepository)
	auditRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	return user.NewService(userRepo, sessionRepo, auditRepo), userRepo, sessionRepo
}

func someUser(role string) *domain.User {
	return &domain.User{
		ID:        uuid.New(),
		Email:     "someone@example.com",
		FirstName: "Siti",
		LastName:  "Rahma",
		Role:      role,
		IsActive:  true,
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	params := domain.PaginationParams{Page: 1, PageSize: 20}

	t.Run("admin lists users", func(t *testing.T) {
		svc, userRepo, _ := newService()

		userRepo.On("List", ctx, "siti", "user", params).
			Return([]domain.User{*someUser("user")}, int64(1), nil).Once()

		users, total, err := svc.List(ctx, domain.Actor{ID: uuid.New(), Role: "admin"}, "siti", "user", params)
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Equal(t, int64(1), total)
	})

	t.Run("officer is not enough", func(t *testing.T) {
		svc, _, _ := newService()

		_, _, err := svc.List(ctx, domain.Actor{ID: uuid.New(), Role: "officer"}, "", "", params)
		assert.ErrorIs(t, err, workflow.ErrNotAllowed)
	})
}

func TestUpdateRole(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: "admin"}

	t.Run("promotes a user to officer", func(t *testing.T) {
		svc, userRepo, _ := newService()
		target := someUser("user")

		userRepo.On("GetByID", ctx, target.ID).Return(target, nil).Once()
		userRepo.On("UpdateRole", ctx, target.ID, "officer").Return(nil).Once()

		got, err := svc.UpdateRole(ctx, admin, target.ID, "officer", nil)
		require.NoError(t, err)
		assert.Equal(t, "officer", got.Role)
		userRepo.AssertExpectations(t)
	})

	t.Run("cannot change own role", func(t *testing.T) {
		svc, _, _ := newService()

		_, err := svc.UpdateRole(ctx, admin, admin.ID, "user", nil)
		assert.ErrorIs(t, err, user.ErrCannotModifySelf)
	})

	t.Run("unknown role", func(t *testing.T) {
		svc, _, _ := newService()

		_, err := svc.UpdateRole(ctx, admin, uuid.New(), "superuser", nil)
		assert.ErrorIs(t, err, user.ErrInvalidRole)
	})

	t.Run("officer cannot change roles", func(t *testing.T) {
		svc, _, _ := newService()

		_, err := svc.UpdateRole(ctx, domain.Actor{ID: uuid.New(), Role: "officer"}, uuid.New(), "admin", nil)
		assert.ErrorIs(t, err, workflow.ErrNotAllowed)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, userRepo, _ := newService()

		userRepo.On("GetByID", ctx, mock.Anything).Return(nil, nil).Once()

		_, err := svc.UpdateRole(ctx, admin, uuid.New(), "officer", nil)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestSetActive(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: "admin"}

	t.Run("deactivation revokes all sessions", func(t *testing.T) {
		svc, userRepo, sessionRepo := newService()
		target := someUser("user")

		userRepo.On("GetByID", ctx, target.ID).Return(target, nil).Once()
		userRepo.On("SetActive", ctx, target.ID, false).Return(nil).Once()
		sessionRepo.On("RevokeAllForUser", ctx, target.ID).Return(nil).Once()

		got, err := svc.SetActive(ctx, admin, target.ID, false, nil)
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		sessionRepo.AssertExpectations(t)
	})

	t.Run("reactivation leaves sessions alone", func(t *testing.T) {
		svc, userRepo, sessionRepo := newService()
		target := someUser("user")
		target.IsActive = false

		userRepo.On("GetByID", ctx, target.ID).Return(target, nil).Once()
		userRepo.On("SetActive", ctx, target.ID, true).Return(nil).Once()

		got, err := svc.SetActive(ctx, admin, target.ID, true, nil)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
		sessionRepo.AssertNotCalled(t, "RevokeAllForUser", mock.Anything, mock.Anything)
	})

	t.Run("cannot deactivate self", func(t *testing.T) {
		svc, _, _ := newService()

		_, err := svc.SetActive(ctx, admin, admin.ID, false, nil)
		assert.ErrorIs(t, err, user.ErrCannotModifySelf)
	})
}

func TestBulkDelete(t *testing.T) {
	ctx := context.Background()
	admin := domain.Actor{ID: uuid.New(), Role: "admin"}

	t.Run("deletes the listed accounts", func(t *testing.T) {
		svc, userRepo, _ := newService()
		ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

		userRepo.On("BulkDelete", ctx, ids).Return(int64(3), nil).Once()

		deleted, err := svc.BulkDelete(ctx, admin, ids, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(3), deleted)
	})

	t.Run("list containing the caller is rejected", func(t *testing.T) {
		svc, userRepo, _ := newService()

		_, err := svc.BulkDelete(ctx, admin, []uuid.UUID{uuid.New(), admin.ID}, nil)
		assert.ErrorIs(t, err, user.ErrCannotModifySelf)
		userRepo.AssertNotCalled(t, "BulkDelete", mock.Anything, mock.Anything)
	})

	t.Run("officer cannot delete", func(t *testing.T) {
		svc, _, _ := newService()

		_, err := svc.BulkDelete(ctx, domain.Actor{ID: uuid.New(), Role: "officer"}, []uuid.UUID{uuid.New()}, nil)
		assert.ErrorIs(t, err, workflow.ErrNotAllowed)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only the supplied fields", func(t *testing.T) {
		svc, userRepo, _ := newService()
		nationality := "Indonesian"
		u := someUser("user")
		u.Nationality = &nationality

		userRepo.On("GetByID", ctx, u.ID).Return(u, nil).Once()
		userRepo.On("Update", ctx, u).Return(nil).Once()

		phone := "+62 812 0000"
		first := "Dina"
		got, err := svc.UpdateProfile(ctx, u.ID, domain.UpdateProfileInput{
			FirstName: &first,
			Phone:     domain.NullableString{Set: true, Value: &phone},
			// Nationality is explicitly cleared, passport stays untouched.
			Nationality: domain.NullableString{Set: true, Value: nil},
		})
		require.NoError(t, err)

		assert.Equal(t, "Dina", got.FirstName)
		assert.Equal(t, "Rahma", got.LastName)
		require.NotNil(t, got.Phone)
		assert.Equal(t, phone, *got.Phone)
		assert.Nil(t, got.Nationality)
		assert.Nil(t, got.PassportNo)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, userRepo, _ := newService()

		userRepo.On("GetByID", ctx, mock.Anything).Return(nil, nil).Once()

		_, err := svc.UpdateProfile(ctx, uuid.New(), domain.UpdateProfileInput{})
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}
