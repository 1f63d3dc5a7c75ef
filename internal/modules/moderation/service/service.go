package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	notificationservice "skripta.hr/forum/internal/modules/notification/service"
	userrepository "skripta.hr/forum/internal/modules/user/repository"
	"skripta.hr/forum/pkg/apperror"
)

// The timeout ladder. Durations outside this set are rejected before any
// write happens.
var TimeoutHours = []int{1, 6, 12, 24, 72, 168}

func validTimeout(hours int) bool {
	for _, h := range TimeoutHours {
		if h == hours {
			return true
		}
	}
	return false
}

type ModerationService interface {
	SetRole(ctx context.Context, adminID, userID uuid.UUID, role string) error
	// Ban is idempotent: banning an already banned user refreshes the reason
	// without error.
	Ban(ctx context.Context, adminID, userID uuid.UUID, reason string) error
	Unban(ctx context.Context, adminID, userID uuid.UUID) error
	Warn(ctx context.Context, adminID, userID uuid.UUID, reason string) error
	// Timeout suspends posting for one of the fixed ladder durations. The
	// state is a timestamp; expiry needs no background job.
	Timeout(ctx context.Context, adminID, userID uuid.UUID, hours int, reason string) error
	RemoveTimeout(ctx context.Context, adminID, userID uuid.UUID) error
	ListUsers(ctx context.Context, search string, page, limit int) ([]*entity.User, int64, error)
}

type moderationService struct {
	userRepo      userrepository.UserRepository
	notifications notificationservice.NotificationService
}

func NewModerationService(userRepo userrepository.UserRepository, notifications notificationservice.NotificationService) ModerationService {
	return &moderationService{userRepo: userRepo, notifications: notifications}
}

func (s *moderationService) target(ctx context.Context, adminID, userID uuid.UUID) (*entity.User, error) {
	if adminID == userID {
		return nil, fmt.Errorf("ne možete moderirati sami sebe: %w", apperror.ErrBadRequest)
	}
	user, err := s.userRepo.FindByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("korisnik nije pronađen: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *moderationService) SetRole(ctx context.Context, adminID, userID uuid.UUID, role string) error {
	if role != entity.RoleStudent && role != entity.RoleAdmin {
		return fmt.Errorf("nepoznata uloga: %w", apperror.ErrBadRequest)
	}

	if _, err := s.target(ctx, adminID, userID); err != nil {
		return err
	}

	return s.userRepo.UpdateModeration(ctx, userID, map[string]any{"role": role})
}

func (s *moderationService) Ban(ctx context.Context, adminID, userID uuid.UUID, reason string) error {
	user, err := s.target(ctx, adminID, userID)
	if err != nil {
		return err
	}

	if user.Role == entity.RoleAdmin {
		return fmt.Errorf("administratora nije moguće blokirati: %w", apperror.ErrForbidden)
	}

	now := time.Now()
	return s.userRepo.UpdateModeration(ctx, userID, map[string]any{
		"is_banned":  true,
		"ban_reason": reason,
		"banned_at":  now,
	})
}

func (s *moderationService) Unban(ctx context.Context, adminID, userID uuid.UUID) error {
	if _, err := s.target(ctx, adminID, userID); err != nil {
		return err
	}

	// Idempotent: unbanning a user who is not banned is a no-op.
	return s.userRepo.UpdateModeration(ctx, userID, map[string]any{
		"is_banned":  false,
		"ban_reason": nil,
		"banned_at":  nil,
	})
}

func (s *moderationService) Warn(ctx context.Context, adminID, userID uuid.UUID, reason string) error {
	user, err := s.target(ctx, adminID, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdateModeration(ctx, userID, map[string]any{
		"warning_count": gorm.Expr("warning_count + 1"),
	}); err != nil {
		return err
	}

	if s.notifications != nil {
		notification := &entity.Notification{
			UserID:     user.ID,
			ActorID:    adminID,
			EntityID:   user.ID,
			EntityType: "user",
			Type:       entity.NotificationWarning,
			Message:    fmt.Sprintf("Dobili ste upozorenje: %s", reason),
		}
		if err := s.notifications.Notify(ctx, notification); err != nil {
			log.Printf("failed to notify warning for user %s: %v", userID, err)
		}
	}

	return nil
}

func (s *moderationService) Timeout(ctx context.Context, adminID, userID uuid.UUID, hours int, reason string) error {
	if !validTimeout(hours) {
		return fmt.Errorf("nedozvoljeno trajanje ograničenja: %w", apperror.ErrBadRequest)
	}

	user, err := s.target(ctx, adminID, userID)
	if err != nil {
		return err
	}

	if user.Role == entity.RoleAdmin {
		return fmt.Errorf("administratora nije moguće ograničiti: %w", apperror.ErrForbidden)
	}

	until := time.Now().Add(time.Duration(hours) * time.Hour)
	if err := s.userRepo.UpdateModeration(ctx, userID, map[string]any{
		"timeout_until":  until,
		"timeout_reason": reason,
	}); err != nil {
		return err
	}

	if s.notifications != nil {
		notification := &entity.Notification{
			UserID:     user.ID,
			ActorID:    adminID,
			EntityID:   user.ID,
			EntityType: "user",
			Type:       entity.NotificationWarning,
			Message:    fmt.Sprintf("Privremeno vam je onemogućeno objavljivanje (%d h): %s", hours, reason),
		}
		if err := s.notifications.Notify(ctx, notification); err != nil {
			log.Printf("failed to notify timeout for user %s: %v", userID, err)
		}
	}

	return nil
}

func (s *moderationService) RemoveTimeout(ctx context.Context, adminID, userID uuid.UUID) error {
	if _, err := s.target(ctx, adminID, userID); err != nil {
		return err
	}

	return s.userRepo.UpdateModeration(ctx, userID, map[string]any{
		"timeout_until":  nil,
		"timeout_reason": nil,
	})
}

func (s *moderationService) ListUsers(ctx context.Context, search string, page, limit int) ([]*entity.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.userRepo.FindAll(ctx, search, (page-1)*limit, limit)
}
