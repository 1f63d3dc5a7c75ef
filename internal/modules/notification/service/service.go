package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/notification/repository"
	userrepository "skripta.hr/forum/internal/modules/user/repository"
)

var mentionPattern = regexp.MustCompile(`@([a-zA-Z0-9_.-]{3,30})`)

type NotificationService interface {
	Notify(ctx context.Context, notification *entity.Notification) error
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]entity.Notification, int64, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, userID, notificationID uuid.UUID) error
	// ProcessMentions parses @username tokens out of content and notifies each
	// mentioned user. Unknown usernames and self mentions are skipped.
	ProcessMentions(ctx context.Context, content string, actorID, entityID uuid.UUID, entitySlug, entityType string) error
}

type notificationService struct {
	repo     repository.NotificationRepository
	userRepo userrepository.UserRepository
	redis    *redis.Client
}

func NewNotificationService(repo repository.NotificationRepository, userRepo userrepository.UserRepository, redisClient *redis.Client) NotificationService {
	return &notificationService{repo: repo, userRepo: userRepo, redis: redisClient}
}

func (s *notificationService) Notify(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}
	s.publish(ctx, notification)
	return nil
}

// publish pushes the notification onto the user's redis channel so connected
// websocket clients get it without polling.
func (s *notificationService) publish(ctx context.Context, notification *entity.Notification) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		log.Printf("failed to marshal notification %s: %v", notification.ID, err)
		return
	}
	if err := s.redis.Publish(ctx, ChannelFor(notification.UserID), payload).Err(); err != nil {
		log.Printf("failed to publish notification %s: %v", notification.ID, err)
	}
}

// ChannelFor returns the redis pub/sub channel for a user's notifications.
func ChannelFor(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:user:%s", userID)
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, limit int) ([]entity.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.FindByUser(ctx, userID, unreadOnly, (page-1)*limit, limit)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *notificationService) Delete(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, notificationID)
}

func (s *notificationService) ProcessMentions(ctx context.Context, content string, actorID, entityID uuid.UUID, entitySlug, entityType string) error {
	usernames := ExtractMentions(content)
	if len(usernames) == 0 {
		return nil
	}

	users, err := s.userRepo.FindByUsernames(ctx, usernames)
	if err != nil {
		return err
	}

	actor, err := s.userRepo.FindByID(ctx, actorID.String())
	if err != nil {
		return err
	}

	for _, user := range users {
		if user.ID == actorID {
			continue
		}
		notification := &entity.Notification{
			UserID:     user.ID,
			ActorID:    actorID,
			EntityID:   entityID,
			EntitySlug: entitySlug,
			EntityType: entityType,
			Type:       entity.NotificationMention,
			Message:    fmt.Sprintf("%s vas je spomenuo u raspravi", actor.Username),
		}
		if err := s.Notify(ctx, notification); err != nil {
			return err
		}
	}

	return nil
}

// ExtractMentions returns the deduplicated @usernames found in content.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			usernames = append(usernames, m[1])
		}
	}
	return usernames
}
