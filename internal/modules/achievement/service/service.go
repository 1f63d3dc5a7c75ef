package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/achievement/repository"
	notificationservice "skripta.hr/forum/internal/modules/notification/service"
	replyrepository "skripta.hr/forum/internal/modules/reply/repository"
	topicrepository "skripta.hr/forum/internal/modules/topic/repository"
)

const (
	kindTopics    = "topics"
	kindReplies   = "replies"
	kindSolutions = "solutions"
)

// Achievement definitions. Codes are stable identifiers stored per award;
// thresholds are checked against live counts.
type definition struct {
	Code      string
	Name      string
	Kind      string
	Threshold int64
}

var definitions = []definition{
	{"first_topic", "Prva tema", kindTopics, 1},
	{"topic_10", "Pokretač rasprava", kindTopics, 10},
	{"topic_50", "Stup zajednice", kindTopics, 50},
	{"first_reply", "Prvi odgovor", kindReplies, 1},
	{"reply_25", "Pomagač", kindReplies, 25},
	{"reply_100", "Veteran", kindReplies, 100},
	{"first_solution", "Prvo rješenje", kindSolutions, 1},
	{"solution_10", "Mentor", kindSolutions, 10},
}

type AchievementService interface {
	// CheckAndAward evaluates every achievement for the user and awards the
	// ones newly earned. Called from the outbox worker after writes.
	CheckAndAward(ctx context.Context, userID uuid.UUID) ([]string, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.AchievementAward, error)
}

type achievementService struct {
	repo          repository.AchievementRepository
	topicRepo     topicrepository.TopicRepository
	replyRepo     replyrepository.ReplyRepository
	notifications notificationservice.NotificationService
}

func NewAchievementService(
	repo repository.AchievementRepository,
	topicRepo topicrepository.TopicRepository,
	replyRepo replyrepository.ReplyRepository,
	notifications notificationservice.NotificationService,
) AchievementService {
	return &achievementService{
		repo:          repo,
		topicRepo:     topicRepo,
		replyRepo:     replyRepo,
		notifications: notifications,
	}
}

func (s *achievementService) CheckAndAward(ctx context.Context, userID uuid.UUID) ([]string, error) {
	held, err := s.repo.FindCodesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	heldSet := make(map[string]bool, len(held))
	for _, code := range held {
		heldSet[code] = true
	}

	var awarded []string
	counts := make(map[string]int64)

	for _, def := range definitions {
		if heldSet[def.Code] {
			continue
		}

		count, ok := counts[def.Kind]
		if !ok {
			count, err = s.count(ctx, def.Kind, userID)
			if err != nil {
				return awarded, err
			}
			counts[def.Kind] = count
		}

		if count < def.Threshold {
			continue
		}

		isNew, err := s.repo.Award(ctx, userID, def.Code)
		if err != nil {
			return awarded, err
		}
		if !isNew {
			continue
		}

		awarded = append(awarded, def.Code)

		if s.notifications != nil {
			notification := &entity.Notification{
				UserID:     userID,
				ActorID:    userID,
				EntityID:   userID,
				EntityType: "achievement",
				Type:       entity.NotificationAchievement,
				Message:    fmt.Sprintf("Osvojili ste značku: %s", def.Name),
			}
			if err := s.notifications.Notify(ctx, notification); err != nil {
				log.Printf("failed to notify achievement %s for user %s: %v", def.Code, userID, err)
			}
		}
	}

	return awarded, nil
}

func (s *achievementService) count(ctx context.Context, kind string, userID uuid.UUID) (int64, error) {
	switch kind {
	case kindTopics:
		return s.topicRepo.CountByAuthor(ctx, userID)
	case kindReplies:
		return s.replyRepo.CountByAuthor(ctx, userID)
	case kindSolutions:
		return s.replyRepo.CountSolutionsByAuthor(ctx, userID)
	default:
		return 0, fmt.Errorf("unknown achievement kind %q", kind)
	}
}

func (s *achievementService) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.AchievementAward, error) {
	return s.repo.FindByUser(ctx, userID)
}
