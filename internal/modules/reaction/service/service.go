package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/reaction/repository"
	"skripta.hr/forum/internal/outbox"
	"skripta.hr/forum/pkg/apperror"
)

const reactionCacheTTL = 5 * time.Minute

var allowedEmojis = map[string]bool{
	"👍": true,
	"❤️": true,
	"😂": true,
	"🎉": true,
	"🤔": true,
	"😢": true,
}

type ToggleResult struct {
	Reacted bool             `json:"reacted"`
	Emoji   *string          `json:"emoji"`
	Counts  map[string]int64 `json:"counts"`
}

type ReactionService interface {
	ToggleTopicReaction(ctx context.Context, userID, topicID uuid.UUID, emoji string) (*ToggleResult, error)
	ToggleReplyReaction(ctx context.Context, userID, replyID uuid.UUID, emoji string) (*ToggleResult, error)
	GetTopicCounts(ctx context.Context, topicID uuid.UUID) (map[string]int64, error)
	GetReplyCounts(ctx context.Context, replyID uuid.UUID) (map[string]int64, error)
}

type reactionService struct {
	repo     repository.ReactionRepository
	redis    *redis.Client
	enqueuer outbox.Enqueuer
}

func NewReactionService(repo repository.ReactionRepository, redisClient *redis.Client, enqueuer outbox.Enqueuer) ReactionService {
	return &reactionService{repo: repo, redis: redisClient, enqueuer: enqueuer}
}

func (s *reactionService) ToggleTopicReaction(ctx context.Context, userID, topicID uuid.UUID, emoji string) (*ToggleResult, error) {
	if !allowedEmojis[emoji] {
		return nil, fmt.Errorf("nepodržan emoji: %w", apperror.ErrBadRequest)
	}

	existing, err := s.repo.FindByUserAndTopic(ctx, userID, topicID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reacted, activeEmoji, err := s.toggle(ctx, existing, emoji, func() error {
		return s.repo.Create(ctx, &entity.Reaction{
			UserID:  userID,
			TopicID: &topicID,
			Emoji:   emoji,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, topicCacheKey(topicID))

	counts, err := s.GetTopicCounts(ctx, topicID)
	if err != nil {
		return nil, err
	}

	if reacted {
		s.notifyReaction(ctx, userID, &topicID, nil, emoji)
	}

	return &ToggleResult{Reacted: reacted, Emoji: activeEmoji, Counts: counts}, nil
}

func (s *reactionService) ToggleReplyReaction(ctx context.Context, userID, replyID uuid.UUID, emoji string) (*ToggleResult, error) {
	if !allowedEmojis[emoji] {
		return nil, fmt.Errorf("nepodržan emoji: %w", apperror.ErrBadRequest)
	}

	existing, err := s.repo.FindByUserAndReply(ctx, userID, replyID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	reacted, activeEmoji, err := s.toggle(ctx, existing, emoji, func() error {
		return s.repo.Create(ctx, &entity.Reaction{
			UserID:  userID,
			ReplyID: &replyID,
			Emoji:   emoji,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, replyCacheKey(replyID))

	counts, err := s.GetReplyCounts(ctx, replyID)
	if err != nil {
		return nil, err
	}

	if reacted {
		s.notifyReaction(ctx, userID, nil, &replyID, emoji)
	}

	return &ToggleResult{Reacted: reacted, Emoji: activeEmoji, Counts: counts}, nil
}

// toggle implements the three-way semantics: same emoji removes the reaction,
// a different emoji replaces it, no prior reaction creates one.
func (s *reactionService) toggle(ctx context.Context, existing *entity.Reaction, emoji string, create func() error) (bool, *string, error) {
	if existing == nil {
		if err := create(); err != nil {
			return false, nil, err
		}
		return true, &emoji, nil
	}

	if existing.Emoji == emoji {
		if err := s.repo.Delete(ctx, existing.ID); err != nil {
			return false, nil, err
		}
		return false, nil, nil
	}

	if err := s.repo.UpdateEmoji(ctx, existing.ID, emoji); err != nil {
		return false, nil, err
	}
	return true, &emoji, nil
}

func (s *reactionService) GetTopicCounts(ctx context.Context, topicID uuid.UUID) (map[string]int64, error) {
	return s.countsCached(ctx, topicCacheKey(topicID), func() ([]repository.EmojiCount, error) {
		return s.repo.CountByTopic(ctx, topicID)
	})
}

func (s *reactionService) GetReplyCounts(ctx context.Context, replyID uuid.UUID) (map[string]int64, error) {
	return s.countsCached(ctx, replyCacheKey(replyID), func() ([]repository.EmojiCount, error) {
		return s.repo.CountByReply(ctx, replyID)
	})
}

func (s *reactionService) countsCached(ctx context.Context, key string, fetch func() ([]repository.EmojiCount, error)) (map[string]int64, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			var counts map[string]int64
			if jsonErr := json.Unmarshal([]byte(cached), &counts); jsonErr == nil {
				return counts, nil
			}
		}
	}

	rows, err := fetch()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Emoji] = row.Count
	}

	if s.redis != nil {
		if data, err := json.Marshal(counts); err == nil {
			if err := s.redis.Set(ctx, key, data, reactionCacheTTL).Err(); err != nil {
				log.Printf("failed to cache reaction counts for %s: %v", key, err)
			}
		}
	}

	return counts, nil
}

func (s *reactionService) invalidateCache(ctx context.Context, key string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		log.Printf("failed to invalidate reaction cache %s: %v", key, err)
	}
}

func (s *reactionService) notifyReaction(ctx context.Context, actorID uuid.UUID, topicID, replyID *uuid.UUID, emoji string) {
	if s.enqueuer == nil {
		return
	}
	payload := map[string]any{
		"actor_id": actorID,
		"emoji":    emoji,
	}
	if topicID != nil {
		payload["topic_id"] = topicID
	}
	if replyID != nil {
		payload["reply_id"] = replyID
	}
	if err := s.enqueuer.Enqueue(ctx, outbox.TypeReactionNotify, payload); err != nil {
		log.Printf("failed to enqueue reaction notification: %v", err)
	}
}

func topicCacheKey(topicID uuid.UUID) string {
	return fmt.Sprintf("reactions:topic:%s", topicID)
}

func replyCacheKey(replyID uuid.UUID) string {
	return fmt.Sprintf("reactions:reply:%s", replyID)
}
