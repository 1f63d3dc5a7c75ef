package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	topicrepository "skripta.hr/forum/internal/modules/topic/repository"
	"skripta.hr/forum/internal/outbox"
)

const (
	// One viewer counts once per topic within this window.
	dedupeWindow  = 30 * time.Minute
	flushInterval = 15 * time.Second
	pendingSetKey = "views:pending"
)

type ViewService interface {
	// RecordView counts the view unless the same viewer hit the topic within
	// the dedupe window. Anonymous viewers are keyed by IP.
	RecordView(ctx context.Context, topicID uuid.UUID, userID *uuid.UUID, ipAddress string)
	// StartFlusher runs the counter flush loop until the context is cancelled.
	StartFlusher(ctx context.Context)
	// Flush writes buffered counts to the topics table.
	Flush(ctx context.Context) error
	// PersistViewRecord writes the audit row; called from the outbox worker.
	PersistViewRecord(ctx context.Context, topicID uuid.UUID, userID *uuid.UUID, ipAddress string) error
}

type viewService struct {
	db        *gorm.DB
	redis     *redis.Client
	topicRepo topicrepository.TopicRepository
	enqueuer  outbox.Enqueuer
}

func NewViewService(db *gorm.DB, redisClient *redis.Client, topicRepo topicrepository.TopicRepository, enqueuer outbox.Enqueuer) ViewService {
	return &viewService{db: db, redis: redisClient, topicRepo: topicRepo, enqueuer: enqueuer}
}

func (s *viewService) RecordView(ctx context.Context, topicID uuid.UUID, userID *uuid.UUID, ipAddress string) {
	// Without redis fall back to a direct increment, no dedupe.
	if s.redis == nil {
		if err := s.topicRepo.IncrementViewCount(ctx, topicID, 1); err != nil {
			log.Printf("failed to increment view count for topic %s: %v", topicID, err)
		}
		return
	}

	viewer := ipAddress
	if userID != nil {
		viewer = userID.String()
	}

	dedupeKey := fmt.Sprintf("views:seen:%s:%s", topicID, viewer)
	isNew, err := s.redis.SetNX(ctx, dedupeKey, "1", dedupeWindow).Result()
	if err != nil {
		log.Printf("failed to dedupe view for topic %s: %v", topicID, err)
		return
	}
	if !isNew {
		return
	}

	counterKey := fmt.Sprintf("views:count:%s", topicID)
	pipe := s.redis.Pipeline()
	pipe.Incr(ctx, counterKey)
	pipe.SAdd(ctx, pendingSetKey, topicID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("failed to buffer view for topic %s: %v", topicID, err)
		return
	}

	if s.enqueuer != nil {
		payload := map[string]any{
			"topic_id":   topicID,
			"ip_address": ipAddress,
		}
		if userID != nil {
			payload["user_id"] = userID
		}
		if err := s.enqueuer.Enqueue(ctx, outbox.TypeViewRecord, payload); err != nil {
			log.Printf("failed to enqueue view record for topic %s: %v", topicID, err)
		}
	}
}

func (s *viewService) StartFlusher(ctx context.Context) {
	if s.redis == nil {
		return
	}

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Flush(ctx); err != nil {
				log.Printf("view flush failed: %v", err)
			}
		case <-ctx.Done():
			// final flush on shutdown
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := s.Flush(flushCtx); err != nil {
				log.Printf("final view flush failed: %v", err)
			}
			cancel()
			return
		}
	}
}

func (s *viewService) Flush(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}

	topicIDs, err := s.redis.SMembers(ctx, pendingSetKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read pending views: %w", err)
	}

	for _, raw := range topicIDs {
		topicID, err := uuid.Parse(raw)
		if err != nil {
			s.redis.SRem(ctx, pendingSetKey, raw)
			continue
		}

		counterKey := fmt.Sprintf("views:count:%s", topicID)
		val, err := s.redis.GetDel(ctx, counterKey).Result()
		if err != nil {
			if err != redis.Nil {
				log.Printf("failed to drain view counter for topic %s: %v", topicID, err)
			}
			s.redis.SRem(ctx, pendingSetKey, raw)
			continue
		}

		delta, err := strconv.Atoi(val)
		if err != nil || delta <= 0 {
			s.redis.SRem(ctx, pendingSetKey, raw)
			continue
		}

		if err := s.topicRepo.IncrementViewCount(ctx, topicID, delta); err != nil {
			// put the count back so it is not lost
			s.redis.IncrBy(ctx, counterKey, int64(delta))
			log.Printf("failed to flush %d views for topic %s: %v", delta, topicID, err)
			continue
		}

		s.redis.SRem(ctx, pendingSetKey, raw)
	}

	return nil
}

func (s *viewService) PersistViewRecord(ctx context.Context, topicID uuid.UUID, userID *uuid.UUID, ipAddress string) error {
	view := &entity.TopicView{
		TopicID: topicID,
		UserID:  userID,
	}
	if ipAddress != "" {
		view.IPAddress = &ipAddress
	}
	return s.db.WithContext(ctx).Create(view).Error
}
