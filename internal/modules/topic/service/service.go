package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	attachmentservice "skripta.hr/forum/internal/modules/attachment/service"
	categoryrepository "skripta.hr/forum/internal/modules/category/repository"
	categoryservice "skripta.hr/forum/internal/modules/category/service"
	draftrepository "skripta.hr/forum/internal/modules/draft/repository"
	pollservice "skripta.hr/forum/internal/modules/poll/service"
	"skripta.hr/forum/internal/modules/topic/dto"
	"skripta.hr/forum/internal/modules/topic/repository"
	"skripta.hr/forum/internal/outbox"
	"skripta.hr/forum/internal/spam"
	"skripta.hr/forum/pkg/apperror"
	pkgdto "skripta.hr/forum/pkg/dto"
	"skripta.hr/forum/pkg/ratelimiter"
)

type TopicService interface {
	CreateTopic(ctx context.Context, authorID uuid.UUID, req dto.CreateTopicRequest) (*dto.CreateTopicResponse, error)
	GetTopics(ctx context.Context, filter pkgdto.TopicFilter) ([]*entity.Topic, *pkgdto.PaginationMeta, error)
	UpdateTopic(ctx context.Context, userID, topicID uuid.UUID, isAdmin bool, req dto.UpdateTopicRequest) (*entity.Topic, error)
	DeleteTopic(ctx context.Context, userID, topicID uuid.UUID, isAdmin bool) error
	SetPinned(ctx context.Context, topicID uuid.UUID, pinned bool) error
	SetLocked(ctx context.Context, topicID uuid.UUID, locked bool) error
}

type topicService struct {
	repo          repository.TopicRepository
	categoryRepo  categoryrepository.CategoryRepository
	draftRepo     draftrepository.DraftRepository
	attachments   attachmentservice.AttachmentService
	polls         pollservice.PollService
	enqueuer      outbox.Enqueuer
	redis         *redis.Client
	topicCooldown time.Duration
}

func NewTopicService(
	repo repository.TopicRepository,
	categoryRepo categoryrepository.CategoryRepository,
	draftRepo draftrepository.DraftRepository,
	attachments attachmentservice.AttachmentService,
	polls pollservice.PollService,
	enqueuer outbox.Enqueuer,
	redisClient *redis.Client,
	topicCooldown time.Duration,
) TopicService {
	return &topicService{
		repo:          repo,
		categoryRepo:  categoryRepo,
		draftRepo:     draftRepo,
		attachments:   attachments,
		polls:         polls,
		enqueuer:      enqueuer,
		redis:         redisClient,
		topicCooldown: topicCooldown,
	}
}

// CreateTopic runs the full publish pipeline: cooldown, spam checks against
// the author's recent topics, moderation, then a single transaction that
// writes the topic, tags, outbox intents and consumes the draft.
func (s *topicService) CreateTopic(ctx context.Context, authorID uuid.UUID, req dto.CreateTopicRequest) (*dto.CreateTopicResponse, error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("neispravna kategorija: %w", apperror.ErrBadRequest)
	}

	if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("kategorija nije pronađena: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redis, authorID, ratelimiter.ScopeTopic, s.topicCooldown)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redis, authorID, ratelimiter.ScopeTopic)
		return nil, &ratelimiter.RateLimitError{
			Message:    "prebrzo objavljujete, pričekajte prije nove teme",
			RetryAfter: ttl,
		}
	}

	topic, err := s.buildModerated(ctx, authorID, categoryID, req)
	if err != nil {
		if clearErr := ratelimiter.ClearRateLimit(ctx, s.redis, authorID, ratelimiter.ScopeTopic); clearErr != nil {
			log.Printf("failed to clear topic rate limit for %s: %v", authorID, clearErr)
		}
		return nil, err
	}

	tagIDs := parseUUIDs(req.TagIDs)

	var draftID *uuid.UUID
	if req.DraftID != nil {
		if id, err := uuid.Parse(*req.DraftID); err == nil {
			draftID = &id
		}
	}

	err = s.repo.CreateInTx(ctx, topic, tagIDs, func(tx *gorm.DB) error {
		if draftID != nil {
			if err := s.draftRepo.DeleteTx(tx, *draftID, authorID); err != nil {
				return err
			}
		}
		if s.enqueuer != nil {
			if err := s.enqueuer.EnqueueTx(tx, outbox.TypeSearchIndex, map[string]any{
				"topic_id": topic.ID,
			}); err != nil {
				return err
			}
			if err := s.enqueuer.EnqueueTx(tx, outbox.TypeMentions, map[string]any{
				"content":     req.Content,
				"actor_id":    authorID,
				"entity_id":   topic.ID,
				"entity_slug": topic.Slug,
				"entity_type": "topic",
			}); err != nil {
				return err
			}
			if err := s.enqueuer.EnqueueTx(tx, outbox.TypeAchievementCheck, map[string]any{
				"user_id": authorID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if clearErr := ratelimiter.ClearRateLimit(ctx, s.redis, authorID, ratelimiter.ScopeTopic); clearErr != nil {
			log.Printf("failed to clear topic rate limit for %s: %v", authorID, clearErr)
		}
		return nil, err
	}

	if s.attachments != nil && len(req.AttachmentIDs) > 0 {
		s.attachments.LinkToTopic(ctx, authorID, topic.ID, parseUUIDs(req.AttachmentIDs))
	}

	if s.polls != nil && req.Poll != nil {
		_, err := s.polls.CreateForTopic(ctx, topic.ID, pollservice.CreatePollInput{
			Question:             req.Poll.Question,
			Options:              req.Poll.Options,
			AllowMultipleChoices: req.Poll.AllowMultipleChoices,
			ExpiresAt:            req.Poll.ExpiresAt,
		})
		if err != nil {
			log.Printf("failed to create poll for topic %s: %v", topic.ID, err)
		}
	}

	return &dto.CreateTopicResponse{
		ID:   topic.ID.String(),
		Slug: topic.Slug,
	}, nil
}

func (s *topicService) buildModerated(ctx context.Context, authorID, categoryID uuid.UUID, req dto.CreateTopicRequest) (*entity.Topic, error) {
	if check := spam.DetectSpam(req.Title); check.IsSpam {
		return nil, fmt.Errorf("%s: %w", check.Reason, apperror.ErrSpamDetected)
	}
	if check := spam.DetectSpam(req.Content); check.IsSpam {
		return nil, fmt.Errorf("%s: %w", check.Reason, apperror.ErrSpamDetected)
	}

	recentTopics, err := s.repo.FindRecentByAuthor(ctx, authorID, 10)
	if err != nil {
		return nil, err
	}
	recent := make([]spam.RecentPost, 0, len(recentTopics))
	for _, t := range recentTopics {
		recent = append(recent, spam.RecentPost{Content: t.Content, CreatedAt: t.CreatedAt})
	}

	now := time.Now()
	if check := spam.DetectDuplicate(req.Content, recent, spam.DuplicateWindow, now); check.IsSpam {
		return nil, fmt.Errorf("%s: %w", check.Reason, apperror.ErrDuplicateContent)
	}
	if check := spam.DetectRapidPosting(recent, spam.MaxTopicsPerMin, now); check.IsSpam {
		return nil, fmt.Errorf("%s: %w", check.Reason, apperror.ErrSpamDetected)
	}

	moderated := spam.Moderate(req.Title, req.Content)
	if !moderated.Approved {
		return nil, fmt.Errorf("%s: %w", moderated.Reason, apperror.ErrSpamDetected)
	}

	slug, err := s.uniqueSlug(ctx, moderated.Title)
	if err != nil {
		return nil, err
	}

	topic := &entity.Topic{
		Title:            moderated.Title,
		Slug:             slug,
		Content:          spam.SanitizeHTML(moderated.Content),
		AuthorID:         authorID,
		CategoryID:       &categoryID,
		ModerationStatus: entity.ModerationApproved,
	}

	if moderated.Severity == spam.SeverityLow {
		topic.ModerationStatus = entity.ModerationFlagged
		topic.AutoFlagged = true
	}

	return topic, nil
}

// uniqueSlug appends a short random suffix when the base slug is taken.
func (s *topicService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := categoryservice.Slugify(title)
	if base == "" {
		base = "tema"
	}

	_, err := s.repo.FindBySlug(ctx, base)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return base, nil
	case err != nil:
		return "", err
	}

	return fmt.Sprintf("%s-%s", base, uuid.New().String()[:8]), nil
}

func (s *topicService) GetTopics(ctx context.Context, filter pkgdto.TopicFilter) ([]*entity.Topic, *pkgdto.PaginationMeta, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 50 {
		limit = 20
	}

	var categoryID *uuid.UUID
	if filter.CategoryID != "" {
		id, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, nil, fmt.Errorf("neispravna kategorija: %w", apperror.ErrBadRequest)
		}
		categoryID = &id
	}

	topics, total, err := s.repo.FindAll(ctx, categoryID, filter.Search, filter.SortBy, (page-1)*limit, limit)
	if err != nil {
		return nil, nil, err
	}

	meta := &pkgdto.PaginationMeta{
		CurrentPage: page,
		Limit:       limit,
		TotalItems:  total,
		TotalPages:  int((total + int64(limit) - 1) / int64(limit)),
	}

	return topics, meta, nil
}

func (s *topicService) UpdateTopic(ctx context.Context, userID, topicID uuid.UUID, isAdmin bool, req dto.UpdateTopicRequest) (*entity.Topic, error) {
	topic, err := s.repo.FindByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tema nije pronađena: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if topic.AuthorID != userID && !isAdmin {
		return nil, fmt.Errorf("nemate pravo uređivati ovu temu: %w", apperror.ErrForbidden)
	}

	if check := spam.DetectSpam(req.Title); check.IsSpam {
		return nil, fmt.Errorf("%s: %w", check.Reason, apperror.ErrSpamDetected)
	}
	if check := spam.DetectSpam(req.Content); check.IsSpam {
		return nil, fmt.Errorf("%s: %w", check.Reason, apperror.ErrSpamDetected)
	}

	moderated := spam.Moderate(req.Title, req.Content)
	if !moderated.Approved {
		return nil, fmt.Errorf("%s: %w", moderated.Reason, apperror.ErrSpamDetected)
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("neispravna kategorija: %w", apperror.ErrBadRequest)
	}

	now := time.Now()
	topic.Title = moderated.Title
	topic.Content = spam.SanitizeHTML(moderated.Content)
	topic.CategoryID = &categoryID
	topic.EditedAt = &now
	if moderated.Severity == spam.SeverityLow {
		topic.ModerationStatus = entity.ModerationFlagged
		topic.AutoFlagged = true
	}

	if err := s.repo.Update(ctx, topic); err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceTags(ctx, topic, parseUUIDs(req.TagIDs)); err != nil {
		return nil, err
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.Enqueue(ctx, outbox.TypeSearchIndex, map[string]any{
			"topic_id": topic.ID,
		}); err != nil {
			log.Printf("failed to enqueue search reindex for topic %s: %v", topic.ID, err)
		}
	}

	return s.repo.FindByID(ctx, topicID)
}

func (s *topicService) DeleteTopic(ctx context.Context, userID, topicID uuid.UUID, isAdmin bool) error {
	topic, err := s.repo.FindByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("tema nije pronađena: %w", apperror.ErrNotFound)
		}
		return err
	}

	if topic.AuthorID != userID && !isAdmin {
		return fmt.Errorf("nemate pravo obrisati ovu temu: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, topicID); err != nil {
		return err
	}

	if s.enqueuer != nil {
		if err := s.enqueuer.Enqueue(ctx, outbox.TypeSearchDelete, map[string]any{
			"topic_id": topicID,
		}); err != nil {
			log.Printf("failed to enqueue search delete for topic %s: %v", topicID, err)
		}
	}

	return nil
}

func (s *topicService) SetPinned(ctx context.Context, topicID uuid.UUID, pinned bool) error {
	return s.repo.SetPinned(ctx, topicID, pinned)
}

func (s *topicService) SetLocked(ctx context.Context, topicID uuid.UUID, locked bool) error {
	return s.repo.SetLocked(ctx, topicID, locked)
}

func parseUUIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
