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
	"skripta.hr/forum/internal/modules/reply/dto"
	"skripta.hr/forum/internal/modules/reply/repository"
	topicrepository "skripta.hr/forum/internal/modules/topic/repository"
	"skripta.hr/forum/internal/outbox"
	"skripta.hr/forum/internal/spam"
	"skripta.hr/forum/pkg/apperror"
	"skripta.hr/forum/pkg/ratelimiter"
)

type ReplyService interface {
	CreateReply(ctx context.Context, authorID, topicID uuid.UUID, req dto.CreateReplyRequest) (*entity.Reply, error)
	UpdateReply(ctx context.Context, userID, replyID uuid.UUID, isAdmin bool, req dto.UpdateReplyRequest) (*entity.Reply, error)
	DeleteReply(ctx context.Context, userID, replyID uuid.UUID, isAdmin bool) error
	MarkSolution(ctx context.Context, userID, replyID uuid.UUID, isAdmin bool) error
	UnmarkSolution(ctx context.Context, userID, replyID uuid.UUID, isAdmin bool) error
	Vote(ctx context.Context, userID, replyID uuid.UUID, voteType int) (*entity.Reply, error)
}

type replyService struct {
	repo          repository.ReplyRepository
	topicRepo     topicrepository.TopicRepository
	attachments   attachmentservice.AttachmentService
	enqueuer      outbox.Enqueuer
	redis         *redis.Client
	replyCooldown time.Duration
}

func NewReplyService(
	repo repository.ReplyRepository,
	topicRepo topicrepository.TopicRepository,
	attachments attachmentservice.AttachmentService,
	enqueuer outbox.Enqueuer,
	redisClient *redis.Client,
	replyCooldown time.Duration,
) ReplyService {
	return &replyService{
		repo:          repo,
		topicRepo:     topicRepo,
		attachments:   attachments,
		enqueuer:      enqueuer,
		redis:         redisClient,
		replyCooldown: replyCooldown,
	}
}

func (s *replyService) CreateReply(ctx context.Context, authorID, topicID uuid.UUID, req dto.CreateReplyRequest) (*entity.Reply, error) {
	topic, err := s.topicRepo.FindByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("tema nije pronađena: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if topic.IsLocked {
		return nil, fmt.Errorf("tema je zaključana: %w", apperror.ErrTopicLocked)
	}

	allowed, err := ratelimiter.CheckAndSetRateLimit(ctx, s.redis, authorID, ratelimiter.ScopeReply, s.replyCooldown)
	if err != nil {
		return nil, err
	}
	if !allowed {
		ttl, _ := ratelimiter.GetRateLimitTTL(ctx, s.redis, authorID, ratelimiter.ScopeReply)
		return nil, &ratelimiter.RateLimitError{
			Message:    "prebrzo objavljujete, pričekajte prije novog odgovora",
			RetryAfter: ttl,
		}
	}

	reply, err := s.buildModerated(ctx, authorID, topicID, req)
	if err != nil {
		// release the cooldown slot so the rejection does not also throttle
		if clearErr := ratelimiter.ClearRateLimit(ctx, s.redis, authorID, ratelimiter.ScopeReply); clearErr != nil {
			log.Printf("failed to clear reply rate limit for %s: %v", authorID, clearErr)
		}
		return nil, err
	}

	now := time.Now()
	err = s.repo.CreateInTx(ctx, reply, func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Topic{}).
			Where("id = ?", topicID).
			Updates(map[string]any{
				"reply_count":   gorm.Expr("reply_count + 1"),
				"last_reply_at": now,
				"last_reply_by": authorID,
			}).Error; err != nil {
			return err
		}
		if s.enqueuer != nil {
			if err := s.enqueuer.EnqueueTx(tx, outbox.TypeMentions, map[string]any{
				"content":     req.Content,
				"actor_id":    authorID,
				"entity_id":   reply.ID,
				"entity_slug": topic.Slug,
				"entity_type": "reply",
			}); err != nil {
				return err
			}
			if topic.AuthorID != authorID {
				if err := s.enqueuer.EnqueueTx(tx, outbox.TypeReplyNotify, map[string]any{
					"recipient_id": topic.AuthorID,
					"actor_id":     authorID,
					"topic_id":     topicID,
					"topic_slug":   topic.Slug,
					"reply_id":     reply.ID,
				}); err != nil {
					return err
				}
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
		if clearErr := ratelimiter.ClearRateLimit(ctx, s.redis, authorID, ratelimiter.ScopeReply); clearErr != nil {
			log.Printf("failed to clear reply rate limit for %s: %v", authorID, clearErr)
		}
		return nil, err
	}

	if s.attachments != nil && len(req.AttachmentIDs) > 0 {
		s.attachments.LinkToReply(ctx, authorID, reply.ID, parseUUIDs(req.AttachmentIDs))
	}

	return s.repo.FindByID(ctx, reply.ID)
}

// buildModerated runs the spam and moderation pipeline and returns the reply
// ready for insert, with censored content and moderation flags applied.
func (s *replyService) buildModerated(ctx context.Context, authorID, topicID uuid.UUID, req dto.CreateReplyRequest) (*entity.Reply, error) {
	if check := spam.DetectSpam(req.Content); check.IsSpam {
		return nil, fmt.Errorf("%s: %w", check.Reason, apperror.ErrSpamDetected)
	}

	recent, err := s.recentPosts(ctx, authorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if check := spam.DetectDuplicate(req.Content, recent, spam.DuplicateWindow, now); check.IsSpam {
		return nil, fmt.Errorf("%s: %w", check.Reason, apperror.ErrDuplicateContent)
	}
	if check := spam.DetectRapidPosting(recent, spam.MaxTopicsPerMin, now); check.IsSpam {
		return nil, fmt.Errorf("%s: %w", check.Reason, apperror.ErrSpamDetected)
	}

	moderated := spam.Moderate("", req.Content)
	if !moderated.Approved {
		return nil, fmt.Errorf("%s: %w", moderated.Reason, apperror.ErrSpamDetected)
	}

	reply := &entity.Reply{
		TopicID:          topicID,
		AuthorID:         authorID,
		Content:          spam.SanitizeHTML(moderated.Content),
		ModerationStatus: entity.ModerationApproved,
	}

	if moderated.Severity == spam.SeverityLow {
		reply.ModerationStatus = entity.ModerationFlagged
	}

	if req.ParentReplyID != nil {
		parentID, err := uuid.Parse(*req.ParentReplyID)
		if err != nil {
			return nil, fmt.Errorf("neispravan nadređeni odgovor: %w", apperror.ErrBadRequest)
		}
		parent, err := s.repo.FindByID(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("nadređeni odgovor nije pronađen: %w", apperror.ErrNotFound)
		}
		if parent.TopicID != topicID {
			return nil, fmt.Errorf("nadređeni odgovor pripada drugoj temi: %w", apperror.ErrBadRequest)
		}
		reply.ParentReplyID = &parentID
	}

	return reply, nil
}

func (s *replyService) recentPosts(ctx context.Context, authorID uuid.UUID) ([]spam.RecentPost, error) {
	replies, err := s.repo.FindRecentByAuthor(ctx, authorID, 10)
	if err != nil {
		return nil, err
	}
	posts := make([]spam.RecentPost, 0, len(replies))
	for _, r := range replies {
		posts = append(posts, spam.RecentPost{Content: r.Content, CreatedAt: r.CreatedAt})
	}
	return posts, nil
}

func (s *replyService) UpdateReply(ctx context.Context, userID, replyID uuid.UUID, isAdmin bool, req dto.UpdateReplyRequest) (*entity.Reply, error) {
	reply, err := s.repo.FindByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("odgovor nije pronađen: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if reply.AuthorID != userID && !isAdmin {
		return nil, fmt.Errorf("nemate pravo uređivati ovaj odgovor: %w", apperror.ErrForbidden)
	}

	if check := spam.DetectSpam(req.Content); check.IsSpam {
		return nil, fmt.Errorf("%s: %w", check.Reason, apperror.ErrSpamDetected)
	}

	moderated := spam.Moderate("", req.Content)
	if !moderated.Approved {
		return nil, fmt.Errorf("%s: %w", moderated.Reason, apperror.ErrSpamDetected)
	}

	now := time.Now()
	reply.Content = spam.SanitizeHTML(moderated.Content)
	reply.EditedAt = &now
	if moderated.Severity == spam.SeverityLow {
		reply.ModerationStatus = entity.ModerationFlagged
	}

	if err := s.repo.Update(ctx, reply); err != nil {
		return nil, err
	}

	return reply, nil
}

func (s *replyService) DeleteReply(ctx context.Context, userID, replyID uuid.UUID, isAdmin bool) error {
	reply, err := s.repo.FindByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("odgovor nije pronađen: %w", apperror.ErrNotFound)
		}
		return err
	}

	if reply.AuthorID != userID && !isAdmin {
		return fmt.Errorf("nemate pravo obrisati ovaj odgovor: %w", apperror.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, replyID); err != nil {
		return err
	}

	if err := s.topicRepo.DecrementReplyCount(ctx, reply.TopicID); err != nil {
		log.Printf("failed to decrement reply count for topic %s: %v", reply.TopicID, err)
	}

	if reply.IsSolution {
		if err := s.topicRepo.SetHasSolution(ctx, reply.TopicID, false); err != nil {
			log.Printf("failed to clear solution flag for topic %s: %v", reply.TopicID, err)
		}
	}

	return nil
}

// MarkSolution is allowed for the topic author and admins. At most one reply
// per topic carries the flag; marking another reply moves it.
func (s *replyService) MarkSolution(ctx context.Context, userID, replyID uuid.UUID, isAdmin bool) error {
	reply, err := s.repo.FindByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("odgovor nije pronađen: %w", apperror.ErrNotFound)
		}
		return err
	}

	topic, err := s.topicRepo.FindByID(ctx, reply.TopicID)
	if err != nil {
		return err
	}

	if topic.AuthorID != userID && !isAdmin {
		return fmt.Errorf("samo autor teme može označiti rješenje: %w", apperror.ErrForbidden)
	}

	if err := s.repo.SetSolution(ctx, reply.TopicID, replyID); err != nil {
		return err
	}

	if err := s.topicRepo.SetHasSolution(ctx, reply.TopicID, true); err != nil {
		return err
	}

	if s.enqueuer != nil && reply.AuthorID != userID {
		if err := s.enqueuer.Enqueue(ctx, outbox.TypeSolutionNotify, map[string]any{
			"recipient_id": reply.AuthorID,
			"actor_id":     userID,
			"topic_id":     topic.ID,
			"topic_slug":   topic.Slug,
			"reply_id":     replyID,
		}); err != nil {
			log.Printf("failed to enqueue solution notification: %v", err)
		}
	}

	return nil
}

func (s *replyService) UnmarkSolution(ctx context.Context, userID, replyID uuid.UUID, isAdmin bool) error {
	reply, err := s.repo.FindByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("odgovor nije pronađen: %w", apperror.ErrNotFound)
		}
		return err
	}

	topic, err := s.topicRepo.FindByID(ctx, reply.TopicID)
	if err != nil {
		return err
	}

	if topic.AuthorID != userID && !isAdmin {
		return fmt.Errorf("samo autor teme može ukloniti rješenje: %w", apperror.ErrForbidden)
	}

	if err := s.repo.ClearSolution(ctx, reply.TopicID); err != nil {
		return err
	}

	return s.topicRepo.SetHasSolution(ctx, reply.TopicID, false)
}

func (s *replyService) Vote(ctx context.Context, userID, replyID uuid.UUID, voteType int) (*entity.Reply, error) {
	reply, err := s.repo.FindByID(ctx, replyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("odgovor nije pronađen: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if reply.AuthorID == userID {
		return nil, fmt.Errorf("ne možete glasati za vlastiti odgovor: %w", apperror.ErrBadRequest)
	}

	if voteType == 0 {
		if err := s.repo.RemoveVote(ctx, userID, replyID); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.ApplyVote(ctx, userID, replyID, voteType); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, replyID)
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
