package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/reaction/repository"
	"skripta.hr/forum/internal/modules/reaction/service"
	"skripta.hr/forum/pkg/apperror"
)

type fakeReactionRepo struct {
	reactions map[uuid.UUID]*entity.Reaction
}

func newFakeReactionRepo() *fakeReactionRepo {
	return &fakeReactionRepo{reactions: make(map[uuid.UUID]*entity.Reaction)}
}

func (r *fakeReactionRepo) FindByUserAndTopic(ctx context.Context, userID, topicID uuid.UUID) (*entity.Reaction, error) {
	for _, reaction := range r.reactions {
		if reaction.UserID == userID && reaction.TopicID != nil && *reaction.TopicID == topicID {
			return reaction, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeReactionRepo) FindByUserAndReply(ctx context.Context, userID, replyID uuid.UUID) (*entity.Reaction, error) {
	for _, reaction := range r.reactions {
		if reaction.UserID == userID && reaction.ReplyID != nil && *reaction.ReplyID == replyID {
			return reaction, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeReactionRepo) Create(ctx context.Context, reaction *entity.Reaction) error {
	if reaction.ID == uuid.Nil {
		reaction.ID = uuid.New()
	}
	r.reactions[reaction.ID] = reaction
	return nil
}

func (r *fakeReactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.reactions, id)
	return nil
}

func (r *fakeReactionRepo) UpdateEmoji(ctx context.Context, id uuid.UUID, emoji string) error {
	if reaction, ok := r.reactions[id]; ok {
		reaction.Emoji = emoji
	}
	return nil
}

func (r *fakeReactionRepo) CountByTopic(ctx context.Context, topicID uuid.UUID) ([]repository.EmojiCount, error) {
	counts := make(map[string]int64)
	for _, reaction := range r.reactions {
		if reaction.TopicID != nil && *reaction.TopicID == topicID {
			counts[reaction.Emoji]++
		}
	}
	out := make([]repository.EmojiCount, 0, len(counts))
	for emoji, count := range counts {
		out = append(out, repository.EmojiCount{Emoji: emoji, Count: count})
	}
	return out, nil
}

func (r *fakeReactionRepo) CountByReply(ctx context.Context, replyID uuid.UUID) ([]repository.EmojiCount, error) {
	counts := make(map[string]int64)
	for _, reaction := range r.reactions {
		if reaction.ReplyID != nil && *reaction.ReplyID == replyID {
			counts[reaction.Emoji]++
		}
	}
	out := make([]repository.EmojiCount, 0, len(counts))
	for emoji, count := range counts {
		out = append(out, repository.EmojiCount{Emoji: emoji, Count: count})
	}
	return out, nil
}

func (r *fakeReactionRepo) FindForTopicPage(ctx context.Context, topicID uuid.UUID, replyIDs []uuid.UUID) ([]entity.Reaction, error) {
	return nil, nil
}

func TestToggleCreatesReaction(t *testing.T) {
	repo := newFakeReactionRepo()
	svc := service.NewReactionService(repo, nil, nil)
	userID, topicID := uuid.New(), uuid.New()

	result, err := svc.ToggleTopicReaction(context.Background(), userID, topicID, "👍")
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !result.Reacted {
		t.Fatalf("expected reacted=true on first toggle")
	}
	if result.Emoji == nil || *result.Emoji != "👍" {
		t.Fatalf("unexpected active emoji %v", result.Emoji)
	}
	if result.Counts["👍"] != 1 {
		t.Fatalf("unexpected counts %v", result.Counts)
	}
}

func TestToggleSameEmojiRemoves(t *testing.T) {
	repo := newFakeReactionRepo()
	svc := service.NewReactionService(repo, nil, nil)
	userID, topicID := uuid.New(), uuid.New()

	if _, err := svc.ToggleTopicReaction(context.Background(), userID, topicID, "👍"); err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}

	result, err := svc.ToggleTopicReaction(context.Background(), userID, topicID, "👍")
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if result.Reacted {
		t.Fatalf("expected reacted=false after removing the reaction")
	}
	if result.Emoji != nil {
		t.Fatalf("expected no active emoji, got %v", *result.Emoji)
	}
	if len(repo.reactions) != 0 {
		t.Fatalf("reaction row not removed")
	}
}

func TestToggleDifferentEmojiReplaces(t *testing.T) {
	repo := newFakeReactionRepo()
	svc := service.NewReactionService(repo, nil, nil)
	userID, replyID := uuid.New(), uuid.New()

	if _, err := svc.ToggleReplyReaction(context.Background(), userID, replyID, "👍"); err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}

	result, err := svc.ToggleReplyReaction(context.Background(), userID, replyID, "❤️")
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if !result.Reacted {
		t.Fatalf("expected reacted=true after replacing the emoji")
	}
	if result.Emoji == nil || *result.Emoji != "❤️" {
		t.Fatalf("unexpected active emoji %v", result.Emoji)
	}
	if len(repo.reactions) != 1 {
		t.Fatalf("replace must not add a second row, got %d", len(repo.reactions))
	}
	if result.Counts["👍"] != 0 || result.Counts["❤️"] != 1 {
		t.Fatalf("unexpected counts %v", result.Counts)
	}
}

func TestToggleRejectsUnknownEmoji(t *testing.T) {
	svc := service.NewReactionService(newFakeReactionRepo(), nil, nil)

	_, err := svc.ToggleTopicReaction(context.Background(), uuid.New(), uuid.New(), "🦆")
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("expected bad request for unknown emoji, got %v", err)
	}
}
