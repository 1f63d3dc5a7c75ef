package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
)

type EmojiCount struct {
	Emoji string
	Count int64
}

type ReactionRepository interface {
	FindByUserAndTopic(ctx context.Context, userID, topicID uuid.UUID) (*entity.Reaction, error)
	FindByUserAndReply(ctx context.Context, userID, replyID uuid.UUID) (*entity.Reaction, error)
	Create(ctx context.Context, reaction *entity.Reaction) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateEmoji(ctx context.Context, id uuid.UUID, emoji string) error
	CountByTopic(ctx context.Context, topicID uuid.UUID) ([]EmojiCount, error)
	CountByReply(ctx context.Context, replyID uuid.UUID) ([]EmojiCount, error)
	// FindForTopicPage returns every reaction on the topic and on the given
	// replies; the loader aggregates counts and per-user state in memory.
	FindForTopicPage(ctx context.Context, topicID uuid.UUID, replyIDs []uuid.UUID) ([]entity.Reaction, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) FindByUserAndTopic(ctx context.Context, userID, topicID uuid.UUID) (*entity.Reaction, error) {
	var reaction entity.Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *reactionRepository) FindByUserAndReply(ctx context.Context, userID, replyID uuid.UUID) (*entity.Reaction, error) {
	var reaction entity.Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND reply_id = ?", userID, replyID).
		First(&reaction).Error
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *reactionRepository) Create(ctx context.Context, reaction *entity.Reaction) error {
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *reactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Reaction{}, id).Error
}

func (r *reactionRepository) UpdateEmoji(ctx context.Context, id uuid.UUID, emoji string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Where("id = ?", id).
		Update("emoji", emoji).Error
}

func (r *reactionRepository) CountByTopic(ctx context.Context, topicID uuid.UUID) ([]EmojiCount, error) {
	var counts []EmojiCount
	err := r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Select("emoji, COUNT(*) as count").
		Where("topic_id = ?", topicID).
		Group("emoji").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *reactionRepository) CountByReply(ctx context.Context, replyID uuid.UUID) ([]EmojiCount, error) {
	var counts []EmojiCount
	err := r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Select("emoji, COUNT(*) as count").
		Where("reply_id = ?", replyID).
		Group("emoji").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *reactionRepository) FindForTopicPage(ctx context.Context, topicID uuid.UUID, replyIDs []uuid.UUID) ([]entity.Reaction, error) {
	var reactions []entity.Reaction

	query := r.db.WithContext(ctx)
	if len(replyIDs) > 0 {
		query = query.Where("topic_id = ? OR reply_id IN ?", topicID, replyIDs)
	} else {
		query = query.Where("topic_id = ?", topicID)
	}

	if err := query.Find(&reactions).Error; err != nil {
		return nil, err
	}
	return reactions, nil
}
