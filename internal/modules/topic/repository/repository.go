package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
)

type TopicRepository interface {
	// CreateInTx creates the topic, its tag junction rows and any extra rows
	// the callback writes (outbox intents) in one transaction.
	CreateInTx(ctx context.Context, topic *entity.Topic, tagIDs []uuid.UUID, extra func(tx *gorm.DB) error) error
	FindBySlug(ctx context.Context, slug string) (*entity.Topic, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error)
	FindAll(ctx context.Context, categoryID *uuid.UUID, search, sortBy string, offset, limit int) ([]*entity.Topic, int64, error)
	FindRecentByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*entity.Topic, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
	Update(ctx context.Context, topic *entity.Topic) error
	ReplaceTags(ctx context.Context, topic *entity.Topic, tagIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error
	SetLocked(ctx context.Context, id uuid.UUID, locked bool) error
	SetHasSolution(ctx context.Context, id uuid.UUID, hasSolution bool) error
	IncrementViewCount(ctx context.Context, id uuid.UUID, delta int) error
	RecordReply(ctx context.Context, id uuid.UUID, at time.Time, by uuid.UUID) error
	DecrementReplyCount(ctx context.Context, id uuid.UUID) error
	FindTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Tag, error)
	FindTagsByTopicID(ctx context.Context, topicID uuid.UUID) ([]entity.Tag, error)
}

type topicRepository struct {
	db *gorm.DB
}

func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepository{db: db}
}

func (r *topicRepository) CreateInTx(ctx context.Context, topic *entity.Topic, tagIDs []uuid.UUID, extra func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(topic).Error; err != nil {
			return err
		}
		if len(tagIDs) > 0 {
			var tags []entity.Tag
			if err := tx.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
				return err
			}
			if err := tx.Model(topic).Association("Tags").Append(&tags); err != nil {
				return err
			}
		}
		if extra != nil {
			return extra(tx)
		}
		return nil
	})
}

func (r *topicRepository) FindBySlug(ctx context.Context, slug string) (*entity.Topic, error) {
	var topic entity.Topic
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Author.Profile").
		Preload("Category").
		Preload("Tags").
		Preload("Attachments").
		Where("slug = ?", slug).
		First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error) {
	var topic entity.Topic
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Preload("Attachments").
		Where("id = ?", id).
		First(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepository) FindAll(ctx context.Context, categoryID *uuid.UUID, search, sortBy string, offset, limit int) ([]*entity.Topic, int64, error) {
	var topics []*entity.Topic
	var total int64

	query := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Category").
		Preload("Tags")

	if categoryID != nil {
		query = query.Where("category_id = ?", categoryID)
	}

	if search != "" {
		query = query.Where("title ILIKE ? OR content ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Model(&entity.Topic{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Pinned topics always lead the listing
	if sortBy == "popular" {
		query = query.Order("is_pinned DESC").Order("view_count DESC").Order("created_at DESC")
	} else {
		query = query.Order("is_pinned DESC").Order("created_at DESC")
	}

	if err := query.Offset(offset).Limit(limit).Find(&topics).Error; err != nil {
		return nil, 0, err
	}

	return topics, total, nil
}

func (r *topicRepository) FindRecentByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*entity.Topic, error) {
	var topics []*entity.Topic
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *topicRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Topic{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}

func (r *topicRepository) Update(ctx context.Context, topic *entity.Topic) error {
	return r.db.WithContext(ctx).Save(topic).Error
}

func (r *topicRepository) ReplaceTags(ctx context.Context, topic *entity.Topic, tagIDs []uuid.UUID) error {
	var tags []entity.Tag
	if len(tagIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).Model(topic).Association("Tags").Replace(&tags)
}

func (r *topicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Topic{}, id).Error
}

func (r *topicRepository) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	return r.db.WithContext(ctx).Model(&entity.Topic{}).Where("id = ?", id).Update("is_pinned", pinned).Error
}

func (r *topicRepository) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error {
	return r.db.WithContext(ctx).Model(&entity.Topic{}).Where("id = ?", id).Update("is_locked", locked).Error
}

func (r *topicRepository) SetHasSolution(ctx context.Context, id uuid.UUID, hasSolution bool) error {
	return r.db.WithContext(ctx).Model(&entity.Topic{}).Where("id = ?", id).Update("has_solution", hasSolution).Error
}

func (r *topicRepository) IncrementViewCount(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&entity.Topic{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + ?", delta)).Error
}

func (r *topicRepository) RecordReply(ctx context.Context, id uuid.UUID, at time.Time, by uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Topic{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"reply_count":   gorm.Expr("reply_count + 1"),
			"last_reply_at": at,
			"last_reply_by": by,
		}).Error
}

func (r *topicRepository) DecrementReplyCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Topic{}).
		Where("id = ? AND reply_count > 0", id).
		Update("reply_count", gorm.Expr("reply_count - 1")).Error
}

func (r *topicRepository) FindTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []entity.Tag
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *topicRepository) FindTagsByTopicID(ctx context.Context, topicID uuid.UUID) ([]entity.Tag, error) {
	var tags []entity.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN topic_tags ON topic_tags.tag_id = tags.id").
		Where("topic_tags.topic_id = ?", topicID).
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}
