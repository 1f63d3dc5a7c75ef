package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
)

type BookmarkRepository interface {
	Find(ctx context.Context, userID, topicID uuid.UUID) (*entity.Bookmark, error)
	Create(ctx context.Context, bookmark *entity.Bookmark) error
	Delete(ctx context.Context, userID, topicID uuid.UUID) error
	FindTopicsByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Topic, int64, error)
	IsBookmarked(ctx context.Context, userID, topicID uuid.UUID) (bool, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Find(ctx context.Context, userID, topicID uuid.UUID) (*entity.Bookmark, error) {
	var bookmark entity.Bookmark
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		First(&bookmark).Error
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

func (r *bookmarkRepository) Create(ctx context.Context, bookmark *entity.Bookmark) error {
	return r.db.WithContext(ctx).Create(bookmark).Error
}

func (r *bookmarkRepository) Delete(ctx context.Context, userID, topicID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Delete(&entity.Bookmark{}).Error
}

func (r *bookmarkRepository) FindTopicsByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Topic, int64, error) {
	var topics []*entity.Topic
	var total int64

	base := r.db.WithContext(ctx).
		Model(&entity.Topic{}).
		Joins("JOIN bookmarks ON bookmarks.topic_id = topics.id").
		Where("bookmarks.user_id = ?", userID)

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := base.
		Preload("Author").
		Preload("Category").
		Preload("Tags").
		Order("bookmarks.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&topics).Error
	if err != nil {
		return nil, 0, err
	}

	return topics, total, nil
}

func (r *bookmarkRepository) IsBookmarked(ctx context.Context, userID, topicID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Bookmark{}).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
