package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
)

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *entity.Attachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Attachment, error)
	// FindForTopicPage returns topic attachments and reply attachments for the
	// given reply ID set in one query; the caller splits them.
	FindForTopicPage(ctx context.Context, topicID uuid.UUID, replyIDs []uuid.UUID) ([]entity.Attachment, error)
	LinkToTopic(ctx context.Context, id, topicID, uploadedBy uuid.UUID) error
	LinkToReply(ctx context.Context, id, replyID, uploadedBy uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOrphansOlderThan(ctx context.Context, cutoff time.Time) ([]entity.Attachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *entity.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Attachment, error) {
	var attachment entity.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

func (r *attachmentRepository) FindForTopicPage(ctx context.Context, topicID uuid.UUID, replyIDs []uuid.UUID) ([]entity.Attachment, error) {
	var attachments []entity.Attachment

	query := r.db.WithContext(ctx)
	if len(replyIDs) > 0 {
		query = query.Where("topic_id = ? OR reply_id IN ?", topicID, replyIDs)
	} else {
		query = query.Where("topic_id = ?", topicID)
	}

	if err := query.Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

func (r *attachmentRepository) LinkToTopic(ctx context.Context, id, topicID, uploadedBy uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Attachment{}).
		Where("id = ? AND uploaded_by = ?", id, uploadedBy).
		Update("topic_id", topicID).Error
}

func (r *attachmentRepository) LinkToReply(ctx context.Context, id, replyID, uploadedBy uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Attachment{}).
		Where("id = ? AND uploaded_by = ?", id, uploadedBy).
		Update("reply_id", replyID).Error
}

func (r *attachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Attachment{}, id).Error
}

func (r *attachmentRepository) FindOrphansOlderThan(ctx context.Context, cutoff time.Time) ([]entity.Attachment, error) {
	var attachments []entity.Attachment
	if err := r.db.WithContext(ctx).
		Where("topic_id IS NULL AND reply_id IS NULL AND created_at < ?", cutoff).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}
