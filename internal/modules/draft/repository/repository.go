package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"skripta.hr/forum/internal/entity"
)

type DraftRepository interface {
	Upsert(ctx context.Context, draft *entity.TopicDraft) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TopicDraft, error)
	FindByAuthor(ctx context.Context, authorID uuid.UUID) ([]entity.TopicDraft, error)
	Delete(ctx context.Context, id, authorID uuid.UUID) error
	DeleteTx(tx *gorm.DB, id, authorID uuid.UUID) error
}

type draftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

// Upsert inserts or overwrites the draft row by primary key, so repeated
// autosaves of the same draft never accumulate rows.
func (r *draftRepository) Upsert(ctx context.Context, draft *entity.TopicDraft) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "content", "category_id", "tag_ids", "updated_at"}),
		}).
		Create(draft).Error
}

func (r *draftRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TopicDraft, error) {
	var draft entity.TopicDraft
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&draft).Error; err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepository) FindByAuthor(ctx context.Context, authorID uuid.UUID) ([]entity.TopicDraft, error) {
	var drafts []entity.TopicDraft
	if err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("updated_at DESC").
		Find(&drafts).Error; err != nil {
		return nil, err
	}
	return drafts, nil
}

func (r *draftRepository) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&entity.TopicDraft{}).Error
}

func (r *draftRepository) DeleteTx(tx *gorm.DB, id, authorID uuid.UUID) error {
	return tx.
		Where("id = ? AND author_id = ?", id, authorID).
		Delete(&entity.TopicDraft{}).Error
}
