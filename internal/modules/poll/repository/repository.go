package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
)

type OptionCount struct {
	OptionID uuid.UUID
	Count    int64
}

type PollRepository interface {
	Create(ctx context.Context, poll *entity.Poll) error
	FindByTopicID(ctx context.Context, topicID uuid.UUID) (*entity.Poll, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Poll, error)
	CountVotes(ctx context.Context, pollID uuid.UUID) ([]OptionCount, error)
	FindUserVotes(ctx context.Context, pollID, userID uuid.UUID) ([]entity.PollVote, error)
	// ReplaceVotes deletes the user's previous votes and writes the new set
	// in one transaction.
	ReplaceVotes(ctx context.Context, pollID, userID uuid.UUID, optionIDs []uuid.UUID) error
	DeleteVotes(ctx context.Context, pollID, userID uuid.UUID) error
}

type pollRepository struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) PollRepository {
	return &pollRepository{db: db}
}

func (r *pollRepository) Create(ctx context.Context, poll *entity.Poll) error {
	return r.db.WithContext(ctx).Create(poll).Error
}

func (r *pollRepository) FindByTopicID(ctx context.Context, topicID uuid.UUID) (*entity.Poll, error) {
	var poll entity.Poll
	err := r.db.WithContext(ctx).
		Preload("Options").
		Where("topic_id = ?", topicID).
		First(&poll).Error
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *pollRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Poll, error) {
	var poll entity.Poll
	err := r.db.WithContext(ctx).
		Preload("Options").
		Where("id = ?", id).
		First(&poll).Error
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *pollRepository) CountVotes(ctx context.Context, pollID uuid.UUID) ([]OptionCount, error) {
	var counts []OptionCount
	err := r.db.WithContext(ctx).
		Model(&entity.PollVote{}).
		Select("option_id, COUNT(*) as count").
		Where("poll_id = ?", pollID).
		Group("poll_option_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *pollRepository) FindUserVotes(ctx context.Context, pollID, userID uuid.UUID) ([]entity.PollVote, error) {
	var votes []entity.PollVote
	err := r.db.WithContext(ctx).
		Where("poll_id = ? AND user_id = ?", pollID, userID).
		Find(&votes).Error
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *pollRepository) ReplaceVotes(ctx context.Context, pollID, userID uuid.UUID, optionIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ? AND user_id = ?", pollID, userID).
			Delete(&entity.PollVote{}).Error; err != nil {
			return err
		}
		for _, optionID := range optionIDs {
			vote := entity.PollVote{
				PollID:   pollID,
				OptionID: optionID,
				UserID:   userID,
			}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *pollRepository) DeleteVotes(ctx context.Context, pollID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("poll_id = ? AND user_id = ?", pollID, userID).
		Delete(&entity.PollVote{}).Error
}
