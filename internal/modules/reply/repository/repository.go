package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
)

type ReplyRepository interface {
	// CreateInTx creates the reply and runs extra writes in the same
	// transaction (topic counters, outbox rows).
	CreateInTx(ctx context.Context, reply *entity.Reply, extra func(tx *gorm.DB) error) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reply, error)
	// FindByTopicID returns all replies for a topic, solution first, then
	// oldest to newest.
	FindByTopicID(ctx context.Context, topicID uuid.UUID) ([]entity.Reply, error)
	FindRecentByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]entity.Reply, error)
	Update(ctx context.Context, reply *entity.Reply) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SetSolution marks one reply as the solution and clears the flag on
	// every other reply of the topic, in one transaction.
	SetSolution(ctx context.Context, topicID, replyID uuid.UUID) error
	ClearSolution(ctx context.Context, topicID uuid.UUID) error
	FindVote(ctx context.Context, userID, replyID uuid.UUID) (*entity.Vote, error)
	ApplyVote(ctx context.Context, userID, replyID uuid.UUID, voteType int) error
	RemoveVote(ctx context.Context, userID, replyID uuid.UUID) error
	CountSolutionsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) CreateInTx(ctx context.Context, reply *entity.Reply, extra func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		if extra != nil {
			return extra(tx)
		}
		return nil
	})
}

func (r *replyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reply, error) {
	var reply entity.Reply
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Author.Profile").
		Where("id = ?", id).
		First(&reply).Error
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (r *replyRepository) FindByTopicID(ctx context.Context, topicID uuid.UUID) ([]entity.Reply, error) {
	var replies []entity.Reply
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Author.Profile").
		Where("topic_id = ?", topicID).
		Order("is_solution DESC, created_at ASC").
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *replyRepository) FindRecentByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]entity.Reply, error) {
	var replies []entity.Reply
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&replies).Error
	if err != nil {
		return nil, err
	}
	return replies, nil
}

func (r *replyRepository) Update(ctx context.Context, reply *entity.Reply) error {
	return r.db.WithContext(ctx).Save(reply).Error
}

func (r *replyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.Reply{}, id).Error
}

func (r *replyRepository) SetSolution(ctx context.Context, topicID, replyID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Reply{}).
			Where("topic_id = ? AND id != ?", topicID, replyID).
			Update("is_solution", false).Error; err != nil {
			return err
		}
		return tx.Model(&entity.Reply{}).
			Where("id = ?", replyID).
			Update("is_solution", true).Error
	})
}

func (r *replyRepository) ClearSolution(ctx context.Context, topicID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&entity.Reply{}).
		Where("topic_id = ?", topicID).
		Update("is_solution", false).Error
}

func (r *replyRepository) FindVote(ctx context.Context, userID, replyID uuid.UUID) (*entity.Vote, error) {
	var vote entity.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND reply_id = ?", userID, replyID).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// ApplyVote upserts the vote row and recomputes the denormalized counters
// from the votes table so they cannot drift.
func (r *replyRepository) ApplyVote(ctx context.Context, userID, replyID uuid.UUID, voteType int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.Vote
		err := tx.Where("user_id = ? AND reply_id = ?", userID, replyID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Model(&existing).Update("vote_type", voteType).Error; err != nil {
				return err
			}
		case err == gorm.ErrRecordNotFound:
			vote := entity.Vote{UserID: userID, ReplyID: replyID, VoteType: voteType}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return syncVoteCounts(tx, replyID)
	})
}

func (r *replyRepository) RemoveVote(ctx context.Context, userID, replyID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND reply_id = ?", userID, replyID).
			Delete(&entity.Vote{}).Error; err != nil {
			return err
		}
		return syncVoteCounts(tx, replyID)
	})
}

func syncVoteCounts(tx *gorm.DB, replyID uuid.UUID) error {
	var up, down int64
	if err := tx.Model(&entity.Vote{}).
		Where("reply_id = ? AND vote_type = ?", replyID, entity.VoteUp).
		Count(&up).Error; err != nil {
		return err
	}
	if err := tx.Model(&entity.Vote{}).
		Where("reply_id = ? AND vote_type = ?", replyID, entity.VoteDown).
		Count(&down).Error; err != nil {
		return err
	}
	return tx.Model(&entity.Reply{}).
		Where("id = ?", replyID).
		Updates(map[string]any{"upvotes": up, "downvotes": down}).Error
}

func (r *replyRepository) CountSolutionsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Reply{}).
		Where("author_id = ? AND is_solution = true", authorID).
		Count(&count).Error
	return count, err
}

func (r *replyRepository) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Reply{}).
		Where("author_id = ?", authorID).
		Count(&count).Error
	return count, err
}
