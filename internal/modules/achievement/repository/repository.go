package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"skripta.hr/forum/internal/entity"
)

type AchievementRepository interface {
	FindCodesByUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	// Award inserts the award if the user does not already hold it. Returns
	// true when a new row was written.
	Award(ctx context.Context, userID uuid.UUID, code string) (bool, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.AchievementAward, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) FindCodesByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&entity.AchievementAward{}).
		Where("user_id = ?", userID).
		Pluck("code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *achievementRepository) Award(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	award := entity.AchievementAward{UserID: userID, Code: code}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "code"}},
			DoNothing: true,
		}).
		Create(&award)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *achievementRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.AchievementAward, error) {
	var awards []entity.AchievementAward
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&awards).Error
	if err != nil {
		return nil, err
	}
	return awards, nil
}
