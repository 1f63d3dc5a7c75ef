package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/bookmark/repository"
)

type BookmarkService interface {
	// Toggle flips the bookmark state and returns the new state.
	Toggle(ctx context.Context, userID, topicID uuid.UUID) (bool, error)
	ListTopics(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entity.Topic, int64, error)
	IsBookmarked(ctx context.Context, userID, topicID uuid.UUID) (bool, error)
}

type bookmarkService struct {
	repo repository.BookmarkRepository
}

func NewBookmarkService(repo repository.BookmarkRepository) BookmarkService {
	return &bookmarkService{repo: repo}
}

func (s *bookmarkService) Toggle(ctx context.Context, userID, topicID uuid.UUID) (bool, error) {
	_, err := s.repo.Find(ctx, userID, topicID)
	if err == nil {
		if err := s.repo.Delete(ctx, userID, topicID); err != nil {
			return false, err
		}
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	bookmark := &entity.Bookmark{UserID: userID, TopicID: topicID}
	if err := s.repo.Create(ctx, bookmark); err != nil {
		return false, err
	}
	return true, nil
}

func (s *bookmarkService) ListTopics(ctx context.Context, userID uuid.UUID, page, limit int) ([]*entity.Topic, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.FindTopicsByUser(ctx, userID, (page-1)*limit, limit)
}

func (s *bookmarkService) IsBookmarked(ctx context.Context, userID, topicID uuid.UUID) (bool, error) {
	return s.repo.IsBookmarked(ctx, userID, topicID)
}
