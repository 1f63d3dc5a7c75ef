package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/draft/repository"
	"skripta.hr/forum/pkg/apperror"
)

type SaveDraftInput struct {
	ID         *uuid.UUID
	Title      string
	Content    string
	CategoryID *uuid.UUID
	TagIDs     []uuid.UUID
}

type DraftService interface {
	// SaveDraft upserts a draft. The first autosave generates the ID; every
	// subsequent save overwrites the same row.
	SaveDraft(ctx context.Context, authorID uuid.UUID, input SaveDraftInput) (*entity.TopicDraft, error)
	GetDraft(ctx context.Context, authorID, draftID uuid.UUID) (*entity.TopicDraft, error)
	ListDrafts(ctx context.Context, authorID uuid.UUID) ([]entity.TopicDraft, error)
	DeleteDraft(ctx context.Context, authorID, draftID uuid.UUID) error
}

type draftService struct {
	repo repository.DraftRepository
}

func NewDraftService(repo repository.DraftRepository) DraftService {
	return &draftService{repo: repo}
}

func (s *draftService) SaveDraft(ctx context.Context, authorID uuid.UUID, input SaveDraftInput) (*entity.TopicDraft, error) {
	if strings.TrimSpace(input.Title) == "" && strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("prazan nacrt se ne sprema: %w", apperror.ErrBadRequest)
	}

	draft := &entity.TopicDraft{
		AuthorID:   authorID,
		Title:      input.Title,
		Content:    input.Content,
		CategoryID: input.CategoryID,
		TagIDs:     input.TagIDs,
	}

	if input.ID != nil {
		existing, err := s.repo.FindByID(ctx, *input.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.AuthorID != authorID {
			return nil, fmt.Errorf("nacrt pripada drugom korisniku: %w", apperror.ErrForbidden)
		}
		draft.ID = *input.ID
	}

	if err := s.repo.Upsert(ctx, draft); err != nil {
		return nil, err
	}

	return draft, nil
}

func (s *draftService) GetDraft(ctx context.Context, authorID, draftID uuid.UUID) (*entity.TopicDraft, error) {
	draft, err := s.repo.FindByID(ctx, draftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("nacrt nije pronađen: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if draft.AuthorID != authorID {
		return nil, fmt.Errorf("nacrt pripada drugom korisniku: %w", apperror.ErrForbidden)
	}

	return draft, nil
}

func (s *draftService) ListDrafts(ctx context.Context, authorID uuid.UUID) ([]entity.TopicDraft, error) {
	return s.repo.FindByAuthor(ctx, authorID)
}

func (s *draftService) DeleteDraft(ctx context.Context, authorID, draftID uuid.UUID) error {
	return s.repo.Delete(ctx, draftID, authorID)
}
