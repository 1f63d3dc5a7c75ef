package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/poll/repository"
	"skripta.hr/forum/pkg/apperror"
)

type CreatePollInput struct {
	Question             string
	Options              []string
	AllowMultipleChoices bool
	ExpiresAt            *time.Time
}

type PollOptionResult struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	VoteCount int64     `json:"vote_count"`
}

// PollResult is the aggregated poll view for the topic page: options with
// counts plus the requesting user's picks.
type PollResult struct {
	ID                   uuid.UUID          `json:"id"`
	Question             string             `json:"question"`
	AllowMultipleChoices bool               `json:"allow_multiple_choices"`
	ExpiresAt            *time.Time         `json:"expires_at,omitempty"`
	IsExpired            bool               `json:"is_expired"`
	TotalVotes           int64              `json:"total_votes"`
	Options              []PollOptionResult `json:"options"`
	UserVotes            []uuid.UUID        `json:"user_votes,omitempty"`
}

type PollService interface {
	CreateForTopic(ctx context.Context, topicID uuid.UUID, input CreatePollInput) (*entity.Poll, error)
	GetForTopic(ctx context.Context, topicID uuid.UUID, userID *uuid.UUID) (*PollResult, error)
	Vote(ctx context.Context, pollID, userID uuid.UUID, optionIDs []uuid.UUID) (*PollResult, error)
	RemoveVote(ctx context.Context, pollID, userID uuid.UUID) (*PollResult, error)
}

type pollService struct {
	repo repository.PollRepository
}

func NewPollService(repo repository.PollRepository) PollService {
	return &pollService{repo: repo}
}

func (s *pollService) CreateForTopic(ctx context.Context, topicID uuid.UUID, input CreatePollInput) (*entity.Poll, error) {
	if len(input.Options) < 2 {
		return nil, fmt.Errorf("anketa mora imati barem dvije opcije: %w", apperror.ErrBadRequest)
	}
	if len(input.Options) > 10 {
		return nil, fmt.Errorf("anketa može imati najviše deset opcija: %w", apperror.ErrBadRequest)
	}

	poll := &entity.Poll{
		TopicID:              topicID,
		Question:             input.Question,
		AllowMultipleChoices: input.AllowMultipleChoices,
		ExpiresAt:            input.ExpiresAt,
	}
	for i, text := range input.Options {
		poll.Options = append(poll.Options, entity.PollOption{
			Text:       text,
			OrderIndex: i,
		})
	}

	if err := s.repo.Create(ctx, poll); err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollService) GetForTopic(ctx context.Context, topicID uuid.UUID, userID *uuid.UUID) (*PollResult, error) {
	poll, err := s.repo.FindByTopicID(ctx, topicID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return s.aggregate(ctx, poll, userID)
}

func (s *pollService) Vote(ctx context.Context, pollID, userID uuid.UUID, optionIDs []uuid.UUID) (*PollResult, error) {
	poll, err := s.repo.FindByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("anketa nije pronađena: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if poll.IsExpired() {
		return nil, fmt.Errorf("anketa je istekla: %w", apperror.ErrBadRequest)
	}

	if len(optionIDs) == 0 {
		return nil, fmt.Errorf("odaberite barem jednu opciju: %w", apperror.ErrBadRequest)
	}
	if !poll.AllowMultipleChoices && len(optionIDs) > 1 {
		return nil, fmt.Errorf("anketa dopušta samo jedan odabir: %w", apperror.ErrBadRequest)
	}

	valid := make(map[uuid.UUID]bool, len(poll.Options))
	for _, option := range poll.Options {
		valid[option.ID] = true
	}
	for _, optionID := range optionIDs {
		if !valid[optionID] {
			return nil, fmt.Errorf("nepostojeća opcija ankete: %w", apperror.ErrBadRequest)
		}
	}

	if err := s.repo.ReplaceVotes(ctx, pollID, userID, optionIDs); err != nil {
		return nil, err
	}

	return s.aggregate(ctx, poll, &userID)
}

func (s *pollService) RemoveVote(ctx context.Context, pollID, userID uuid.UUID) (*PollResult, error) {
	poll, err := s.repo.FindByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("anketa nije pronađena: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if err := s.repo.DeleteVotes(ctx, pollID, userID); err != nil {
		return nil, err
	}

	return s.aggregate(ctx, poll, &userID)
}

func (s *pollService) aggregate(ctx context.Context, poll *entity.Poll, userID *uuid.UUID) (*PollResult, error) {
	counts, err := s.repo.CountVotes(ctx, poll.ID)
	if err != nil {
		return nil, err
	}

	countByOption := make(map[uuid.UUID]int64, len(counts))
	var total int64
	for _, c := range counts {
		countByOption[c.OptionID] = c.Count
		total += c.Count
	}

	result := &PollResult{
		ID:                   poll.ID,
		Question:             poll.Question,
		AllowMultipleChoices: poll.AllowMultipleChoices,
		ExpiresAt:            poll.ExpiresAt,
		IsExpired:            poll.IsExpired(),
		TotalVotes:           total,
	}

	for _, option := range poll.Options {
		result.Options = append(result.Options, PollOptionResult{
			ID:        option.ID,
			Text:      option.Text,
			VoteCount: countByOption[option.ID],
		})
	}

	if userID != nil {
		votes, err := s.repo.FindUserVotes(ctx, poll.ID, *userID)
		if err != nil {
			return nil, err
		}
		for _, vote := range votes {
			result.UserVotes = append(result.UserVotes, vote.OptionID)
		}
	}

	return result, nil
}
