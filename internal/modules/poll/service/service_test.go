package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/poll/repository"
	"skripta.hr/forum/internal/modules/poll/service"
	"skripta.hr/forum/pkg/apperror"
)

type fakePollRepo struct {
	polls map[uuid.UUID]*entity.Poll
	// votes[pollID][userID] = chosen options
	votes map[uuid.UUID]map[uuid.UUID][]uuid.UUID
}

func newFakePollRepo() *fakePollRepo {
	return &fakePollRepo{
		polls: make(map[uuid.UUID]*entity.Poll),
		votes: make(map[uuid.UUID]map[uuid.UUID][]uuid.UUID),
	}
}

func (r *fakePollRepo) Create(ctx context.Context, poll *entity.Poll) error {
	if poll.ID == uuid.Nil {
		poll.ID = uuid.New()
	}
	for i := range poll.Options {
		if poll.Options[i].ID == uuid.Nil {
			poll.Options[i].ID = uuid.New()
		}
		poll.Options[i].PollID = poll.ID
	}
	r.polls[poll.ID] = poll
	return nil
}

func (r *fakePollRepo) FindByTopicID(ctx context.Context, topicID uuid.UUID) (*entity.Poll, error) {
	for _, poll := range r.polls {
		if poll.TopicID == topicID {
			return poll, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePollRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Poll, error) {
	poll, ok := r.polls[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return poll, nil
}

func (r *fakePollRepo) CountVotes(ctx context.Context, pollID uuid.UUID) ([]repository.OptionCount, error) {
	counts := make(map[uuid.UUID]int64)
	for _, options := range r.votes[pollID] {
		for _, optionID := range options {
			counts[optionID]++
		}
	}
	out := make([]repository.OptionCount, 0, len(counts))
	for optionID, count := range counts {
		out = append(out, repository.OptionCount{OptionID: optionID, Count: count})
	}
	return out, nil
}

func (r *fakePollRepo) FindUserVotes(ctx context.Context, pollID, userID uuid.UUID) ([]entity.PollVote, error) {
	var out []entity.PollVote
	for _, optionID := range r.votes[pollID][userID] {
		out = append(out, entity.PollVote{PollID: pollID, UserID: userID, OptionID: optionID})
	}
	return out, nil
}

func (r *fakePollRepo) ReplaceVotes(ctx context.Context, pollID, userID uuid.UUID, optionIDs []uuid.UUID) error {
	if r.votes[pollID] == nil {
		r.votes[pollID] = make(map[uuid.UUID][]uuid.UUID)
	}
	r.votes[pollID][userID] = optionIDs
	return nil
}

func (r *fakePollRepo) DeleteVotes(ctx context.Context, pollID, userID uuid.UUID) error {
	delete(r.votes[pollID], userID)
	return nil
}

func createPoll(t *testing.T, svc service.PollService, multiple bool, expiresAt *time.Time) *entity.Poll {
	t.Helper()
	poll, err := svc.CreateForTopic(context.Background(), uuid.New(), service.CreatePollInput{
		Question:             "Koji termin ispita vam odgovara?",
		Options:              []string{"ponedjeljak", "srijeda", "petak"},
		AllowMultipleChoices: multiple,
		ExpiresAt:            expiresAt,
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	return poll
}

func TestCreatePollValidatesOptionCount(t *testing.T) {
	svc := service.NewPollService(newFakePollRepo())

	_, err := svc.CreateForTopic(context.Background(), uuid.New(), service.CreatePollInput{
		Question: "Premalo opcija",
		Options:  []string{"jedina"},
	})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("expected rejection for a single option, got %v", err)
	}

	many := make([]string, 11)
	for i := range many {
		many[i] = "opcija"
	}
	_, err = svc.CreateForTopic(context.Background(), uuid.New(), service.CreatePollInput{
		Question: "Previše opcija",
		Options:  many,
	})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("expected rejection for eleven options, got %v", err)
	}
}

func TestVoteReplacesPreviousChoice(t *testing.T) {
	repo := newFakePollRepo()
	svc := service.NewPollService(repo)
	poll := createPoll(t, svc, false, nil)
	userID := uuid.New()

	if _, err := svc.Vote(context.Background(), poll.ID, userID, []uuid.UUID{poll.Options[0].ID}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}

	result, err := svc.Vote(context.Background(), poll.ID, userID, []uuid.UUID{poll.Options[1].ID})
	if err != nil {
		t.Fatalf("revote failed: %v", err)
	}

	if result.TotalVotes != 1 {
		t.Fatalf("revote must replace, not add: total=%d", result.TotalVotes)
	}
	if len(result.UserVotes) != 1 || result.UserVotes[0] != poll.Options[1].ID {
		t.Fatalf("user votes wrong: %v", result.UserVotes)
	}
}

func TestVoteSingleChoiceEnforced(t *testing.T) {
	repo := newFakePollRepo()
	svc := service.NewPollService(repo)
	poll := createPoll(t, svc, false, nil)

	_, err := svc.Vote(context.Background(), poll.ID, uuid.New(), []uuid.UUID{
		poll.Options[0].ID,
		poll.Options[1].ID,
	})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("expected rejection of multiple choices, got %v", err)
	}
}

func TestVoteMultipleChoicesAllowed(t *testing.T) {
	repo := newFakePollRepo()
	svc := service.NewPollService(repo)
	poll := createPoll(t, svc, true, nil)

	result, err := svc.Vote(context.Background(), poll.ID, uuid.New(), []uuid.UUID{
		poll.Options[0].ID,
		poll.Options[2].ID,
	})
	if err != nil {
		t.Fatalf("multi-choice vote failed: %v", err)
	}
	if result.TotalVotes != 2 {
		t.Fatalf("expected two counted votes, got %d", result.TotalVotes)
	}
}

func TestVoteRejectsExpiredPoll(t *testing.T) {
	repo := newFakePollRepo()
	svc := service.NewPollService(repo)
	expired := time.Now().Add(-time.Hour)
	poll := createPoll(t, svc, false, &expired)

	_, err := svc.Vote(context.Background(), poll.ID, uuid.New(), []uuid.UUID{poll.Options[0].ID})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("expected rejection for expired poll, got %v", err)
	}
}

func TestVoteRejectsForeignOption(t *testing.T) {
	repo := newFakePollRepo()
	svc := service.NewPollService(repo)
	poll := createPoll(t, svc, false, nil)

	_, err := svc.Vote(context.Background(), poll.ID, uuid.New(), []uuid.UUID{uuid.New()})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("expected rejection for unknown option, got %v", err)
	}
}

func TestRemoveVote(t *testing.T) {
	repo := newFakePollRepo()
	svc := service.NewPollService(repo)
	poll := createPoll(t, svc, false, nil)
	userID := uuid.New()

	if _, err := svc.Vote(context.Background(), poll.ID, userID, []uuid.UUID{poll.Options[0].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	result, err := svc.RemoveVote(context.Background(), poll.ID, userID)
	if err != nil {
		t.Fatalf("remove vote failed: %v", err)
	}
	if result.TotalVotes != 0 {
		t.Fatalf("vote not removed: total=%d", result.TotalVotes)
	}
	if len(result.UserVotes) != 0 {
		t.Fatalf("user votes not cleared: %v", result.UserVotes)
	}
}

func TestGetForTopicWithoutPoll(t *testing.T) {
	svc := service.NewPollService(newFakePollRepo())

	result, err := svc.GetForTopic(context.Background(), uuid.New(), nil)
	if err != nil {
		t.Fatalf("expected nil error for topic without poll, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result for topic without poll, got %+v", result)
	}
}
