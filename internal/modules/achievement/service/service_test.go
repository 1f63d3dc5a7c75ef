package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/achievement/service"
	replyrepository "skripta.hr/forum/internal/modules/reply/repository"
	topicrepository "skripta.hr/forum/internal/modules/topic/repository"
)

type fakeAwardRepo struct {
	codes map[string]bool
}

func newFakeAwardRepo(held ...string) *fakeAwardRepo {
	repo := &fakeAwardRepo{codes: make(map[string]bool)}
	for _, code := range held {
		repo.codes[code] = true
	}
	return repo
}

func (r *fakeAwardRepo) FindCodesByUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var codes []string
	for code := range r.codes {
		codes = append(codes, code)
	}
	return codes, nil
}

func (r *fakeAwardRepo) Award(ctx context.Context, userID uuid.UUID, code string) (bool, error) {
	if r.codes[code] {
		return false, nil
	}
	r.codes[code] = true
	return true, nil
}

func (r *fakeAwardRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]entity.AchievementAward, error) {
	return nil, nil
}

// Only the counting methods matter here; everything else panics if touched.
type fakeTopicCounts struct {
	topicrepository.TopicRepository
	topics int64
}

func (f *fakeTopicCounts) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return f.topics, nil
}

type fakeReplyCounts struct {
	replyrepository.ReplyRepository
	replies   int64
	solutions int64
}

func (f *fakeReplyCounts) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return f.replies, nil
}

func (f *fakeReplyCounts) CountSolutionsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return f.solutions, nil
}

func TestCheckAndAwardFirstMilestones(t *testing.T) {
	repo := newFakeAwardRepo()
	svc := service.NewAchievementService(
		repo,
		&fakeTopicCounts{topics: 1},
		&fakeReplyCounts{replies: 1, solutions: 0},
		nil,
	)

	awarded, err := svc.CheckAndAward(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}

	want := map[string]bool{"first_topic": true, "first_reply": true}
	if len(awarded) != len(want) {
		t.Fatalf("unexpected awards %v", awarded)
	}
	for _, code := range awarded {
		if !want[code] {
			t.Fatalf("unexpected award %q in %v", code, awarded)
		}
	}
}

func TestCheckAndAwardSkipsHeldBadges(t *testing.T) {
	repo := newFakeAwardRepo("first_topic")
	svc := service.NewAchievementService(
		repo,
		&fakeTopicCounts{topics: 3},
		&fakeReplyCounts{},
		nil,
	)

	awarded, err := svc.CheckAndAward(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if len(awarded) != 0 {
		t.Fatalf("held badge awarded again: %v", awarded)
	}
}

func TestCheckAndAwardThresholds(t *testing.T) {
	repo := newFakeAwardRepo("first_topic", "first_reply", "first_solution")
	svc := service.NewAchievementService(
		repo,
		&fakeTopicCounts{topics: 10},
		&fakeReplyCounts{replies: 24, solutions: 10},
		nil,
	)

	awarded, err := svc.CheckAndAward(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}

	got := make(map[string]bool, len(awarded))
	for _, code := range awarded {
		got[code] = true
	}
	if !got["topic_10"] {
		t.Fatalf("topic_10 not awarded at 10 topics: %v", awarded)
	}
	if !got["solution_10"] {
		t.Fatalf("solution_10 not awarded at 10 solutions: %v", awarded)
	}
	if got["reply_25"] {
		t.Fatalf("reply_25 awarded below threshold: %v", awarded)
	}
}
