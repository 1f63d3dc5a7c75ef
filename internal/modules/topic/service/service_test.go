package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/topic/dto"
	"skripta.hr/forum/internal/modules/topic/service"
	"skripta.hr/forum/pkg/apperror"
)

type fakeTopicRepo struct {
	created []*entity.Topic
	recent  []*entity.Topic
	slugs   map[string]bool
	slugErr error
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{slugs: make(map[string]bool)}
}

func (r *fakeTopicRepo) CreateInTx(ctx context.Context, topic *entity.Topic, tagIDs []uuid.UUID, extra func(tx *gorm.DB) error) error {
	if topic.ID == uuid.Nil {
		topic.ID = uuid.New()
	}
	r.created = append(r.created, topic)
	r.slugs[topic.Slug] = true
	if extra != nil {
		return extra(nil)
	}
	return nil
}

func (r *fakeTopicRepo) FindBySlug(ctx context.Context, slug string) (*entity.Topic, error) {
	if r.slugErr != nil {
		return nil, r.slugErr
	}
	if r.slugs[slug] {
		return &entity.Topic{Slug: slug}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTopicRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Topic, error) {
	for _, topic := range r.created {
		if topic.ID == id {
			return topic, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTopicRepo) FindAll(ctx context.Context, categoryID *uuid.UUID, search, sortBy string, offset, limit int) ([]*entity.Topic, int64, error) {
	return r.created, int64(len(r.created)), nil
}

func (r *fakeTopicRepo) FindRecentByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*entity.Topic, error) {
	return r.recent, nil
}

func (r *fakeTopicRepo) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return int64(len(r.created)), nil
}

func (r *fakeTopicRepo) Update(ctx context.Context, topic *entity.Topic) error { return nil }

func (r *fakeTopicRepo) ReplaceTags(ctx context.Context, topic *entity.Topic, tagIDs []uuid.UUID) error {
	return nil
}

func (r *fakeTopicRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeTopicRepo) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error { return nil }

func (r *fakeTopicRepo) SetLocked(ctx context.Context, id uuid.UUID, locked bool) error { return nil }

func (r *fakeTopicRepo) SetHasSolution(ctx context.Context, id uuid.UUID, hasSolution bool) error {
	return nil
}

func (r *fakeTopicRepo) IncrementViewCount(ctx context.Context, id uuid.UUID, delta int) error {
	return nil
}

func (r *fakeTopicRepo) RecordReply(ctx context.Context, id uuid.UUID, at time.Time, by uuid.UUID) error {
	return nil
}

func (r *fakeTopicRepo) DecrementReplyCount(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeTopicRepo) FindTagsByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Tag, error) {
	return nil, nil
}

func (r *fakeTopicRepo) FindTagsByTopicID(ctx context.Context, topicID uuid.UUID) ([]entity.Tag, error) {
	return nil, nil
}

type fakeCategoryRepo struct {
	categories map[uuid.UUID]*entity.Category
}

func newFakeCategoryRepo(ids ...uuid.UUID) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: make(map[uuid.UUID]*entity.Category)}
	for _, id := range ids {
		repo.categories[id] = &entity.Category{ID: id}
	}
	return repo
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *entity.Category) error { return nil }

func (r *fakeCategoryRepo) FindAll(ctx context.Context) ([]entity.Category, error) { return nil, nil }

func (r *fakeCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return category, nil
}

func (r *fakeCategoryRepo) FindBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeCategoryRepo) FindAllTags(ctx context.Context) ([]entity.Tag, error) { return nil, nil }

func (r *fakeCategoryRepo) CreateTag(ctx context.Context, tag *entity.Tag) error { return nil }

func newTopicService(repo *fakeTopicRepo, categoryID uuid.UUID) service.TopicService {
	return service.NewTopicService(repo, newFakeCategoryRepo(categoryID), nil, nil, nil, nil, nil, 0)
}

func validRequest(categoryID uuid.UUID) dto.CreateTopicRequest {
	return dto.CreateTopicRequest{
		Title:      "Priprema za kolokvij",
		Content:    "Kako se pripremate za drugi kolokvij iz analize?",
		CategoryID: categoryID.String(),
	}
}

func TestCreateTopicHappyPath(t *testing.T) {
	repo := newFakeTopicRepo()
	categoryID := uuid.New()
	svc := newTopicService(repo, categoryID)

	resp, err := svc.CreateTopic(context.Background(), uuid.New(), validRequest(categoryID))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if resp.Slug != "priprema-za-kolokvij" {
		t.Fatalf("unexpected slug %q", resp.Slug)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected one created topic, got %d", len(repo.created))
	}
	topic := repo.created[0]
	if topic.ModerationStatus != entity.ModerationApproved {
		t.Fatalf("clean topic should be approved, got %q", topic.ModerationStatus)
	}
	if topic.AutoFlagged {
		t.Fatalf("clean topic must not be auto-flagged")
	}
	if topic.CategoryID == nil || *topic.CategoryID != categoryID {
		t.Fatalf("category not set: %v", topic.CategoryID)
	}
}

func TestCreateTopicUnknownCategory(t *testing.T) {
	repo := newFakeTopicRepo()
	svc := newTopicService(repo, uuid.New())

	_, err := svc.CreateTopic(context.Background(), uuid.New(), validRequest(uuid.New()))
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for unknown category, got %v", err)
	}
}

func TestCreateTopicRejectsSpamTitle(t *testing.T) {
	repo := newFakeTopicRepo()
	categoryID := uuid.New()
	svc := newTopicService(repo, categoryID)

	req := validRequest(categoryID)
	req.Title = "KUPITE ODMAH NAJBOLJE SKRIPTE POVOLJNO BRZO"

	_, err := svc.CreateTopic(context.Background(), uuid.New(), req)
	if !errors.Is(err, apperror.ErrSpamDetected) {
		t.Fatalf("expected spam rejection, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("rejected topic must not be written")
	}
}

func TestCreateTopicRejectsDuplicateContent(t *testing.T) {
	repo := newFakeTopicRepo()
	categoryID := uuid.New()
	svc := newTopicService(repo, categoryID)

	req := validRequest(categoryID)
	repo.recent = []*entity.Topic{
		{Content: req.Content, CreatedAt: time.Now().Add(-3 * time.Minute)},
	}

	_, err := svc.CreateTopic(context.Background(), uuid.New(), req)
	if !errors.Is(err, apperror.ErrDuplicateContent) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestCreateTopicAllowsRepostAfterWindow(t *testing.T) {
	repo := newFakeTopicRepo()
	categoryID := uuid.New()
	svc := newTopicService(repo, categoryID)

	req := validRequest(categoryID)
	repo.recent = []*entity.Topic{
		{Content: req.Content, CreatedAt: time.Now().Add(-30 * time.Minute)},
	}

	if _, err := svc.CreateTopic(context.Background(), uuid.New(), req); err != nil {
		t.Fatalf("old duplicate should be allowed: %v", err)
	}
}

func TestCreateTopicRejectsRapidPosting(t *testing.T) {
	repo := newFakeTopicRepo()
	categoryID := uuid.New()
	svc := newTopicService(repo, categoryID)

	repo.recent = []*entity.Topic{
		{Content: "prva tema", CreatedAt: time.Now().Add(-10 * time.Second)},
		{Content: "druga tema", CreatedAt: time.Now().Add(-40 * time.Second)},
	}

	_, err := svc.CreateTopic(context.Background(), uuid.New(), validRequest(categoryID))
	if !errors.Is(err, apperror.ErrSpamDetected) {
		t.Fatalf("expected rapid posting rejection, got %v", err)
	}
}

func TestCreateTopicFlagsMildLanguage(t *testing.T) {
	repo := newFakeTopicRepo()
	categoryID := uuid.New()
	svc := newTopicService(repo, categoryID)

	req := validRequest(categoryID)
	req.Content = "Asistent se ponaša kao glupan na konzultacijama"

	if _, err := svc.CreateTopic(context.Background(), uuid.New(), req); err != nil {
		t.Fatalf("mild language should be censored, not rejected: %v", err)
	}

	topic := repo.created[0]
	if topic.ModerationStatus != entity.ModerationFlagged || !topic.AutoFlagged {
		t.Fatalf("expected flagged topic, got status=%q autoFlagged=%v", topic.ModerationStatus, topic.AutoFlagged)
	}
	if strings.Contains(topic.Content, "glupan") {
		t.Fatalf("content not censored: %q", topic.Content)
	}
}

func TestCreateTopicRejectsSevereLanguage(t *testing.T) {
	repo := newFakeTopicRepo()
	categoryID := uuid.New()
	svc := newTopicService(repo, categoryID)

	req := validRequest(categoryID)
	req.Content = "crkni"

	_, err := svc.CreateTopic(context.Background(), uuid.New(), req)
	if !errors.Is(err, apperror.ErrSpamDetected) {
		t.Fatalf("expected rejection for severe language, got %v", err)
	}
}

func TestCreateTopicPropagatesSlugLookupError(t *testing.T) {
	repo := newFakeTopicRepo()
	categoryID := uuid.New()
	svc := newTopicService(repo, categoryID)

	repo.slugErr = errors.New("connection reset by peer")

	_, err := svc.CreateTopic(context.Background(), uuid.New(), validRequest(categoryID))
	if !errors.Is(err, repo.slugErr) {
		t.Fatalf("slug lookup failure must surface, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("topic must not be written when the slug check fails")
	}
}

func TestCreateTopicSlugCollision(t *testing.T) {
	repo := newFakeTopicRepo()
	categoryID := uuid.New()
	svc := newTopicService(repo, categoryID)

	first, err := svc.CreateTopic(context.Background(), uuid.New(), validRequest(categoryID))
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	second, err := svc.CreateTopic(context.Background(), uuid.New(), validRequest(categoryID))
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if second.Slug == first.Slug {
		t.Fatalf("colliding slugs: %q", second.Slug)
	}
	if !strings.HasPrefix(second.Slug, first.Slug+"-") {
		t.Fatalf("expected suffixed slug, got %q", second.Slug)
	}
}
