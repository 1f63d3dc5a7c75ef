package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"skripta.hr/forum/internal/entity"
	"skripta.hr/forum/internal/modules/draft/service"
	"skripta.hr/forum/pkg/apperror"
)

type fakeDraftRepo struct {
	drafts map[uuid.UUID]*entity.TopicDraft
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: make(map[uuid.UUID]*entity.TopicDraft)}
}

func (r *fakeDraftRepo) Upsert(ctx context.Context, draft *entity.TopicDraft) error {
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	stored := *draft
	r.drafts[draft.ID] = &stored
	return nil
}

func (r *fakeDraftRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.TopicDraft, error) {
	draft, ok := r.drafts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return draft, nil
}

func (r *fakeDraftRepo) FindByAuthor(ctx context.Context, authorID uuid.UUID) ([]entity.TopicDraft, error) {
	var out []entity.TopicDraft
	for _, draft := range r.drafts {
		if draft.AuthorID == authorID {
			out = append(out, *draft)
		}
	}
	return out, nil
}

func (r *fakeDraftRepo) Delete(ctx context.Context, id, authorID uuid.UUID) error {
	if draft, ok := r.drafts[id]; ok && draft.AuthorID == authorID {
		delete(r.drafts, id)
	}
	return nil
}

func (r *fakeDraftRepo) DeleteTx(tx *gorm.DB, id, authorID uuid.UUID) error {
	return r.Delete(context.Background(), id, authorID)
}

func TestSaveDraftKeepsIDAcrossAutosaves(t *testing.T) {
	repo := newFakeDraftRepo()
	svc := service.NewDraftService(repo)
	authorID := uuid.New()

	first, err := svc.SaveDraft(context.Background(), authorID, service.SaveDraftInput{
		Title:   "Pitanje o kolokviju",
		Content: "prva verzija",
	})
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	if first.ID == uuid.Nil {
		t.Fatalf("first save did not assign an id")
	}

	second, err := svc.SaveDraft(context.Background(), authorID, service.SaveDraftInput{
		ID:      &first.ID,
		Title:   "Pitanje o kolokviju",
		Content: "druga verzija",
	})
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("autosave created a new draft: %s != %s", second.ID, first.ID)
	}

	if len(repo.drafts) != 1 {
		t.Fatalf("expected a single draft row, got %d", len(repo.drafts))
	}
	if repo.drafts[first.ID].Content != "druga verzija" {
		t.Fatalf("draft content not overwritten: %q", repo.drafts[first.ID].Content)
	}
}

func TestSaveDraftRejectsEmptyDraft(t *testing.T) {
	svc := service.NewDraftService(newFakeDraftRepo())

	_, err := svc.SaveDraft(context.Background(), uuid.New(), service.SaveDraftInput{
		Title:   "  ",
		Content: "",
	})
	if !errors.Is(err, apperror.ErrBadRequest) {
		t.Fatalf("expected bad request for empty draft, got %v", err)
	}
}

func TestSaveDraftRejectsForeignDraft(t *testing.T) {
	repo := newFakeDraftRepo()
	svc := service.NewDraftService(repo)

	owner := uuid.New()
	existing, err := svc.SaveDraft(context.Background(), owner, service.SaveDraftInput{Content: "moj nacrt"})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	_, err = svc.SaveDraft(context.Background(), uuid.New(), service.SaveDraftInput{
		ID:      &existing.ID,
		Content: "preuzimam",
	})
	if !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for foreign draft, got %v", err)
	}
	if repo.drafts[existing.ID].Content != "moj nacrt" {
		t.Fatalf("foreign save overwrote the draft: %q", repo.drafts[existing.ID].Content)
	}
}

func TestGetDraftChecksOwnership(t *testing.T) {
	repo := newFakeDraftRepo()
	svc := service.NewDraftService(repo)

	owner := uuid.New()
	draft, err := svc.SaveDraft(context.Background(), owner, service.SaveDraftInput{Content: "sadržaj"})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := svc.GetDraft(context.Background(), owner, draft.ID); err != nil {
		t.Fatalf("owner could not read draft: %v", err)
	}

	if _, err := svc.GetDraft(context.Background(), uuid.New(), draft.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden for foreign reader, got %v", err)
	}

	if _, err := svc.GetDraft(context.Background(), owner, uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("expected not found for unknown draft, got %v", err)
	}
}
